// Package expiry parses and formats the heterogeneous expiry-date strings
// carried by stock units: bare years, legacy six-digit MMYYYY values,
// month/year, and exact month/day/year dates.
//
// Comparison against "today" rounds each value to the end of its precision
// (a bare year compares as Dec 31, a month/year as the last day of the
// month) so a roll marked "2027" stays fresh through New Year's Eve.
package expiry
