package inventory

import "github.com/google/uuid"

// SplitRoll decomposes a multi-quantity roll unit into single-quantity
// units, one per physical roll. The first result reuses the original
// identifier so external references (a loaded unit pointing at the source)
// stay valid; the rest receive fresh identifiers.
//
// Expiry dates distribute positionally: a single date is shared by every
// roll; otherwise roll i takes date i while dates last and the remaining
// rolls get none. This is a best-effort policy for legacy bulk records.
//
// Sheet formats and units already at quantity <= 1 come back unchanged as
// a one-element slice.
func SplitRoll(unit *Unit) []*Unit {
	if unit == nil {
		return nil
	}
	if !unit.Format.IsRoll() || unit.Quantity <= 1 {
		return []*Unit{unit}
	}

	count := unit.Quantity
	units := make([]*Unit, 0, count)
	for i := 0; i < count; i++ {
		clone := *unit
		clone.Quantity = 1
		clone.ExpiryDates = dateForRoll(unit.ExpiryDates, i)
		if i > 0 {
			clone.ID = uuid.NewString()
		}
		units = append(units, &clone)
	}
	return units
}

func dateForRoll(dates []string, index int) []string {
	switch {
	case len(dates) == 0:
		return nil
	case len(dates) == 1:
		return []string{dates[0]}
	case index < len(dates):
		return []string{dates[index]}
	default:
		return nil
	}
}
