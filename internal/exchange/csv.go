package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const csvSentinel = "# INVENTORY"

var csvHeader = []string{"Manufacturer", "Film", "Type", "ISO", "Format", "Qty", "Expiry", "Frozen", "Exposures", "Comments", "Added"}

// WriteCSV renders records as the sentinel-delimited CSV block.
func WriteCSV(w io.Writer, records []Record) error {
	if _, err := fmt.Fprintln(w, csvSentinel); err != nil {
		return fmt.Errorf("write csv sentinel: %w", err)
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, record := range records {
		format := record.Format
		if strings.TrimSpace(record.CustomFormat) != "" {
			format = record.CustomFormat
		}
		row := []string{
			record.Manufacturer,
			record.Name,
			record.Type,
			strconv.Itoa(record.ISO),
			format,
			strconv.Itoa(record.Quantity),
			record.ExpiryDate,
			strconv.FormatBool(record.IsFrozen),
			exposuresField(record.Exposures),
			record.Comments,
			record.AddedAt,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func exposuresField(exposures int) string {
	if exposures <= 0 {
		return ""
	}
	return strconv.Itoa(exposures)
}

// ReadCSV parses the sentinel-delimited CSV block back into records.
// Unparseable numeric fields produce warnings on the affected rows rather
// than failing the file.
func ReadCSV(r io.Reader) ([]Record, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Skip leading lines until the inventory sentinel.
	found := false
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parse csv: %w", err)
		}
		if len(row) > 0 && strings.TrimSpace(row[0]) == csvSentinel {
			found = true
			break
		}
	}
	if !found {
		return nil, nil, errors.New("no inventory block found in csv")
	}

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) < len(csvHeader) || !strings.EqualFold(header[0], csvHeader[0]) {
		return nil, nil, errors.New("unrecognized csv header")
	}

	var records []Record
	var warnings []string
	line := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records, warnings, fmt.Errorf("parse csv row: %w", err)
		}
		line++
		if len(row) < len(csvHeader) {
			warnings = append(warnings, fmt.Sprintf("line %d: too few fields, skipped", line))
			continue
		}

		iso, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: bad iso %q, skipped", line, row[3]))
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(row[5]))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: bad quantity %q, skipped", line, row[5]))
			continue
		}
		frozen, _ := strconv.ParseBool(strings.TrimSpace(row[7]))
		exposures := 0
		if trimmed := strings.TrimSpace(row[8]); trimmed != "" {
			exposures, _ = strconv.Atoi(trimmed)
		}

		records = append(records, Record{
			Manufacturer: strings.TrimSpace(row[0]),
			Name:         strings.TrimSpace(row[1]),
			Type:         strings.TrimSpace(row[2]),
			ISO:          iso,
			Format:       strings.TrimSpace(row[4]),
			Quantity:     qty,
			ExpiryDate:   strings.TrimSpace(row[6]),
			IsFrozen:     frozen,
			Exposures:    exposures,
			Comments:     row[9],
			AddedAt:      strings.TrimSpace(row[10]),
		})
	}
	return records, warnings, nil
}
