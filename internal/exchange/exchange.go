// Package exchange moves inventory in and out of the store as JSON or
// CSV. Export writes one record per unit; import feeds records through
// the stock engine so the usual merge rules apply, collecting warnings
// for rows it has to skip instead of failing the whole file.
package exchange

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"filmkeep/internal/expiry"
	"filmkeep/internal/inventory"
	"filmkeep/internal/stock"
)

// Record is one exchanged inventory row.
type Record struct {
	Manufacturer string `json:"manufacturer"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	ISO          int    `json:"iso"`
	Format       string `json:"format"`
	CustomFormat string `json:"customFormat,omitempty"`
	Quantity     int    `json:"quantity"`
	ExpiryDate   string `json:"expiryDate,omitempty"`
	IsFrozen     bool   `json:"isFrozen"`
	Exposures    int    `json:"exposures,omitempty"`
	Comments     string `json:"comments,omitempty"`
	AddedAt      string `json:"addedAt,omitempty"`
}

// Payload is the full JSON export envelope.
type Payload struct {
	ExportedAt string   `json:"exportedAt"`
	AppVersion string   `json:"appVersion"`
	Inventory  []Record `json:"inventory"`
}

// BuildRecords snapshots the store into export records sorted by
// manufacturer then film name. Expiry dates render through the display
// formatter and multiple dates join with ", ".
func BuildRecords(ctx context.Context, store *inventory.Store) ([]Record, error) {
	films, err := store.Films(ctx)
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, film := range films {
		units, err := store.UnitsByFilm(ctx, film.ID)
		if err != nil {
			return nil, err
		}
		for _, unit := range units {
			// Rolls consumed by a load sit at quantity zero until the
			// loaded record resolves; they carry no stock to exchange.
			if unit.Quantity <= 0 {
				continue
			}
			records = append(records, recordFromUnit(film, unit))
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Manufacturer != records[j].Manufacturer {
			return records[i].Manufacturer < records[j].Manufacturer
		}
		return records[i].Name < records[j].Name
	})
	return records, nil
}

func recordFromUnit(film *inventory.Film, unit *inventory.Unit) Record {
	formatted := make([]string, 0, len(unit.ExpiryDates))
	for _, date := range unit.ExpiryDates {
		formatted = append(formatted, expiry.Format(date))
	}
	record := Record{
		Manufacturer: film.ManufacturerName,
		Name:         film.Name,
		Type:         film.Type.DisplayName(),
		ISO:          film.NativeSpeed,
		Format:       unit.Format.DisplayName(),
		CustomFormat: unit.CustomFormatLabel,
		Quantity:     unit.Quantity,
		ExpiryDate:   strings.Join(formatted, ", "),
		IsFrozen:     unit.Frozen,
		Exposures:    unit.ExposureCount,
		Comments:     unit.Comments,
	}
	if !unit.CreatedAt.IsZero() {
		record.AddedAt = unit.CreatedAt.UTC().Format(time.RFC3339)
	}
	return record
}

// Import feeds records through the stock engine. Rows missing a
// manufacturer or film name, or with an unusable type, speed or quantity,
// are skipped with a warning. The returned count is rows actually added.
func Import(ctx context.Context, engine *stock.Engine, records []Record) (int, []string, error) {
	added := 0
	var warnings []string
	for i, record := range records {
		candidate, warn := candidateFromRecord(record)
		if warn != "" {
			warnings = append(warnings, fmt.Sprintf("row %d: %s", i+1, warn))
			continue
		}
		if _, err := engine.AddUnit(ctx, candidate, nil); err != nil {
			return added, warnings, fmt.Errorf("import row %d: %w", i+1, err)
		}
		added++
	}
	return added, warnings, nil
}

func candidateFromRecord(record Record) (stock.Candidate, string) {
	manufacturer := strings.TrimSpace(record.Manufacturer)
	name := strings.TrimSpace(record.Name)
	if manufacturer == "" || name == "" {
		return stock.Candidate{}, "missing manufacturer or film name, skipped"
	}
	filmType, ok := inventory.ParseFilmType(record.Type)
	if !ok {
		return stock.Candidate{}, fmt.Sprintf("unknown film type %q, skipped", record.Type)
	}
	if record.ISO <= 0 {
		return stock.Candidate{}, fmt.Sprintf("invalid iso %d, skipped", record.ISO)
	}
	if record.Quantity <= 0 {
		return stock.Candidate{}, fmt.Sprintf("invalid quantity %d, skipped", record.Quantity)
	}

	// Unmatched format strings fall back to Other with the raw value
	// preserved as the custom label.
	format, ok := inventory.ParseFormat(record.Format)
	customLabel := strings.TrimSpace(record.CustomFormat)
	if !ok {
		format = inventory.FormatOther
		if customLabel == "" {
			customLabel = strings.TrimSpace(record.Format)
		}
	}

	candidate := stock.Candidate{
		Manufacturer:      manufacturer,
		Name:              name,
		Type:              filmType,
		Speed:             record.ISO,
		Format:            format,
		CustomFormatLabel: customLabel,
		Quantity:          record.Quantity,
		ExpiryDates:       splitDates(record.ExpiryDate),
		Comments:          strings.TrimSpace(record.Comments),
		Frozen:            record.IsFrozen,
		ExposureCount:     record.Exposures,
	}
	if addedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(record.AddedAt)); err == nil {
		candidate.CreatedAt = addedAt
	}
	return candidate, ""
}

func splitDates(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	dates := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			dates = append(dates, trimmed)
		}
	}
	return dates
}
