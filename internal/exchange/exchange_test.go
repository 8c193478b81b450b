package exchange_test

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"filmkeep/internal/exchange"
	"filmkeep/internal/grouping"
	"filmkeep/internal/inventory"
	"filmkeep/internal/stock"
	"filmkeep/internal/testsupport"
)

func seedInventory(t *testing.T, engine *stock.Engine) {
	t.Helper()
	ctx := context.Background()
	candidates := []stock.Candidate{
		{Manufacturer: "Kodak", Name: "Tri-X", Type: inventory.FilmTypeBW, Speed: 400,
			Format: inventory.Format35mm, Quantity: 2, ExpiryDates: []string{"2027"}, Frozen: true},
		{Manufacturer: "Kodak", Name: "Portra 400", Type: inventory.FilmTypeColor, Speed: 400,
			Format: inventory.Format120, Quantity: 1, Comments: "wedding leftovers"},
		{Manufacturer: "Ilford", Name: "FP4 Plus", Type: inventory.FilmTypeBW, Speed: 125,
			Format: inventory.Format4x5, Quantity: 25, ExpiryDates: []string{"03/2027"}},
		{Manufacturer: "Ilford", Name: "HP5 Plus", Type: inventory.FilmTypeBW, Speed: 400,
			Format: inventory.Format8x10, Quantity: 10},
	}
	for _, candidate := range candidates {
		if _, err := engine.AddUnit(ctx, candidate, nil); err != nil {
			t.Fatalf("AddUnit %s: %v", candidate.Name, err)
		}
	}
}

// viewSummary renders the grouped view as comparable lines: one per
// product format with its total quantity.
func viewSummary(t *testing.T, store *inventory.Store) string {
	t.Helper()
	products, err := grouping.View(context.Background(), store, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	var lines []string
	for _, product := range products {
		for _, format := range product.Formats {
			lines = append(lines, fmt.Sprintf("%s | %s | %s %d | %s | qty %d",
				product.Manufacturer, product.Name, product.Type, product.Speed,
				format.DisplayLabel(), format.TotalQuantity))
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n") + "\n"
}

func diff(before, after string) string {
	text, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "exported",
		ToFile:   "reimported",
		Context:  2,
	})
	return text
}

func TestCSVRoundTripPreservesGroupedView(t *testing.T) {
	ctx := context.Background()

	source := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	seedInventory(t, stock.NewEngine(source, nil))

	records, err := exchange.BuildRecords(ctx, source)
	if err != nil {
		t.Fatalf("BuildRecords: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records (3 rolls split + 2 pools), got %d", len(records))
	}

	var buf bytes.Buffer
	if err := exchange.WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "# INVENTORY\n") {
		t.Fatalf("csv missing sentinel: %q", buf.String()[:40])
	}

	parsed, warnings, err := exchange.ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	dest := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	added, warnings, err := exchange.Import(ctx, stock.NewEngine(dest, nil), parsed)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("import warnings: %v", warnings)
	}
	if added != len(parsed) {
		t.Fatalf("added %d of %d rows", added, len(parsed))
	}

	before := viewSummary(t, source)
	after := viewSummary(t, dest)
	if before != after {
		t.Errorf("grouped view changed across round trip:\n%s", diff(before, after))
	}
}

func TestJSONRoundTripAndBareArray(t *testing.T) {
	ctx := context.Background()

	source := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	seedInventory(t, stock.NewEngine(source, nil))
	records, err := exchange.BuildRecords(ctx, source)
	if err != nil {
		t.Fatalf("BuildRecords: %v", err)
	}

	var buf bytes.Buffer
	if err := exchange.WriteJSON(&buf, records, "test"); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	parsed, err := exchange.ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON envelope: %v", err)
	}
	if len(parsed) != len(records) {
		t.Fatalf("envelope round trip lost records: %d vs %d", len(parsed), len(records))
	}

	bare := `[{"manufacturer":"Kodak","name":"Gold 200","type":"Color","iso":200,"format":"35mm","quantity":1,"isFrozen":false}]`
	parsed, err = exchange.ReadJSON(strings.NewReader(bare))
	if err != nil {
		t.Fatalf("ReadJSON bare array: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Name != "Gold 200" {
		t.Fatalf("bare array parse = %+v", parsed)
	}
}

func TestImportSkipsBadRowsWithWarnings(t *testing.T) {
	ctx := context.Background()
	dest := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	records := []exchange.Record{
		{Manufacturer: "", Name: "Nameless", Type: "Color", ISO: 200, Format: "35mm", Quantity: 1},
		{Manufacturer: "Kodak", Name: "Gold 200", Type: "Color", ISO: 200, Format: "35mm", Quantity: 1},
		{Manufacturer: "Kodak", Name: "Mystery", Type: "negative", ISO: 200, Format: "35mm", Quantity: 1},
		{Manufacturer: "Kodak", Name: "Zeroed", Type: "Color", ISO: 200, Format: "35mm", Quantity: 0},
	}
	added, warnings, err := exchange.Import(ctx, stock.NewEngine(dest, nil), records)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
	if len(warnings) != 3 {
		t.Errorf("warnings = %v, want 3 entries", warnings)
	}
}

func TestImportFallsBackToOtherForUnknownFormats(t *testing.T) {
	ctx := context.Background()
	dest := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	records := []exchange.Record{
		{Manufacturer: "Lomography", Name: "Color '92", Type: "Color", ISO: 400, Format: "16mm cartridge", Quantity: 2},
	}
	added, warnings, err := exchange.Import(ctx, stock.NewEngine(dest, nil), records)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if added != 1 || len(warnings) != 0 {
		t.Fatalf("added = %d warnings = %v", added, warnings)
	}

	units, err := dest.Units(ctx)
	if err != nil {
		t.Fatalf("Units: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("units = %d", len(units))
	}
	if units[0].Format != inventory.FormatOther || units[0].CustomFormatLabel != "16mm cartridge" {
		t.Errorf("fallback unit = %+v", units[0])
	}
}

func TestReadCSVRejectsFilesWithoutSentinel(t *testing.T) {
	if _, _, err := exchange.ReadCSV(strings.NewReader("Manufacturer,Film\nKodak,Gold\n")); err == nil {
		t.Error("csv without sentinel should fail")
	}
}

func TestExportSkipsConsumedUnits(t *testing.T) {
	ctx := context.Background()

	source := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	seedInventory(t, stock.NewEngine(source, nil))

	// A roll consumed by a load sits at quantity zero until the loaded
	// record resolves; it must not travel through an export.
	units, err := source.Units(ctx)
	if err != nil {
		t.Fatalf("Units: %v", err)
	}
	var consumed *inventory.Unit
	for _, unit := range units {
		if unit.Format == inventory.Format35mm {
			consumed = unit
			break
		}
	}
	if consumed == nil {
		t.Fatal("expected a 35mm roll in the seed data")
	}
	consumed.Quantity = 0
	if err := source.UpdateUnit(ctx, consumed); err != nil {
		t.Fatalf("UpdateUnit: %v", err)
	}

	records, err := exchange.BuildRecords(ctx, source)
	if err != nil {
		t.Fatalf("BuildRecords: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records with the consumed roll skipped, got %d", len(records))
	}
	for _, record := range records {
		if record.Quantity <= 0 {
			t.Fatalf("exported a zero-quantity record: %+v", record)
		}
	}

	target := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	added, warnings, err := exchange.Import(ctx, stock.NewEngine(target, nil), records)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected a warning-free round trip, got %v", warnings)
	}
	if added != len(records) {
		t.Fatalf("expected %d rows imported, got %d", len(records), added)
	}
}
