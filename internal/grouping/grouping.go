// Package grouping builds the read-side projection: one product card per
// film, broken down by format. It is computed fresh from the store on
// every call, never cached.
package grouping

import (
	"context"
	"sort"
	"strings"
	"time"

	"filmkeep/internal/expiry"
	"filmkeep/internal/inventory"
)

// FormatInfo is one format line on a product card.
type FormatInfo struct {
	Format            inventory.Format
	CustomFormatLabel string
	TotalQuantity     int
	ExpiryDates       []string
	Frozen            bool
	FrozenCount       int
	ExpiredCount      int
	Comments          string
	MemberIDs         []string
}

// DisplayLabel renders the format line heading.
func (f *FormatInfo) DisplayLabel() string {
	return inventory.DisplayLabel(f.Format, f.CustomFormatLabel)
}

// Product is one display card: a film with its per-format stock.
type Product struct {
	FilmID       int64
	Name         string
	Manufacturer string
	Type         inventory.FilmType
	Speed        int
	ImageRef     string
	Formats      []FormatInfo
}

// Key returns the grouping identity, the same tuple the film merge uses.
func (p *Product) Key() inventory.FilmKey {
	return inventory.FilmKey{Name: p.Name, Manufacturer: p.Manufacturer, Type: p.Type, Speed: p.Speed}
}

// TotalQuantity sums stock across every format of the product.
func (p *Product) TotalQuantity() int {
	total := 0
	for _, format := range p.Formats {
		total += format.TotalQuantity
	}
	return total
}

// View projects raw units into product cards. Roll formats aggregate all
// their units into one line per format; sheet and custom formats keep one
// line per unit since each pool is already divisible. today anchors the
// expired predicate.
func View(ctx context.Context, store *inventory.Store, today time.Time) ([]Product, error) {
	films, err := store.Films(ctx)
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(films))
	for _, film := range films {
		units, err := store.UnitsByFilm(ctx, film.ID)
		if err != nil {
			return nil, err
		}
		if len(units) == 0 {
			continue
		}
		products = append(products, Product{
			FilmID:       film.ID,
			Name:         film.Name,
			Manufacturer: film.ManufacturerName,
			Type:         film.Type,
			Speed:        film.NativeSpeed,
			ImageRef:     film.ImageRef,
			Formats:      buildFormats(units, today),
		})
	}

	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Manufacturer != products[j].Manufacturer {
			return products[i].Manufacturer < products[j].Manufacturer
		}
		return products[i].Name < products[j].Name
	})
	return products, nil
}

func buildFormats(units []*inventory.Unit, today time.Time) []FormatInfo {
	// Buckets keep first-seen order. "Other" is sub-keyed by raw custom
	// label so unrelated custom formats do not share a line.
	type bucketKey struct {
		format inventory.Format
		sub    string
	}
	var order []bucketKey
	rolls := map[bucketKey][]*inventory.Unit{}

	var infos []FormatInfo
	for _, unit := range units {
		if unit.Format.IsRoll() {
			key := bucketKey{format: unit.Format}
			if _, seen := rolls[key]; !seen {
				order = append(order, key)
			}
			rolls[key] = append(rolls[key], unit)
			continue
		}
		infos = append(infos, sheetInfo(unit, today))
	}

	aggregated := make([]FormatInfo, 0, len(order)+len(infos))
	for _, key := range order {
		aggregated = append(aggregated, rollInfo(key.format, rolls[key], today))
	}
	return append(aggregated, infos...)
}

func rollInfo(format inventory.Format, members []*inventory.Unit, today time.Time) FormatInfo {
	info := FormatInfo{Format: format}
	seenDates := map[string]struct{}{}
	for _, unit := range members {
		info.TotalQuantity += unit.Quantity
		info.MemberIDs = append(info.MemberIDs, unit.ID)
		for _, date := range unit.ExpiryDates {
			if _, dup := seenDates[date]; dup {
				continue
			}
			seenDates[date] = struct{}{}
			info.ExpiryDates = append(info.ExpiryDates, date)
		}
		if unit.Frozen {
			info.Frozen = true
			info.FrozenCount++
		}
		if unitExpired(unit, today) {
			info.ExpiredCount++
		}
		if info.Comments == "" && strings.TrimSpace(unit.Comments) != "" {
			info.Comments = unit.Comments
		}
	}
	return info
}

func sheetInfo(unit *inventory.Unit, today time.Time) FormatInfo {
	info := FormatInfo{
		Format:            unit.Format,
		CustomFormatLabel: unit.CustomFormatLabel,
		TotalQuantity:     unit.Quantity,
		ExpiryDates:       append([]string(nil), unit.ExpiryDates...),
		Frozen:            unit.Frozen,
		Comments:          unit.Comments,
		MemberIDs:         []string{unit.ID},
	}
	// Sheet pools are all-or-nothing, so the counts carry the whole
	// quantity rather than a per-member tally.
	if unit.Frozen {
		info.FrozenCount = unit.Quantity
	}
	if unitExpired(unit, today) {
		info.ExpiredCount = unit.Quantity
	}
	return info
}

func unitExpired(unit *inventory.Unit, today time.Time) bool {
	for _, date := range unit.ExpiryDates {
		if expiry.IsExpired(date, today) {
			return true
		}
	}
	return false
}
