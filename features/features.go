// Package features derives the model-input feature row for a single
// (sku, date, competitor) prediction request from the reference tables.
//
// Derivation is a pure computation: it reads the reference tables, never
// mutates them, performs no I/O, and is deterministic for identical inputs.
// The returned row's columns always match the requested feature-name list
// exactly, in that order.
package features

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pricecast/pricecast/refdata"
)

var (
	// ErrSKUNotFound is returned when a SKU has no row in the sales
	// reference table.
	ErrSKUNotFound = errors.New("sku not found in sales reference")

	// ErrUnparsableDate is returned for date inputs in no recognized form.
	ErrUnparsableDate = errors.New("unparsable date")
)

const (
	campaignPrefix     = "campaign_"
	leafletPrefix      = "leaflet_"
	leafletNoneFeature = "leaflet_none"

	// NoCampaignLabel is the resolved campaign label when no campaign of
	// the competitor covers the requested date.
	NoCampaignLabel = "no_campaign"
)

// Build derives the feature row for one prediction request, reconciled to
// exactly featureNames in that order.
//
// The SKU must have at least one sales reference row; its first row supplies
// the structural-category codes. The competitor is not validated here: an
// unknown competitor simply resolves to the no-campaign label. Structural
// average prices over an empty price subset are NaN and flow through as-is.
func Build(sku string, date time.Time, competitor string, tables *refdata.Tables, featureNames []string) (*Row, error) {
	salesRows := tables.SalesBySKU(sku)
	if len(salesRows) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrSKUNotFound, sku)
	}
	first := salesRows[0]

	row := NewRow()
	row.Set("sku", sku)
	row.Set("competitor", competitor)
	row.Set("structure_level_1", first.StructureLevel1)
	row.Set("structure_level_2", first.StructureLevel2)
	row.Set("structure_level_3", first.StructureLevel3)
	row.Set("structure_level_4", first.StructureLevel4)

	row.Set("year", date.Year())
	row.Set("month", int(date.Month()))
	dow := mondayIndexedWeekday(date)
	row.Set("day_of_week", dow)
	if dow == 5 || dow == 6 {
		row.Set("is_weekend", 1)
	} else {
		row.Set("is_weekend", 0)
	}
	// The promo-period flag exists in the trained schema but is not derived
	// from any dataset; it is fixed at zero.
	row.Set("is_promo_period", 0)

	activeLabel := activeCampaign(tables, competitor, date)
	for _, name := range featureNames {
		if !strings.HasPrefix(name, campaignPrefix) {
			continue
		}
		// A column whose label strips to the empty string ("campaign_") is
		// always active.
		label := strings.TrimPrefix(name, campaignPrefix)
		if label == activeLabel || label == "" {
			row.Set(name, 1)
		} else {
			row.Set(name, 0)
		}
	}

	// Leaflet data is not wired into this service, so every leaflet
	// indicator except leaflet_none is zero.
	for _, name := range featureNames {
		if !strings.HasPrefix(name, leafletPrefix) {
			continue
		}
		if strings.TrimPrefix(name, leafletPrefix) == "none" {
			row.Set(name, 1)
		} else {
			row.Set(name, 0)
		}
	}

	prices := targetPrices(tables.PricesBySKU(sku))
	if len(prices) > 0 {
		row.Set("mean_price", mean(prices))
		row.Set("std_price", sampleStd(prices))
		row.Set("min_price", minOf(prices))
		row.Set("max_price", maxOf(prices))
	}

	for level := 1; level <= 4; level++ {
		name := fmt.Sprintf("structure_level_%d_avg_price", level)
		row.Set(name, structureAvgPrice(tables, salesRows, level))
	}

	return row.Align(featureNames), nil
}

// mondayIndexedWeekday maps the date's weekday to the 0=Monday..6=Sunday
// convention the models were trained with.
func mondayIndexedWeekday(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// activeCampaign resolves the campaign label covering the date for the
// competitor. Scanning follows reference-table order and the first covering
// campaign wins, so overlapping ranges resolve by stored order.
func activeCampaign(tables *refdata.Tables, competitor string, date time.Time) string {
	for _, c := range tables.CampaignsByCompetitor(competitor) {
		if c.Active(date) {
			return c.ChainCampaign
		}
	}
	return NoCampaignLabel
}

// structureAvgPrice averages the target price over price rows whose SKU
// column equals one of the SKU's distinct structural codes at the given
// level. An empty subset averages to NaN, which is a legitimate feature
// value here, not an error.
func structureAvgPrice(tables *refdata.Tables, salesRows []refdata.SalesRow, level int) float64 {
	seen := make(map[string]struct{})
	var prices []float64
	for _, r := range salesRows {
		code := r.StructureLevel(level)
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		for _, p := range tables.PricesBySKU(code) {
			prices = append(prices, p.TargetPrice)
		}
	}
	return mean(prices)
}

func targetPrices(rows []refdata.PriceRow) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.TargetPrice)
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd is the sample standard deviation (n-1 denominator); it is zero
// for fewer than two observations.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func minOf(xs []float64) float64 {
	min := xs[0]
	for _, x := range xs[1:] {
		if x < min {
			min = x
		}
	}
	return min
}

func maxOf(xs []float64) float64 {
	max := xs[0]
	for _, x := range xs[1:] {
		if x > max {
			max = x
		}
	}
	return max
}
