// Package refdata holds the three read-only reference tables (sales
// structure, price history, campaign calendar) that feature derivation
// reads. Tables are loaded once at process start and never mutated, so
// lookups are safe for concurrent use.
package refdata

import (
	"time"
)

// SalesRow is one row of the sales reference table, carrying the four
// hierarchical structural-category codes of a SKU.
type SalesRow struct {
	SKU             string
	StructureLevel1 string
	StructureLevel2 string
	StructureLevel3 string
	StructureLevel4 string
}

// StructureLevel returns the structural code at the given level (1..4).
// It returns an empty string for a level outside that range.
func (r SalesRow) StructureLevel(level int) string {
	switch level {
	case 1:
		return r.StructureLevel1
	case 2:
		return r.StructureLevel2
	case 3:
		return r.StructureLevel3
	case 4:
		return r.StructureLevel4
	default:
		return ""
	}
}

// PriceRow is one observed target price for a SKU.
type PriceRow struct {
	SKU         string
	TargetPrice float64
}

// CampaignRow is one promotional campaign of a competitor, active over an
// inclusive date range.
type CampaignRow struct {
	Competitor    string
	ChainCampaign string
	StartDate     time.Time
	EndDate       time.Time
}

// Active reports whether the campaign is running on the given date. Both
// range ends are inclusive.
func (c CampaignRow) Active(date time.Time) bool {
	return !date.Before(c.StartDate) && !date.After(c.EndDate)
}

// Tables bundles the three reference tables with by-key indexes. The
// indexes preserve the original table row order so first-match scans stay
// deterministic across calls.
type Tables struct {
	sales     []SalesRow
	prices    []PriceRow
	campaigns []CampaignRow

	salesBySKU            map[string][]SalesRow
	pricesBySKU           map[string][]PriceRow
	campaignsByCompetitor map[string][]CampaignRow
}

// NewTables indexes the given reference rows. The slices are retained;
// callers must not modify them afterwards.
func NewTables(sales []SalesRow, prices []PriceRow, campaigns []CampaignRow) *Tables {
	t := &Tables{
		sales:                 sales,
		prices:                prices,
		campaigns:             campaigns,
		salesBySKU:            make(map[string][]SalesRow),
		pricesBySKU:           make(map[string][]PriceRow),
		campaignsByCompetitor: make(map[string][]CampaignRow),
	}
	for _, r := range sales {
		t.salesBySKU[r.SKU] = append(t.salesBySKU[r.SKU], r)
	}
	for _, r := range prices {
		t.pricesBySKU[r.SKU] = append(t.pricesBySKU[r.SKU], r)
	}
	for _, r := range campaigns {
		t.campaignsByCompetitor[r.Competitor] = append(t.campaignsByCompetitor[r.Competitor], r)
	}
	return t
}

// SalesBySKU returns the sales rows of the SKU in table order.
func (t *Tables) SalesBySKU(sku string) []SalesRow {
	return t.salesBySKU[sku]
}

// PricesBySKU returns the price rows of the SKU in table order.
func (t *Tables) PricesBySKU(sku string) []PriceRow {
	return t.pricesBySKU[sku]
}

// CampaignsByCompetitor returns the campaigns of the competitor in table
// order.
func (t *Tables) CampaignsByCompetitor(competitor string) []CampaignRow {
	return t.campaignsByCompetitor[competitor]
}

// NumSales returns the number of sales reference rows.
func (t *Tables) NumSales() int { return len(t.sales) }

// NumPrices returns the number of price reference rows.
func (t *Tables) NumPrices() int { return len(t.prices) }

// NumCampaigns returns the number of campaign reference rows.
func (t *Tables) NumCampaigns() int { return len(t.campaigns) }
