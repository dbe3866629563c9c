package refdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSalesRowStructureLevel(t *testing.T) {
	row := SalesRow{SKU: "1", StructureLevel1: "a", StructureLevel2: "b", StructureLevel3: "c", StructureLevel4: "d"}

	assert.Equal(t, "a", row.StructureLevel(1))
	assert.Equal(t, "b", row.StructureLevel(2))
	assert.Equal(t, "c", row.StructureLevel(3))
	assert.Equal(t, "d", row.StructureLevel(4))
	assert.Equal(t, "", row.StructureLevel(0))
	assert.Equal(t, "", row.StructureLevel(5))
}

func TestCampaignRowActive(t *testing.T) {
	c := CampaignRow{
		Competitor:    "competitorA",
		ChainCampaign: "summer",
		StartDate:     day(2025, time.June, 1),
		EndDate:       day(2025, time.June, 30),
	}

	assert.True(t, c.Active(day(2025, time.June, 1)), "start date is inclusive")
	assert.True(t, c.Active(day(2025, time.June, 30)), "end date is inclusive")
	assert.True(t, c.Active(day(2025, time.June, 15)))
	assert.False(t, c.Active(day(2025, time.May, 31)))
	assert.False(t, c.Active(day(2025, time.July, 1)))
}

func TestCampaignRowActiveReversedRange(t *testing.T) {
	c := CampaignRow{StartDate: day(2025, time.June, 30), EndDate: day(2025, time.June, 1)}
	assert.False(t, c.Active(day(2025, time.June, 15)), "a reversed range never matches")
}

func TestTablesIndexesPreserveRowOrder(t *testing.T) {
	sales := []SalesRow{
		{SKU: "1", StructureLevel1: "x"},
		{SKU: "2", StructureLevel1: "y"},
		{SKU: "1", StructureLevel1: "z"},
	}
	prices := []PriceRow{
		{SKU: "1", TargetPrice: 10},
		{SKU: "1", TargetPrice: 20},
	}
	campaigns := []CampaignRow{
		{Competitor: "competitorA", ChainCampaign: "first"},
		{Competitor: "competitorA", ChainCampaign: "second"},
		{Competitor: "competitorB", ChainCampaign: "other"},
	}
	tables := NewTables(sales, prices, campaigns)

	got := tables.SalesBySKU("1")
	assert.Len(t, got, 2)
	assert.Equal(t, "x", got[0].StructureLevel1)
	assert.Equal(t, "z", got[1].StructureLevel1)

	gotPrices := tables.PricesBySKU("1")
	assert.Equal(t, []PriceRow{{SKU: "1", TargetPrice: 10}, {SKU: "1", TargetPrice: 20}}, gotPrices)

	gotCampaigns := tables.CampaignsByCompetitor("competitorA")
	assert.Len(t, gotCampaigns, 2)
	assert.Equal(t, "first", gotCampaigns[0].ChainCampaign)
	assert.Equal(t, "second", gotCampaigns[1].ChainCampaign)

	assert.Equal(t, 3, tables.NumSales())
	assert.Equal(t, 2, tables.NumPrices())
	assert.Equal(t, 3, tables.NumCampaigns())
}

func TestTablesMissingKeys(t *testing.T) {
	tables := NewTables(nil, nil, nil)

	assert.Empty(t, tables.SalesBySKU("nope"))
	assert.Empty(t, tables.PricesBySKU("nope"))
	assert.Empty(t, tables.CampaignsByCompetitor("nobody"))
}
