package refdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Column layouts of the reference CSV files. The header row must match
// exactly; extra or reordered columns are a load error.
var (
	salesColumns     = []string{"sku", "structure_level_1", "structure_level_2", "structure_level_3", "structure_level_4"}
	pricesColumns    = []string{"sku", "target_price"}
	campaignsColumns = []string{"competitor", "chain_campaign", "start_date", "end_date"}
)

// csvDateLayout is the date form used in the campaign calendar file.
const csvDateLayout = "2006-01-02"

// Load reads the three reference tables from their CSV files and returns
// them indexed for lookup.
func Load(salesPath, pricesPath, campaignsPath string) (*Tables, error) {
	sales, err := LoadSales(salesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales reference: %w", err)
	}
	prices, err := LoadPrices(pricesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load price reference: %w", err)
	}
	campaigns, err := LoadCampaigns(campaignsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign reference: %w", err)
	}
	return NewTables(sales, prices, campaigns), nil
}

// LoadSales reads the sales structure reference file.
func LoadSales(path string) ([]SalesRow, error) {
	records, err := readCSV(path, salesColumns)
	if err != nil {
		return nil, err
	}
	rows := make([]SalesRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, SalesRow{
			SKU:             rec[0],
			StructureLevel1: rec[1],
			StructureLevel2: rec[2],
			StructureLevel3: rec[3],
			StructureLevel4: rec[4],
		})
	}
	return rows, nil
}

// LoadPrices reads the price history reference file.
func LoadPrices(path string) ([]PriceRow, error) {
	records, err := readCSV(path, pricesColumns)
	if err != nil {
		return nil, err
	}
	rows := make([]PriceRow, 0, len(records))
	for i, rec := range records {
		price, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: invalid target_price %q", path, i+2, rec[1])
		}
		rows = append(rows, PriceRow{SKU: rec[0], TargetPrice: price})
	}
	return rows, nil
}

// LoadCampaigns reads the campaign calendar reference file. Dates use the
// YYYY-MM-DD form; ranges are kept as stored even when reversed (a reversed
// range simply never matches any date).
func LoadCampaigns(path string) ([]CampaignRow, error) {
	records, err := readCSV(path, campaignsColumns)
	if err != nil {
		return nil, err
	}
	rows := make([]CampaignRow, 0, len(records))
	for i, rec := range records {
		start, err := time.Parse(csvDateLayout, rec[2])
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: invalid start_date %q", path, i+2, rec[2])
		}
		end, err := time.Parse(csvDateLayout, rec[3])
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: invalid end_date %q", path, i+2, rec[3])
		}
		rows = append(rows, CampaignRow{
			Competitor:    rec[0],
			ChainCampaign: rec[1],
			StartDate:     start,
			EndDate:       end,
		})
	}
	return rows, nil
}

func readCSV(path string, columns []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}
	if err := checkColumns(records[0], columns); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records[1:], nil
}

func checkColumns(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("expected %d columns, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("column %d: expected %q, got %q", i+1, want[i], got[i])
		}
	}
	return nil
}
