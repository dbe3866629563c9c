package refdata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSales(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		path := writeFile(t, "sales.csv",
			"sku,structure_level_1,structure_level_2,structure_level_3,structure_level_4\n"+
				"4443,A,B,C,D\n"+
				"5555,A,B2,C,D\n")
		rows, err := LoadSales(path)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, SalesRow{SKU: "4443", StructureLevel1: "A", StructureLevel2: "B", StructureLevel3: "C", StructureLevel4: "D"}, rows[0])
	})

	t.Run("HeaderMismatch", func(t *testing.T) {
		path := writeFile(t, "sales.csv", "sku,level_1,level_2,level_3,level_4\n1,a,b,c,d\n")
		_, err := LoadSales(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "structure_level_1")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadSales(filepath.Join(t.TempDir(), "absent.csv"))
		require.Error(t, err)
	})

	t.Run("EmptyFile", func(t *testing.T) {
		path := writeFile(t, "sales.csv", "")
		_, err := LoadSales(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing header")
	})
}

func TestLoadPrices(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		path := writeFile(t, "prices.csv", "sku,target_price\n4443,9.99\n4443,12.5\n")
		rows, err := LoadPrices(path)
		require.NoError(t, err)
		assert.Equal(t, []PriceRow{{SKU: "4443", TargetPrice: 9.99}, {SKU: "4443", TargetPrice: 12.5}}, rows)
	})

	t.Run("InvalidPriceCarriesLineNumber", func(t *testing.T) {
		path := writeFile(t, "prices.csv", "sku,target_price\n4443,9.99\n4443,abc\n")
		_, err := LoadPrices(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 3")
		assert.Contains(t, err.Error(), "abc")
	})
}

func TestLoadCampaigns(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		path := writeFile(t, "campaigns.csv",
			"competitor,chain_campaign,start_date,end_date\n"+
				"competitorA,summer,2025-06-01,2025-06-30\n")
		rows, err := LoadCampaigns(path)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "competitorA", rows[0].Competitor)
		assert.Equal(t, "summer", rows[0].ChainCampaign)
		assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), rows[0].StartDate)
		assert.Equal(t, time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), rows[0].EndDate)
	})

	t.Run("InvalidDateCarriesLineNumber", func(t *testing.T) {
		path := writeFile(t, "campaigns.csv",
			"competitor,chain_campaign,start_date,end_date\n"+
				"competitorA,summer,junk,2025-06-30\n")
		_, err := LoadCampaigns(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
		assert.Contains(t, err.Error(), "start_date")
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	salesPath := filepath.Join(dir, "sales.csv")
	pricesPath := filepath.Join(dir, "prices.csv")
	campaignsPath := filepath.Join(dir, "campaigns.csv")
	require.NoError(t, os.WriteFile(salesPath, []byte("sku,structure_level_1,structure_level_2,structure_level_3,structure_level_4\n4443,A,B,C,D\n"), 0o644))
	require.NoError(t, os.WriteFile(pricesPath, []byte("sku,target_price\n4443,10\n"), 0o644))
	require.NoError(t, os.WriteFile(campaignsPath, []byte("competitor,chain_campaign,start_date,end_date\ncompetitorA,summer,2025-06-01,2025-06-30\n"), 0o644))

	t.Run("AllThreeFiles", func(t *testing.T) {
		tables, err := Load(salesPath, pricesPath, campaignsPath)
		require.NoError(t, err)
		assert.Equal(t, 1, tables.NumSales())
		assert.Equal(t, 1, tables.NumPrices())
		assert.Equal(t, 1, tables.NumCampaigns())
	})

	t.Run("FailureNamesTheTable", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.csv"), pricesPath, campaignsPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sales reference")
	})
}
