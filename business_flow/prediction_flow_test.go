package businessflow_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecast/pricecast/app/dto"
	businessflow "github.com/pricecast/pricecast/business_flow"
	"github.com/pricecast/pricecast/mlmodel"
	"github.com/pricecast/pricecast/repository"
	testingutil "github.com/pricecast/pricecast/testing"
	"github.com/pricecast/pricecast/utils"
)

// forecastFeatures is the schema used by the test model artifacts. With no
// coefficients the models predict their intercept regardless of the values.
var forecastFeatures = []string{"year", "month", "day_of_week", "is_weekend", "leaflet_none"}

func loadTestRegistry(t *testing.T, intercepts map[string]float64, competitors []string) *mlmodel.Registry {
	t.Helper()
	dir := t.TempDir()
	for competitor, intercept := range intercepts {
		require.NoError(t, testingutil.WriteLinearModelArtifact(dir, competitor, forecastFeatures, intercept, nil))
	}
	return mlmodel.LoadAll(dir, competitors)
}

func TestForecastPrices(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPredictionPriceRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		registry := loadTestRegistry(t, map[string]float64{
			"competitorA": 7.5,
			"competitorB": 8.25,
		}, []string{"competitorA", "competitorB"})

		flow := businessflow.NewPredictionFlow(
			repo, testingutil.ReferenceTables(), registry,
			[]string{"competitorA", "competitorB"},
			testDB.DB, nil, nil,
		)

		t.Run("DualCompetitorForecast", func(t *testing.T) {
			resp, err := flow.ForecastPrices(ctx, &dto.ForecastRequest{SKU: "4443", TimeKey: 20250520}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "4443", resp.SKU)
			assert.Equal(t, 20250520, resp.TimeKey)
			require.Len(t, resp.Prices, 2)
			assert.Equal(t, "competitorA", resp.Prices[0].Competitor)
			assert.Equal(t, 7.5, resp.Prices[0].PredictedPrice)
			assert.Equal(t, "competitorB", resp.Prices[1].Competitor)
			assert.Equal(t, 8.25, resp.Prices[1].PredictedPrice)

			stored, err := repo.BySKUTimeKeyCompetitor(ctx, "4443", 20250520, "competitorA")
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, 7.5, stored.PredictedPrice)
			assert.False(t, stored.HasActualPrice())
		})

		t.Run("SingleCompetitorForecast", func(t *testing.T) {
			req := &dto.ForecastRequest{SKU: "4443", TimeKey: 20250521, Competitor: utils.ToPtr("competitorB")}
			resp, err := flow.ForecastPrices(ctx, req, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Prices, 1)
			assert.Equal(t, "competitorB", resp.Prices[0].Competitor)
			assert.Equal(t, 8.25, resp.Prices[0].PredictedPrice)

			// only the requested competitor is stored
			other, err := repo.BySKUTimeKeyCompetitor(ctx, "4443", 20250521, "competitorA")
			require.NoError(t, err)
			assert.Nil(t, other)
		})

		t.Run("DuplicateKeepsStoredRow", func(t *testing.T) {
			_, err := fixtures.CreatePredictionPrice("5555", 20250520, "competitorA", 111.0)
			require.NoError(t, err)

			resp, err := flow.ForecastPrices(ctx, &dto.ForecastRequest{SKU: "5555", TimeKey: 20250520}, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Prices, 2)
			assert.Equal(t, 7.5, resp.Prices[0].PredictedPrice, "fresh estimate is still returned")

			kept, err := repo.BySKUTimeKeyCompetitor(ctx, "5555", 20250520, "competitorA")
			require.NoError(t, err)
			require.NotNil(t, kept)
			assert.Equal(t, 111.0, kept.PredictedPrice, "stored row stays untouched")

			fresh, err := repo.BySKUTimeKeyCompetitor(ctx, "5555", 20250520, "competitorB")
			require.NoError(t, err)
			require.NotNil(t, fresh)
			assert.Equal(t, 8.25, fresh.PredictedPrice)
		})

		t.Run("UnknownCompetitor", func(t *testing.T) {
			req := &dto.ForecastRequest{SKU: "4443", TimeKey: 20250520, Competitor: utils.ToPtr("competitorX")}
			_, err := flow.ForecastPrices(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsUnknownCompetitor(err))
			assert.Contains(t, err.Error(), "competitorX")

			var bizErr *businessflow.BusinessError
			require.ErrorAs(t, err, &bizErr)
			assert.Equal(t, "UNKNOWN_COMPETITOR", bizErr.Code)
		})

		t.Run("InvalidTimeKey", func(t *testing.T) {
			_, err := flow.ForecastPrices(ctx, &dto.ForecastRequest{SKU: "4443", TimeKey: 20251332}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidTimeKey(err))
			assert.Contains(t, err.Error(), "20251332")
		})

		t.Run("SKUNotFound", func(t *testing.T) {
			_, err := flow.ForecastPrices(ctx, &dto.ForecastRequest{SKU: "9999", TimeKey: 20250520}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSKUNotFound(err))
			assert.Contains(t, err.Error(), "9999")
		})

		return nil
	})
	require.NoError(t, err)
}

func TestForecastPricesModelNotLoaded(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPredictionPriceRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		// competitorB is configured but its artifact is absent
		registry := loadTestRegistry(t, map[string]float64{
			"competitorA": 7.5,
		}, []string{"competitorA", "competitorB"})

		flow := businessflow.NewPredictionFlow(
			repo, testingutil.ReferenceTables(), registry,
			[]string{"competitorA", "competitorB"},
			testDB.DB, nil, nil,
		)

		t.Run("DualModeFails", func(t *testing.T) {
			_, err := flow.ForecastPrices(ctx, &dto.ForecastRequest{SKU: "4443", TimeKey: 20250520}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsModelNotFound(err))
			assert.Contains(t, err.Error(), "competitorB")
		})

		t.Run("SingleModeFails", func(t *testing.T) {
			req := &dto.ForecastRequest{SKU: "4443", TimeKey: 20250520, Competitor: utils.ToPtr("competitorB")}
			_, err := flow.ForecastPrices(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsModelNotFound(err))
		})

		t.Run("SingleModeLoadedCompetitorWorks", func(t *testing.T) {
			req := &dto.ForecastRequest{SKU: "4443", TimeKey: 20250520, Competitor: utils.ToPtr("competitorA")}
			resp, err := flow.ForecastPrices(ctx, req, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Prices, 1)
			assert.Equal(t, 7.5, resp.Prices[0].PredictedPrice)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateActualPrices(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPredictionPriceRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		registry := loadTestRegistry(t, map[string]float64{
			"competitorA": 7.5,
			"competitorB": 8.25,
		}, []string{"competitorA", "competitorB"})

		flow := businessflow.NewPredictionFlow(
			repo, testingutil.ReferenceTables(), registry,
			[]string{"competitorA", "competitorB"},
			testDB.DB, nil, nil,
		)

		_, err := flow.ForecastPrices(ctx, &dto.ForecastRequest{SKU: "4443", TimeKey: 20250524}, metadata)
		require.NoError(t, err)

		t.Run("RecordsActuals", func(t *testing.T) {
			req := &dto.ActualPricesRequest{
				SKU:     "4443",
				TimeKey: 20250524,
				ActualPrices: map[string]float64{
					"competitorA": 9.9,
					"competitorB": 10.1,
				},
			}
			resp, err := flow.UpdateActualPrices(ctx, req, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Prices, 2)
			assert.Equal(t, "competitorA", resp.Prices[0].Competitor)
			assert.Equal(t, 7.5, resp.Prices[0].PredictedPrice)
			require.NotNil(t, resp.Prices[0].ActualPrice)
			assert.Equal(t, 9.9, *resp.Prices[0].ActualPrice)

			stored, err := repo.BySKUTimeKeyCompetitor(ctx, "4443", 20250524, "competitorB")
			require.NoError(t, err)
			require.NotNil(t, stored)
			require.True(t, stored.HasActualPrice())
			assert.Equal(t, 10.1, *stored.ActualPrice)
		})

		t.Run("MissingPredictionFails", func(t *testing.T) {
			req := &dto.ActualPricesRequest{
				SKU:          "4443",
				TimeKey:      19990101,
				ActualPrices: map[string]float64{"competitorA": 5.0},
			}
			_, err := flow.UpdateActualPrices(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsPredictionNotFound(err))
			assert.Contains(t, err.Error(), "19990101")
		})

		t.Run("PartialMissRollsBack", func(t *testing.T) {
			req := &dto.ActualPricesRequest{
				SKU:     "4443",
				TimeKey: 20250524,
				ActualPrices: map[string]float64{
					"competitorA": 5.5,
					"competitorX": 9.0,
				},
			}
			_, err := flow.UpdateActualPrices(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsPredictionNotFound(err))

			stored, err := repo.BySKUTimeKeyCompetitor(ctx, "4443", 20250524, "competitorA")
			require.NoError(t, err)
			require.NotNil(t, stored)
			require.NotNil(t, stored.ActualPrice)
			assert.Equal(t, 9.9, *stored.ActualPrice, "earlier update in the failed batch is rolled back")
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListPredictions(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPredictionPriceRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		registry := loadTestRegistry(t, map[string]float64{"competitorA": 7.5}, []string{"competitorA"})
		flow := businessflow.NewPredictionFlow(
			repo, testingutil.ReferenceTables(), registry,
			[]string{"competitorA"},
			testDB.DB, nil, nil,
		)

		base := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
		_, err := fixtures.CreatePredictionAt("1001", 20250501, "competitorA", 1.0, base)
		require.NoError(t, err)
		_, err = fixtures.CreatePredictionAt("1001", 20250502, "competitorB", 2.0, base.Add(time.Hour))
		require.NoError(t, err)
		_, err = fixtures.CreatePredictionAt("2002", 20250503, "competitorA", 3.0, base.Add(2*time.Hour))
		require.NoError(t, err)
		_, err = fixtures.CreatePredictionAt("2002", 20250504, "competitorB", 4.0, base.Add(3*time.Hour))
		require.NoError(t, err)

		t.Run("DefaultsNewestFirst", func(t *testing.T) {
			resp, err := flow.ListPredictions(ctx, &dto.ListPredictionsRequest{}, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Items, 4)
			assert.Equal(t, 20250504, resp.Items[0].TimeKey)
			assert.Equal(t, 20250501, resp.Items[3].TimeKey)
			assert.Equal(t, int64(4), resp.Pagination.Total)
			assert.Equal(t, 1, resp.Pagination.Page)
			assert.Equal(t, utils.DefaultPageSize, resp.Pagination.PageSize)
		})

		t.Run("FilterBySKU", func(t *testing.T) {
			req := &dto.ListPredictionsRequest{SKU: utils.ToPtr("1001")}
			resp, err := flow.ListPredictions(ctx, req, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Items, 2)
			for _, item := range resp.Items {
				assert.Equal(t, "1001", item.SKU)
			}
		})

		t.Run("FilterByTimeKeyRange", func(t *testing.T) {
			req := &dto.ListPredictionsRequest{From: utils.ToPtr(20250502), To: utils.ToPtr(20250503)}
			resp, err := flow.ListPredictions(ctx, req, metadata)
			require.NoError(t, err)
			assert.Len(t, resp.Items, 2)
		})

		t.Run("SecondPage", func(t *testing.T) {
			req := &dto.ListPredictionsRequest{Page: 2, PageSize: 2}
			resp, err := flow.ListPredictions(ctx, req, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Items, 2)
			assert.Equal(t, 20250502, resp.Items[0].TimeKey)
			assert.Equal(t, int64(4), resp.Pagination.Total)
			assert.Equal(t, 2, resp.Pagination.TotalPages)
		})

		t.Run("InvalidPage", func(t *testing.T) {
			_, err := flow.ListPredictions(ctx, &dto.ListPredictionsRequest{Page: -1}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPage(err))
		})

		t.Run("InvalidPageSize", func(t *testing.T) {
			_, err := flow.ListPredictions(ctx, &dto.ListPredictionsRequest{PageSize: utils.MaxPageSize + 1}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPageSize(err))
		})

		t.Run("InvalidRange", func(t *testing.T) {
			req := &dto.ListPredictionsRequest{From: utils.ToPtr(20250601), To: utils.ToPtr(20250501)}
			_, err := flow.ListPredictions(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsTimeKeyRangeInvalid(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestExportPredictions(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPredictionPriceRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		registry := loadTestRegistry(t, map[string]float64{"competitorA": 7.5}, []string{"competitorA"})
		flow := businessflow.NewPredictionFlow(
			repo, testingutil.ReferenceTables(), registry,
			[]string{"competitorA"},
			testDB.DB, nil, nil,
		)

		_, err := fixtures.CreatePredictionPrice("4443", 20250520, "competitorA", 9.5)
		require.NoError(t, err)
		_, err = fixtures.CreatePredictionWithActual("4443", 20250521, "competitorA", 9.7, 9.4)
		require.NoError(t, err)

		t.Run("ReturnsWorkbook", func(t *testing.T) {
			filename, data, err := flow.ExportPredictions(ctx, &dto.ExportPredictionsRequest{}, metadata)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(filename, "predictions_"))
			assert.True(t, strings.HasSuffix(filename, ".xlsx"))
			require.NotEmpty(t, data)
			assert.Equal(t, "PK", string(data[:2]), "xlsx files are zip archives")
		})

		t.Run("InvalidRange", func(t *testing.T) {
			req := &dto.ExportPredictionsRequest{From: utils.ToPtr(20250601), To: utils.ToPtr(20250501)}
			_, _, err := flow.ExportPredictions(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsTimeKeyRangeInvalid(err))
		})

		return nil
	})
	require.NoError(t, err)
}
