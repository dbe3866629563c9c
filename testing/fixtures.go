// Package testing provides test utilities and database setup for testing the prediction store
package testing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pricecast/pricecast/models"
	"github.com/pricecast/pricecast/refdata"
	"github.com/pricecast/pricecast/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreatePredictionPrice stores a prediction record for the given key
func (tf *TestFixtures) CreatePredictionPrice(sku string, timeKey int, competitor string, predictedPrice float64) (*models.PredictionPrice, error) {
	record := &models.PredictionPrice{
		SKU:            sku,
		TimeKey:        timeKey,
		Competitor:     competitor,
		PredictedPrice: predictedPrice,
	}

	err := tf.DB.DB.Create(record).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test prediction: %w", err)
	}

	return record, nil
}

// CreatePredictionWithActual stores a prediction record that already has an
// observed price
func (tf *TestFixtures) CreatePredictionWithActual(sku string, timeKey int, competitor string, predictedPrice, actualPrice float64) (*models.PredictionPrice, error) {
	record := &models.PredictionPrice{
		SKU:            sku,
		TimeKey:        timeKey,
		Competitor:     competitor,
		PredictedPrice: predictedPrice,
		ActualPrice:    utils.ToPtr(actualPrice),
	}

	err := tf.DB.DB.Create(record).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test prediction: %w", err)
	}

	return record, nil
}

// CreatePredictionAt stores a prediction record with a pinned creation time,
// for ordering-sensitive listing tests
func (tf *TestFixtures) CreatePredictionAt(sku string, timeKey int, competitor string, predictedPrice float64, createdAt time.Time) (*models.PredictionPrice, error) {
	record := &models.PredictionPrice{
		SKU:            sku,
		TimeKey:        timeKey,
		Competitor:     competitor,
		PredictedPrice: predictedPrice,
		CreatedAt:      createdAt,
	}

	err := tf.DB.DB.Create(record).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test prediction: %w", err)
	}

	return record, nil
}

// ReferenceTables returns a small set of reference tables covering the
// feature-derivation paths: one SKU with structural codes, price history
// for the SKU and one structural code, and one campaign per competitor.
func ReferenceTables() *refdata.Tables {
	sales := []refdata.SalesRow{
		{SKU: "4443", StructureLevel1: "A", StructureLevel2: "B", StructureLevel3: "C", StructureLevel4: "D"},
		{SKU: "5555", StructureLevel1: "A", StructureLevel2: "B2", StructureLevel3: "C2", StructureLevel4: "D2"},
	}
	prices := []refdata.PriceRow{
		{SKU: "4443", TargetPrice: 10},
		{SKU: "4443", TargetPrice: 14},
		{SKU: "A", TargetPrice: 8},
	}
	campaigns := []refdata.CampaignRow{
		{
			Competitor:    "competitorA",
			ChainCampaign: "summer",
			StartDate:     time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
			EndDate:       time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			Competitor:    "competitorB",
			ChainCampaign: "winter",
			StartDate:     time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
			EndDate:       time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
	}
	return refdata.NewTables(sales, prices, campaigns)
}

// WriteLinearModelArtifact writes a linear model artifact for the
// competitor into dir, for registry-driven tests
func WriteLinearModelArtifact(dir, competitor string, featureNames []string, intercept float64, coefficients map[string]float64) error {
	if coefficients == nil {
		coefficients = map[string]float64{}
	}
	artifact := map[string]any{
		"competitor": competitor,
		"features":   featureNames,
		"model": map[string]any{
			"type":         "linear",
			"intercept":    intercept,
			"coefficients": coefficients,
		},
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode test model artifact: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("model_%s.json", competitor))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write test model artifact: %w", err)
	}
	return nil
}
