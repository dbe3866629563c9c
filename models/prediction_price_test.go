package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pricecast/pricecast/utils"
)

func TestPredictionPriceTableName(t *testing.T) {
	var record PredictionPrice
	assert.Equal(t, "prediction_prices", record.TableName())
}

func TestPredictionPriceHasActualPrice(t *testing.T) {
	record := PredictionPrice{
		SKU:            "4443",
		TimeKey:        20250520,
		Competitor:     "competitorA",
		PredictedPrice: 9.5,
	}
	assert.False(t, record.HasActualPrice())

	record.ActualPrice = utils.ToPtr(9.9)
	assert.True(t, record.HasActualPrice())
}
