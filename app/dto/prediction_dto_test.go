package dto

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecastResponseMarshalFlatKeys(t *testing.T) {
	resp := ForecastResponse{
		SKU:     "4443",
		TimeKey: 20250520,
		Prices: []CompetitorPrice{
			{Competitor: "competitorA", PredictedPrice: 9.5},
			{Competitor: "competitorB", PredictedPrice: math.NaN()},
		},
	}

	bs, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(bs, &decoded))

	assert.Equal(t, "4443", decoded["sku"])
	assert.Equal(t, float64(20250520), decoded["time_key"])
	assert.Equal(t, 9.5, decoded["pvp_is_competitorA"])

	val, ok := decoded["pvp_is_competitorB"]
	require.True(t, ok, "NaN prediction still gets a key")
	assert.Nil(t, val, "NaN marshals as null")
}

func TestActualPricesResponseMarshalIncludesActualKeys(t *testing.T) {
	actual := 9.4
	resp := ActualPricesResponse{
		SKU:     "4443",
		TimeKey: 20250520,
		Prices: []CompetitorPrice{
			{Competitor: "competitorA", PredictedPrice: 9.5, ActualPrice: &actual},
		},
	}

	bs, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(bs, &decoded))

	assert.Equal(t, 9.5, decoded["pvp_is_competitorA"])
	assert.Equal(t, 9.4, decoded["pvp_is_competitorA_actual"])
}

func TestJSONFloatRoundTrip(t *testing.T) {
	t.Run("FiniteValue", func(t *testing.T) {
		bs, err := json.Marshal(JSONFloat(9.5))
		require.NoError(t, err)
		assert.Equal(t, "9.5", string(bs))

		var back JSONFloat
		require.NoError(t, json.Unmarshal(bs, &back))
		assert.Equal(t, JSONFloat(9.5), back)
	})

	t.Run("NaNBecomesNullAndBack", func(t *testing.T) {
		bs, err := json.Marshal(JSONFloat(math.NaN()))
		require.NoError(t, err)
		assert.Equal(t, "null", string(bs))

		var back JSONFloat
		require.NoError(t, json.Unmarshal(bs, &back))
		assert.True(t, math.IsNaN(float64(back)))
	})

	t.Run("InfinityBecomesNull", func(t *testing.T) {
		bs, err := json.Marshal(JSONFloat(math.Inf(1)))
		require.NoError(t, err)
		assert.Equal(t, "null", string(bs))
	})
}

func TestPredictionDTOMarshal(t *testing.T) {
	nan := JSONFloat(math.NaN())
	item := PredictionDTO{
		ID:             1,
		UUID:           "0b817489-3be2-4bf7-a7e9-2f1e25c56a66",
		SKU:            "4443",
		TimeKey:        20250520,
		Competitor:     "competitorA",
		PredictedPrice: nan,
		CreatedAt:      "2025-05-20T10:00:00Z",
	}

	bs, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(bs, &decoded))
	assert.Nil(t, decoded["predicted_price"])
	assert.NotContains(t, decoded, "actual_price")
	assert.NotContains(t, decoded, "updated_at")
}
