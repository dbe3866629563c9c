package dto

import (
	"encoding/json"
	"math"
)

// JSONFloat is a float64 that marshals NaN and infinities as JSON null,
// since encoding/json rejects them outright
type JSONFloat float64

// MarshalJSON implements json.Marshaler
func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler; null decodes back to NaN
func (f *JSONFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = JSONFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = JSONFloat(v)
	return nil
}

// ForecastRequest represents the request to forecast competitor prices for a SKU on a date
type ForecastRequest struct {
	SKU        string  `json:"sku" validate:"required,max=64"`
	TimeKey    int     `json:"time_key" validate:"required,gt=0"`
	Competitor *string `json:"competitor,omitempty" validate:"omitempty,max=64"`
}

// CompetitorPrice carries one competitor's predicted price, plus the
// observed price once one has been recorded
type CompetitorPrice struct {
	Competitor     string
	PredictedPrice float64
	ActualPrice    *float64
}

// ForecastResponse represents the flat forecast payload: sku, time_key, and
// one "pvp_is_<competitor>" key per prediction
type ForecastResponse struct {
	SKU     string
	TimeKey int
	Prices  []CompetitorPrice
}

// MarshalJSON implements json.Marshaler
func (r ForecastResponse) MarshalJSON() ([]byte, error) {
	return marshalFlatPrices(r.SKU, r.TimeKey, r.Prices)
}

// ActualPricesRequest represents the request to record observed prices
// against previously stored predictions
type ActualPricesRequest struct {
	SKU          string             `json:"sku" validate:"required,max=64"`
	TimeKey      int                `json:"time_key" validate:"required,gt=0"`
	ActualPrices map[string]float64 `json:"actual_prices" validate:"required,min=1"`
}

// ActualPricesResponse represents the flat actuals payload: the stored
// prediction under "pvp_is_<competitor>" and the recorded observation under
// "pvp_is_<competitor>_actual"
type ActualPricesResponse struct {
	SKU     string
	TimeKey int
	Prices  []CompetitorPrice
}

// MarshalJSON implements json.Marshaler
func (r ActualPricesResponse) MarshalJSON() ([]byte, error) {
	return marshalFlatPrices(r.SKU, r.TimeKey, r.Prices)
}

func marshalFlatPrices(sku string, timeKey int, prices []CompetitorPrice) ([]byte, error) {
	out := make(map[string]any, len(prices)+2)
	out["sku"] = sku
	out["time_key"] = timeKey
	for _, p := range prices {
		out["pvp_is_"+p.Competitor] = JSONFloat(p.PredictedPrice)
		if p.ActualPrice != nil {
			out["pvp_is_"+p.Competitor+"_actual"] = JSONFloat(*p.ActualPrice)
		}
	}
	return json.Marshal(out)
}

// PredictionDTO represents a stored prediction record for API responses
type PredictionDTO struct {
	ID             uint       `json:"id"`
	UUID           string     `json:"uuid"`
	SKU            string     `json:"sku"`
	TimeKey        int        `json:"time_key"`
	Competitor     string     `json:"competitor"`
	PredictedPrice JSONFloat  `json:"predicted_price"`
	ActualPrice    *JSONFloat `json:"actual_price,omitempty"`
	CreatedAt      string     `json:"created_at"`
	UpdatedAt      *string    `json:"updated_at,omitempty"`
}

// ListPredictionsRequest represents a paginated list request for stored predictions
type ListPredictionsRequest struct {
	SKU        *string `json:"sku,omitempty"`
	Competitor *string `json:"competitor,omitempty"`
	From       *int    `json:"from,omitempty"` // time_key lower bound, inclusive
	To         *int    `json:"to,omitempty"`   // time_key upper bound, inclusive
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// ListPredictionsResponse represents a paginated list of stored predictions
type ListPredictionsResponse struct {
	Message    string          `json:"message"`
	Items      []PredictionDTO `json:"items"`
	Pagination PaginationInfo  `json:"pagination"`
}

// ExportPredictionsRequest represents the filter set for an XLSX export of
// stored predictions
type ExportPredictionsRequest struct {
	SKU        *string `json:"sku,omitempty"`
	Competitor *string `json:"competitor,omitempty"`
	From       *int    `json:"from,omitempty"`
	To         *int    `json:"to,omitempty"`
}

// HealthModelSummary reports the model registry state for health responses
type HealthModelSummary struct {
	Loaded   []string          `json:"loaded"`
	Failures map[string]string `json:"failures,omitempty"`
}
