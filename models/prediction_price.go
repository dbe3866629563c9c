package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pricecast/pricecast/utils"
)

// PredictionPrice represents one stored price prediction in the database.
// A record is created once per (sku, time_key, competitor) by a successful
// forecast; the actual price is the only field mutated later, when the
// observed price arrives. Records are never deleted.
type PredictionPrice struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UUID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_prediction_prices_uuid" json:"uuid"`
	SKU            string     `gorm:"column:sku;size:64;not null;uniqueIndex:uk_prediction_prices_sku_time_key_competitor,priority:1;index:idx_prediction_prices_sku" json:"sku"`
	TimeKey        int        `gorm:"not null;uniqueIndex:uk_prediction_prices_sku_time_key_competitor,priority:2" json:"time_key"`
	Competitor     string     `gorm:"size:64;not null;uniqueIndex:uk_prediction_prices_sku_time_key_competitor,priority:3;index:idx_prediction_prices_competitor" json:"competitor"`
	PredictedPrice float64    `gorm:"not null" json:"predicted_price"`
	ActualPrice    *float64   `json:"actual_price,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;index:idx_prediction_prices_created_at" json:"created_at"`
	UpdatedAt      *time.Time `gorm:"index:idx_prediction_prices_updated_at" json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (PredictionPrice) TableName() string {
	return "prediction_prices"
}

// BeforeCreate is called before creating a new record
func (p *PredictionPrice) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (p *PredictionPrice) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	p.UpdatedAt = &now
	return nil
}

// HasActualPrice reports whether the observed price has been recorded
func (p *PredictionPrice) HasActualPrice() bool {
	return p.ActualPrice != nil
}

// PredictionPriceFilter represents filter criteria for stored predictions
type PredictionPriceFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	SKU           *string    `json:"sku,omitempty"`
	TimeKey       *int       `json:"time_key,omitempty"`
	Competitor    *string    `json:"competitor,omitempty"`
	TimeKeyFrom   *int       `json:"time_key_from,omitempty"`
	TimeKeyTo     *int       `json:"time_key_to,omitempty"`
	HasActual     *bool      `json:"has_actual,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
