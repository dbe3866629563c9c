// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/pricecast/pricecast/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// PredictionPriceRepository defines operations for stored price predictions
type PredictionPriceRepository interface {
	Repository[models.PredictionPrice, models.PredictionPriceFilter]
	BySKUTimeKeyCompetitor(ctx context.Context, sku string, timeKey int, competitor string) (*models.PredictionPrice, error)
	ListRecent(ctx context.Context, limit, offset int) ([]*models.PredictionPrice, error)
	SaveSkippingDuplicates(ctx context.Context, records []*models.PredictionPrice) error
	UpdateActualPrice(ctx context.Context, id uint, actualPrice float64) error
}
