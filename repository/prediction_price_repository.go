package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pricecast/pricecast/models"
	"github.com/pricecast/pricecast/utils"
)

// PredictionPriceRepositoryImpl implements the PredictionPriceRepository interface
type PredictionPriceRepositoryImpl struct {
	*BaseRepository[models.PredictionPrice, models.PredictionPriceFilter]
}

// NewPredictionPriceRepository creates a new prediction price repository
func NewPredictionPriceRepository(db *gorm.DB) PredictionPriceRepository {
	return &PredictionPriceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PredictionPrice, models.PredictionPriceFilter](db),
	}
}

// BySKUTimeKeyCompetitor retrieves the single prediction stored under the
// unique (sku, time_key, competitor) key, or nil when absent
func (r *PredictionPriceRepositoryImpl) BySKUTimeKeyCompetitor(ctx context.Context, sku string, timeKey int, competitor string) (*models.PredictionPrice, error) {
	filter := models.PredictionPriceFilter{
		SKU:        &sku,
		TimeKey:    &timeKey,
		Competitor: &competitor,
	}
	records, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, nil
	}

	return records[0], nil
}

// ListRecent retrieves stored predictions, newest first, with pagination
func (r *PredictionPriceRepositoryImpl) ListRecent(ctx context.Context, limit, offset int) ([]*models.PredictionPrice, error) {
	return r.ByFilter(ctx, models.PredictionPriceFilter{}, "created_at DESC", limit, offset)
}

// SaveSkippingDuplicates stores the records, leaving rows already stored
// under the same (sku, time_key, competitor) untouched
func (r *PredictionPriceRepositoryImpl) SaveSkippingDuplicates(ctx context.Context, records []*models.PredictionPrice) error {
	if len(records) == 0 {
		return nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}, {Name: "time_key"}, {Name: "competitor"}},
		DoNothing: true,
	}).Create(&records).Error

	return err
}

// UpdateActualPrice records the observed price on an existing prediction
func (r *PredictionPriceRepositoryImpl) UpdateActualPrice(ctx context.Context, id uint, actualPrice float64) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	now := utils.UTCNow()
	err = db.Model(&models.PredictionPrice{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"actual_price": actualPrice,
			"updated_at":   now,
		}).Error

	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves stored predictions based on filter criteria
func (r *PredictionPriceRepositoryImpl) ByFilter(ctx context.Context, filter models.PredictionPriceFilter, orderBy string, limit, offset int) ([]*models.PredictionPrice, error) {
	db := r.getDB(ctx)

	var records []*models.PredictionPrice
	query := r.applyFilter(db, filter)

	// Apply ordering
	if orderBy != "" {
		query = query.Order(orderBy)
	}

	// Apply pagination
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Count returns the number of stored predictions matching the filter
func (r *PredictionPriceRepositoryImpl) Count(ctx context.Context, filter models.PredictionPriceFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var record models.PredictionPrice
	query := r.applyFilter(db.Model(&record), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any stored prediction matching the filter exists
func (r *PredictionPriceRepositoryImpl) Exists(ctx context.Context, filter models.PredictionPriceFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *PredictionPriceRepositoryImpl) applyFilter(db *gorm.DB, filter models.PredictionPriceFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.SKU != nil {
		db = db.Where("sku = ?", *filter.SKU)
	}
	if filter.TimeKey != nil {
		db = db.Where("time_key = ?", *filter.TimeKey)
	}
	if filter.Competitor != nil {
		db = db.Where("competitor = ?", *filter.Competitor)
	}
	if filter.TimeKeyFrom != nil {
		db = db.Where("time_key >= ?", *filter.TimeKeyFrom)
	}
	if filter.TimeKeyTo != nil {
		db = db.Where("time_key <= ?", *filter.TimeKeyTo)
	}
	if filter.HasActual != nil {
		if *filter.HasActual {
			db = db.Where("actual_price IS NOT NULL")
		} else {
			db = db.Where("actual_price IS NULL")
		}
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
