// Package businessflow contains the core business logic and use cases for price forecasting workflows
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/pricecast/pricecast/app/dto"
	"github.com/pricecast/pricecast/config"
	"github.com/pricecast/pricecast/features"
	"github.com/pricecast/pricecast/mlmodel"
	"github.com/pricecast/pricecast/models"
	"github.com/pricecast/pricecast/refdata"
	"github.com/pricecast/pricecast/repository"
	"github.com/pricecast/pricecast/utils"
)

// PredictionFlow handles the price forecasting business logic
type PredictionFlow interface {
	ForecastPrices(ctx context.Context, req *dto.ForecastRequest, metadata *ClientMetadata) (*dto.ForecastResponse, error)
	UpdateActualPrices(ctx context.Context, req *dto.ActualPricesRequest, metadata *ClientMetadata) (*dto.ActualPricesResponse, error)
	ListPredictions(ctx context.Context, req *dto.ListPredictionsRequest, metadata *ClientMetadata) (*dto.ListPredictionsResponse, error)
	ExportPredictions(ctx context.Context, req *dto.ExportPredictionsRequest, metadata *ClientMetadata) (string, []byte, error)
}

// PredictionFlowImpl implements the price forecasting business flow
type PredictionFlowImpl struct {
	predictionRepo repository.PredictionPriceRepository
	tables         *refdata.Tables
	registry       *mlmodel.Registry
	competitors    []string
	cacheConfig    *config.CacheConfig
	rc             *redis.Client
	db             *gorm.DB
}

// NewPredictionFlow creates a new prediction flow instance
func NewPredictionFlow(
	predictionRepo repository.PredictionPriceRepository,
	tables *refdata.Tables,
	registry *mlmodel.Registry,
	competitors []string,
	db *gorm.DB,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) PredictionFlow {
	return &PredictionFlowImpl{
		predictionRepo: predictionRepo,
		tables:         tables,
		registry:       registry,
		competitors:    competitors,
		cacheConfig:    cacheConfig,
		rc:             rc,
		db:             db,
	}
}

// ForecastPrices computes and stores a price estimate per target competitor.
// With a competitor in the request only that one is targeted, otherwise every
// configured competitor is. Estimates already stored under the same
// (sku, time_key, competitor) stay untouched; the fresh estimate is still
// returned to the caller.
func (s *PredictionFlowImpl) ForecastPrices(ctx context.Context, req *dto.ForecastRequest, metadata *ClientMetadata) (*dto.ForecastResponse, error) {
	date, err := features.TimeKeyDate(req.TimeKey)
	if err != nil {
		return nil, NewBusinessError("INVALID_TIME_KEY", "time_key is not a valid YYYYMMDD date", fmt.Errorf("%w: %d", ErrInvalidTimeKey, req.TimeKey))
	}

	targets := s.competitors
	if req.Competitor != nil {
		if !slices.Contains(s.competitors, *req.Competitor) {
			return nil, NewBusinessError("UNKNOWN_COMPETITOR", "Competitor is not configured", fmt.Errorf("%w: %q", ErrUnknownCompetitor, *req.Competitor))
		}
		targets = []string{*req.Competitor}
	}

	estimates := make([]dto.CompetitorPrice, 0, len(targets))
	for _, competitor := range targets {
		price, err := s.forecastOne(req.SKU, date, competitor)
		if err != nil {
			forecastsTotal.WithLabelValues(competitor, outcomeFailed).Inc()
			return nil, err
		}
		forecastsTotal.WithLabelValues(competitor, outcomeOK).Inc()
		estimates = append(estimates, dto.CompetitorPrice{Competitor: competitor, PredictedPrice: price})
	}

	// Use transaction for atomicity
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		records := make([]*models.PredictionPrice, 0, len(estimates))
		for _, e := range estimates {
			records = append(records, &models.PredictionPrice{
				SKU:            req.SKU,
				TimeKey:        req.TimeKey,
				Competitor:     e.Competitor,
				PredictedPrice: e.PredictedPrice,
			})
		}
		return s.predictionRepo.SaveSkippingDuplicates(txCtx, records)
	})
	if err != nil {
		return nil, NewBusinessError("PREDICTION_PERSIST_FAILED", "Failed to store predictions", err)
	}

	s.invalidateRecentCache(ctx)

	log.Info().
		Str("sku", req.SKU).
		Int("time_key", req.TimeKey).
		Int("competitors", len(estimates)).
		Str("request_id", requestID(metadata)).
		Msg("forecast stored")

	return &dto.ForecastResponse{
		SKU:     req.SKU,
		TimeKey: req.TimeKey,
		Prices:  estimates,
	}, nil
}

// forecastOne resolves the model, builds the feature row, and predicts
func (s *PredictionFlowImpl) forecastOne(sku string, date time.Time, competitor string) (float64, error) {
	start := time.Now()
	defer func() {
		forecastDuration.WithLabelValues(competitor).Observe(time.Since(start).Seconds())
	}()

	model, err := s.registry.Model(competitor)
	if err != nil {
		return 0, NewBusinessError("MODEL_NOT_AVAILABLE", "No model loaded for competitor", err)
	}

	row, err := features.Build(sku, date, competitor, s.tables, model.Features())
	if err != nil {
		return 0, NewBusinessError("FEATURE_BUILD_FAILED", "Failed to build feature row", err)
	}

	price, err := model.Predict(row)
	if err != nil {
		return 0, NewBusinessError("PREDICTION_FAILED", "Model prediction failed", err)
	}

	return price, nil
}

// UpdateActualPrices records observed prices against previously stored
// predictions. Every referenced prediction must exist; the response echoes
// the stored estimate next to the recorded observation.
func (s *PredictionFlowImpl) UpdateActualPrices(ctx context.Context, req *dto.ActualPricesRequest, metadata *ClientMetadata) (*dto.ActualPricesResponse, error) {
	competitors := make([]string, 0, len(req.ActualPrices))
	for competitor := range req.ActualPrices {
		competitors = append(competitors, competitor)
	}
	slices.Sort(competitors)

	prices := make([]dto.CompetitorPrice, 0, len(competitors))

	// Use transaction for atomicity
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		for _, competitor := range competitors {
			actual := req.ActualPrices[competitor]

			record, err := s.predictionRepo.BySKUTimeKeyCompetitor(txCtx, req.SKU, req.TimeKey, competitor)
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("%w: sku %q time_key %d competitor %q", ErrPredictionNotFound, req.SKU, req.TimeKey, competitor)
			}

			if err := s.predictionRepo.UpdateActualPrice(txCtx, record.ID, actual); err != nil {
				return err
			}

			prices = append(prices, dto.CompetitorPrice{
				Competitor:     competitor,
				PredictedPrice: record.PredictedPrice,
				ActualPrice:    utils.ToPtr(actual),
			})
		}
		return nil
	})
	if err != nil {
		if IsPredictionNotFound(err) {
			return nil, NewBusinessError("PREDICTION_NOT_FOUND", "No stored prediction to attach the actual price to", err)
		}
		return nil, NewBusinessError("ACTUAL_PRICES_UPDATE_FAILED", "Failed to record actual prices", err)
	}

	actualPricesTotal.Add(float64(len(prices)))
	s.invalidateRecentCache(ctx)

	log.Info().
		Str("sku", req.SKU).
		Int("time_key", req.TimeKey).
		Int("competitors", len(prices)).
		Str("request_id", requestID(metadata)).
		Msg("actual prices recorded")

	return &dto.ActualPricesResponse{
		SKU:     req.SKU,
		TimeKey: req.TimeKey,
		Prices:  prices,
	}, nil
}

// ListPredictions returns stored predictions, newest first, with optional
// filters and pagination. The unfiltered first page is served through the
// cache when available.
func (s *PredictionFlowImpl) ListPredictions(ctx context.Context, req *dto.ListPredictionsRequest, metadata *ClientMetadata) (*dto.ListPredictionsResponse, error) {
	page := req.Page
	if page == 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = utils.DefaultPageSize
	}

	if err := validateListing(page, pageSize, req.From, req.To); err != nil {
		return nil, NewBusinessError("LIST_VALIDATION_FAILED", "Listing validation failed", err)
	}

	cacheable := s.cacheReady() &&
		req.SKU == nil && req.Competitor == nil && req.From == nil && req.To == nil &&
		page == 1 && pageSize == utils.DefaultPageSize

	cacheKey := ""
	if cacheable {
		cacheKey = redisKey(*s.cacheConfig, utils.RecentPredictionsCacheKey)
		if bs, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var out dto.ListPredictionsResponse
			if err := json.Unmarshal(bs, &out); err == nil {
				out.Message = "Predictions retrieved from cache"
				return &out, nil
			}
		}
	}

	filter := models.PredictionPriceFilter{
		SKU:         req.SKU,
		Competitor:  req.Competitor,
		TimeKeyFrom: req.From,
		TimeKeyTo:   req.To,
	}

	total, err := s.predictionRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("PREDICTION_COUNT_FAILED", "Failed to count predictions", err)
	}

	records, err := s.predictionRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("PREDICTION_LIST_FAILED", "Failed to list predictions", err)
	}

	items := make([]dto.PredictionDTO, 0, len(records))
	for _, record := range records {
		items = append(items, ToPredictionDTO(*record))
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	resp := &dto.ListPredictionsResponse{
		Message: "Predictions retrieved successfully",
		Items:   items,
		Pagination: dto.PaginationInfo{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}

	if cacheable {
		if bs, err := json.Marshal(resp); err == nil {
			_ = s.rc.Set(ctx, cacheKey, bs, utils.RecentPredictionsCacheTTL).Err()
		}
	}

	return resp, nil
}

// ExportPredictions returns the filtered prediction records as an Excel
// workbook, one row per record
func (s *PredictionFlowImpl) ExportPredictions(ctx context.Context, req *dto.ExportPredictionsRequest, metadata *ClientMetadata) (string, []byte, error) {
	if req.From != nil && req.To != nil && *req.From > *req.To {
		return "", nil, NewBusinessError("LIST_VALIDATION_FAILED", "Listing validation failed", ErrTimeKeyRangeInvalid)
	}

	filter := models.PredictionPriceFilter{
		SKU:         req.SKU,
		Competitor:  req.Competitor,
		TimeKeyFrom: req.From,
		TimeKeyTo:   req.To,
	}

	records, err := s.predictionRepo.ByFilter(ctx, filter, "created_at DESC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("PREDICTION_LIST_FAILED", "Failed to list predictions", err)
	}

	// Create workbook
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "predictions"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"id", "uuid", "sku", "time_key", "competitor", "predicted_price", "actual_price", "created_at", "updated_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, r := range records {
		actual := ""
		if r.ActualPrice != nil {
			actual = strconv.FormatFloat(*r.ActualPrice, 'f', -1, 64)
		}
		updated := ""
		if r.UpdatedAt != nil {
			updated = r.UpdatedAt.Format(time.RFC3339)
		}
		record := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.UUID.String(),
			r.SKU,
			strconv.Itoa(r.TimeKey),
			r.Competitor,
			strconv.FormatFloat(r.PredictedPrice, 'f', -1, 64),
			actual,
			r.CreatedAt.Format(time.RFC3339),
			updated,
		}
		cell := fmt.Sprintf("A%d", ri+2)
		_ = xl.SetSheetRow(sheet, cell, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := fmt.Sprintf("predictions_%s.xlsx", utils.UTCNow().Format("20060102_150405"))
	return filename, buf.Bytes(), nil
}

// validateListing checks pagination and time-key range bounds
func validateListing(page, pageSize int, from, to *int) error {
	if page < 1 {
		return ErrInvalidPage
	}
	if pageSize < 1 || pageSize > utils.MaxPageSize {
		return ErrInvalidPageSize
	}
	if from != nil && to != nil && *from > *to {
		return ErrTimeKeyRangeInvalid
	}
	return nil
}

// cacheReady reports whether the optional listing cache can be used
func (s *PredictionFlowImpl) cacheReady() bool {
	return s.rc != nil && s.cacheConfig != nil && s.cacheConfig.Enabled
}

// invalidateRecentCache drops the cached listing page after any write
func (s *PredictionFlowImpl) invalidateRecentCache(ctx context.Context) {
	if !s.cacheReady() {
		return
	}
	_ = s.rc.Del(ctx, redisKey(*s.cacheConfig, utils.RecentPredictionsCacheKey)).Err()
}

// redisKey namespaces a cache key with the configured redis prefix
func redisKey(cfg config.CacheConfig, key string) string {
	if cfg.RedisPrefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", cfg.RedisPrefix, key)
}

// requestID extracts the request id from client metadata for log fields
func requestID(metadata *ClientMetadata) string {
	if metadata == nil {
		return ""
	}
	return metadata.RequestID
}
