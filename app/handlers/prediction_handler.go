// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/pricecast/pricecast/app/dto"
	businessflow "github.com/pricecast/pricecast/business_flow"
	"github.com/pricecast/pricecast/mlmodel"
	"github.com/rs/zerolog/log"
)

// PredictionHandlerInterface defines the contract for prediction handlers
type PredictionHandlerInterface interface {
	Forecast(c fiber.Ctx) error
	ActualPrices(c fiber.Ctx) error
	ListPredictions(c fiber.Ctx) error
	ExportPredictions(c fiber.Ctx) error
	Health(c fiber.Ctx) error
}

// PredictionHandler handles price-prediction HTTP requests
type PredictionHandler struct {
	predictionFlow businessflow.PredictionFlow
	registry       *mlmodel.Registry
	validator      *validator.Validate
}

func (h *PredictionHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PredictionHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(predictionFlow businessflow.PredictionFlow, registry *mlmodel.Registry) *PredictionHandler {
	return &PredictionHandler{
		predictionFlow: predictionFlow,
		registry:       registry,
		validator:      validator.New(),
	}
}

// Forecast handles price forecast requests
// @Summary Forecast competitor prices
// @Description Predict competitor prices for a SKU on a given day and store the predictions
// @Tags Predictions
// @Accept json
// @Produce json
// @Param request body dto.ForecastRequest true "Forecast request data"
// @Success 200 {object} dto.APIResponse{data=dto.ForecastResponse} "Forecast stored successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request body"
// @Failure 404 {object} dto.APIResponse "SKU not found"
// @Failure 422 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/forecast-prices [post]
func (h *PredictionHandler) Forecast(c fiber.Ctx) error {
	var req dto.ForecastRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	// Get client information
	ipAddress := c.IP()
	userAgent := c.Get("User-Agent")
	metadata := businessflow.NewClientMetadata(ipAddress, userAgent)
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	// Call business logic with proper context
	result, err := h.predictionFlow.ForecastPrices(h.createRequestContext(c, "/api/v1/forecast-prices"), &req, metadata)
	if err != nil {
		// Handle specific business errors
		if businessflow.IsInvalidTimeKey(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "time_key is not a valid YYYYMMDD date", "INVALID_TIME_KEY", err.Error())
		}
		if businessflow.IsUnknownCompetitor(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Competitor is not configured", "UNKNOWN_COMPETITOR", err.Error())
		}
		if businessflow.IsSKUNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "SKU not found", "SKU_NOT_FOUND", fiber.Map{"sku": req.SKU})
		}
		if businessflow.IsModelNotFound(err) {
			// A caller naming one competitor can fix the request; in
			// all-competitors mode a missing model is a server-side gap.
			if req.Competitor != nil {
				return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "No model is loaded for this competitor", "MODEL_NOT_AVAILABLE", err.Error())
			}
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "No model is loaded for a configured competitor", "MODEL_NOT_AVAILABLE", nil)
		}
		if businessflow.IsSchemaMismatch(err) {
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Feature schema does not match the loaded model", "SCHEMA_MISMATCH", nil)
		}

		log.Error().Err(err).Str("sku", req.SKU).Int("time_key", req.TimeKey).Msg("forecast failed")
		// Handle generic business errors
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Forecast failed", "FORECAST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Forecast stored successfully", result)
}

// ActualPrices handles observed competitor price submissions
// @Summary Record actual prices
// @Description Attach observed competitor prices to previously stored predictions
// @Tags Predictions
// @Accept json
// @Produce json
// @Param request body dto.ActualPricesRequest true "Observed prices data"
// @Success 200 {object} dto.APIResponse{data=dto.ActualPricesResponse} "Actual prices recorded successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request body"
// @Failure 422 {object} dto.APIResponse "Validation error or no matching prediction"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/actual-prices [post]
func (h *PredictionHandler) ActualPrices(c fiber.Ctx) error {
	var req dto.ActualPricesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	// Get client information
	ipAddress := c.IP()
	userAgent := c.Get("User-Agent")
	metadata := businessflow.NewClientMetadata(ipAddress, userAgent)
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	// Call business logic with proper context
	result, err := h.predictionFlow.UpdateActualPrices(h.createRequestContext(c, "/api/v1/actual-prices"), &req, metadata)
	if err != nil {
		// Handle specific business errors
		if businessflow.IsPredictionNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "No stored prediction matches the reported price", "PREDICTION_NOT_FOUND", err.Error())
		}

		log.Error().Err(err).Str("sku", req.SKU).Int("time_key", req.TimeKey).Msg("recording actual prices failed")
		// Handle generic business errors
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Recording actual prices failed", "ACTUAL_PRICES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Actual prices recorded successfully", result)
}

// ListPredictions handles stored prediction listing requests
// @Summary List stored predictions
// @Description List stored predictions newest first, with optional SKU, competitor and time key filters
// @Tags Predictions
// @Produce json
// @Param sku query string false "Filter by SKU"
// @Param competitor query string false "Filter by competitor"
// @Param from query int false "Lower time key bound (YYYYMMDD, inclusive)"
// @Param to query int false "Upper time key bound (YYYYMMDD, inclusive)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 50, max 500)"
// @Success 200 {object} dto.APIResponse{data=dto.ListPredictionsResponse} "Predictions retrieved successfully"
// @Failure 422 {object} dto.APIResponse "Invalid listing parameters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/predictions [get]
func (h *PredictionHandler) ListPredictions(c fiber.Ctx) error {
	var req dto.ListPredictionsRequest

	// Parse optional filters from query parameters
	if sku := c.Query("sku"); sku != "" {
		req.SKU = &sku
	}
	if competitor := c.Query("competitor"); competitor != "" {
		req.Competitor = &competitor
	}
	if fromStr := c.Query("from"); fromStr != "" {
		if parsed, err := strconv.Atoi(fromStr); err == nil {
			req.From = &parsed
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		if parsed, err := strconv.Atoi(toStr); err == nil {
			req.To = &parsed
		}
	}
	if pageStr := c.Query("page"); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil {
			req.Page = parsed
		}
	}
	if pageSizeStr := c.Query("page_size"); pageSizeStr != "" {
		if parsed, err := strconv.Atoi(pageSizeStr); err == nil {
			req.PageSize = parsed
		}
	}

	// Get client information
	ipAddress := c.IP()
	userAgent := c.Get("User-Agent")
	metadata := businessflow.NewClientMetadata(ipAddress, userAgent)
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	// Call business logic with proper context
	result, err := h.predictionFlow.ListPredictions(h.createRequestContext(c, "/api/v1/predictions"), &req, metadata)
	if err != nil {
		// Handle specific business errors
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) || businessflow.IsTimeKeyRangeInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Invalid listing parameters", "LIST_VALIDATION_FAILED", err.Error())
		}

		log.Error().Err(err).Msg("listing predictions failed")
		// Handle generic business errors
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Listing predictions failed", "LIST_PREDICTIONS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"items":      result.Items,
		"pagination": result.Pagination,
	})
}

// ExportPredictions handles prediction export requests
// @Summary Export stored predictions
// @Description Export stored predictions as an Excel workbook, with optional SKU, competitor and time key filters
// @Tags Predictions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param sku query string false "Filter by SKU"
// @Param competitor query string false "Filter by competitor"
// @Param from query int false "Lower time key bound (YYYYMMDD, inclusive)"
// @Param to query int false "Upper time key bound (YYYYMMDD, inclusive)"
// @Success 200 {string} string "Excel file"
// @Failure 422 {object} dto.APIResponse "Invalid export parameters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/predictions/export [get]
func (h *PredictionHandler) ExportPredictions(c fiber.Ctx) error {
	var req dto.ExportPredictionsRequest

	// Parse optional filters from query parameters
	if sku := c.Query("sku"); sku != "" {
		req.SKU = &sku
	}
	if competitor := c.Query("competitor"); competitor != "" {
		req.Competitor = &competitor
	}
	if fromStr := c.Query("from"); fromStr != "" {
		if parsed, err := strconv.Atoi(fromStr); err == nil {
			req.From = &parsed
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		if parsed, err := strconv.Atoi(toStr); err == nil {
			req.To = &parsed
		}
	}

	// Get client information
	ipAddress := c.IP()
	userAgent := c.Get("User-Agent")
	metadata := businessflow.NewClientMetadata(ipAddress, userAgent)
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	// Exports scan whole time key ranges, so allow more than the default timeout
	filename, data, err := h.predictionFlow.ExportPredictions(h.createRequestContextWithTimeout(c, "/api/v1/predictions/export", 60*time.Second), &req, metadata)
	if err != nil {
		// Handle specific business errors
		if businessflow.IsTimeKeyRangeInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Invalid export parameters", "LIST_VALIDATION_FAILED", err.Error())
		}

		log.Error().Err(err).Msg("exporting predictions failed")
		// Handle generic business errors
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate Excel", "EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// Health handles health check requests
// @Summary Health Check
// @Description Check the health status of the API and report the model registry state
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse "Service is healthy"
// @Router /api/v1/health [get]
func (h *PredictionHandler) Health(c fiber.Ctx) error {
	return h.SuccessResponse(c, fiber.StatusOK, "Prediction service is healthy", fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
		"service":   "pricecast-api",
		"models":    h.modelSummary(),
	})
}

func (h *PredictionHandler) modelSummary() dto.HealthModelSummary {
	summary := dto.HealthModelSummary{Loaded: h.registry.Competitors()}
	if failures := h.registry.Failures(); len(failures) > 0 {
		summary.Failures = make(map[string]string, len(failures))
		for _, failure := range failures {
			summary.Failures[failure.Competitor] = failure.Err.Error()
		}
	}
	return summary
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *PredictionHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *PredictionHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	// Create context with custom timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	// Add request-scoped values for observability
	ctx = context.WithValue(ctx, "request_id", c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "timeout", timeout)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}
