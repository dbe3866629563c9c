// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/pricecast/pricecast/app/dto"
	"github.com/pricecast/pricecast/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for request tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToPredictionDTO converts a stored prediction record to its API representation
func ToPredictionDTO(record models.PredictionPrice) dto.PredictionDTO {
	out := dto.PredictionDTO{
		ID:             record.ID,
		UUID:           record.UUID.String(),
		SKU:            record.SKU,
		TimeKey:        record.TimeKey,
		Competitor:     record.Competitor,
		PredictedPrice: dto.JSONFloat(record.PredictedPrice),
		CreatedAt:      record.CreatedAt.Format(time.RFC3339),
	}
	if record.ActualPrice != nil {
		actual := dto.JSONFloat(*record.ActualPrice)
		out.ActualPrice = &actual
	}
	if record.UpdatedAt != nil {
		updated := record.UpdatedAt.Format(time.RFC3339)
		out.UpdatedAt = &updated
	}

	return out
}
