package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HighValueBid marks a quotation whose winning bid total exceeded the
// configured threshold during a scheduled auction cycle. The scheduler holds
// off settling the quotation until the review delay has elapsed since the
// marker was written, giving admins a window to intervene. One marker per
// quotation; repeated cycles reuse it.
type HighValueBid struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BidID         uuid.UUID       `gorm:"type:uuid;not null" json:"bidId"`
	QuotationType QuotationType   `gorm:"size:40;not null;uniqueIndex:idx_high_value_quotation,priority:1" json:"quotationType"`
	QuotationID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_high_value_quotation,priority:2" json:"quotationId"`
	BidTotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"bidTotal"`
	Threshold     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"threshold"`
	ReviewedAt    *time.Time      `json:"reviewedAt,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

func (h *HighValueBid) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return
}
