package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// NotificationType describes the marketplace event a notification reports.
type NotificationType string

const (
	NotificationTypeBidApproved      NotificationType = "bid_approved"
	NotificationTypeBidRejected      NotificationType = "bid_rejected"
	NotificationTypeQuotationAwarded NotificationType = "quotation_awarded"
	NotificationTypeHighValueReview  NotificationType = "high_value_review"
	NotificationTypeOrderStatus      NotificationType = "order_status"
	NotificationTypeAuctionDisabled  NotificationType = "auction_disabled"
)

// Notification is one in-app message for one recipient. Created best-effort
// after a settlement commits; failures are logged, never propagated.
type Notification struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"recipientId"`
	RecipientType string           `gorm:"size:20;not null" json:"recipientType"`
	Type          NotificationType `gorm:"size:40;not null;index" json:"type"`
	Title         string           `gorm:"size:200;not null" json:"title"`
	Message       string           `gorm:"size:1000;not null" json:"message"`
	ReferenceID   *uuid.UUID       `gorm:"type:uuid;index" json:"referenceId,omitempty"`
	ReferenceType *string          `gorm:"size:40" json:"referenceType,omitempty"`
	Channels      pq.StringArray   `gorm:"type:text[]" json:"channels"`
	ReadAt        *time.Time       `json:"readAt,omitempty"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}

// MarkAsRead stamps the read time once.
func (n *Notification) MarkAsRead() {
	if n.ReadAt == nil {
		now := time.Now()
		n.ReadAt = &now
	}
}
