package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment lifecycle on a settled order. The settlement engine creates the row
// in awaiting_initial_payment; the payment workflow moves it forward.
const (
	PaymentStatusAwaitingInitial = "awaiting_initial_payment"
	PaymentStatusInitialPaid     = "initial_paid"
	PaymentStatusPaid            = "paid"
)

// Order fulfillment states, driven by the assigned driver.
const (
	OrderStatusAccepted  = "accepted"
	OrderStatusInTransit = "in_transit"
	OrderStatusDelivered = "delivered"
	OrderStatusCompleted = "completed"
)

// AcceptedBid is the settlement output: one row per awarded quotation,
// created inside the settlement transaction and never deleted.
type AcceptedBid struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BidID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"bidId"`
	Bid        *Bid      `gorm:"foreignKey:BidID" json:"bid,omitempty"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index" json:"supplierId"`

	QuotationType QuotationType `gorm:"size:40;not null;uniqueIndex:idx_accepted_quotation,priority:1" json:"quotationType"`
	QuotationID   uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_accepted_quotation,priority:2" json:"quotationId"`
	CustomerID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"customerId"`

	// Commission-adjusted pricing, snapshotted at settlement time.
	MovingWithCommission     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"movingWithCommission"`
	AdditionalWithCommission decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"additionalWithCommission"`
	TruckWithCommission      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"truckWithCommission"`
	RutDeduction             decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"rutDeduction"`
	InsuranceFee             decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"insuranceFee"`
	FinalPrice               decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"finalPrice"`
	InitialPayment           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"initialPayment"`
	RemainingPayment         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"remainingPayment"`

	PaymentStatus string     `gorm:"size:40;not null;default:awaiting_initial_payment" json:"paymentStatus"`
	OrderStatus   string     `gorm:"size:20;not null;default:accepted;index" json:"orderStatus"`
	DriverID      *uuid.UUID `gorm:"type:uuid;index" json:"driverId,omitempty"`
	InvoicePath   *string    `gorm:"size:255" json:"invoicePath,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ab *AcceptedBid) BeforeCreate(tx *gorm.DB) (err error) {
	if ab.ID == uuid.Nil {
		ab.ID = uuid.New()
	}
	return
}

// OrderStatusTransitions lists the allowed fulfillment moves for drivers.
var OrderStatusTransitions = map[string][]string{
	OrderStatusAccepted:  {OrderStatusInTransit},
	OrderStatusInTransit: {OrderStatusDelivered},
	OrderStatusDelivered: {OrderStatusCompleted},
	OrderStatusCompleted: {},
}

// ValidOrderTransition reports whether an order may move from -> to.
func ValidOrderTransition(from, to string) bool {
	for _, next := range OrderStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
