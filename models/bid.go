package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Bid statuses. Settlement moves exactly one pending bid per quotation to
// approved and the rest to rejected. Suppliers may withdraw their own
// pending bids before settlement.
const (
	BidStatusPending   = "pending"
	BidStatusApproved  = "approved"
	BidStatusRejected  = "rejected"
	BidStatusWithdrawn = "withdrawn"
)

// Bid is a supplier's priced offer against one quotation. One bid per
// (supplier, quotation) pair, enforced by a unique index.
type Bid struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_bids_supplier_quotation,priority:1" json:"supplierId"`
	Supplier   *User     `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`

	QuotationType QuotationType `gorm:"size:40;not null;index:idx_bids_quotation,priority:1;uniqueIndex:idx_bids_supplier_quotation,priority:2" json:"quotationType"`
	QuotationID   uuid.UUID     `gorm:"type:uuid;not null;index:idx_bids_quotation,priority:2;uniqueIndex:idx_bids_supplier_quotation,priority:3" json:"quotationId"`

	MovingCost         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"movingCost"`
	TruckCost          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"truckCost"`
	AdditionalServices decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"additionalServices"`
	ServicesDetail     datatypes.JSON  `gorm:"type:jsonb" json:"servicesDetail,omitempty"`
	Note               *string         `gorm:"size:500" json:"note,omitempty"`

	Status string `gorm:"size:20;not null;default:pending;index" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (b *Bid) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

// Total is the figure bids compete on: moving + truck + additional services,
// before any commission.
func (b *Bid) Total() decimal.Decimal {
	return b.MovingCost.Add(b.TruckCost).Add(b.AdditionalServices)
}

// PendingBids loads every pending bid for one quotation, oldest first.
func PendingBids(db *gorm.DB, qt QuotationType, quotationID uuid.UUID) ([]Bid, error) {
	var bids []Bid
	err := db.Where("quotation_type = ? AND quotation_id = ? AND status = ?", qt, quotationID, BidStatusPending).
		Order("created_at ASC").
		Find(&bids).Error
	return bids, err
}
