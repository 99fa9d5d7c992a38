package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quotation lifecycle. A quotation is awarded exactly once, by the
// settlement engine.
const (
	QuotationStatusOpen    = "open"
	QuotationStatusAwarded = "awarded"
)

// QuotationType selects one of the seven service-specific quotation tables.
// Bids reference quotations through the (quotation_type, quotation_id) pair,
// so every lookup goes through this type instead of interpolating table names.
type QuotationType string

const (
	PrivateMove       QuotationType = "private_move"
	CompanyRelocation QuotationType = "company_relocation"
	InternationalMove QuotationType = "international_move"
	PianoTransport    QuotationType = "piano_transport"
	HeavyLifting      QuotationType = "heavy_lifting"
	MovingCleaning    QuotationType = "moving_cleaning"
	StorageMove       QuotationType = "storage_move"
)

var quotationTables = map[QuotationType]string{
	PrivateMove:       "private_move_quotations",
	CompanyRelocation: "company_relocation_quotations",
	InternationalMove: "international_move_quotations",
	PianoTransport:    "piano_transport_quotations",
	HeavyLifting:      "heavy_lifting_quotations",
	MovingCleaning:    "moving_cleaning_quotations",
	StorageMove:       "storage_move_quotations",
}

// ParseQuotationType validates a type string from a URL or payload.
func ParseQuotationType(s string) (QuotationType, error) {
	qt := QuotationType(s)
	if _, ok := quotationTables[qt]; !ok {
		return "", fmt.Errorf("unknown quotation type %q", s)
	}
	return qt, nil
}

// Table returns the backing table for this quotation type.
func (qt QuotationType) Table() string {
	return quotationTables[qt]
}

// RutEligible reports whether quotations of this type may carry the RUT tax
// deduction. RUT applies to services bought by private persons, so company
// relocations are excluded regardless of the submitted flag.
func (qt QuotationType) RutEligible() bool {
	return qt != CompanyRelocation
}

// AllQuotationTypes lists every service type, in stable order. The auction
// scheduler sweeps them all each cycle.
func AllQuotationTypes() []QuotationType {
	return []QuotationType{
		PrivateMove, CompanyRelocation, InternationalMove,
		PianoTransport, HeavyLifting, MovingCleaning, StorageMove,
	}
}

// QuotationBase holds the columns shared by all seven quotation tables.
type QuotationBase struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"customerId"`
	CustomerName    string         `gorm:"size:100;not null" json:"customerName"`
	CustomerEmail   string         `gorm:"size:100;not null" json:"customerEmail"`
	CustomerPhone   string         `gorm:"size:15;not null" json:"customerPhone"`
	PickupAddress   string         `gorm:"size:255;not null" json:"pickupAddress"`
	PickupLat       float64        `gorm:"not null" json:"pickupLat"`
	PickupLng       float64        `gorm:"not null" json:"pickupLng"`
	DeliveryAddress string         `gorm:"size:255;not null" json:"deliveryAddress"`
	DeliveryLat     float64        `gorm:"not null" json:"deliveryLat"`
	DeliveryLng     float64        `gorm:"not null" json:"deliveryLng"`
	DistanceKm      float64        `gorm:"not null;default:0" json:"distanceKm"`
	MoveDate        JSONTime       `gorm:"not null" json:"moveDate"`
	Details         datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
	RutDiscount     bool           `gorm:"not null;default:false" json:"rutDiscount"`
	ExtraInsurance  bool           `gorm:"not null;default:false" json:"extraInsurance"`
	Status          string         `gorm:"size:20;not null;default:open;index" json:"status"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *QuotationBase) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = QuotationStatusOpen
	}
	return
}

// Quotation is implemented by all seven typed quotation models.
type Quotation interface {
	Base() *QuotationBase
	Type() QuotationType
}

type PrivateMoveQuotation struct {
	QuotationBase
	ResidenceSqm int  `gorm:"not null;default:0" json:"residenceSqm"`
	RoomCount    int  `gorm:"not null;default:0" json:"roomCount"`
	HasElevator  bool `gorm:"not null;default:false" json:"hasElevator"`
}

func (PrivateMoveQuotation) TableName() string { return quotationTables[PrivateMove] }
func (q *PrivateMoveQuotation) Base() *QuotationBase { return &q.QuotationBase }
func (q *PrivateMoveQuotation) Type() QuotationType { return PrivateMove }

type CompanyRelocationQuotation struct {
	QuotationBase
	CompanyName string `gorm:"size:150;not null" json:"companyName"`
	OrgNumber   string `gorm:"size:20;not null" json:"orgNumber"`
	OfficeSqm   int    `gorm:"not null;default:0" json:"officeSqm"`
}

func (CompanyRelocationQuotation) TableName() string { return quotationTables[CompanyRelocation] }
func (q *CompanyRelocationQuotation) Base() *QuotationBase { return &q.QuotationBase }
func (q *CompanyRelocationQuotation) Type() QuotationType { return CompanyRelocation }

type InternationalMoveQuotation struct {
	QuotationBase
	DestinationCountry string  `gorm:"size:100;not null" json:"destinationCountry"`
	CustomsNotes       *string `gorm:"size:500" json:"customsNotes,omitempty"`
}

func (InternationalMoveQuotation) TableName() string { return quotationTables[InternationalMove] }
func (q *InternationalMoveQuotation) Base() *QuotationBase { return &q.QuotationBase }
func (q *InternationalMoveQuotation) Type() QuotationType { return InternationalMove }

type PianoTransportQuotation struct {
	QuotationBase
	PianoType    string `gorm:"size:50;not null" json:"pianoType"`
	StairFlights int    `gorm:"not null;default:0" json:"stairFlights"`
}

func (PianoTransportQuotation) TableName() string { return quotationTables[PianoTransport] }
func (q *PianoTransportQuotation) Base() *QuotationBase { return &q.QuotationBase }
func (q *PianoTransportQuotation) Type() QuotationType { return PianoTransport }

type HeavyLiftingQuotation struct {
	QuotationBase
	ItemDescription string  `gorm:"size:255;not null" json:"itemDescription"`
	WeightKg        float64 `gorm:"not null;default:0" json:"weightKg"`
}

func (HeavyLiftingQuotation) TableName() string { return quotationTables[HeavyLifting] }
func (q *HeavyLiftingQuotation) Base() *QuotationBase { return &q.QuotationBase }
func (q *HeavyLiftingQuotation) Type() QuotationType { return HeavyLifting }

type MovingCleaningQuotation struct {
	QuotationBase
	AreaSqm      int  `gorm:"not null;default:0" json:"areaSqm"`
	DeepCleaning bool `gorm:"not null;default:false" json:"deepCleaning"`
}

func (MovingCleaningQuotation) TableName() string { return quotationTables[MovingCleaning] }
func (q *MovingCleaningQuotation) Base() *QuotationBase { return &q.QuotationBase }
func (q *MovingCleaningQuotation) Type() QuotationType { return MovingCleaning }

type StorageMoveQuotation struct {
	QuotationBase
	StorageMonths int     `gorm:"not null;default:1" json:"storageMonths"`
	VolumeM3      float64 `gorm:"not null;default:0" json:"volumeM3"`
}

func (StorageMoveQuotation) TableName() string { return quotationTables[StorageMove] }
func (q *StorageMoveQuotation) Base() *QuotationBase { return &q.QuotationBase }
func (q *StorageMoveQuotation) Type() QuotationType { return StorageMove }

// NewQuotation returns an empty typed quotation for decoding request bodies.
func NewQuotation(qt QuotationType) Quotation {
	switch qt {
	case PrivateMove:
		return &PrivateMoveQuotation{}
	case CompanyRelocation:
		return &CompanyRelocationQuotation{}
	case InternationalMove:
		return &InternationalMoveQuotation{}
	case PianoTransport:
		return &PianoTransportQuotation{}
	case HeavyLifting:
		return &HeavyLiftingQuotation{}
	case MovingCleaning:
		return &MovingCleaningQuotation{}
	case StorageMove:
		return &StorageMoveQuotation{}
	}
	return nil
}

// NewQuotationSlice returns a pointer to an empty typed slice for Find calls.
func NewQuotationSlice(qt QuotationType) interface{} {
	switch qt {
	case PrivateMove:
		return &[]PrivateMoveQuotation{}
	case CompanyRelocation:
		return &[]CompanyRelocationQuotation{}
	case InternationalMove:
		return &[]InternationalMoveQuotation{}
	case PianoTransport:
		return &[]PianoTransportQuotation{}
	case HeavyLifting:
		return &[]HeavyLiftingQuotation{}
	case MovingCleaning:
		return &[]MovingCleaningQuotation{}
	case StorageMove:
		return &[]StorageMoveQuotation{}
	}
	return nil
}

// QuotationInfo is the type-independent projection the settlement engine and
// the supplier listing work with.
type QuotationInfo struct {
	ID              uuid.UUID     `json:"id"`
	Type            QuotationType `gorm:"-" json:"type"`
	CustomerID      uuid.UUID     `json:"customerId"`
	CustomerName    string        `json:"customerName"`
	CustomerEmail   string        `json:"customerEmail"`
	PickupAddress   string        `json:"pickupAddress"`
	DeliveryAddress string        `json:"deliveryAddress"`
	DistanceKm      float64       `json:"distanceKm"`
	MoveDate        time.Time     `json:"moveDate"`
	RutDiscount     bool          `json:"rutDiscount"`
	ExtraInsurance  bool          `json:"extraInsurance"`
	Status          string        `json:"status"`
}

// FindQuotationInfo loads the shared columns for one quotation.
func FindQuotationInfo(db *gorm.DB, qt QuotationType, id uuid.UUID) (*QuotationInfo, error) {
	var info QuotationInfo
	err := db.Table(qt.Table()).
		Select("id, customer_id, customer_name, customer_email, pickup_address, delivery_address, distance_km, move_date, rut_discount, extra_insurance, status").
		Where("id = ? AND deleted_at IS NULL", id).
		Take(&info).Error
	if err != nil {
		return nil, err
	}
	info.Type = qt
	return &info, nil
}

// OpenQuotationIDsWithPendingBids lists open quotations of one type that have
// at least one pending bid. This is the auction scheduler's work list.
func OpenQuotationIDsWithPendingBids(db *gorm.DB, qt QuotationType) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.Table(qt.Table()+" AS q").
		Select("q.id").
		Where("q.status = ? AND q.deleted_at IS NULL", QuotationStatusOpen).
		Where("EXISTS (SELECT 1 FROM bids b WHERE b.quotation_type = ? AND b.quotation_id = q.id AND b.status = ?)",
			qt, BidStatusPending).
		Order("q.created_at ASC").
		Scan(&ids).Error
	return ids, err
}
