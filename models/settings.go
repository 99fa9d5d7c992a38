package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Settings is the singleton configuration row. It is re-read at the start of
// every settlement and every auction cycle, so admin changes take effect on
// the next cycle without a restart. Only the interval fields additionally
// require the scheduler to be re-armed.
type Settings struct {
	ID uint `gorm:"primaryKey" json:"id"`

	MovingCommissionPct     decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"movingCommissionPct"`
	AdditionalCommissionPct decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"additionalCommissionPct"`
	TruckCommissionPct      decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"truckCommissionPct"`

	AuctionEnabled            bool `gorm:"not null;default:true" json:"auctionEnabled"`
	AuctionIntervalMinutes    int  `gorm:"not null;default:15" json:"auctionIntervalMinutes"`
	AuctionAutoDisableMinutes int  `gorm:"not null;default:1440" json:"auctionAutoDisableMinutes"`

	HighValueThreshold          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:50000" json:"highValueThreshold"`
	HighValueReviewDelayMinutes int             `gorm:"not null;default:60" json:"highValueReviewDelayMinutes"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// settingsRowID pins the singleton to one row.
const settingsRowID = 1

// LoadSettings reads the singleton row. Callers never cache the result across
// cycles.
func LoadSettings(db *gorm.DB) (*Settings, error) {
	var s Settings
	if err := db.First(&s, settingsRowID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// DefaultSettings returns the seed values for a fresh installation.
func DefaultSettings() Settings {
	return Settings{
		ID:                          settingsRowID,
		MovingCommissionPct:         decimal.NewFromInt(10),
		AdditionalCommissionPct:     decimal.NewFromInt(10),
		TruckCommissionPct:          decimal.NewFromInt(5),
		AuctionEnabled:              true,
		AuctionIntervalMinutes:      15,
		AuctionAutoDisableMinutes:   1440,
		HighValueThreshold:          decimal.NewFromInt(50000),
		HighValueReviewDelayMinutes: 60,
	}
}
