package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/flytta/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "10012026_create_users",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{})
			},
		},
		{
			ID: "10012026_create_quotation_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&models.PrivateMoveQuotation{},
					&models.CompanyRelocationQuotation{},
					&models.InternationalMoveQuotation{},
					&models.PianoTransportQuotation{},
					&models.HeavyLiftingQuotation{},
					&models.MovingCleaningQuotation{},
					&models.StorageMoveQuotation{},
				)
			},
		},
		{
			ID: "12012026_create_bids_and_settlement_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Bid{}, &models.AcceptedBid{}, &models.HighValueBid{})
			},
		},
		{
			ID: "12012026_create_settings",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Settings{})
			},
		},
		{
			ID: "15012026_create_notifications",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Notification{})
			},
		},
		{
			ID: "03022026_add_driver_to_accepted_bids",
			Migrate: func(tx *gorm.DB) error {
				// Column exists on fresh installs via AutoMigrate; keep the
				// index for lookups by driver.
				if err := tx.Exec("ALTER TABLE accepted_bids ADD COLUMN IF NOT EXISTS driver_id uuid").Error; err != nil {
					return err
				}
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_accepted_bids_driver_id ON accepted_bids(driver_id)").Error
			},
		},
	})
	return m.Migrate()
}
