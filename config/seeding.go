package config

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"p9e.in/flytta/models"
)

// SeedDefaults creates the Settings singleton and a bootstrap admin account.
// Safe to run on every start; existing rows are left alone.
func SeedDefaults(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Settings{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		s := models.DefaultSettings()
		if err := db.Create(&s).Error; err != nil {
			return err
		}
		log.Println("Seeded default settings")
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:         "Administrator",
		Email:        adminEmail,
		Phone:        os.Getenv("ADMIN_PHONE"),
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("Seeded bootstrap admin %s", adminEmail)
	return nil
}
