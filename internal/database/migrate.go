package database

import (
	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/models"
)

// Migrate creates or updates the schema for every persisted entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.Enrollment{},
		&models.Attempt{},
		&models.Answer{},
		&models.ActivityLog{},
	)
}
