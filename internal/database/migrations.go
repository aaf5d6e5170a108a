package database

import (
	"botlynx/internal/database/models"

	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.StoredReport{},
		&models.BotSummary{},
	)
}
