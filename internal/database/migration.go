package database

import (
	"fmt"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserBalance{},
		&models.Category{},
		&models.GoalCategory{},
		&models.Transaction{},
		&models.Goal{},
		&models.Session{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
