package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/selera-app/backend/internal/models"
)

// Migrate brings the schema up to date. On postgres the pgvector extension
// is created first so the embedding column type exists.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("failed to create vector extension: %w", err)
		}
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserRecipe{},
		&models.Interaction{},
		&models.Comment{},
		&models.ChatMessage{},
		&models.SearchHistory{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	return nil
}
