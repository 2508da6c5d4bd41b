package database

import (
	"fmt"

	"anoa.com/confessionwall/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the postgres database and migrates the schema.
// TranslateError is required: the reaction toggle relies on duplicate-key
// violations surfacing as gorm.ErrDuplicatedKey.
func Connect(databaseURL string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&model.Confession{}, &model.Reaction{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}
