package config

import (
	"fmt"
	"time"

	"registration-backend/db/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// allModels defines all models that should be migrated.
// This is the only place you need to add new models
var allModels = []interface{}{
	&models.Registration{},
	&models.ImportRun{},
	&models.ImportSkippedRow{},
	&models.EmailLog{},
}

func ConfigureDatabase() (*gorm.DB, error) {
	host := GetEnv("DB_HOST")
	user := GetEnv("POSTGRES_USER")
	password := GetEnv("POSTGRES_PASSWORD")
	dbname := GetEnv("POSTGRES_DB")
	port := GetEnvDefault("DB_PORT", "5432")
	timezone := GetEnvDefault("DB_TIMEZONE", "UTC")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		host, user, password, dbname, port, timezone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}
	Logger.Info("Tables migrated successfully", zap.Int("models", len(allModels)))

	if err := CreateRegistrationContactIndexes(db); err != nil {
		return nil, fmt.Errorf("failed to create registration contact indexes: %w", err)
	}

	// Connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	Logger.Info("Database setup complete", zap.String("host", host), zap.String("database", dbname))
	return db, nil
}
