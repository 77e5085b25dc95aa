package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"coanime/internal/ingestion/jikan"
	"coanime/internal/microservices/http-api/models"
)

// OpenGorm connects to Postgres and verifies the connection.
func OpenGorm(ctx context.Context, databaseURL string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		// close the db handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if logger != nil {
		logger.Info("Connected to the database successfully")
	}
	return db, nil
}

// Migrate creates or updates the tables of every persisted model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.TitleType{},
		&models.Genre{},
		&models.MediaAsset{},
		&models.Title{},
		&models.SyncRun{},
	); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Seed inserts the fixed title types and genres. Existing rows are kept.
func Seed(ctx context.Context, db *gorm.DB) error {
	types := make([]models.TitleType, 0, len(jikan.TypeSeeds))
	for _, s := range jikan.TypeSeeds {
		types = append(types, models.TitleType{ID: s.ID, Name: s.Name, Slug: s.Slug})
	}

	genres := make([]models.Genre, 0, len(jikan.GenreSeeds))
	for _, s := range jikan.GenreSeeds {
		genres = append(genres, models.Genre{ID: s.ID, Name: s.Name, Slug: s.Slug})
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&types).Error; err != nil {
			return fmt.Errorf("seed title types: %w", err)
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&genres, 50).Error; err != nil {
			return fmt.Errorf("seed genres: %w", err)
		}
		return nil
	})
}

// Setup opens the database, migrates and seeds it.
func Setup(ctx context.Context, databaseURL string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := OpenGorm(ctx, databaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := Seed(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}
