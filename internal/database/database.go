package database

import (
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/voicewatch/voicewatch-bot/internal/models"
)

var DB *gorm.DB

// Init opens the configured database backend and migrates the schema.
func Init(databaseType, dsn string) error {
	var dialector gorm.Dialector
	switch databaseType {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return fmt.Errorf("unsupported database type: %s", databaseType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	err = db.AutoMigrate(
		&models.TrackedChannel{},
		&models.StreamSession{},
		&models.GuildSettings{},
		&models.ServiceStatus{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	DB = db
	return nil
}

func Close() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("Error getting underlying database handle: %v", err)
		return
	}
	sqlDB.Close()
}

// WithRetry retries transient database errors a few times before giving up.
func WithRetry(operation func() error) error {
	const maxAttempts = 3

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = operation()
		if err == nil {
			return nil
		}
		if attempt < maxAttempts {
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
		}
	}
	return err
}
