package mysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"docintell/internal/config"
	"docintell/internal/models"
)

// Connect opens a GORM MySQL connection with the configured pool settings.
// The returned handle is constructed once in main and injected into every
// consumer.
func Connect(cfg *config.MySQLConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username,
		cfg.Password,
		cfg.Address,
		cfg.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("cannot access underlying SQL DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	return db, nil
}

// AutoMigrate creates or updates the document and conversation tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Document{},
		&models.DocumentChunk{},
		&models.Conversation{},
		&models.Message{},
	)
}

// Close shuts the underlying connection pool down.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("cannot access underlying SQL DB: %w", err)
	}
	return sqlDB.Close()
}

// HealthCheck pings the database.
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("cannot access underlying SQL DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
