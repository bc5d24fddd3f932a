// file: db.go
/*
 * Database Adapter
 *
 * This package is responsible for establishing and configuring the connection
 * to the PostgreSQL database using GORM. Connection pooling is sized from the
 * process Config rather than hardcoded, so an operator can tune it the same
 * way every other setting in config.go is tuned, and handles schema
 * auto-migration for the match-history / leaderboard side store.
 */
package db

import (
	"fmt"
	"log"

	"github.com/sirpent/sirpent-go/internal/config"
	"github.com/sirpent/sirpent-go/internal/core/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitializeDatabase configures and returns a GORM DB instance backing the
// match-history and leaderboard side store. It never touches in-flight
// game state: only concluded outcomes pass through here.
func InitializeDatabase(cfg config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Use logger.Info for verbose query logging
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Size the connection pool from Config instead of fixed literals.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime())

	// AutoMigrate the schema. In a real-world production environment, a more robust
	// migration tool like GORM's migrator or an external tool (e.g., migrate, goose) is recommended.
	if err := db.AutoMigrate(&domain.PlayerRecord{}, &domain.MatchRecord{}); err != nil {
		return nil, fmt.Errorf("database schema migration failed: %w", err)
	}
	log.Println("INFO: Database schema migration completed successfully.")

	return db, nil
}
