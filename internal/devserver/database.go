// Package devserver is a local fixture backend implementing the API the
// client engine consumes: login, posts, trending, comments, votes, users,
// and the dashboard. It exists so the client is runnable and integration
// testable without a production backend.
package devserver

import (
	"fmt"

	"postline/internal/config"
	"postline/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the dev-server database. With no DB_HOST configured an
// in-memory sqlite database is used; otherwise postgres.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	var db *gorm.DB
	var err error
	if cfg.DBHost == "" {
		db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), gormCfg)
	} else {
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
		)
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
	); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}
