package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/airings/pagecomments/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoDatabaseURL is returned when none of the DSN environment variables is
// set. The server still boots; every request then answers a 500 instead.
var ErrNoDatabaseURL = errors.New("数据库连接未配置（请设置 DATABASE_URL 或 POSTGRES_URL 等环境变量）")

var db *gorm.DB

// InitDatabase resolves the DSN chain, connects to Postgres with a tuned
// pool, pings once to surface network/auth problems early, and runs the
// schema bootstrap. A missing DSN is reported as ErrNoDatabaseURL rather
// than terminating the process.
func InitDatabase() (*gorm.DB, error) {
	if db != nil {
		return db, nil
	}

	dsn, ok := ResolveDatabaseURL()
	if !ok {
		return nil, ErrNoDatabaseURL
	}

	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(Get().LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gLogger})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping: %w", err)
	}

	if err := EnsureSchema(conn); err != nil {
		return nil, err
	}

	db = conn
	return db, nil
}

// Guarded statements so concurrent cold starts never fail or double-apply.
// The ADD COLUMN covers tables created before the anon_user_id column
// existed; rows from that era keep a NULL token.
var postgresBootstrap = []string{
	`CREATE TABLE IF NOT EXISTS public_comments (
		id BIGSERIAL PRIMARY KEY,
		page VARCHAR(64) NOT NULL,
		name VARCHAR(20) NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		ip TEXT,
		user_agent TEXT,
		anon_user_id VARCHAR(64)
	)`,
	`ALTER TABLE public_comments ADD COLUMN IF NOT EXISTS anon_user_id VARCHAR(64)`,
	`CREATE INDEX IF NOT EXISTS idx_public_comments_page_created ON public_comments (page, created_at DESC)`,
}

// EnsureSchema brings the comments table, the anon_user_id column and the
// page/created_at index into existence. Additive only and idempotent: safe
// to run repeatedly and from multiple stateless instances at once.
func EnsureSchema(conn *gorm.DB) error {
	if conn.Dialector.Name() == "postgres" {
		for _, stmt := range postgresBootstrap {
			if err := conn.Exec(stmt).Error; err != nil {
				return fmt.Errorf("schema bootstrap: %w", err)
			}
		}
		return nil
	}

	// Non-postgres dialects (tests) go through the migrator, additive only.
	m := conn.Migrator()
	if !m.HasTable(&models.Comment{}) {
		if err := conn.AutoMigrate(&models.Comment{}); err != nil {
			return fmt.Errorf("schema bootstrap: %w", err)
		}
	}
	if !m.HasColumn(&models.Comment{}, "AnonUserID") {
		if err := m.AddColumn(&models.Comment{}, "AnonUserID"); err != nil {
			return fmt.Errorf("schema bootstrap: %w", err)
		}
	}
	if !m.HasIndex(&models.Comment{}, "idx_public_comments_page_created") {
		if err := m.CreateIndex(&models.Comment{}, "idx_public_comments_page_created"); err != nil {
			return fmt.Errorf("schema bootstrap: %w", err)
		}
	}
	return nil
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// GORM 'Info' shows SQL; use with caution
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}
