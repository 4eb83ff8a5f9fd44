package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database selected by the DSN shape. DSNs beginning
// with postgres:// or postgresql:// (or containing host=) use PostgreSQL;
// everything else is treated as a SQLite file or URI.
func Open(dsn string) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}

	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	var conn *gorm.DB
	var err error
	if isPostgresDSN(dsn) {
		conn, err = gorm.Open(postgres.Open(dsn), gormCfg)
	} else {
		conn, err = gorm.Open(sqlite.Open(dsn), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}

	sqlDB, errDB := conn.DB()
	if errDB != nil {
		return nil, fmt.Errorf("db: access pool: %w", errDB)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return conn, nil
}

// isPostgresDSN reports whether the DSN targets PostgreSQL.
func isPostgresDSN(dsn string) bool {
	lowered := strings.ToLower(dsn)
	return strings.HasPrefix(lowered, "postgres://") ||
		strings.HasPrefix(lowered, "postgresql://") ||
		strings.Contains(lowered, "host=")
}
