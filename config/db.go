package config

import (
	"fmt"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens the route store. DB_DRIVER selects mysql (default) or sqlite.
func NewDB() (*gorm.DB, error) {
	logMode := logger.Warn
	switch os.Getenv("GORM_LOG") {
	case "off":
		logMode = logger.Silent
	case "info":
		logMode = logger.Info
	}

	gormLogger := logger.New(
		logrus.StandardLogger(),
		logger.Config{
			SlowThreshold: time.Second, // Slow SQL threshold
			LogLevel:      logMode,     // Log level
			Colorful:      false,
		},
	)
	cfg := &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	}

	if os.Getenv("DB_DRIVER") == "sqlite" {
		return gorm.Open(sqlite.Open(SQLiteDSN(GetEnv("SQLITE_PATH", "endpoint.db"))), cfg)
	}
	return gorm.Open(mysql.Open(MySQLDSN()), cfg)
}

// MySQLDSN builds the DSN from MYSQL_* variables. multiStatements is required by migrations.
func MySQLDSN() string {
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		return dsn
	}
	user := os.Getenv("MYSQL_USER")
	pass := os.Getenv("MYSQL_PASS")
	host := os.Getenv("MYSQL_HOST")
	port := GetEnv("MYSQL_PORT", "3306")
	db := os.Getenv("MYSQL_DB")
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=Local&multiStatements=true", user, pass, host, port, db)
}

// SQLiteDSN enables WAL and a busy timeout so several workers can share one file.
func SQLiteDSN(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}
