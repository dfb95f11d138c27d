package schema

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	entity "endpoint.GO/model/entity"
)

//go:embed sqlite/*.sql mysql/*.sql
var files embed.FS

// Models lists the tables owned by the registry.
func Models() []interface{} {
	return []interface{}{&entity.EndpointRoute{}, &entity.RouteVersion{}, &entity.App{}}
}

// Up creates the registry tables. On SQLite it also installs the version counter
// triggers; on MySQL those come from MigrateMySQL and Up only warns when they are missing.
func Up(db *gorm.DB) error {
	return up(db, "")
}

// Migrate is Up followed, on MySQL, by MigrateMySQL with mysqlDSN.
func Migrate(db *gorm.DB, mysqlDSN string) error {
	return up(db, mysqlDSN)
}

func up(db *gorm.DB, mysqlDSN string) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("schema: automigrate: %w", err)
	}
	switch db.Dialector.Name() {
	case "sqlite":
		return upSQLite(db)
	case "mysql":
		if mysqlDSN != "" {
			if err := MigrateMySQL(mysqlDSN); err != nil {
				return err
			}
		}
		ok, err := VersionSeeded(db)
		if err != nil {
			return err
		}
		if !ok {
			logrus.Warn("schema: endpoint_route_version has no row, run migrate before serving; dispatch returns 503 until then")
		}
		return nil
	default:
		return fmt.Errorf("schema: unsupported dialect %q", db.Dialector.Name())
	}
}

// VersionSeeded reports whether the version counter row exists.
func VersionSeeded(db *gorm.DB) (bool, error) {
	var n int64
	if err := db.Model(&entity.RouteVersion{}).Where("id = ?", 1).Count(&n).Error; err != nil {
		return false, fmt.Errorf("schema: version row: %w", err)
	}
	return n > 0, nil
}

func upSQLite(db *gorm.DB) error {
	names, err := fs.Glob(files, "sqlite/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		stmt, err := files.ReadFile(name)
		if err != nil {
			return err
		}
		if err := db.Exec(string(stmt)).Error; err != nil {
			return fmt.Errorf("schema: %s: %w", name, err)
		}
	}
	logrus.WithField("statements", len(names)).Debug("schema: sqlite triggers installed")
	return nil
}

// MigrateMySQL applies the trigger migrations. dsn is a go-sql-driver DSN with multiStatements enabled.
func MigrateMySQL(dsn string) error {
	src, err := iofs.New(files, "mysql")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "mysql://"+dsn)
	if err != nil {
		return fmt.Errorf("schema: migrate: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("schema: migrate up: %w", err)
	}
	v, dirty, _ := m.Version()
	logrus.WithFields(logrus.Fields{"version": v, "dirty": dirty}).Info("schema: mysql migrations applied")
	return nil
}

// DownMySQL drops the trigger migrations.
func DownMySQL(dsn string) error {
	src, err := iofs.New(files, "mysql")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "mysql://"+dsn)
	if err != nil {
		return fmt.Errorf("schema: migrate: %w", err)
	}
	defer m.Close()
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("schema: migrate down: %w", err)
	}
	return nil
}
