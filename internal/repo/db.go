// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver), Postgres and MySQL, plus schema migrations.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-code-generator/internal/domain"
)

// Options selects and tunes the database backend.
type Options struct {
	Driver       string // sqlite|postgres|mysql
	Path         string // sqlite file path
	DSN          string // postgres/mysql DSN
	MaxOpenConns int
	Tracing      bool // install the OpenTelemetry GORM plugin
}

// sqlitePragmas are applied per connection through the DSN so every pooled
// connection waits on busy locks instead of failing.
var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
}

// sqliteTxLock makes every transaction take the write lock on BEGIN. A
// deferred transaction that upgrades to a writer mid-way fails with
// SQLITE_BUSY without consulting busy_timeout.
const sqliteTxLock = "immediate"

// mysqlBinaryColumns pins case-sensitive collations on columns whose values
// differ only by letter case. MySQL defaults to a _ci collation, under which
// "000000A" and "000000a" collide on the unique index.
var mysqlBinaryColumns = []string{
	"ALTER TABLE generated_codes MODIFY code CHAR(7) CHARACTER SET ascii COLLATE ascii_bin NOT NULL",
	"ALTER TABLE idempotency MODIFY `key` VARCHAR(200) CHARACTER SET ascii COLLATE ascii_bin NOT NULL",
}

// Open connects to the configured backend and applies pool settings.
func Open(opts Options) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch strings.ToLower(opts.Driver) {
	case "", "sqlite":
		db, err = OpenSQLite(opts.Path, opts.MaxOpenConns)
	case "postgres":
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  opts.DSN,
			PreferSimpleProtocol: true,
		}), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
		if err == nil {
			err = tunePool(db, opts.MaxOpenConns)
		}
	case "mysql":
		db, err = gorm.Open(mysql.Open(opts.DSN), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
		if err == nil {
			err = tunePool(db, opts.MaxOpenConns)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if opts.Tracing {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, fmt.Errorf("install gorm tracing: %w", err)
		}
	}
	return db, nil
}

// OpenSQLite opens (or creates) a SQLite database with WAL, a busy timeout
// and foreign keys enabled on every connection.
func OpenSQLite(path string, maxOpenConns int) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, "file:") {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := tunePool(db, maxOpenConns); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate creates or updates the schema for all persisted models, then
// applies dialect-specific column fixes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.GenerationRequest{},
		&domain.GeneratedCode{},
		&domain.Idempotency{},
	); err != nil {
		return err
	}
	for _, stmt := range dialectMigrations(db.Dialector.Name()) {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate %s: %w", db.Dialector.Name(), err)
		}
	}
	return nil
}

// dialectMigrations returns the statements AutoMigrate runs after the
// model migration for the given dialect.
func dialectMigrations(dialect string) []string {
	switch dialect {
	case "mysql":
		return mysqlBinaryColumns
	default:
		// sqlite compares with BINARY and postgres with the column's
		// deterministic collation; both are case-sensitive.
		return nil
	}
}

// MaxWriters returns how many write transactions db can run at once without
// tripping over its own locks; 0 means no limit beyond the pool. SQLite has
// a single writer per database file.
func MaxWriters(db *gorm.DB) int {
	if db.Dialector.Name() == "sqlite" {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	var b strings.Builder
	b.WriteString(path)
	for _, p := range sqlitePragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	b.WriteString("&_txlock=")
	b.WriteString(sqliteTxLock)
	return b.String()
}

func tunePool(db *gorm.DB, maxOpen int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if maxOpen <= 0 {
		maxOpen = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return nil
}
