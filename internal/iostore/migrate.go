package iostore

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/signalboard/schema"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrationResult describes what one migrate call did to the schema.
type MigrationResult struct {
	From    uint
	To      uint
	Changed bool
}

func (r MigrationResult) String() string {
	if !r.Changed {
		return fmt.Sprintf("No migration needed. Database is already at version %d", r.To)
	}
	return fmt.Sprintf("Successfully migrated from version %d to version %d", r.From, r.To)
}

// migrateDriver wraps an open connection in the golang-migrate driver for its backend.
func migrateDriver(backend schema.DatabaseBackend, db *sqlx.DB) (database.Driver, error) {
	switch backend {
	case schema.SQLiteBackend:
		return sqlite.WithInstance(db.DB, &sqlite.Config{})
	case schema.MySQLBackend:
		return mysql.WithInstance(db.DB, &mysql.Config{})
	case schema.PostgreSQLBackend:
		return pgxmigrate.WithInstance(db.DB, &pgxmigrate.Config{})
	}
	return nil, fmt.Errorf("migrations are not supported for %s", backend)
}

// newMigrator reads the embedded scripts for backend. Column types differ per
// dialect, so each backend has its own directory.
func newMigrator(backend schema.DatabaseBackend, db *sqlx.DB) (*migrate.Migrate, error) {
	driver, err := migrateDriver(backend, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}
	scripts, err := fs.Sub(migrationsFS, "migrations/"+string(backend))
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	source, err := iofs.New(scripts, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}
	return migrate.NewWithInstance("iofs", source, "signalboard", driver)
}

// schemaVersion reports the applied version, treating an empty history as 0.
func schemaVersion(m *migrate.Migrate) (uint, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return v, fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", v)
	}
	return v, nil
}

// MigrateSnapshots moves the snapshot schema to targetVersion. A negative
// target means the latest version and 0 rolls everything back.
func MigrateSnapshots(backend schema.DatabaseBackend, connStr string, targetVersion int) (MigrationResult, error) {
	if backend == schema.NoneBackend {
		return MigrationResult{}, fmt.Errorf("migrations are not supported for NoneBackend")
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return MigrationResult{}, err
	}
	defer func() { _ = db.Close() }()

	m, err := newMigrator(backend, db)
	if err != nil {
		return MigrationResult{}, err
	}

	from, err := schemaVersion(m)
	if err != nil {
		return MigrationResult{}, err
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return MigrationResult{From: from, To: from}, nil
	}
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to migrate from version %d: %w", from, err)
	}

	to, err := schemaVersion(m)
	if err != nil {
		return MigrationResult{}, err
	}
	return MigrationResult{From: from, To: to, Changed: true}, nil
}
