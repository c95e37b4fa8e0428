package iostore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/schema"
	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// SnapshotStoreImpl implements the SnapshotStore interface on top of sqlx.
type SnapshotStoreImpl struct {
	db      *sqlx.DB
	backend schema.DatabaseBackend
	now     func() time.Time
}

var _ contract.SnapshotStore = &SnapshotStoreImpl{} // Compile-time check

// driverFor maps a backend to its database/sql driver name.
func driverFor(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported snapshot backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// openDB opens and pings a connection for the backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sqlx.DB, error) {
	driverName, err := driverFor(backend)
	if err != nil {
		return nil, err
	}

	dsn := connStr
	if backend == schema.SQLiteBackend && dsn == "" {
		dsn = GetDBFilePath()
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		switch backend {
		case schema.SQLiteBackend:
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dsn, err)
		case schema.MySQLBackend:
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		default:
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}
	return db, nil
}

// NewSnapshotStore creates a SnapshotStore with the specified backend.
func NewSnapshotStore(backend schema.DatabaseBackend, connStr string) (contract.SnapshotStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled persistence
		return &SnapshotStoreImpl{backend: backend, now: time.Now}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := createTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create snapshot tables: %w", err)
	}
	return newSnapshotStore(db, backend), nil
}

// newSnapshotStore wraps an open connection without touching the schema.
func newSnapshotStore(db *sqlx.DB, backend schema.DatabaseBackend) *SnapshotStoreImpl {
	return &SnapshotStoreImpl{db: db, backend: backend, now: time.Now}
}

// createTables creates the snapshot tables.
func createTables(db *sqlx.DB, backend schema.DatabaseBackend) error {
	queries := getCreateTableQueries(backend)
	for _, table := range allTables {
		if _, err := db.Exec(queries[table]); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// disabled reports whether the store is a no-op.
func (s *SnapshotStoreImpl) disabled() bool {
	return s.backend == schema.NoneBackend || s.db == nil
}

// BeginRun records a new batch run and returns its ID.
func (s *SnapshotStoreImpl) BeginRun(ctx context.Context, kind, date string, params map[string]any) (string, error) {
	if s.disabled() {
		return "", nil
	}

	configJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config params: %w", err)
	}
	cfgStr := string(configJSON)

	rec := schema.BatchRunRecord{
		RunID:        uuid.NewString(),
		Kind:         kind,
		SnapshotDate: date,
		StartedAt:    s.now().UnixMilli(),
		ConfigParams: &cfgStr,
	}
	query := getUpsertQuery(runsTable, runColumns, []string{"run_id"}, s.backend)
	if _, err := s.db.NamedExecContext(ctx, query, rec); err != nil {
		return "", fmt.Errorf("failed to insert batch run: %w", err)
	}
	return rec.RunID, nil
}

// EndRun records completion counts for a batch run.
func (s *SnapshotStoreImpl) EndRun(ctx context.Context, runID string, units, failed int) error {
	if s.disabled() {
		return nil
	}

	query := s.db.Rebind(fmt.Sprintf(
		`UPDATE %s SET ended_at = ?, units_total = ?, units_failed = ? WHERE run_id = ?`,
		quoteTableName(runsTable, s.backend)))
	if _, err := s.db.ExecContext(ctx, query, s.now().UnixMilli(), units, failed, runID); err != nil {
		return fmt.Errorf("failed to update batch run %s: %w", runID, err)
	}
	return nil
}

// UpsertAuthority writes authority snapshots in one transaction.
func (s *SnapshotStoreImpl) UpsertAuthority(ctx context.Context, scores []schema.AuthorityScore) error {
	if s.disabled() || len(scores) == 0 {
		return nil
	}
	records := make([]any, len(scores))
	for i, score := range scores {
		records[i] = score.ToRecord()
	}
	query := getUpsertQuery(authorityTable, authorityColumns, []string{"account_id", "snapshot_date"}, s.backend)
	return s.upsertAll(ctx, query, authorityTable, records)
}

// UpsertMindshare writes mindshare snapshots in one transaction.
func (s *SnapshotStoreImpl) UpsertMindshare(ctx context.Context, snaps []schema.MindshareSnapshot) error {
	if s.disabled() || len(snaps) == 0 {
		return nil
	}
	records := make([]any, len(snaps))
	for i, snap := range snaps {
		records[i] = snap.ToRecord()
	}
	query := getUpsertQuery(mindshareTable, mindshareColumns, []string{"project_id", "window_key", "snapshot_date"}, s.backend)
	return s.upsertAll(ctx, query, mindshareTable, records)
}

// upsertAll executes one prepared named statement per record inside a
// transaction. Any failure rolls the whole batch back.
func (s *SnapshotStoreImpl) upsertAll(ctx context.Context, query, table string, records []any) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", table, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert for %s: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		if _, err = stmt.ExecContext(ctx, rec); err != nil {
			return fmt.Errorf("failed to upsert into %s: %w", table, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return nil
}

// AuthorityAt returns the newest snapshot per account at or before date.
func (s *SnapshotStoreImpl) AuthorityAt(ctx context.Context, date string) (map[string]schema.AuthorityScore, error) {
	out := map[string]schema.AuthorityScore{}
	if s.disabled() {
		return out, nil
	}

	query := s.db.Rebind(fmt.Sprintf(`
		SELECT %s FROM %s a
		JOIN (SELECT account_id, MAX(snapshot_date) AS latest FROM %s WHERE snapshot_date <= ? GROUP BY account_id) l
		ON a.account_id = l.account_id AND a.snapshot_date = l.latest
		ORDER BY a.account_id`,
		selectColumns(authorityColumns, "a"), quoteTableName(authorityTable, s.backend), quoteTableName(authorityTable, s.backend)))

	var records []schema.AuthorityRecord
	if err := s.db.SelectContext(ctx, &records, query, date); err != nil {
		return nil, fmt.Errorf("failed to query authority snapshots: %w", err)
	}
	for _, rec := range records {
		out[rec.AccountID] = rec.ToAuthorityScore()
	}
	return out, nil
}

// AuthorityHistory returns an account's snapshots in [from, to], oldest first.
func (s *SnapshotStoreImpl) AuthorityHistory(ctx context.Context, accountID, from, to string) ([]schema.AuthorityScore, error) {
	if s.disabled() {
		return nil, nil
	}

	query := s.db.Rebind(fmt.Sprintf(
		`SELECT %s FROM %s WHERE account_id = ? AND snapshot_date >= ? AND snapshot_date <= ? ORDER BY snapshot_date`,
		selectColumns(authorityColumns, ""), quoteTableName(authorityTable, s.backend)))

	var records []schema.AuthorityRecord
	if err := s.db.SelectContext(ctx, &records, query, accountID, from, to); err != nil {
		return nil, fmt.Errorf("failed to query authority history for %s: %w", accountID, err)
	}
	history := make([]schema.AuthorityScore, len(records))
	for i, rec := range records {
		history[i] = rec.ToAuthorityScore()
	}
	return history, nil
}

// PreviousMindshare returns the newest bps per project strictly before date.
func (s *SnapshotStoreImpl) PreviousMindshare(ctx context.Context, window schema.Window, before string) (map[string]int, error) {
	out := map[string]int{}
	if s.disabled() {
		return out, nil
	}

	table := quoteTableName(mindshareTable, s.backend)
	query := s.db.Rebind(fmt.Sprintf(`
		SELECT m.project_id, m.mindshare_bps FROM %s m
		JOIN (SELECT project_id, MAX(snapshot_date) AS latest FROM %s WHERE window_key = ? AND snapshot_date < ? GROUP BY project_id) l
		ON m.project_id = l.project_id AND m.snapshot_date = l.latest
		WHERE m.window_key = ?`, table, table))

	var rows []struct {
		ProjectID string `db:"project_id"`
		Bps       int    `db:"mindshare_bps"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, string(window), before, string(window)); err != nil {
		return nil, fmt.Errorf("failed to query previous mindshare for %s: %w", window, err)
	}
	for _, row := range rows {
		out[row.ProjectID] = row.Bps
	}
	return out, nil
}

// MindshareAt returns the snapshots of one (window, date), largest share first.
func (s *SnapshotStoreImpl) MindshareAt(ctx context.Context, window schema.Window, date string) ([]schema.MindshareSnapshot, error) {
	if s.disabled() {
		return nil, nil
	}

	query := s.db.Rebind(fmt.Sprintf(
		`SELECT %s FROM %s WHERE window_key = ? AND snapshot_date = ? ORDER BY mindshare_bps DESC, project_id`,
		selectColumns(mindshareColumns, ""), quoteTableName(mindshareTable, s.backend)))

	var records []schema.MindshareRecord
	if err := s.db.SelectContext(ctx, &records, query, string(window), date); err != nil {
		return nil, fmt.Errorf("failed to query mindshare for %s on %s: %w", window, date, err)
	}
	snaps := make([]schema.MindshareSnapshot, len(records))
	for i, rec := range records {
		snaps[i] = rec.ToSnapshot()
	}
	return snaps, nil
}

// GetStatus returns status information about the snapshot store.
func (s *SnapshotStoreImpl) GetStatus(ctx context.Context) (schema.SnapshotStatus, error) {
	status := schema.SnapshotStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}
	if s.disabled() {
		return status, nil
	}

	for _, table := range allTables {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, s.backend))
		if err := s.db.GetContext(ctx, &count, query); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRuns = status.TableSizes[runsTable]

	if status.TotalRuns > 0 {
		var last struct {
			RunID     string `db:"run_id"`
			StartedAt int64  `db:"started_at"`
		}
		query := fmt.Sprintf("SELECT run_id, started_at FROM %s ORDER BY started_at DESC, run_id DESC LIMIT 1",
			quoteTableName(runsTable, s.backend))
		if err := s.db.GetContext(ctx, &last, query); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunID = last.RunID
		status.LastRunTime = time.UnixMilli(last.StartedAt).UTC()
	}

	for _, table := range []string{authorityTable, mindshareTable} {
		var latest *string
		query := fmt.Sprintf("SELECT MAX(snapshot_date) FROM %s", quoteTableName(table, s.backend))
		if err := s.db.GetContext(ctx, &latest, query); err != nil {
			return status, fmt.Errorf("failed to get latest snapshot date from %s: %w", table, err)
		}
		if latest != nil && *latest > status.LatestSnapshot {
			status.LatestSnapshot = *latest
		}
	}
	return status, nil
}

// ExportAll reads every stored row for export.
func (s *SnapshotStoreImpl) ExportAll(ctx context.Context) (*schema.SnapshotExport, error) {
	export := &schema.SnapshotExport{}
	if s.disabled() {
		return export, nil
	}

	queries := []struct {
		table   string
		columns []string
		order   string
		dest    any
	}{
		{runsTable, runColumns, "started_at, run_id", &export.Runs},
		{authorityTable, authorityColumns, "snapshot_date, account_id", &export.Authority},
		{mindshareTable, mindshareColumns, "snapshot_date, window_key, mindshare_bps DESC, project_id", &export.Mindshare},
	}
	for _, q := range queries {
		query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
			selectColumns(q.columns, ""), quoteTableName(q.table, s.backend), q.order)
		if err := s.db.SelectContext(ctx, q.dest, query); err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", q.table, err)
		}
	}
	return export, nil
}

// Close closes the underlying connection.
func (s *SnapshotStoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
