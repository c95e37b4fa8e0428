package iostore

import (
	"fmt"
	"strings"

	"github.com/huangsam/signalboard/schema"
)

// Table names for snapshot storage.
const (
	runsTable      = "signalboard_batch_runs"
	authorityTable = "signalboard_authority_snapshots"
	mindshareTable = "signalboard_mindshare_snapshots"

	// migrationsTable is the version table golang-migrate maintains.
	migrationsTable = "schema_migrations"
)

var allTables = []string{runsTable, authorityTable, mindshareTable}

var (
	runColumns = []string{
		"run_id", "kind", "snapshot_date", "started_at", "ended_at", "units_total", "units_failed", "config_params",
	}
	authorityColumns = []string{
		"account_id", "snapshot_date", "authority_raw", "bot_risk", "authority_score", "is_smart",
		"audience_organic", "smart_followers_count", "smart_followers_pct", "smart_followers_estimate",
	}
	mindshareColumns = []string{
		"project_id", "window_key", "snapshot_date", "mindshare_bps", "delta_vs_previous", "attention",
	}
)

// quoteTableName quotes a table name with the backend's identifier quote.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

// sqlTypes holds the column types that differ between backends.
type sqlTypes struct {
	key, text, float, bigint, integer, boolean string
}

func typesFor(backend schema.DatabaseBackend) sqlTypes {
	switch backend {
	case schema.MySQLBackend:
		return sqlTypes{key: "VARCHAR(191)", text: "TEXT", float: "DOUBLE", bigint: "BIGINT", integer: "INT", boolean: "BOOLEAN"}
	case schema.PostgreSQLBackend:
		return sqlTypes{key: "TEXT", text: "TEXT", float: "DOUBLE PRECISION", bigint: "BIGINT", integer: "INTEGER", boolean: "BOOLEAN"}
	default: // SQLite
		return sqlTypes{key: "TEXT", text: "TEXT", float: "REAL", bigint: "INTEGER", integer: "INTEGER", boolean: "BOOLEAN"}
	}
}

// getCreateTableQueries returns the CREATE TABLE statements for the backend.
func getCreateTableQueries(backend schema.DatabaseBackend) map[string]string {
	ty := typesFor(backend)
	return map[string]string{
		runsTable: fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s PRIMARY KEY,
				kind %s NOT NULL,
				snapshot_date %s NOT NULL,
				started_at %s NOT NULL,
				ended_at %s,
				units_total %s,
				units_failed %s,
				config_params %s
			);
		`, quoteTableName(runsTable, backend), ty.key, ty.key, ty.key, ty.bigint, ty.bigint, ty.integer, ty.integer, ty.text),

		authorityTable: fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				account_id %s NOT NULL,
				snapshot_date %s NOT NULL,
				authority_raw %s NOT NULL,
				bot_risk %s NOT NULL,
				authority_score %s NOT NULL,
				is_smart %s NOT NULL,
				audience_organic %s NOT NULL,
				smart_followers_count %s,
				smart_followers_pct %s,
				smart_followers_estimate %s NOT NULL,
				PRIMARY KEY (account_id, snapshot_date)
			);
		`, quoteTableName(authorityTable, backend), ty.key, ty.key, ty.float, ty.float, ty.float, ty.boolean, ty.float, ty.integer, ty.float, ty.boolean),

		mindshareTable: fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				project_id %s NOT NULL,
				window_key %s NOT NULL,
				snapshot_date %s NOT NULL,
				mindshare_bps %s NOT NULL,
				delta_vs_previous %s,
				attention %s NOT NULL,
				PRIMARY KEY (project_id, window_key, snapshot_date)
			);
		`, quoteTableName(mindshareTable, backend), ty.key, ty.key, ty.key, ty.integer, ty.integer, ty.float),
	}
}

// getUpsertQuery returns a named-parameter UPSERT for table. Rows matching
// keys are replaced, so re-running a date is idempotent.
func getUpsertQuery(table string, columns, keys []string, backend schema.DatabaseBackend) string {
	named := make([]string, len(columns))
	for i, c := range columns {
		named[i] = ":" + c
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteTableName(table, backend), strings.Join(columns, ", "), strings.Join(named, ", "))

	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	var updates []string
	for _, c := range columns {
		if isKey[c] {
			continue
		}
		switch backend {
		case schema.MySQLBackend:
			updates = append(updates, fmt.Sprintf("%s = new.%s", c, c))
		default:
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}

	switch backend {
	case schema.MySQLBackend:
		return insert + " AS new ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", ")
	default: // SQLite and PostgreSQL
		return insert + fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET ", strings.Join(keys, ", ")) + strings.Join(updates, ", ")
	}
}

// selectColumns renders a column list, optionally qualified by alias.
func selectColumns(columns []string, alias string) string {
	if alias == "" {
		return strings.Join(columns, ", ")
	}
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return strings.Join(out, ", ")
}
