package iocache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/google/uuid"
	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/huangsam/rbicalc/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for the calculation ledger.
const (
	runsTable         = "rbicalc_runs"
	calculationsTable = "rbicalc_calculations"
)

// ledgerTables lists every ledger table in creation order.
var ledgerTables = []string{runsTable, calculationsTable}

// sqliteTimeLayout is a fixed-width RFC3339 layout so stored times sort lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// tableNamePattern restricts table names to safe SQL identifiers.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// LedgerStoreImpl implements the LedgerStore interface.
type LedgerStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.LedgerStore = &LedgerStoreImpl{} // Compile-time check

// NewLedgerStore creates a new LedgerStore with the specified backend.
func NewLedgerStore(backend schema.DatabaseBackend, connStr string) (contract.LedgerStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled recording
		return &LedgerStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid and parseTime=true is set."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createLedgerTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create ledger tables: %w", err)
	}

	return &LedgerStoreImpl{
		db:      db,
		backend: backend,
	}, nil
}

// openDatabase opens a connection pool for a SQL backend.
func openDatabase(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	driverName := driverNameFor(backend)
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetLedgerDBFilePath()
		}
		db, err := sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		db, err := sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname?parseTime=true", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... port=... dbname=...", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// driverNameFor maps a SQL backend onto its database/sql driver name.
func driverNameFor(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "mysql"
	case schema.PostgreSQLBackend:
		return "pgx"
	default:
		return "sqlite"
	}
}

// createLedgerTables creates the ledger tables.
func createLedgerTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{calculationsTable, getCreateCalculationsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for rbicalc_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_calculations INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_calculations INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_calculations INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateCalculationsQuery returns the CREATE TABLE query for rbicalc_calculations.
func getCreateCalculationsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(calculationsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) NOT NULL,
				seq_no INT NOT NULL,
				request_id VARCHAR(64) NOT NULL,
				formula_key VARCHAR(64) NOT NULL,
				family VARCHAR(32) NOT NULL,
				calc_time DATETIME(6) NOT NULL,
				result_value DOUBLE,
				error_kind VARCHAR(64),
				inputs_json TEXT NOT NULL,
				factors_json TEXT,
				PRIMARY KEY (run_id, seq_no)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) NOT NULL,
				seq_no INT NOT NULL,
				request_id TEXT NOT NULL,
				formula_key TEXT NOT NULL,
				family TEXT NOT NULL,
				calc_time TIMESTAMPTZ NOT NULL,
				result_value DOUBLE PRECISION,
				error_kind TEXT,
				inputs_json TEXT NOT NULL,
				factors_json TEXT,
				PRIMARY KEY (run_id, seq_no)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				seq_no INTEGER NOT NULL,
				request_id TEXT NOT NULL,
				formula_key TEXT NOT NULL,
				family TEXT NOT NULL,
				calc_time TEXT NOT NULL,
				result_value REAL,
				error_kind TEXT,
				inputs_json TEXT NOT NULL,
				factors_json TEXT,
				PRIMARY KEY (run_id, seq_no)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run and returns its unique ID.
func (ls *LedgerStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (string, error) {
	// Skip for NoneBackend
	if ls.backend == schema.NoneBackend || ls.db == nil {
		return "", nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config params: %w", err)
	}

	runID := uuid.NewString()
	query := fmt.Sprintf(`INSERT INTO %s (run_id, start_time, config_params) VALUES (%s, %s, %s)`,
		quoteTableName(runsTable, ls.backend),
		getPlaceholder(ls.backend, 1), getPlaceholder(ls.backend, 2), getPlaceholder(ls.backend, 3))

	if _, err := ls.db.Exec(query, runID, formatTime(startTime, ls.backend), string(configJSON)); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordCalculation stores one calculation outcome under a run.
func (ls *LedgerStoreImpl) RecordCalculation(runID string, entry schema.CalculationEntry) error {
	// Skip for NoneBackend
	if ls.backend == schema.NoneBackend || ls.db == nil {
		return nil
	}

	inputsJSON, err := marshalLenient(entry.Inputs)
	if err != nil {
		return fmt.Errorf("failed to marshal inputs: %w", err)
	}

	var value *float64
	var factorsJSON *string
	if entry.Result != nil {
		v := entry.Result.Value
		value = &v
		factors, err := marshalLenient(entry.Result.Factors)
		if err != nil {
			return fmt.Errorf("failed to marshal factors: %w", err)
		}
		factorsJSON = &factors
	}
	var errorKind *string
	if entry.Err != nil {
		kind := string(entry.Err.Kind)
		errorKind = &kind
	}

	placeholders := make([]any, 10)
	for i := range placeholders {
		placeholders[i] = getPlaceholder(ls.backend, i+1)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, seq_no, request_id, formula_key, family, calc_time,
		                result_value, error_kind, inputs_json, factors_json)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
	`, append([]any{quoteTableName(calculationsTable, ls.backend)}, placeholders...)...)

	_, err = ls.db.Exec(query,
		runID, entry.Sequence, entry.RequestID, string(entry.Key), string(entry.Family),
		formatTime(entry.CalcTime, ls.backend), value, errorKind, inputsJSON, factorsJSON)
	if err != nil {
		return fmt.Errorf("failed to insert calculation: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (ls *LedgerStoreImpl) EndRun(runID string, endTime time.Time, totalCalculations int) error {
	// Skip for NoneBackend
	if ls.backend == schema.NoneBackend || ls.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, ls.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, getPlaceholder(ls.backend, 1))
	startTime, err := scanTime(ls.db.QueryRow(query, runID), ls.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_calculations = %s WHERE run_id = %s`,
		quotedTableName,
		getPlaceholder(ls.backend, 1), getPlaceholder(ls.backend, 2),
		getPlaceholder(ls.backend, 3), getPlaceholder(ls.backend, 4))
	if _, err := ls.db.Exec(updateQuery, formatTime(endTime, ls.backend), durationMs, totalCalculations, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (ls *LedgerStoreImpl) Close() error {
	if ls.db != nil {
		return ls.db.Close()
	}
	return nil
}

// GetStatus returns status information about the ledger store.
func (ls *LedgerStoreImpl) GetStatus() (schema.LedgerStatus, error) {
	status := schema.LedgerStatus{
		Backend:    string(ls.backend),
		Connected:  ls.db != nil,
		TableSizes: make(map[string]int64),
	}

	if ls.backend == schema.NoneBackend || ls.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, ls.backend)
	if err := ls.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC LIMIT 1", quotedRuns)
		var lastRunTime any
		if ls.backend == schema.SQLiteBackend {
			lastRunTime = new(string)
		} else {
			lastRunTime = &status.LastRunTime
		}
		if err := ls.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, lastRunTime); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if s, ok := lastRunTime.(*string); ok {
			parsed, err := parseTime(*s)
			if err != nil {
				return status, fmt.Errorf("failed to parse last run time: %w", err)
			}
			status.LastRunTime = parsed
		}

		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", quotedRuns)
		oldest, err := scanTime(ls.db.QueryRow(oldestRunQuery), ls.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest
	}

	for _, table := range ledgerTables {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, ls.backend))
		var count int64
		if err := ls.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalCalculations = int(status.TableSizes[calculationsTable])

	return status, nil
}

// GetAllRuns retrieves all runs from the store, newest first.
func (ls *LedgerStoreImpl) GetAllRuns() ([]schema.LedgerRunRecord, error) {
	// Skip for NoneBackend
	if ls.backend == schema.NoneBackend || ls.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, total_calculations, config_params FROM %s ORDER BY start_time DESC",
		quoteTableName(runsTable, ls.backend))
	rows, err := ls.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.LedgerRunRecord
	for rows.Next() {
		var record schema.LedgerRunRecord

		switch ls.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs, &record.TotalCalculations, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			startTime, err := parseTime(startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := parseTime(*endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &record.TotalCalculations, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllCalculations retrieves all calculations ordered by run and sequence.
func (ls *LedgerStoreImpl) GetAllCalculations() ([]schema.CalculationRecord, error) {
	// Skip for NoneBackend
	if ls.backend == schema.NoneBackend || ls.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, seq_no, request_id, formula_key, family, calc_time,
    result_value, error_kind, inputs_json, factors_json
    FROM %s ORDER BY run_id, seq_no`, quoteTableName(calculationsTable, ls.backend))
	rows, err := ls.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calculations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CalculationRecord
	for rows.Next() {
		var record schema.CalculationRecord

		switch ls.backend {
		case schema.SQLiteBackend:
			var calcTimeStr string
			if err := rows.Scan(&record.RunID, &record.Sequence, &record.RequestID, &record.FormulaKey, &record.Family,
				&calcTimeStr, &record.Value, &record.ErrorKind, &record.InputsJSON, &record.FactorsJSON); err != nil {
				return nil, fmt.Errorf("failed to scan calculation: %w", err)
			}
			calcTime, err := parseTime(calcTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse calc_time: %w", err)
			}
			record.CalcTime = calcTime
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.Sequence, &record.RequestID, &record.FormulaKey, &record.Family,
				&record.CalcTime, &record.Value, &record.ErrorKind, &record.InputsJSON, &record.FactorsJSON); err != nil {
				return nil, fmt.Errorf("failed to scan calculation: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calculations: %w", err)
	}
	return results, nil
}

// marshalLenient encodes m as JSON. Values JSON cannot represent, such as
// NaN, are stored as their printed form instead.
func marshalLenient[V any](m map[string]V) (string, error) {
	data, err := json.Marshal(m)
	if err == nil {
		return string(data), nil
	}
	var unsupported *json.UnsupportedValueError
	if !errors.As(err, &unsupported) {
		return "", err
	}
	printable := make(map[string]string, len(m))
	for k, v := range m {
		printable[k] = fmt.Sprint(v)
	}
	data, err = json.Marshal(printable)
	return string(data), err
}

// scanTime reads a single time column, which SQLite stores as text.
func scanTime(row *sql.Row, backend schema.DatabaseBackend) (time.Time, error) {
	if backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&t)
		return t, err
	}
	var s string
	if err := row.Scan(&s); err != nil {
		return time.Time{}, err
	}
	return parseTime(s)
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(sqliteTimeLayout)
	default:
		return t
	}
}

// parseTime reads a time written by formatTime for SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// getPlaceholder returns the positional parameter marker for the backend.
func getPlaceholder(backend schema.DatabaseBackend, n int) string {
	if backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// quoteTableName quotes a table name for the backend's SQL dialect.
func quoteTableName(tableName string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return "`" + tableName + "`"
	}
	return `"` + tableName + `"`
}

// validateTableName rejects table names that are not plain SQL identifiers.
func validateTableName(tableName string) error {
	if !tableNamePattern.MatchString(tableName) {
		return fmt.Errorf("invalid table name %q", tableName)
	}
	return nil
}
