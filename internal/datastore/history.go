package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/grcdigest/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// HistoryDB wraps the SQL database connection and records digest runs in run_history.
// It is an audit trail only; extraction never reads it.
type HistoryDB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewHistoryDB initializes a new DB connection and ensures the schema is set up.
func NewHistoryDB(dataSourceName string, logger zerolog.Logger) (*HistoryDB, error) {
	logger = logger.With().Str("module", "HistoryDB").Logger()
	logger.Info().Str("db_path", dataSourceName).Msg("Initializing run history database connection")

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create run history database directory")
		return nil, fmt.Errorf("failed to create run history database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		logger.Error().Err(err).Str("db_path", dataSourceName).Msg("Failed to open run history database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}

	h := &HistoryDB{
		db:     dbInstance,
		logger: logger,
	}

	if err := h.InitSchema(); err != nil {
		h.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return h, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

// InitSchema creates the run_history table if it doesn't already exist.
func (h *HistoryDB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS run_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT UNIQUE NOT NULL,
		mode TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		status TEXT NOT NULL,
		total_records INTEGER DEFAULT 0,
		in_scope_findings INTEGER DEFAULT 0,
		owner_count INTEGER DEFAULT 0,
		unresolved_owners INTEGER DEFAULT 0,
		unresolved_emails INTEGER DEFAULT 0,
		error_message TEXT,
		export_path TEXT
	);
	`
	if _, err := h.db.Exec(query); err != nil {
		h.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	h.logger.Debug().Msg("Schema initialized (run_history table ensured)")
	return nil
}

// RecordRunStart inserts a STARTED row and returns its row ID.
func (h *HistoryDB) RecordRunStart(ctx context.Context, runID, mode string, startTime time.Time) (int64, error) {
	query := `INSERT INTO run_history (run_id, mode, start_time, status) VALUES (?, ?, ?, ?)`
	result, err := h.db.ExecContext(ctx, query, runID, mode, startTime.UTC(), string(models.RunStatusStarted))
	if err != nil {
		h.logger.Error().Err(err).Str("run_id", runID).Msg("Failed to record run start")
		return 0, fmt.Errorf("failed to insert run start record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	h.logger.Info().Int64("db_id", id).Str("run_id", runID).Msg("Recorded run start")
	return id, nil
}

// UpdateRunCompletion stores the final status and counters of a run.
func (h *HistoryDB) UpdateRunCompletion(ctx context.Context, id int64, entry models.RunHistoryEntry) error {
	endTime := time.Now().UTC()
	if entry.EndTime != nil {
		endTime = entry.EndTime.UTC()
	}
	query := `UPDATE run_history SET end_time = ?, status = ?, total_records = ?, in_scope_findings = ?, owner_count = ?,
		unresolved_owners = ?, unresolved_emails = ?, error_message = ?, export_path = ? WHERE id = ?`
	_, err := h.db.ExecContext(ctx, query,
		endTime,
		string(entry.Status),
		entry.TotalRecords,
		entry.InScopeFindings,
		entry.OwnerCount,
		entry.UnresolvedOwners,
		entry.UnresolvedEmails,
		sql.NullString{String: entry.ErrorMessage, Valid: entry.ErrorMessage != ""},
		sql.NullString{String: entry.ExportPath, Valid: entry.ExportPath != ""},
		id,
	)
	if err != nil {
		h.logger.Error().Err(err).Int64("db_id", id).Msg("Failed to update run completion")
		return fmt.Errorf("failed to update run completion for ID %d: %w", id, err)
	}
	h.logger.Info().Int64("db_id", id).Str("status", string(entry.Status)).Msg("Updated run completion")
	return nil
}

// getRun loads one run by run ID. It returns sql.ErrNoRows when the run is unknown.
func (h *HistoryDB) getRun(ctx context.Context, runID string) (*models.RunHistoryEntry, error) {
	query := `SELECT id, run_id, mode, start_time, end_time, status, total_records, in_scope_findings, owner_count,
		unresolved_owners, unresolved_emails, error_message, export_path FROM run_history WHERE run_id = ?`

	var (
		entry     models.RunHistoryEntry
		status    string
		endTime   sql.NullTime
		errMsg    sql.NullString
		exportPth sql.NullString
	)
	err := h.db.QueryRowContext(ctx, query, runID).Scan(
		&entry.ID, &entry.RunID, &entry.Mode, &entry.StartTime, &endTime, &status,
		&entry.TotalRecords, &entry.InScopeFindings, &entry.OwnerCount,
		&entry.UnresolvedOwners, &entry.UnresolvedEmails, &errMsg, &exportPth,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to query run %s: %w", runID, err)
	}
	entry.Status = models.RunStatus(status)
	if endTime.Valid {
		t := endTime.Time
		entry.EndTime = &t
	}
	entry.ErrorMessage = errMsg.String
	entry.ExportPath = exportPth.String
	return &entry, nil
}

// lastCompletedRunTime returns the start time of the most recent completed run.
func (h *HistoryDB) lastCompletedRunTime(ctx context.Context) (*time.Time, error) {
	query := `SELECT start_time FROM run_history WHERE status = ? ORDER BY start_time DESC LIMIT 1`
	var startTime time.Time
	err := h.db.QueryRowContext(ctx, query, string(models.RunStatusCompleted)).Scan(&startTime)
	if err != nil {
		if err == sql.ErrNoRows {
			h.logger.Info().Msg("No completed run found in history")
			return nil, err
		}
		return nil, fmt.Errorf("failed to query last run start time: %w", err)
	}
	return &startTime, nil
}
