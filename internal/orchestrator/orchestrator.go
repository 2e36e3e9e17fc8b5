// Package orchestrator runs one digest pass: fetch, extract, digest, export, record and notify.
package orchestrator

import (
	"context"
	"time"

	"github.com/aleister1102/grcdigest/internal/digest"
	"github.com/aleister1102/grcdigest/internal/extractor"
	"github.com/aleister1102/grcdigest/internal/models"
	"github.com/aleister1102/grcdigest/internal/notifier"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FindingsSource delivers the complete, deduplicated findings result set.
type FindingsSource interface {
	FetchAll(ctx context.Context) (*models.ResultSet, error)
}

// FindingExtractor groups the result set by owner.
type FindingExtractor interface {
	ExtractWithStats(ctx context.Context, rs *models.ResultSet) (*models.OwnerFindingsMap, extractor.Stats, error)
}

// HistoryRecorder writes the run_history audit trail.
type HistoryRecorder interface {
	RecordRunStart(ctx context.Context, runID, mode string, startTime time.Time) (int64, error)
	UpdateRunCompletion(ctx context.Context, id int64, entry models.RunHistoryEntry) error
}

// FindingsExporter writes the run's findings artifact and returns its path.
type FindingsExporter interface {
	WriteDigest(ctx context.Context, runID string, d *digest.Digest) (string, error)
}

// Dependencies are the collaborators of a DigestOrchestrator. History, Exporter
// and Notifier are optional.
type Dependencies struct {
	Source    FindingsSource
	Extractor FindingExtractor
	History   HistoryRecorder
	Exporter  FindingsExporter
	Notifier  notifier.RunNotifier
}

// RunResult is the output of a successful run.
type RunResult struct {
	RunID      string
	Findings   *models.OwnerFindingsMap
	Digest     *digest.Digest
	Stats      extractor.Stats
	ExportPath string
	StartedAt  time.Time
	FinishedAt time.Time
}

// DigestOrchestrator handles the core logic of a digest run.
type DigestOrchestrator struct {
	deps     Dependencies
	mode     string
	logger   zerolog.Logger
	now      func() time.Time
	newRunID func() string
}

// NewDigestOrchestrator creates a new DigestOrchestrator.
func NewDigestOrchestrator(deps Dependencies, mode string, logger zerolog.Logger) *DigestOrchestrator {
	return &DigestOrchestrator{
		deps:     deps,
		mode:     mode,
		logger:   logger.With().Str("module", "DigestOrchestrator").Logger(),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// Run executes one digest pass. Any hard failure marks the run failed and returns the
// error with no result; there is no partial output.
func (o *DigestOrchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{
		RunID:     o.newRunID(),
		StartedAt: o.now(),
	}
	logger := o.logger.With().Str("run_id", result.RunID).Logger()
	logger.Info().Str("mode", o.mode).Msg("Starting digest run")

	historyID := o.recordStart(ctx, logger, result)

	err := o.execute(ctx, logger, result)
	result.FinishedAt = o.now()

	summary := o.buildSummary(result, err)
	o.recordCompletion(ctx, logger, historyID, summary, result)
	if o.deps.Notifier != nil {
		o.deps.Notifier.SendRunCompletionNotification(ctx, summary)
	}

	if err != nil {
		logger.Error().Err(err).Dur("duration", result.FinishedAt.Sub(result.StartedAt)).Msg("Digest run failed")
		return nil, err
	}

	logger.Info().
		Int("owners", result.Digest.Len()).
		Int("findings", result.Digest.TotalFindings()).
		Int("overdue", result.Digest.OverdueCount()).
		Dur("duration", result.FinishedAt.Sub(result.StartedAt)).
		Msg("Digest run completed")
	return result, nil
}

func (o *DigestOrchestrator) execute(ctx context.Context, logger zerolog.Logger, result *RunResult) error {
	logger.Info().Msg("Fetching findings register")
	rs, err := o.deps.Source.FetchAll(ctx)
	if err != nil {
		return err
	}
	result.Stats.TotalRecords = len(rs.Records)

	logger.Info().Int("records", len(rs.Records)).Msg("Extracting findings")
	findings, stats, err := o.deps.Extractor.ExtractWithStats(ctx, rs)
	if err != nil {
		return err
	}
	result.Findings = findings
	result.Stats = stats
	result.Digest = digest.BuildDigest(findings, result.StartedAt)

	if o.deps.Exporter != nil {
		path, err := o.deps.Exporter.WriteDigest(ctx, result.RunID, result.Digest)
		if err != nil {
			return err
		}
		result.ExportPath = path
	}
	return nil
}

func (o *DigestOrchestrator) recordStart(ctx context.Context, logger zerolog.Logger, result *RunResult) int64 {
	if o.deps.History == nil {
		return 0
	}
	id, err := o.deps.History.RecordRunStart(ctx, result.RunID, o.mode, result.StartedAt)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to record run start, continuing without history")
		return 0
	}
	return id
}

func (o *DigestOrchestrator) recordCompletion(ctx context.Context, logger zerolog.Logger, id int64, summary models.RunSummaryData, result *RunResult) {
	if o.deps.History == nil || id == 0 {
		return
	}
	entry := models.RunHistoryEntry{
		RunID:            result.RunID,
		Mode:             o.mode,
		StartTime:        result.StartedAt,
		EndTime:          &result.FinishedAt,
		Status:           summary.Status,
		TotalRecords:     summary.TotalRecords,
		InScopeFindings:  summary.InScopeFindings,
		OwnerCount:       summary.Owners,
		UnresolvedOwners: summary.UnresolvedOwners,
		UnresolvedEmails: summary.UnresolvedEmails,
		ExportPath:       summary.ParquetExportPath,
	}
	if len(summary.ErrorMessages) > 0 {
		entry.ErrorMessage = summary.ErrorMessages[0]
	}
	if err := o.deps.History.UpdateRunCompletion(context.WithoutCancel(ctx), id, entry); err != nil {
		logger.Warn().Err(err).Msg("Failed to record run completion")
	}
}

func (o *DigestOrchestrator) buildSummary(result *RunResult, runErr error) models.RunSummaryData {
	summary := models.GetDefaultRunSummaryData()
	summary.RunID = result.RunID
	summary.Mode = o.mode
	summary.Duration = result.FinishedAt.Sub(result.StartedAt)
	summary.TotalRecords = result.Stats.TotalRecords

	if runErr != nil {
		summary.Status = models.RunStatusFailed
		summary.ErrorMessages = append(summary.ErrorMessages, runErr.Error())
		return summary
	}

	summary.Status = models.RunStatusCompleted
	summary.InScopeFindings = result.Stats.InScope
	summary.UnresolvedOwners = result.Stats.UnresolvedOwners
	summary.UnresolvedEmails = result.Stats.UnresolvedEmails
	summary.Owners = result.Digest.Len()
	summary.OverdueFindings = result.Digest.OverdueCount()
	summary.ParquetExportPath = result.ExportPath
	return summary
}
