// Package extractor turns raw findings register entries into findings grouped by owner.
package extractor

import (
	"context"
	"fmt"

	"github.com/aleister1102/grcdigest/internal/common/errorwrapper"
	"github.com/aleister1102/grcdigest/internal/config"
	"github.com/aleister1102/grcdigest/internal/models"
	"github.com/rs/zerolog"
)

// Stats counts what happened to each record of one extraction run.
type Stats struct {
	TotalRecords     int                     `json:"total_records"`
	InScope          int                     `json:"in_scope"`
	Excluded         map[ExclusionReason]int `json:"excluded"`
	UnparseableDates int                     `json:"unparseable_dates"`
	UnresolvedOwners int                     `json:"unresolved_owners"`
	UnresolvedEmails int                     `json:"unresolved_emails"`
}

func newStats() Stats {
	return Stats{Excluded: make(map[ExclusionReason]int)}
}

// FindingExtractor composes the filter, resolvers and lookups over a complete result set.
type FindingExtractor struct {
	filter RecordFilter
	dates  *DateResolver
	owners *OwnerResolver
	facing AssetFacingLookup
	email  EmailLookup
	cfg    config.ExtractorConfig
	logger zerolog.Logger
}

// NewFindingExtractor creates an extractor. Lookup memoisation, when enabled,
// is scoped to a single Extract call.
func NewFindingExtractor(facing AssetFacingLookup, email EmailLookup, cfg config.ExtractorConfig, logger zerolog.Logger) *FindingExtractor {
	return &FindingExtractor{
		dates:  NewDateResolver(),
		owners: NewOwnerResolver(),
		facing: facing,
		email:  email,
		cfg:    cfg,
		logger: logger.With().Str("component", "FindingExtractor").Logger(),
	}
}

// Extract returns the owner grouping for rs. See ExtractWithStats.
func (e *FindingExtractor) Extract(ctx context.Context, rs *models.ResultSet) (*models.OwnerFindingsMap, error) {
	out, _, err := e.ExtractWithStats(ctx, rs)
	return out, err
}

// ExtractWithStats processes records in arrival order, one at a time. It refuses an
// incomplete result set before producing any finding and returns no partial output on
// a hard upstream failure.
func (e *FindingExtractor) ExtractWithStats(ctx context.Context, rs *models.ResultSet) (*models.OwnerFindingsMap, Stats, error) {
	stats := newStats()
	if rs == nil {
		return nil, stats, errorwrapper.NewValidationError("result_set", nil, "result set is nil")
	}
	if !rs.IsComplete() {
		return nil, stats, fmt.Errorf("%w: %d != %d", models.ErrRecordCountMismatch, rs.TotalCount, len(rs.Records))
	}

	facing, email, err := e.runLookups()
	if err != nil {
		return nil, stats, err
	}

	out := models.NewOwnerFindingsMap()
	for _, raw := range rs.Records {
		if err := ctx.Err(); err != nil {
			return nil, stats, errorwrapper.WrapError(err, "extraction cancelled")
		}
		stats.TotalRecords++

		rec := NewRecord(raw)
		recordID := rec.ID()

		if ok, reason := e.filter.Evaluate(rec); !ok {
			stats.Excluded[reason]++
			e.logger.Debug().Str("record_id", recordID).Str("reason", string(reason)).Msg("Record out of scope")
			continue
		}

		date := e.dates.Resolve(rec)
		if !date.Parsed() {
			stats.Excluded[ReasonUnparseableDate]++
			stats.UnparseableDates++
			e.logger.Debug().Str("record_id", recordID).Str("raw_date", date.Raw).Str("date_source", string(date.Source)).Msg("Record date unparseable")
			continue
		}

		owner := e.owners.Resolve(rec)
		if !owner.Resolved() {
			stats.UnresolvedOwners++
			e.logger.Warn().Str("record_id", recordID).Msg("No owner candidate found, grouping under unresolved")
		}

		assetName, _ := rec.SimpleValue(FieldAssetName)
		internetFacing, err := facing.LookupInternetFacing(ctx, assetName)
		if err != nil {
			return nil, stats, errorwrapper.WrapError(err, fmt.Sprintf("internet facing lookup failed for record %s", recordID))
		}

		var emailResult EmailResult
		if owner.Resolved() {
			emailResult, err = email.LookupEmail(ctx, owner.Name)
			if err != nil {
				return nil, stats, errorwrapper.WrapError(err, fmt.Sprintf("email lookup failed for record %s", recordID))
			}
		}
		if !emailResult.Resolved {
			stats.UnresolvedEmails++
		}

		findingName, _ := rec.SimpleValue(FieldFindingName)
		riskLevel, _ := rec.SimpleValue(FieldRiskLevel)
		status, _ := rec.SimpleValue(FieldStatus)

		out.Append(models.Finding{
			FindingName:       findingName,
			RiskLevel:         riskLevel,
			Owner:             owner.Key(),
			OwnerSource:       owner.Source,
			RemediationStatus: status,
			AssetName:         assetName,
			DateFound:         date.Date,
			DateSourceField:   date.Source,
			OwnerEmail:        emailResult.Email,
			EmailResolved:     emailResult.Resolved,
			RecordID:          recordID,
			InternetFacing:    internetFacing,
		})
		stats.InScope++
	}

	e.logger.Info().
		Int("total_records", stats.TotalRecords).
		Int("in_scope", stats.InScope).
		Int("owners", out.Len()).
		Int("unresolved_owners", stats.UnresolvedOwners).
		Int("unresolved_emails", stats.UnresolvedEmails).
		Msg("Extraction complete")

	return out, stats, nil
}

// runLookups wraps the lookups in fresh caches so nothing is shared between runs.
func (e *FindingExtractor) runLookups() (AssetFacingLookup, EmailLookup, error) {
	if !e.cfg.CacheLookups {
		return e.facing, e.email, nil
	}
	size := e.cfg.LookupCacheSize
	if size <= 0 {
		size = config.DefaultExtractorLookupCacheSize
	}
	facing, err := NewCachedFacingLookup(e.facing, size)
	if err != nil {
		return nil, nil, err
	}
	email, err := NewCachedEmailLookup(e.email, size)
	if err != nil {
		return nil, nil, err
	}
	return facing, email, nil
}
