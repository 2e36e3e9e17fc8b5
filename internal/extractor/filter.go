package extractor

import "strings"

// ExclusionReason says why a record is out of scope.
type ExclusionReason string

const (
	ReasonNone             ExclusionReason = ""
	ReasonRemediated       ExclusionReason = "remediated"
	ReasonClosed           ExclusionReason = "closed"
	ReasonRedTeamExercise  ExclusionReason = "red_team_exercise"
	ReasonMissingAssetName ExclusionReason = "missing_asset_name"
	ReasonUnparseableDate  ExclusionReason = "unparseable_date"
)

const (
	statusRemediated   = "Remediated"
	statusClosedToken  = "Closed"
	categoryRedTeamExc = "Red Team Exercise"
)

// RecordFilter is the in-scope predicate. It never fails on missing optional fields.
type RecordFilter struct{}

// Evaluate checks, in order: remediated status, closed status, red team category, absent asset name.
func (RecordFilter) Evaluate(rec Record) (bool, ExclusionReason) {
	if status, ok := rec.SimpleValue(FieldStatus); ok {
		if status == statusRemediated {
			return false, ReasonRemediated
		}
		if strings.SplitN(status, " ", 2)[0] == statusClosedToken {
			return false, ReasonClosed
		}
	}
	if category, ok := rec.SimpleValue(FieldCategory); ok && category == categoryRedTeamExc {
		return false, ReasonRedTeamExercise
	}
	if !rec.HasSimpleValue(FieldAssetName) {
		return false, ReasonMissingAssetName
	}
	return true, ReasonNone
}

// IsInScope reports whether the record passes every exclusion check.
func (f RecordFilter) IsInScope(rec Record) bool {
	ok, _ := f.Evaluate(rec)
	return ok
}
