package models

import "time"

// RunHistoryEntry is one row of the run_history audit table.
type RunHistoryEntry struct {
	ID               int64
	RunID            string
	Mode             string
	StartTime        time.Time
	EndTime          *time.Time
	Status           RunStatus
	TotalRecords     int
	InScopeFindings  int
	OwnerCount       int
	UnresolvedOwners int
	UnresolvedEmails int
	ErrorMessage     string
	ExportPath       string
}
