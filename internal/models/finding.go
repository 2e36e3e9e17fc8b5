package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar-date layout used when findings are serialised.
const DateLayout = "2006-01-02"

// UnresolvedOwnerKey groups findings whose owner could not be resolved from any candidate field.
const UnresolvedOwnerKey = "(unresolved)"

// OwnerSource records which candidate field supplied a finding's owner.
type OwnerSource string

const (
	OwnerSourceRemediationOwner OwnerSource = "Remediation Owner"
	OwnerSourceBusinessOwner    OwnerSource = "Business Owner"
	OwnerSourceCreatedBy        OwnerSource = "Created By"
	OwnerSourceUnresolved       OwnerSource = "Unresolved"
)

// DateSource records which candidate field supplied a finding's date.
type DateSource string

const (
	DateSourceRemediationDate DateSource = "Remediation date"
	DateSourceDateFirstFound  DateSource = "Date first found"
	DateSourceCreateDate      DateSource = "Create Date"
)

// Internet facing classifications. Any other upstream value is carried through verbatim.
const (
	InternetFacingYes          = "Yes"
	InternetFacingNo           = "No"
	InternetFacingNotAvailable = "N/A"
)

// Finding is one in-scope register entry after extraction.
type Finding struct {
	FindingName       string      `json:"finding_name"`
	RiskLevel         string      `json:"risk_level"`
	Owner             string      `json:"owner"`
	OwnerSource       OwnerSource `json:"owner_source"`
	RemediationStatus string      `json:"remediation_status"`
	AssetName         string      `json:"asset_name"`
	DateFound         time.Time   `json:"-"`
	DateSourceField   DateSource  `json:"date_source_field"`
	OwnerEmail        string      `json:"owner_email"`
	EmailResolved     bool        `json:"email_resolved"`
	RecordID          string      `json:"record_id"`
	InternetFacing    string      `json:"internet_facing"`
}

// MarshalJSON renders DateFound as a calendar date.
func (f Finding) MarshalJSON() ([]byte, error) {
	type findingAlias Finding
	return json.Marshal(struct {
		findingAlias
		DateFound string `json:"date_found"`
	}{
		findingAlias: findingAlias(f),
		DateFound:    FormatTimeOptional(f.DateFound, DateLayout),
	})
}

// UnmarshalJSON parses the calendar date written by MarshalJSON.
func (f *Finding) UnmarshalJSON(data []byte) error {
	type findingAlias Finding
	aux := struct {
		*findingAlias
		DateFound string `json:"date_found"`
	}{findingAlias: (*findingAlias)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.DateFound == "" {
		f.DateFound = time.Time{}
		return nil
	}
	t, err := time.Parse(DateLayout, aux.DateFound)
	if err != nil {
		return err
	}
	f.DateFound = t
	return nil
}

// IsUnresolvedOwner reports whether the finding sits in the unresolved bucket.
func (f Finding) IsUnresolvedOwner() bool {
	return f.OwnerSource == OwnerSourceUnresolved
}
