package models

import (
	"encoding/json"
	"errors"
)

// ErrRecordCountMismatch means a result set does not hold exactly totalCount distinct records.
var ErrRecordCountMismatch = errors.New("record count does not match totalCount")

// RawRecord is one register entry exactly as delivered by the API.
// It is addressed positionally and never mutated.
type RawRecord = json.RawMessage

// ResultSet is the aggregate of every page of a register search.
type ResultSet struct {
	TotalCount int         `json:"totalCount"`
	MaxPage    int         `json:"maxPage"`
	Records    []RawRecord `json:"records"`
}

// IsComplete reports whether the flattened records cover totalCount exactly.
func (rs *ResultSet) IsComplete() bool {
	return rs != nil && len(rs.Records) == rs.TotalCount
}
