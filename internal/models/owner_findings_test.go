package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFinding(owner, id string) Finding {
	return Finding{
		FindingName:     "Outdated TLS",
		RiskLevel:       "High",
		Owner:           owner,
		OwnerSource:     OwnerSourceRemediationOwner,
		AssetName:       "web-01",
		DateFound:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		DateSourceField: DateSourceRemediationDate,
		RecordID:        id,
		InternetFacing:  InternetFacingYes,
	}
}

func TestOwnerFindingsMap_KeepsEncounterOrder(t *testing.T) {
	m := NewOwnerFindingsMap()
	m.Append(newFinding("Zed", "1"))
	m.Append(newFinding("Alice", "2"))
	m.Append(newFinding("Zed", "3"))

	assert.Equal(t, []string{"Zed", "Alice"}, m.Owners())
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 3, m.TotalFindings())

	zed := m.Findings("Zed")
	require.Len(t, zed, 2)
	assert.Equal(t, "1", zed[0].RecordID)
	assert.Equal(t, "3", zed[1].RecordID)

	for _, owner := range m.Owners() {
		for _, f := range m.Findings(owner) {
			assert.Equal(t, owner, f.Owner)
		}
	}

	all := m.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"1", "3", "2"}, []string{all[0].RecordID, all[1].RecordID, all[2].RecordID})
}

func TestOwnerFindingsMap_ReturnsCopies(t *testing.T) {
	m := NewOwnerFindingsMap()
	m.Append(newFinding("Alice", "1"))

	owners := m.Owners()
	owners[0] = "Mallory"
	fs := m.Findings("Alice")
	fs[0].Owner = "Mallory"

	assert.True(t, m.Has("Alice"))
	assert.False(t, m.Has("Mallory"))
	assert.Equal(t, "Alice", m.Findings("Alice")[0].Owner)
}

func TestOwnerFindingsMap_MarshalJSON(t *testing.T) {
	m := NewOwnerFindingsMap()
	m.Append(newFinding("Zed", "1"))
	m.Append(newFinding("Alice", "2"))

	data, err := json.Marshal(m)
	require.NoError(t, err)

	// key order follows first encounter, not alphabetical order
	assert.Less(t, strings.Index(string(data), `"Zed"`), strings.Index(string(data), `"Alice"`))

	var decoded map[string][]Finding
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded["Alice"], 1)
	assert.Equal(t, "2", decoded["Alice"][0].RecordID)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), decoded["Alice"][0].DateFound)
}

func TestOwnerFindingsMap_EmptyMarshalsToObject(t *testing.T) {
	data, err := json.Marshal(NewOwnerFindingsMap())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestFinding_MarshalJSON_DateLayout(t *testing.T) {
	data, err := json.Marshal(newFinding("Alice", "42"))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "2024-03-15", raw["date_found"])
	assert.Equal(t, "Remediation Owner", raw["owner_source"])
	assert.Equal(t, "Remediation date", raw["date_source_field"])
	assert.Equal(t, "42", raw["record_id"])
	assert.Contains(t, raw, "owner_email")
	assert.NotContains(t, raw, "id")
	assert.NotContains(t, raw, "email")
	assert.Equal(t, false, raw["email_resolved"])
}

func TestResultSet_IsComplete(t *testing.T) {
	rs := &ResultSet{TotalCount: 2, Records: []RawRecord{RawRecord(`{}`), RawRecord(`{}`)}}
	assert.True(t, rs.IsComplete())

	rs.TotalCount = 3
	assert.False(t, rs.IsComplete())

	var nilSet *ResultSet
	assert.False(t, nilSet.IsComplete())
}
