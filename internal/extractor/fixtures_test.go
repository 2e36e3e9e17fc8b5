package extractor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aleister1102/grcdigest/internal/models"
	"github.com/stretchr/testify/require"
)

// recordFixture builds a findings register entry with every positional field present as {}.
type recordFixture struct {
	id       any
	sections [][]map[string]any
}

var fixtureFieldCounts = []int{3, 19, 1, 8, 4, 8}

func newRecordFixture(id any) *recordFixture {
	f := &recordFixture{id: id}
	for _, n := range fixtureFieldCounts {
		fields := make([]map[string]any, n)
		for i := range fields {
			fields[i] = map[string]any{}
		}
		f.sections = append(f.sections, fields)
	}
	return f
}

// openRecord is an in-scope finding owned by owner with a dd/mm/yy remediation date.
func openRecord(id any, owner, date string) *recordFixture {
	return newRecordFixture(id).
		simple(FieldStatus, "Open").
		simple(FieldCategory, "Vulnerability").
		simple(FieldFindingName, "Outdated TLS").
		simple(FieldRiskLevel, "High").
		simple(FieldAssetName, "web-01").
		simple(FieldRemediationDate, date).
		display(FieldRemediationOwner, owner)
}

func (f *recordFixture) simple(ref FieldRef, values ...any) *recordFixture {
	if values == nil {
		values = []any{}
	}
	f.sections[ref.Section][ref.Field] = map[string]any{"simpleValue": values}
	return f
}

func (f *recordFixture) display(ref FieldRef, values ...any) *recordFixture {
	if values == nil {
		values = []any{}
	}
	f.sections[ref.Section][ref.Field] = map[string]any{
		"parameters": map[string]any{"displayValues": values},
	}
	return f
}

func (f *recordFixture) set(ref FieldRef, obj map[string]any) *recordFixture {
	f.sections[ref.Section][ref.Field] = obj
	return f
}

func (f *recordFixture) raw(t *testing.T) models.RawRecord {
	t.Helper()
	sections := make([]map[string]any, len(f.sections))
	for i, fields := range f.sections {
		sections[i] = map[string]any{"fields": fields}
	}
	data, err := json.Marshal(map[string]any{
		"record": map[string]any{"id": f.id, "sections": sections},
	})
	require.NoError(t, err)
	return data
}

func (f *recordFixture) record(t *testing.T) Record {
	return NewRecord(f.raw(t))
}

func resultSet(t *testing.T, fixtures ...*recordFixture) *models.ResultSet {
	rs := &models.ResultSet{TotalCount: len(fixtures)}
	for _, f := range fixtures {
		rs.Records = append(rs.Records, f.raw(t))
	}
	return rs
}

type fakeFacing struct {
	values map[string]string
	err    error
	calls  int
}

func (f *fakeFacing) LookupInternetFacing(_ context.Context, assetName string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if v, ok := f.values[assetName]; ok {
		return v, nil
	}
	return models.InternetFacingNotAvailable, nil
}

type fakeEmail struct {
	emails map[string]string
	err    error
	calls  int
	names  []string
}

func (f *fakeEmail) LookupEmail(_ context.Context, ownerName string) (EmailResult, error) {
	f.calls++
	f.names = append(f.names, ownerName)
	if f.err != nil {
		return EmailResult{}, f.err
	}
	if v, ok := f.emails[FirstNameToken(ownerName)]; ok {
		return EmailResult{Email: v, Resolved: true}, nil
	}
	return EmailResult{}, nil
}

type fakeSearcher struct {
	body  string
	err   error
	calls []string
}

func (f *fakeSearcher) SearchAssets(_ context.Context, assetName string) ([]byte, error) {
	f.calls = append(f.calls, assetName)
	return []byte(f.body), f.err
}

func (f *fakeSearcher) SearchUsers(_ context.Context, name string) ([]byte, error) {
	f.calls = append(f.calls, name)
	return []byte(f.body), f.err
}
