package extractor

import (
	"fmt"

	"github.com/aleister1102/grcdigest/internal/models"
	"github.com/tidwall/gjson"
)

// FieldRef names one positional field of a register entry: section index then field index.
// These are the only places that know the register layout.
type FieldRef struct {
	Name    string
	Section int
	Field   int
}

// Findings register layout.
var (
	FieldCreateDate        = FieldRef{Name: "Create Date", Section: 0, Field: 1}
	FieldCreatedBy         = FieldRef{Name: "Created By", Section: 0, Field: 2}
	FieldCategory          = FieldRef{Name: "Category", Section: 1, Field: 0}
	FieldFindingName       = FieldRef{Name: "Finding Name", Section: 1, Field: 5}
	FieldAssetName         = FieldRef{Name: "Asset Name", Section: 2, Field: 0}
	FieldDateFirstFound    = FieldRef{Name: "Date First Found", Section: 3, Field: 7}
	FieldRiskLevel         = FieldRef{Name: "Risk Rating", Section: 4, Field: 3}
	FieldStatus            = FieldRef{Name: "Remediation Status", Section: 5, Field: 2}
	FieldRemediationDate   = FieldRef{Name: "Remediation Date", Section: 5, Field: 3}
	FieldBusinessOwner     = FieldRef{Name: "Business Owner", Section: 5, Field: 6}
	FieldRemediationOwner  = FieldRef{Name: "Remediation Owner", Section: 5, Field: 7}
	FieldAssetInternetFace = FieldRef{Name: "Internet Facing", Section: 1, Field: 18}
)

const (
	recordIDPath     = "record.id"
	firstUserEmail   = "records.0.email"
	firstAssetRecord = "records.0"
	simpleValueKey   = "simpleValue"
)

// Path returns the gjson path of the field object inside a record envelope.
func (f FieldRef) Path() string {
	return fmt.Sprintf("record.sections.%d.fields.%d", f.Section, f.Field)
}

// Record is a read-only accessor over one raw register entry.
type Record struct {
	root gjson.Result
}

// NewRecord wraps a raw record. Invalid JSON yields a record where every field is absent.
func NewRecord(raw models.RawRecord) Record {
	return Record{root: gjson.ParseBytes(raw)}
}

func newRecordFromResult(res gjson.Result) Record {
	return Record{root: res}
}

// ID returns record.id as a string, or "" when absent.
func (r Record) ID() string {
	return r.root.Get(recordIDPath).String()
}

// Field returns the raw field object.
func (r Record) Field(f FieldRef) gjson.Result {
	return r.root.Get(f.Path())
}

// HasSimpleValue reports whether the field carries a simple value. A missing key,
// a null and an empty array all count as absent; an empty string does not.
func (r Record) HasSimpleValue(f FieldRef) bool {
	v := r.Field(f).Get(simpleValueKey)
	switch {
	case !v.Exists(), v.Type == gjson.Null:
		return false
	case v.IsArray():
		return len(v.Array()) > 0
	default:
		return true
	}
}

// SimpleValue returns the first simple value of the field.
// Scalar simple values are returned as is.
func (r Record) SimpleValue(f FieldRef) (string, bool) {
	v := r.Field(f).Get(simpleValueKey)
	if v.IsArray() {
		v = v.Get("0")
	}
	if !v.Exists() || v.Type == gjson.Null || v.IsObject() || v.IsArray() {
		return "", false
	}
	return v.String(), true
}

// NonEmptySimpleValue is SimpleValue restricted to non-empty strings.
func (r Record) NonEmptySimpleValue(f FieldRef) (string, bool) {
	s, ok := r.SimpleValue(f)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

type displayLookup int

const (
	displayFound displayLookup = iota
	displayMissing
	displayMalformed
)

// displayValue reads parameters.displayValues[0]. A field object without a parameters
// key, a parameters object without displayValues, or an empty first value is missing.
// Anything that cannot be indexed is malformed: the field absent at its position, a
// parameters or displayValues node of the wrong type (null included) or an empty
// displayValues array.
func (r Record) displayValue(f FieldRef) (string, displayLookup) {
	field := r.Field(f)
	if !field.IsObject() {
		return "", displayMalformed
	}
	params := field.Get("parameters")
	if !params.Exists() {
		return "", displayMissing
	}
	if !params.IsObject() {
		return "", displayMalformed
	}
	values := params.Get("displayValues")
	if !values.Exists() {
		return "", displayMissing
	}
	if !values.IsArray() || len(values.Array()) == 0 {
		return "", displayMalformed
	}
	first := values.Get("0")
	if !truthy(first) {
		return "", displayMissing
	}
	return first.String(), displayFound
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True:
		return true
	case gjson.JSON:
		return len(v.Array()) > 0 || len(v.Map()) > 0
	default:
		return false
	}
}
