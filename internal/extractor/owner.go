package extractor

import (
	"github.com/aleister1102/grcdigest/internal/models"
)

// OwnerResult is the resolved owner display name with its provenance.
// Source is OwnerSourceUnresolved when no candidate supplied a value.
type OwnerResult struct {
	Name   string
	Source models.OwnerSource
}

// Resolved reports whether a candidate field supplied the owner.
func (o OwnerResult) Resolved() bool {
	return o.Source != models.OwnerSourceUnresolved && o.Name != ""
}

// Key is the grouping key for this owner.
func (o OwnerResult) Key() string {
	if !o.Resolved() {
		return models.UnresolvedOwnerKey
	}
	return o.Name
}

type ownerValue struct {
	name      string
	malformed bool
}

// OwnerResolver walks Remediation Owner, Business Owner then Created By.
type OwnerResolver struct {
	candidates []Candidate[ownerValue, models.OwnerSource]
}

func NewOwnerResolver() *OwnerResolver {
	return &OwnerResolver{
		candidates: []Candidate[ownerValue, models.OwnerSource]{
			{Label: models.OwnerSourceRemediationOwner, Extract: displayValueOf(FieldRemediationOwner)},
			{Label: models.OwnerSourceBusinessOwner, Extract: displayValueOf(FieldBusinessOwner)},
			{Label: models.OwnerSourceCreatedBy, Extract: displayValueOf(FieldCreatedBy)},
		},
	}
}

// displayValueOf treats a malformed field as present so the chain stops there.
func displayValueOf(f FieldRef) func(Record) (ownerValue, bool) {
	return func(r Record) (ownerValue, bool) {
		name, outcome := r.displayValue(f)
		switch outcome {
		case displayFound:
			return ownerValue{name: name}, true
		case displayMalformed:
			return ownerValue{malformed: true}, true
		default:
			return ownerValue{}, false
		}
	}
}

// Resolve returns the first truthy display value, or an unresolved result when every
// candidate is missing or a candidate has an unexpected shape.
func (r *OwnerResolver) Resolve(rec Record) OwnerResult {
	v, source, ok := FirstPresent(rec, r.candidates)
	if !ok || v.malformed {
		return OwnerResult{Source: models.OwnerSourceUnresolved}
	}
	return OwnerResult{Name: v.name, Source: source}
}
