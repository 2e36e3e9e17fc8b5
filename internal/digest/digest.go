// Package digest turns grouped findings into the per-owner payload consumed by mailers.
package digest

import (
	"encoding/json"
	"time"

	"github.com/aleister1102/grcdigest/internal/models"
)

// Item is a finding with its remediation deadline.
type Item struct {
	models.Finding
	DueDate time.Time
	Overdue bool
}

// MarshalJSON flattens the finding fields alongside due_date and overdue.
func (i Item) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(i.Finding)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	due, err := json.Marshal(models.FormatTimeOptional(i.DueDate, models.DateLayout))
	if err != nil {
		return nil, err
	}
	overdue, err := json.Marshal(i.Overdue)
	if err != nil {
		return nil, err
	}
	fields["due_date"] = due
	fields["overdue"] = overdue
	return json.Marshal(fields)
}

// OwnerDigest summarises one owner's findings.
type OwnerDigest struct {
	Owner         string         `json:"owner"`
	Email         string         `json:"email"`
	EmailResolved bool           `json:"email_resolved"`
	FindingCount  int            `json:"finding_count"`
	RiskCounts    map[string]int `json:"risk_counts"`
	OverdueCount  int            `json:"overdue_count"`
	Items         []Item         `json:"items"`
}

// Digest is the ordered set of owner digests for one run.
type Digest struct {
	GeneratedAt time.Time
	owners      []string
	byOwner     map[string]OwnerDigest
}

// BuildDigest creates one OwnerDigest per owner key in first-encounter order.
func BuildDigest(m *models.OwnerFindingsMap, now time.Time) *Digest {
	d := &Digest{
		GeneratedAt: now,
		byOwner:     make(map[string]OwnerDigest),
	}
	if m == nil {
		return d
	}

	today := startOfDay(now)
	for _, owner := range m.Owners() {
		findings := m.Findings(owner)
		od := OwnerDigest{
			Owner:        owner,
			FindingCount: len(findings),
			RiskCounts:   make(map[string]int),
			Items:        make([]Item, 0, len(findings)),
		}
		for _, f := range findings {
			if !od.EmailResolved && f.EmailResolved {
				od.Email = f.OwnerEmail
				od.EmailResolved = true
			}
			due := DueDate(f, now)
			item := Item{Finding: f, DueDate: due, Overdue: startOfDay(due).Before(today)}
			if item.Overdue {
				od.OverdueCount++
			}
			od.RiskCounts[f.RiskLevel]++
			od.Items = append(od.Items, item)
		}
		d.owners = append(d.owners, owner)
		d.byOwner[owner] = od
	}
	return d
}

// Owners returns the owner digests in first-encounter order.
func (d *Digest) Owners() []OwnerDigest {
	out := make([]OwnerDigest, 0, len(d.owners))
	for _, owner := range d.owners {
		out = append(out, d.byOwner[owner])
	}
	return out
}

// Get returns the digest for owner.
func (d *Digest) Get(owner string) (OwnerDigest, bool) {
	od, ok := d.byOwner[owner]
	return od, ok
}

// Len returns the number of owners.
func (d *Digest) Len() int {
	return len(d.owners)
}

// TotalFindings returns the number of items across all owners.
func (d *Digest) TotalFindings() int {
	total := 0
	for _, od := range d.byOwner {
		total += od.FindingCount
	}
	return total
}

// OverdueCount returns the number of overdue items across all owners.
func (d *Digest) OverdueCount() int {
	total := 0
	for _, od := range d.byOwner {
		total += od.OverdueCount
	}
	return total
}

// MarshalJSON writes an object keyed by owner, keys in first-encounter order.
func (d *Digest) MarshalJSON() ([]byte, error) {
	return models.MarshalOrderedObject(d.owners, func(owner string) any {
		return d.byOwner[owner]
	})
}
