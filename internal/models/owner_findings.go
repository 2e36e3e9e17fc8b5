package models

import (
	"bytes"
	"encoding/json"
)

// OwnerFindingsMap groups findings by owner display name.
// Owners keep first-encounter order and each owner's findings keep insertion order.
type OwnerFindingsMap struct {
	owners   []string
	findings map[string][]Finding
}

// NewOwnerFindingsMap creates an empty map.
func NewOwnerFindingsMap() *OwnerFindingsMap {
	return &OwnerFindingsMap{
		findings: make(map[string][]Finding),
	}
}

// Append adds f under the key f.Owner.
func (m *OwnerFindingsMap) Append(f Finding) {
	if _, ok := m.findings[f.Owner]; !ok {
		m.owners = append(m.owners, f.Owner)
	}
	m.findings[f.Owner] = append(m.findings[f.Owner], f)
}

// Owners returns the owner keys in first-encounter order.
func (m *OwnerFindingsMap) Owners() []string {
	out := make([]string, len(m.owners))
	copy(out, m.owners)
	return out
}

// Findings returns a copy of the findings stored under owner.
func (m *OwnerFindingsMap) Findings(owner string) []Finding {
	src := m.findings[owner]
	out := make([]Finding, len(src))
	copy(out, src)
	return out
}

// Has reports whether owner is a key of the map.
func (m *OwnerFindingsMap) Has(owner string) bool {
	_, ok := m.findings[owner]
	return ok
}

// Len returns the number of owners.
func (m *OwnerFindingsMap) Len() int {
	return len(m.owners)
}

// TotalFindings returns the number of findings across all owners.
func (m *OwnerFindingsMap) TotalFindings() int {
	total := 0
	for _, fs := range m.findings {
		total += len(fs)
	}
	return total
}

// All flattens the map in owner order.
func (m *OwnerFindingsMap) All() []Finding {
	out := make([]Finding, 0, m.TotalFindings())
	for _, owner := range m.owners {
		out = append(out, m.findings[owner]...)
	}
	return out
}

// MarshalJSON writes a single object keyed by owner, keys in first-encounter order.
func (m *OwnerFindingsMap) MarshalJSON() ([]byte, error) {
	return MarshalOrderedObject(m.owners, func(owner string) any {
		return m.findings[owner]
	})
}

// MarshalOrderedObject encodes a JSON object whose keys keep the given order.
func MarshalOrderedObject(keys []string, valueFor func(key string) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(valueFor(key))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
