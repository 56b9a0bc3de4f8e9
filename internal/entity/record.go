package entity

import (
	"strings"

	"github.com/joseph-ayodele/faculty-tracker/constants"
)

// Fields is the fixed set of optional values a candidate can carry.
// An empty string means the field was not observed.
type Fields struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Department   string `json:"department"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ResearcherID string `json:"researcherId"`
}

// Get returns the value stored for kind.
func (f Fields) Get(kind constants.FieldKind) string {
	switch kind {
	case constants.FieldName:
		return f.Name
	case constants.FieldCategory:
		return f.Category
	case constants.FieldDepartment:
		return f.Department
	case constants.FieldEmail:
		return f.Email
	case constants.FieldPhone:
		return f.Phone
	case constants.FieldResearcherID:
		return f.ResearcherID
	}
	return ""
}

// Set stores v under kind. Unknown kinds are ignored.
func (f *Fields) Set(kind constants.FieldKind, v string) {
	v = strings.TrimSpace(v)
	switch kind {
	case constants.FieldName:
		f.Name = v
	case constants.FieldCategory:
		f.Category = v
	case constants.FieldDepartment:
		f.Department = v
	case constants.FieldEmail:
		f.Email = v
	case constants.FieldPhone:
		f.Phone = v
	case constants.FieldResearcherID:
		f.ResearcherID = v
	}
}

// SetIfEmpty fills kind only when nothing was recorded for it yet.
func (f *Fields) SetIfEmpty(kind constants.FieldKind, v string) {
	if f.Get(kind) == "" {
		f.Set(kind, v)
	}
}

// Count is the number of non-empty fields.
func (f Fields) Count() int {
	n := 0
	for _, k := range constants.AllFields {
		if f.Get(k) != "" {
			n++
		}
	}
	return n
}

// Provenance records which source and locator produced a record.
type Provenance struct {
	SourceKind constants.SourceKind `json:"sourceKind"`
	Locator    string               `json:"locator"`
}

// CandidateRecord is one unreconciled observation of a person.
type CandidateRecord struct {
	Fields     Fields     `json:"fields"`
	Provenance Provenance `json:"provenance"`
}

// NewCandidate builds a record from recognized fields.
func NewCandidate(fields Fields, kind constants.SourceKind, locator string) CandidateRecord {
	return CandidateRecord{
		Fields:     fields,
		Provenance: Provenance{SourceKind: kind, Locator: locator},
	}
}

// FieldCount is the number of populated fields.
func (c CandidateRecord) FieldCount() int {
	return c.Fields.Count()
}
