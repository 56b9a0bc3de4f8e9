package entity

import (
	"strings"

	"github.com/joseph-ayodele/faculty-tracker/constants"
)

// CanonicalEntity is the reconciled representative of one person.
// ContributingRecords holds every candidate of the cluster, winner included.
type CanonicalEntity struct {
	Name                string            `json:"name"`
	Category            string            `json:"category"`
	Department          string            `json:"department"`
	Email               string            `json:"email"`
	Phone               string            `json:"phone"`
	ResearcherID        string            `json:"researcherId"`
	ContributingRecords []CandidateRecord `json:"contributingRecords"`
}

// FromCandidate lifts a winning candidate into a canonical entity.
func FromCandidate(winner CandidateRecord, members []CandidateRecord) CanonicalEntity {
	f := winner.Fields
	return CanonicalEntity{
		Name:                f.Name,
		Category:            f.Category,
		Department:          f.Department,
		Email:               f.Email,
		Phone:               f.Phone,
		ResearcherID:        f.ResearcherID,
		ContributingRecords: members,
	}
}

// Fields returns the canonical values as a Fields value.
func (e CanonicalEntity) Fields() Fields {
	return Fields{
		Name:         e.Name,
		Category:     e.Category,
		Department:   e.Department,
		Email:        e.Email,
		Phone:        e.Phone,
		ResearcherID: e.ResearcherID,
	}
}

// Winner is the contributing record the canonical values were taken from.
func (e CanonicalEntity) Winner() CandidateRecord {
	f := e.Fields()
	for _, c := range e.ContributingRecords {
		if c.Fields == f {
			return c
		}
	}
	return CandidateRecord{Fields: f}
}

// Row is the flat output shape consumed by exporters.
type Row struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Department   string `json:"department"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ResearcherID string `json:"researcherId"`
	Sources      string `json:"sources,omitempty"`
	Locators     string `json:"locators,omitempty"`
}

// RowHeaders is the stable column order. Provenance columns come last.
var RowHeaders = []string{
	string(constants.FieldName),
	string(constants.FieldCategory),
	string(constants.FieldDepartment),
	string(constants.FieldEmail),
	string(constants.FieldPhone),
	string(constants.FieldResearcherID),
	"sources",
	"locators",
}

// Row flattens the entity. Provenance columns are filled only when withProvenance is set.
func (e CanonicalEntity) Row(withProvenance bool) Row {
	r := Row{
		Name:         e.Name,
		Category:     e.Category,
		Department:   e.Department,
		Email:        e.Email,
		Phone:        e.Phone,
		ResearcherID: e.ResearcherID,
	}
	if !withProvenance {
		return r
	}
	seen := map[constants.SourceKind]bool{}
	var kinds, locs []string
	for _, c := range e.ContributingRecords {
		if !seen[c.Provenance.SourceKind] {
			seen[c.Provenance.SourceKind] = true
			kinds = append(kinds, string(c.Provenance.SourceKind))
		}
		if c.Provenance.Locator != "" {
			locs = append(locs, c.Provenance.Locator)
		}
	}
	r.Sources = strings.Join(kinds, ",")
	r.Locators = strings.Join(locs, ";")
	return r
}

// Values returns the row as a slice in RowHeaders order.
func (r Row) Values(withProvenance bool) []string {
	v := []string{r.Name, r.Category, r.Department, r.Email, r.Phone, r.ResearcherID}
	if withProvenance {
		v = append(v, r.Sources, r.Locators)
	}
	return v
}

// Headers returns the column names matching Values.
func Headers(withProvenance bool) []string {
	if withProvenance {
		return append([]string(nil), RowHeaders...)
	}
	return append([]string(nil), RowHeaders[:len(constants.AllFields)]...)
}

// Rows flattens a canonical set.
func Rows(entities []CanonicalEntity, withProvenance bool) []Row {
	out := make([]Row, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Row(withProvenance))
	}
	return out
}
