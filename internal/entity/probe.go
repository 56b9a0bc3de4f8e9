package entity

import (
	"strconv"

	"github.com/joseph-ayodele/faculty-tracker/constants"
)

// ProbeResult is the verdict for one probed identifier.
type ProbeResult struct {
	NumericID   int64  `json:"numericId"`
	Exists      bool   `json:"exists"`
	DisplayName string `json:"displayName,omitempty"`
	SourceURL   string `json:"sourceUrl"`
}

// Record converts an accepted probe into a candidate record.
func (p ProbeResult) Record() CandidateRecord {
	var f Fields
	f.Set(constants.FieldName, p.DisplayName)
	loc := p.SourceURL
	if loc == "" {
		loc = "id:" + strconv.FormatInt(p.NumericID, 10)
	}
	return NewCandidate(f, constants.SourceProbe, loc)
}
