package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
	"github.com/joseph-ayodele/faculty-tracker/internal/probe"
	"github.com/joseph-ayodele/faculty-tracker/internal/profile"
	"github.com/joseph-ayodele/faculty-tracker/internal/reconcile"
)

// StrategyStatus is one strategy's verdict on one document.
type StrategyStatus struct {
	Strategy constants.Strategy      `json:"strategy"`
	Status   constants.OutcomeStatus `json:"status"`
	Error    string                  `json:"error,omitempty"`
}

type DocumentSummary struct {
	Path       string           `json:"path"`
	Pages      int              `json:"pages"`
	Strategies []StrategyStatus `json:"strategies"`
	Candidates int              `json:"candidates"`
	Duration   time.Duration    `json:"durationNs"`
}

type Durations struct {
	Probe     time.Duration `json:"probeNs"`
	Profiles  time.Duration `json:"profilesNs"`
	Documents time.Duration `json:"documentsNs"`
	Reconcile time.Duration `json:"reconcileNs"`
	Total     time.Duration `json:"totalNs"`
}

// Summary describes what a run did, stage by stage.
type Summary struct {
	RunID      uuid.UUID                    `json:"runId"`
	StartedAt  time.Time                    `json:"startedAt"`
	Intervals  []probe.IntervalStats        `json:"intervals,omitempty"`
	Profiles   profile.CollectStats         `json:"profiles"`
	Documents  []DocumentSummary            `json:"documents,omitempty"`
	Candidates map[constants.SourceKind]int `json:"candidates"`
	Dropped    int                          `json:"dropped"`
	Canonical  int                          `json:"canonical"`
	Durations  Durations                    `json:"durations"`
}

func newSummary(runID uuid.UUID, start time.Time) Summary {
	return Summary{RunID: runID, StartedAt: start, Candidates: map[constants.SourceKind]int{}}
}

func (s *Summary) addDocument(path string, rep entity.ExtractionReport, candidates int, d time.Duration) {
	ds := DocumentSummary{
		Path:       path,
		Pages:      rep.Metadata.NumPages,
		Candidates: candidates,
		Duration:   d,
	}
	for _, o := range rep.Outcomes {
		ds.Strategies = append(ds.Strategies, StrategyStatus{Strategy: o.Strategy, Status: o.Status, Error: o.ErrorDetail})
	}
	s.Documents = append(s.Documents, ds)
}

func (s *Summary) finish(candidates []entity.CandidateRecord, rec reconcile.Result) {
	for _, c := range candidates {
		s.Candidates[c.Provenance.SourceKind]++
	}
	s.Dropped = rec.Dropped
	s.Canonical = len(rec.Entities)
	s.Durations.Total = time.Since(s.StartedAt)
}

// Found is the number of profiles the probe accepted.
func (s Summary) Found() int {
	n := 0
	for _, st := range s.Intervals {
		n += st.Found
	}
	return n
}
