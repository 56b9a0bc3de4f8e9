package entity

import (
	"time"

	"github.com/joseph-ayodele/faculty-tracker/constants"
)

// Document is a discovered input file.
type Document struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256,omitempty"`
	Size   int64  `json:"size"`
}

// PageText is the text a strategy recovered for one page (1-based).
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// Table is a grid of cells recovered from one page. Rows[0] is usually the header.
type Table struct {
	Page int        `json:"page"`
	Rows [][]string `json:"rows"`
}

// ExtractionOutcome is the tagged result of one strategy on one document.
type ExtractionOutcome struct {
	Strategy    constants.Strategy      `json:"strategy"`
	Status      constants.OutcomeStatus `json:"status"`
	Pages       []PageText              `json:"pages,omitempty"`
	Tables      []Table                 `json:"tables,omitempty"`
	Confidence  float32                 `json:"confidence,omitempty"`
	ErrorDetail string                  `json:"errorDetail,omitempty"`
	Duration    time.Duration           `json:"durationNs"`
}

// Succeeded reports whether the strategy produced a usable payload.
func (o ExtractionOutcome) Succeeded() bool {
	return o.Status == constants.OutcomeSuccess
}

// Text joins all page text of the outcome.
func (o ExtractionOutcome) Text() string {
	n := 0
	for _, p := range o.Pages {
		n += len(p.Text) + 1
	}
	b := make([]byte, 0, n)
	for i, p := range o.Pages {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, p.Text...)
	}
	return string(b)
}

// DocumentMetadata describes the document the ensemble ran on.
type DocumentMetadata struct {
	Path        string    `json:"path"`
	SizeBytes   int64     `json:"sizeBytes"`
	SHA256      string    `json:"sha256,omitempty"`
	NumPages    int       `json:"numPages"`
	Title       string    `json:"title,omitempty"`
	Author      string    `json:"author,omitempty"`
	Creator     string    `json:"creator,omitempty"`
	ExtractedAt time.Time `json:"extractedAt"`
	Error       string    `json:"error,omitempty"`
}

// ExtractionReport holds one outcome per strategy, in fixed strategy order.
type ExtractionReport struct {
	Metadata DocumentMetadata    `json:"metadata"`
	Outcomes []ExtractionOutcome `json:"outcomes"`
}

// Outcome returns the outcome recorded for s.
func (r ExtractionReport) Outcome(s constants.Strategy) (ExtractionOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Strategy == s {
			return o, true
		}
	}
	return ExtractionOutcome{}, false
}

// Failed lists strategies that did not succeed.
func (r ExtractionReport) Failed() []constants.Strategy {
	var out []constants.Strategy
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			out = append(out, o.Strategy)
		}
	}
	return out
}
