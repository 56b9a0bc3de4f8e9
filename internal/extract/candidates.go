package extract

import (
	"fmt"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
	"github.com/joseph-ayodele/faculty-tracker/internal/recognize"
)

// Candidates runs the recognizer over every successful outcome of report.
// Page text yields pdfText records located as path#strategy:pN:lM, tables yield
// pdfTable records located as path#strategy:tK:rR (all 1-based).
func Candidates(report entity.ExtractionReport, r *recognize.Recognizer) []entity.CandidateRecord {
	path := report.Metadata.Path
	var out []entity.CandidateRecord
	for _, o := range report.Outcomes {
		if !o.Succeeded() {
			continue
		}
		for _, p := range o.Pages {
			for _, m := range r.RecognizeText(p.Text) {
				loc := fmt.Sprintf("%s#%s:p%d:l%d", path, o.Strategy, p.Page, m.Line)
				out = append(out, entity.NewCandidate(m.Fields, constants.SourcePDFText, loc))
			}
		}
		for k, t := range o.Tables {
			for _, m := range r.RecordsFromTable(t.Rows) {
				loc := fmt.Sprintf("%s#%s:t%d:r%d", path, o.Strategy, k+1, m.Row+1)
				out = append(out, entity.NewCandidate(m.Fields, constants.SourcePDFTable, loc))
			}
		}
	}
	return out
}
