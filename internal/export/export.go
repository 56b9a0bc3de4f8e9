// Package export writes canonical entity sets and extraction reports to files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/common"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

// WriteCSV writes a header line and one line per entity.
func WriteCSV(w io.Writer, entities []entity.CanonicalEntity, withProvenance bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(entity.Headers(withProvenance)); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, r := range entity.Rows(entities, withProvenance) {
		if err := cw.Write(r.Values(withProvenance)); err != nil {
			return fmt.Errorf("csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the rows as an indented array. Every row is validated first;
// nothing is written when one fails.
func WriteJSON(w io.Writer, entities []entity.CanonicalEntity, withProvenance bool) error {
	rows := entity.Rows(entities, withProvenance)
	for _, r := range rows {
		if err := ValidateRow(r); err != nil {
			return err
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// WriteReport writes an extraction report as indented JSON.
func WriteReport(w io.Writer, rep entity.ExtractionReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// ReadCSV parses rows written by WriteCSV (or any CSV with a name column) back
// into candidate records. Columns are matched by header; unknown columns are ignored.
// The first entry of a sources column becomes the source kind and the row
// number the locator when no locators column is present.
func ReadCSV(r io.Reader, name string) ([]entity.CandidateRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeValidation, "read csv header", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := cols[string(constants.FieldName)]; !ok {
		return nil, common.NewAppError(common.CodeValidation, "csv has no name column", common.ErrInvalidInput)
	}
	cell := func(rec []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var out []entity.CandidateRecord
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, common.NewAppError(common.CodeValidation, fmt.Sprintf("read csv line %d", line),
				fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		}
		var f entity.Fields
		for _, k := range constants.AllFields {
			f.Set(k, cell(rec, string(k)))
		}
		kind := constants.SourceKind(strings.Split(cell(rec, "sources"), ",")[0])
		loc := cell(rec, "locators")
		if loc == "" {
			loc = fmt.Sprintf("%s:%d", name, line)
		}
		out = append(out, entity.NewCandidate(f, kind, loc))
	}
	return out, nil
}
