package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
	"github.com/joseph-ayodele/faculty-tracker/internal/extract/extracttest"
	"github.com/joseph-ayodele/faculty-tracker/internal/recognize"
	"github.com/joseph-ayodele/faculty-tracker/internal/reconcile"
)

func TestTextStrategies_OneLinePerRow(t *testing.T) {
	doc := entity.Document{Path: extracttest.WriteFile(t, "docentes.pdf", extracttest.TableStaff)}

	tests := []struct {
		strategy Strategy
		sep      string
	}{
		{NewTextStrategy(0), " "},
		{NewLayoutStrategy(0), "  "},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy.Name()), func(t *testing.T) {
			out := Run(context.Background(), tt.strategy, doc)
			require.Equal(t, constants.OutcomeSuccess, out.Status, out.ErrorDetail)
			require.Len(t, out.Pages, 1)
			assert.Equal(t, 1, out.Pages[0].Page)

			want := make([]string, 0, len(extracttest.TableStaff))
			for _, row := range extracttest.TableStaff {
				want = append(want, strings.Join(row, tt.sep))
			}
			assert.Equal(t, want, strings.Split(out.Pages[0].Text, "\n"))
		})
	}
}

func TestPositionalTableStrategy_GeneratedPDF(t *testing.T) {
	doc := entity.Document{Path: extracttest.WriteFile(t, "docentes.pdf", extracttest.TableStaff)}

	out := Run(context.Background(), NewPositionalTableStrategy(0), doc)
	require.Equal(t, constants.OutcomeSuccess, out.Status, out.ErrorDetail)
	require.Len(t, out.Tables, 1)
	assert.Equal(t, 1, out.Tables[0].Page)
	assert.Equal(t, extracttest.TableStaff, out.Tables[0].Rows)
}

func TestEnsemble_GeneratedPDFYieldsOnlyStaff(t *testing.T) {
	path := extracttest.WriteFile(t, "docentes.pdf", extracttest.TableStaff)
	e := NewEnsemble([]Strategy{NewTextStrategy(0), NewLayoutStrategy(0), NewPositionalTableStrategy(0)})
	rep := e.Run(context.Background(), entity.Document{Path: path})
	require.Empty(t, rep.Failed())
	assert.Equal(t, 1, rep.Metadata.NumPages)

	cands := Candidates(rep, recognize.New(recognize.DefaultConfig()))
	perSource := map[constants.SourceKind]int{}
	names := map[string]bool{}
	for _, c := range cands {
		perSource[c.Provenance.SourceKind]++
		names[c.Fields.Name] = true
	}
	assert.Equal(t, map[string]bool{"Ana Silva": true, "Rui Costa": true, "Maria Santos": true}, names)
	assert.Equal(t, 6, perSource[constants.SourcePDFText])
	assert.Equal(t, 3, perSource[constants.SourcePDFTable])

	res := reconcile.New(reconcile.DefaultConfig(), nil).Reconcile(cands)
	require.Len(t, res.Entities, 3)
	got := make([]string, 0, 3)
	for _, ent := range res.Entities {
		got = append(got, ent.Name)
		assert.Len(t, ent.ContributingRecords, 3, ent.Name)
	}
	assert.ElementsMatch(t, []string{"Ana Silva", "Rui Costa", "Maria Santos"}, got)
}
