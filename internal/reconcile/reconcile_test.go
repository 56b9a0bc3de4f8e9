package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

func probeRec(name, loc string) entity.CandidateRecord {
	return entity.NewCandidate(entity.Fields{Name: name}, constants.SourceProbe, loc)
}

func names(es []entity.CanonicalEntity) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name
	}
	return out
}

func TestReconcile_ProbeScenario(t *testing.T) {
	r := New(DefaultConfig(), nil)
	res := r.Reconcile([]entity.CandidateRecord{
		probeRec("Ana Silva", "http://x/previewPerfil.php?id=2"),
		probeRec("Ana  Silva", "http://x/previewPerfil.php?id=4"),
		probeRec("João Santos", "http://x/previewPerfil.php?id=100"),
	})

	require.Len(t, res.Entities, 2)
	assert.Equal(t, []string{"Ana Silva", "João Santos"}, names(res.Entities))
	require.Len(t, res.Entities[0].ContributingRecords, 2)
	assert.Equal(t, "http://x/previewPerfil.php?id=2", res.Entities[0].ContributingRecords[0].Provenance.Locator)
	assert.Equal(t, "http://x/previewPerfil.php?id=4", res.Entities[0].ContributingRecords[1].Provenance.Locator)
	assert.Len(t, res.Entities[1].ContributingRecords, 1)
	assert.Zero(t, res.Dropped)
}

func TestReconcile_RicherRecordWins(t *testing.T) {
	thin := entity.NewCandidate(entity.Fields{Name: "Maria Costa"}, constants.SourceProbe, "id:9")
	rich := entity.NewCandidate(entity.Fields{
		Name:       "Maria Costa",
		Email:      "maria.costa@ipt.pt",
		Department: "Engenharia Civil",
	}, constants.SourcePDFTable, "staff.pdf#tableEngineA:t1:r4")
	require.Equal(t, 1, thin.FieldCount())
	require.Equal(t, 3, rich.FieldCount())

	res := New(DefaultConfig(), nil).Reconcile([]entity.CandidateRecord{thin, rich})
	require.Len(t, res.Entities, 1)
	e := res.Entities[0]
	assert.Equal(t, "maria.costa@ipt.pt", e.Email)
	assert.Equal(t, "Engenharia Civil", e.Department)
	assert.Equal(t, []entity.CandidateRecord{thin, rich}, e.ContributingRecords)
	assert.Equal(t, rich, e.Winner())
}

func TestReconcile_TiesKeepFirstSeen(t *testing.T) {
	a := entity.NewCandidate(entity.Fields{Name: "Rui Costa", Phone: "249 328 100"}, constants.SourcePDFText, "a")
	b := entity.NewCandidate(entity.Fields{Name: "RUI COSTA", Email: "rui@ipt.pt"}, constants.SourceHTMLProfile, "b")
	res := New(DefaultConfig(), nil).Reconcile([]entity.CandidateRecord{a, b})
	require.Len(t, res.Entities, 1)
	assert.Equal(t, "Rui Costa", res.Entities[0].Name)
	assert.Equal(t, "249 328 100", res.Entities[0].Phone)
	assert.Empty(t, res.Entities[0].Email)
}

func TestReconcile_DropsUnusableNames(t *testing.T) {
	res := New(DefaultConfig(), nil).Reconcile([]entity.CandidateRecord{
		probeRec("", "a"),
		probeRec("   ", "b"),
		probeRec("Ana", "c"),
		probeRec("12345", "d"),
		probeRec("2023 - 24", "e"),
		probeRec("Luís Pires", "f"),
	})
	assert.Equal(t, 5, res.Dropped)
	assert.Equal(t, []string{"Luís Pires"}, names(res.Entities))
}

func TestReconcile_TransitiveClusters(t *testing.T) {
	// a~b and b~c, while a and c alone fall below the threshold
	a, b, c := "Maria Fernanda Costa", "Mario Fernando Costa", "Mario Fernando Cesto"
	require.GreaterOrEqual(t, Similarity(NormalizeName(a), NormalizeName(b)), 0.85)
	require.GreaterOrEqual(t, Similarity(NormalizeName(b), NormalizeName(c)), 0.85)
	require.Less(t, Similarity(NormalizeName(a), NormalizeName(c)), 0.85)

	res := New(DefaultConfig(), nil).Reconcile([]entity.CandidateRecord{
		probeRec(c, "3"), probeRec("Pedro Nunes", "4"), probeRec(a, "1"), probeRec(b, "2"),
	})
	require.Len(t, res.Entities, 2)
	assert.Equal(t, []string{c, "Pedro Nunes"}, names(res.Entities))
	assert.Len(t, res.Entities[0].ContributingRecords, 3)
}

func TestReconcile_OrderFollowsWinner(t *testing.T) {
	res := New(DefaultConfig(), nil).Reconcile([]entity.CandidateRecord{
		probeRec("Ana Silva", "1"),
		probeRec("João Santos", "2"),
		entity.NewCandidate(entity.Fields{Name: "Ana Silva", Email: "ana@ipt.pt"}, constants.SourcePDFText, "3"),
	})
	assert.Equal(t, []string{"João Santos", "Ana Silva"}, names(res.Entities))
}

func TestReconcile_PairwiseBelowThreshold(t *testing.T) {
	input := []string{
		"Ana Silva", "Ana  Silva", "ANA SILVA", "Ana Sousa", "Ana Silvo",
		"João Santos", "Joao Santos", "João Santo", "Maria Costa", "Mário Costa",
		"Pedro Nunes", "Pedro Nunez", "Rui Costa", "Rita Costa", "Luís Pires",
	}
	var recs []entity.CandidateRecord
	for i, n := range input {
		recs = append(recs, probeRec(n, string(rune('a'+i))))
	}
	r := New(DefaultConfig(), nil)
	res := r.Reconcile(recs)

	total := 0
	for i, e1 := range res.Entities {
		assert.NotEmpty(t, e1.Name)
		assert.NotEmpty(t, e1.ContributingRecords)
		total += len(e1.ContributingRecords)
		for _, e2 := range res.Entities[i+1:] {
			assert.Less(t, Similarity(NormalizeName(e1.Name), NormalizeName(e2.Name)), 0.85, "%q vs %q", e1.Name, e2.Name)
		}
	}
	assert.Equal(t, len(input), total)
}

func TestReconcile_Idempotent(t *testing.T) {
	r := New(DefaultConfig(), nil)
	first := r.Reconcile([]entity.CandidateRecord{
		probeRec("Ana Silva", "1"),
		entity.NewCandidate(entity.Fields{Name: "Ana  Silva", Category: "Assistente"}, constants.SourcePDFText, "2"),
		probeRec("João Santos", "3"),
		entity.NewCandidate(entity.Fields{Name: "Maria Costa", Email: "m@ipt.pt"}, constants.SourcePDFTable, "4"),
	})
	second := r.Reconcile(Records(first.Entities))

	require.Len(t, second.Entities, len(first.Entities))
	for i := range first.Entities {
		assert.Equal(t, first.Entities[i].Fields(), second.Entities[i].Fields())
		assert.Len(t, second.Entities[i].ContributingRecords, 1)
	}
	third := r.Reconcile(Records(second.Entities))
	assert.Equal(t, second.Entities, third.Entities)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "ana sílva", NormalizeName("  ANA \t Sílva "))
	assert.Equal(t, NormalizeName("José"), NormalizeName("JOSÉ"))
}

func TestNew_FillsDefaults(t *testing.T) {
	r := New(Config{MergeThreshold: 2}, nil)
	assert.Equal(t, DefaultConfig(), r.cfg)
}
