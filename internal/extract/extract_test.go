package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
	"github.com/joseph-ayodele/faculty-tracker/internal/ocr"
	"github.com/joseph-ayodele/faculty-tracker/internal/recognize"
)

type fakeStrategy struct {
	name    constants.Strategy
	delay   time.Duration
	payload Payload
	err     error
	panics  bool
}

func (f fakeStrategy) Name() constants.Strategy { return f.name }

func (f fakeStrategy) Extract(ctx context.Context, _ entity.Document) (Payload, error) {
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return Payload{}, ctx.Err()
	}
	if f.panics {
		panic("malformed xref")
	}
	return f.payload, f.err
}

type stubRunner struct {
	mu    sync.Mutex
	calls []string
	fn    func(name string, args []string) ([]byte, []byte, error)
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	s.mu.Unlock()
	return s.fn(name, args)
}

func textPayload(s string) Payload {
	return Payload{Pages: []entity.PageText{{Page: 1, Text: s}}}
}

func TestRun_Outcomes(t *testing.T) {
	ctx := context.Background()
	doc := entity.Document{Path: "staff.pdf"}

	ok := Run(ctx, fakeStrategy{name: constants.StrategyText, payload: Payload{Pages: []entity.PageText{
		{Page: 1, Text: "  \n"},
		{Page: 2, Text: "Ana Silva"},
	}}}, doc)
	assert.True(t, ok.Succeeded())
	assert.Equal(t, []entity.PageText{{Page: 2, Text: "Ana Silva"}}, ok.Pages)

	empty := Run(ctx, fakeStrategy{name: constants.StrategyText, payload: textPayload(" ")}, doc)
	assert.Equal(t, constants.OutcomeFailed, empty.Status)
	assert.Equal(t, "no content", empty.ErrorDetail)

	failed := Run(ctx, fakeStrategy{name: constants.StrategyOCR, err: errors.New("pdftoppm: exit status 1")}, doc)
	assert.Equal(t, constants.OutcomeFailed, failed.Status)
	assert.Contains(t, failed.ErrorDetail, "pdftoppm")

	panicked := Run(ctx, fakeStrategy{name: constants.StrategyLayoutText, panics: true}, doc)
	assert.Equal(t, constants.OutcomeFailed, panicked.Status)
	assert.Equal(t, constants.StrategyLayoutText, panicked.Strategy)
	assert.Contains(t, panicked.ErrorDetail, "malformed xref")
}

func TestEnsemble_FixedOrderAndIsolation(t *testing.T) {
	e := NewEnsemble([]Strategy{
		fakeStrategy{name: constants.StrategyText, delay: 30 * time.Millisecond, payload: textPayload("Ana Silva")},
		fakeStrategy{name: constants.StrategyLayoutText, panics: true},
		fakeStrategy{name: constants.StrategyTableEngineA, delay: 10 * time.Millisecond, err: errors.New("boom")},
		fakeStrategy{name: constants.StrategyTableEngineB, payload: Payload{Tables: []entity.Table{{Page: 1, Rows: [][]string{{"a", "b"}}}}}},
		fakeStrategy{name: constants.StrategyOCR, delay: 5 * time.Millisecond, payload: textPayload("Rui Costa")},
	})
	assert.Equal(t, constants.AllStrategies, e.Strategies())

	rep := e.Run(context.Background(), entity.Document{Path: filepath.Join(t.TempDir(), "missing.pdf")})
	require.Len(t, rep.Outcomes, 5)
	for i, s := range constants.AllStrategies {
		assert.Equal(t, s, rep.Outcomes[i].Strategy)
	}
	assert.Equal(t, []constants.Strategy{constants.StrategyLayoutText, constants.StrategyTableEngineA}, rep.Failed())
	assert.NotEmpty(t, rep.Metadata.Error)
}

func TestEnsemble_StrategyTimeout(t *testing.T) {
	e := NewEnsemble([]Strategy{
		fakeStrategy{name: constants.StrategyText, delay: time.Second, payload: textPayload("late")},
		fakeStrategy{name: constants.StrategyOCR, payload: textPayload("Ana Silva")},
	}, WithStrategyTimeout(20*time.Millisecond))

	rep := e.Run(context.Background(), entity.Document{Path: "x.pdf"})
	require.Len(t, rep.Outcomes, 2)
	assert.False(t, rep.Outcomes[0].Succeeded())
	assert.Contains(t, rep.Outcomes[0].ErrorDetail, "deadline")
	assert.True(t, rep.Outcomes[1].Succeeded())
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 220
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// A scanned document without a text layer: only OCR gets anything out of it.
func TestEnsemble_OnlyOCRSucceeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not really a pdf document"), 0o644))

	r := &stubRunner{fn: func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftotext":
			return nil, []byte("Syntax Error: May not be a PDF file"), errors.New("exit status 1")
		case "pdftoppm":
			writePNG(t, args[len(args)-1]+"-1.png")
			return nil, nil, nil
		case "tesseract":
			return []byte("Prof. Ana Silva\nProfessor Adjunto\nana.silva@ipt.pt\n"), nil, nil
		}
		return nil, nil, errors.New("unexpected " + name)
	}}
	engine := ocr.NewEngineWithRunner(ocr.Config{}, r, nil)
	e := NewEnsemble(DefaultStrategies(engine, nil))

	rep := e.Run(context.Background(), entity.Document{Path: path})
	require.Len(t, rep.Outcomes, 5)

	var ok []constants.Strategy
	for _, o := range rep.Outcomes {
		if o.Succeeded() {
			ok = append(ok, o.Strategy)
		} else {
			assert.NotEmpty(t, o.ErrorDetail, o.Strategy)
		}
	}
	assert.Equal(t, []constants.Strategy{constants.StrategyOCR}, ok)

	ocrOut, found := rep.Outcome(constants.StrategyOCR)
	require.True(t, found)
	assert.Greater(t, ocrOut.Confidence, float32(0))

	assert.Equal(t, path, rep.Metadata.Path)
	assert.Len(t, rep.Metadata.SHA256, 64)
	assert.Equal(t, int64(33), rep.Metadata.SizeBytes)
	assert.Zero(t, rep.Metadata.NumPages)
	assert.NotEmpty(t, rep.Metadata.Error)

	recs := Candidates(rep, recognize.New(recognize.DefaultConfig()))
	require.Len(t, recs, 1)
	assert.Equal(t, "Ana Silva", recs[0].Fields.Name)
	assert.Equal(t, "ana.silva@ipt.pt", recs[0].Fields.Email)
	assert.Equal(t, constants.SourcePDFText, recs[0].Provenance.SourceKind)
	assert.Equal(t, path+"#ocr:p1:l1", recs[0].Provenance.Locator)
}

func TestLayoutTableStrategy(t *testing.T) {
	layout := "Lista de Docentes\n\n" +
		"Nome                 Categoria              Email\n" +
		"Ana Silva            Professor Adjunto      ana.silva@ipt.pt\n" +
		"\n" +
		"João Santos          Assistente             joao.santos@ipt.pt\n" +
		"\f"
	r := &stubRunner{fn: func(string, []string) ([]byte, []byte, error) { return []byte(layout), nil, nil }}
	s := NewLayoutTableStrategy(ocr.NewEngineWithRunner(ocr.Config{}, r, nil))

	out := Run(context.Background(), s, entity.Document{Path: "/in/staff.pdf"})
	require.True(t, out.Succeeded(), out.ErrorDetail)
	require.Len(t, out.Tables, 1)
	assert.Equal(t, 1, out.Tables[0].Page)
	assert.Equal(t, [][]string{
		{"Nome", "Categoria", "Email"},
		{"Ana Silva", "Professor Adjunto", "ana.silva@ipt.pt"},
		{"João Santos", "Assistente", "joao.santos@ipt.pt"},
	}, out.Tables[0].Rows)

	rep := entity.ExtractionReport{
		Metadata: entity.DocumentMetadata{Path: "/in/staff.pdf"},
		Outcomes: []entity.ExtractionOutcome{out},
	}
	recs := Candidates(rep, recognize.New(recognize.DefaultConfig()))
	require.Len(t, recs, 2)
	assert.Equal(t, "Ana Silva", recs[0].Fields.Name)
	assert.Equal(t, string(constants.ProfessorAdjunto), recs[0].Fields.Category)
	assert.Equal(t, "/in/staff.pdf#tableEngineB:t1:r2", recs[0].Provenance.Locator)
	assert.Equal(t, constants.SourcePDFTable, recs[0].Provenance.SourceKind)
	assert.Equal(t, "joao.santos@ipt.pt", recs[1].Fields.Email)
	assert.Equal(t, "/in/staff.pdf#tableEngineB:t1:r3", recs[1].Provenance.Locator)
}

func TestCandidates_SkipsFailedOutcomes(t *testing.T) {
	rep := entity.ExtractionReport{
		Metadata: entity.DocumentMetadata{Path: "a.pdf"},
		Outcomes: []entity.ExtractionOutcome{
			{Strategy: constants.StrategyText, Status: constants.OutcomeFailed, Pages: []entity.PageText{{Page: 1, Text: "Rui Costa"}}},
			{Strategy: constants.StrategyLayoutText, Status: constants.OutcomeSuccess, Pages: []entity.PageText{
				{Page: 3, Text: "Docentes\nMaria Costa  Assistente"},
			}},
		},
	}
	recs := Candidates(rep, recognize.New(recognize.DefaultConfig()))
	require.Len(t, recs, 1)
	assert.Equal(t, "Maria Costa", recs[0].Fields.Name)
	assert.Equal(t, string(constants.Assistente), recs[0].Fields.Category)
	assert.Equal(t, "a.pdf#layoutText:p3:l2", recs[0].Provenance.Locator)
}

func TestSplitCells(t *testing.T) {
	glyphs := []pdf.Text{
		{S: "An", X: 10, W: 12, FontSize: 10},
		{S: "a", X: 22, W: 6, FontSize: 10},
		{S: "Silva", X: 31, W: 25, FontSize: 10},
		{S: "Assistente", X: 120, W: 50, FontSize: 10},
		{S: "ana@ipt.pt", X: 200, W: 50},
	}
	assert.Equal(t, []string{"Ana Silva", "Assistente", "ana@ipt.pt"}, splitCells(glyphs))
	assert.Empty(t, splitCells(nil))
}

func TestGroupLines(t *testing.T) {
	texts := []pdf.Text{
		{S: "Costa", X: 40, Y: 680},
		{S: "Silva", X: 40, Y: 700.5},
		{S: "Ana", X: 10, Y: 700},
		{S: "", X: 5, Y: 690},
		{S: "Rui", X: 10, Y: 680},
	}
	lines := groupLines(texts, lineTolerance)
	require.Len(t, lines, 2)
	assert.Equal(t, "Ana", lines[0].glyphs[0].S)
	assert.Equal(t, "Silva", lines[0].glyphs[1].S)
	assert.Equal(t, "Rui", lines[1].glyphs[0].S)
	assert.Equal(t, "Costa", lines[1].glyphs[1].S)
}

func TestGlyphText(t *testing.T) {
	texts := []pdf.Text{
		{S: "Rui", X: 10, Y: 100, W: 15, FontSize: 10},
		{S: "Costa", X: 27, Y: 100, W: 25, FontSize: 10},
		{S: "Assistente", X: 100, Y: 700, W: 50, FontSize: 10},
		{S: "Ana Silva", X: 10, Y: 700, W: 45, FontSize: 10},
	}
	assert.Equal(t, "Ana Silva  Assistente\nRui Costa", glyphText(texts, "  "))
	assert.Equal(t, "Ana Silva Assistente\nRui Costa", glyphText(texts, " "))
	assert.Empty(t, glyphText(nil, " "))
}

func TestDetectTables(t *testing.T) {
	lines := [][]string{
		{"Relatório"},
		{"Nome", "Email"},
		nil,
		{"Ana Silva", "a@ipt.pt", "extra"},
		{"Total"},
		{"lonely", "row"},
	}
	tables := detectTables(2, lines)
	require.Len(t, tables, 1)
	assert.Equal(t, 2, tables[0].Page)
	assert.Equal(t, [][]string{{"Nome", "Email", ""}, {"Ana Silva", "a@ipt.pt", "extra"}}, tables[0].Rows)
}

func TestSplitLayoutLine(t *testing.T) {
	assert.Equal(t, []string{"Ana Silva", "Prof. Adj.", "ana@ipt.pt"}, splitLayoutLine("  Ana Silva    Prof. Adj.  ana@ipt.pt  "))
	assert.Equal(t, []string{"one cell only"}, splitLayoutLine("one cell only"))
	assert.Nil(t, splitLayoutLine("   "))
}

func TestTextStrategy_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\ngarbage without xref"), 0o644))
	for _, s := range []Strategy{NewTextStrategy(0), NewLayoutStrategy(0), NewPositionalTableStrategy(0)} {
		out := Run(context.Background(), s, entity.Document{Path: path})
		assert.Equal(t, constants.OutcomeFailed, out.Status, s.Name())
		assert.NotEmpty(t, out.ErrorDetail, s.Name())
	}
}
