package extract

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

const (
	defaultFontSize = 10.0
	// gaps are measured in multiples of the glyph's font size
	wordGapEm = 0.15
	cellGapEm = 1.2
	// baselines closer than this (points) share a line
	lineTolerance = 2.0
	minTableRows  = 2
)

type glyphLine struct {
	y      float64
	glyphs []pdf.Text
}

// groupLines clusters glyphs into lines by baseline, top of the page first,
// each line ordered left to right.
func groupLines(texts []pdf.Text, tol float64) []glyphLine {
	ts := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S != "" {
			ts = append(ts, t)
		}
	}
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].Y != ts[j].Y {
			return ts[i].Y > ts[j].Y
		}
		return ts[i].X < ts[j].X
	})

	var lines []glyphLine
	for _, t := range ts {
		if n := len(lines); n > 0 && math.Abs(lines[n-1].y-t.Y) <= tol {
			lines[n-1].glyphs = append(lines[n-1].glyphs, t)
			continue
		}
		lines = append(lines, glyphLine{y: t.Y, glyphs: []pdf.Text{t}})
	}
	for i := range lines {
		g := lines[i].glyphs
		sort.SliceStable(g, func(a, b int) bool { return g[a].X < g[b].X })
	}
	return lines
}

// splitCells joins left-to-right glyphs into words and words into cells.
// A gap wider than wordGapEm inserts a space, wider than cellGapEm starts a new cell.
func splitCells(glyphs []pdf.Text) []string {
	var cells []string
	var cur strings.Builder
	flush := func() {
		if s := strings.Join(strings.Fields(cur.String()), " "); s != "" {
			cells = append(cells, s)
		}
		cur.Reset()
	}

	prevEnd := 0.0
	for i, g := range glyphs {
		size := g.FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		if i > 0 {
			gap := g.X - prevEnd
			switch {
			case gap > size*cellGapEm:
				flush()
			case gap > size*wordGapEm:
				cur.WriteByte(' ')
			}
		}
		cur.WriteString(g.S)
		prevEnd = g.X + g.W
	}
	flush()
	return cells
}

// glyphText lays glyphs out as text, top line first, cells of a line joined by sep.
func glyphText(texts []pdf.Text, sep string) string {
	lines := groupLines(texts, lineTolerance)
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if cells := splitCells(l.glyphs); len(cells) > 0 {
			out = append(out, strings.Join(cells, sep))
		}
	}
	return strings.Join(out, "\n")
}

// detectTables keeps runs of consecutive multi-cell lines. Blank lines do not
// break a run; a single-cell line does.
func detectTables(page int, lines [][]string) []entity.Table {
	var tables []entity.Table
	var run [][]string
	closeRun := func() {
		if len(run) >= minTableRows {
			tables = append(tables, entity.Table{Page: page, Rows: padRows(run)})
		}
		run = nil
	}
	for _, cells := range lines {
		switch {
		case len(cells) == 0:
		case len(cells) >= 2:
			run = append(run, cells)
		default:
			closeRun()
		}
	}
	closeRun()
	return tables
}

func padRows(rows [][]string) [][]string {
	w := 0
	for _, r := range rows {
		w = max(w, len(r))
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, w)
		copy(row, r)
		out[i] = row
	}
	return out
}

var reColumnGap = regexp.MustCompile(`\s{2,}`)

// splitLayoutLine splits a fixed-width text line on runs of two or more spaces.
func splitLayoutLine(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	var cells []string
	for _, c := range reColumnGap.Split(line, -1) {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}
