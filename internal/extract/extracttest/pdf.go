// Package extracttest builds small PDF documents for extraction tests.
package extracttest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	fontSize   = 12
	lineHeight = 20
	topY       = 720
	leftX      = 72
	glyphWidth = 500 // thousandths of an em, every character
)

// Columns are the x offsets of successive cells on a row.
var Columns = []float64{leftX, 300, 460}

// TableStaff is a header row followed by three staff members.
var TableStaff = [][]string{
	{"Nome", "Categoria"},
	{"Ana Silva", "Professor Adjunto"},
	{"Rui Costa", "Assistente"},
	{"Maria Santos", "Professor Coordenador"},
}

// PDF renders rows as a one-page document. Every row is placed with a relative
// Td move, the way most generators lay out text, and every cell starts at its
// column in Columns. Text must be ASCII.
func PDF(rows [][]string) []byte {
	var content strings.Builder
	content.WriteString("BT\n")
	fmt.Fprintf(&content, "/F1 %d Tf\n", fontSize)
	x, y := 0.0, 0.0
	for i, row := range rows {
		for j, cell := range row {
			if j >= len(Columns) {
				break
			}
			nx, ny := Columns[j], float64(topY-i*lineHeight)
			fmt.Fprintf(&content, "%g %g Td\n(%s) Tj\n", nx-x, ny-y, escape(cell))
			x, y = nx, ny
		}
	}
	content.WriteString("ET\n")

	widths := make([]string, 0, 95)
	for c := 32; c <= 126; c++ {
		widths = append(widths, fmt.Sprint(glyphWidth))
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding " +
			"/FirstChar 32 /LastChar 126 /Widths [" + strings.Join(widths, " ") + "] >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// WriteFile writes PDF(rows) under t.TempDir and returns its path.
func WriteFile(t testing.TB, name string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, PDF(rows), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(s)
}
