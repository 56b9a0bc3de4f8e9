package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	mu    sync.Mutex
	calls [][]string
	fn    func(name string, args []string) ([]byte, []byte, error)
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string{name}, args...))
	s.mu.Unlock()
	return s.fn(name, args)
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func uniform(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func TestLayoutText_SplitsPages(t *testing.T) {
	r := &stubRunner{fn: func(name string, args []string) ([]byte, []byte, error) {
		return []byte("Ana Silva   Prof. Adj.\fJoão Santos   Assistente\f"), nil, nil
	}}
	e := NewEngineWithRunner(Config{}, r, nil)
	pages, err := e.LayoutText(context.Background(), "/docs/staff.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana Silva   Prof. Adj.", "João Santos   Assistente"}, pages)

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{"pdftotext", "-layout", "-enc", "UTF-8", "-eol", "unix", "/docs/staff.pdf", "-"}, r.calls[0])
}

func TestLayoutText_Error(t *testing.T) {
	r := &stubRunner{fn: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("Syntax Error: Couldn't read xref table"), errors.New("exit status 1")
	}}
	e := NewEngineWithRunner(Config{}, r, nil)
	_, err := e.LayoutText(context.Background(), "broken.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xref")
}

func TestRecognizePDF(t *testing.T) {
	r := &stubRunner{}
	r.fn = func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftoppm":
			prefix := args[len(args)-1]
			for i := 1; i <= 2; i++ {
				writePNG(t, fmt.Sprintf("%s-%d.png", prefix, i), uniform(8, 8, 200))
			}
			return nil, nil, nil
		case "tesseract":
			return []byte("Ana  Silva\nana.silva @ ipt.pt\n"), nil, nil
		}
		return nil, nil, fmt.Errorf("unexpected %s", name)
	}
	e := NewEngineWithRunner(Config{DPI: 150}, r, nil)

	pages, warns, err := e.RecognizePDF(context.Background(), "scan.pdf")
	require.NoError(t, err)
	assert.Empty(t, warns)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Page)
	assert.Equal(t, "Ana Silva\nana.silva@ipt.pt", pages[0].Text)

	ppm := r.calls[0]
	assert.Equal(t, []string{"pdftoppm", "-r", "150", "-png", "scan.pdf"}, ppm[:5])
	tess := r.calls[1]
	assert.Equal(t, "tesseract", tess[0])
	assert.Contains(t, strings.Join(tess, " "), "stdout -l por+eng --psm 6")
}

func TestRecognizePDF_AllPagesFail(t *testing.T) {
	r := &stubRunner{}
	r.fn = func(name string, args []string) ([]byte, []byte, error) {
		if name == "pdftoppm" {
			writePNG(t, args[len(args)-1]+"-1.png", uniform(4, 4, 255))
			return nil, nil, nil
		}
		return nil, []byte("Error opening data file por.traineddata"), errors.New("exit status 1")
	}
	e := NewEngineWithRunner(Config{}, r, nil)
	_, warns, err := e.RecognizePDF(context.Background(), "scan.pdf")
	require.Error(t, err)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "page 1")
}

func TestRasterizePDF_NoImages(t *testing.T) {
	r := &stubRunner{fn: func(string, []string) ([]byte, []byte, error) { return nil, nil, nil }}
	e := NewEngineWithRunner(Config{}, r, nil)
	_, err := e.RasterizePDF(context.Background(), "x.pdf", t.TempDir())
	assert.Error(t, err)
}

func TestPageNumberOrdering(t *testing.T) {
	assert.Equal(t, 10, pageNumber("/tmp/page-10.png"))
	assert.Equal(t, 2, pageNumber("/tmp/page-02.png"))
	assert.Equal(t, 0, pageNumber("/tmp/page.png"))
}

func TestRecognizeBytes_RejectsGarbage(t *testing.T) {
	e := NewEngineWithRunner(Config{}, &stubRunner{fn: func(string, []string) ([]byte, []byte, error) {
		return nil, nil, nil
	}}, nil)
	_, err := e.RecognizeBytes(context.Background(), []byte("not an image"))
	assert.Error(t, err)
}

func TestRecognizeBytes(t *testing.T) {
	r := &stubRunner{fn: func(string, []string) ([]byte, []byte, error) {
		return []byte("joao.santos@ipt.pt\n"), nil, nil
	}}
	e := NewEngineWithRunner(Config{}, r, nil)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, uniform(10, 4, 30)))
	txt, err := e.RecognizeBytes(context.Background(), buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "joao.santos@ipt.pt", txt)
}

func TestOtsuThreshold_Bimodal(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range g.Pix {
		if i%2 == 0 {
			g.Pix[i] = 50
		} else {
			g.Pix[i] = 200
		}
	}
	th := OtsuThreshold(g)
	assert.GreaterOrEqual(t, th, uint8(50))
	assert.Less(t, th, uint8(200))

	bin := Binarize(g, th)
	assert.Equal(t, uint8(0), bin.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), bin.GrayAt(1, 0).Y)
}

func TestMedianFilter3_RemovesSpeck(t *testing.T) {
	g := uniform(5, 5, 0)
	g.SetGray(2, 2, color.Gray{Y: 255})
	out := MedianFilter3(g)
	assert.Equal(t, uint8(0), out.GrayAt(2, 2).Y)
}

func TestNormalizeContrast_Stretches(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range g.Pix {
		if i < 50 {
			g.Pix[i] = 100
		} else {
			g.Pix[i] = 150
		}
	}
	out := NormalizeContrast(g)
	assert.Equal(t, uint8(0), out.Pix[0])
	assert.Equal(t, uint8(255), out.Pix[99])

	flat := uniform(3, 3, 90)
	assert.Equal(t, flat, NormalizeContrast(flat))
}

func TestPreprocess_TextOnBackground(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 40, 30))
	for y := 10; y < 30; y++ {
		for x := 10; x < 40; x++ {
			c := color.RGBA{R: 190, G: 190, B: 170, A: 255}
			if x >= 20 && x < 30 && y >= 15 && y < 25 {
				c = color.RGBA{R: 40, G: 40, B: 60, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	img.Set(12, 12, color.RGBA{A: 255}) // isolated speck

	out := Preprocess(img)
	assert.Equal(t, image.Rect(0, 0, 30, 20), out.Bounds())
	assert.Equal(t, uint8(0), out.GrayAt(15, 10).Y, "text block is black")
	assert.Equal(t, uint8(255), out.GrayAt(2, 2).Y, "speck removed")
	assert.Equal(t, uint8(255), out.GrayAt(28, 18).Y, "background is white")
}

func TestNormalize(t *testing.T) {
	in := "Ana\tSilva  \r\n\r\n\r\n\r\nana.silva (at) ipt.pt\n-----\n"
	assert.Equal(t, "Ana Silva\n\nana.silva@ipt.pt", Normalize(in))
	assert.Equal(t, "", Normalize(""))
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, float32(0), Confidence("   "))
	low := Confidence("~~## ¦¦ %%")
	high := Confidence("Ana Silva ana.silva@ipt.pt 249 328 100")
	assert.Greater(t, high, low)
	assert.LessOrEqual(t, high, float32(1))
}
