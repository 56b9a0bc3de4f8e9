package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// LayoutText runs pdftotext in layout mode and returns the text of each page.
func (e *Engine) LayoutText(ctx context.Context, path string) ([]string, error) {
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, append(args, path, "-")...)
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	// a form feed separates pages; the last one is followed by a trailing \f
	pages := strings.Split(string(out), "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages, nil
}

// RasterizePDF renders every page to PNG under dir and returns the files in page order.
func (e *Engine) RasterizePDF(ctx context.Context, path, dir string) ([]string, error) {
	prefix := filepath.Join(dir, "page")
	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, append(args, path, prefix)...)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}

	// collect generated pngs (page-1.png, page-2.png, ... zero-padded for large docs)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Slice(matches, func(i, j int) bool {
		return pageNumber(matches[i]) < pageNumber(matches[j])
	})
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}
	return matches, nil
}

func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	i := strings.LastIndexByte(base, '-')
	n, err := strconv.Atoi(base[i+1:])
	if err != nil {
		return 0
	}
	return n
}

// PageText is the recognized text of one rasterized page (1-based).
type PageText struct {
	Page int
	Text string
}

// RecognizePDF rasterizes the document, cleans each page image and OCRs it.
// Pages that fail are reported as warnings; it errors only when no page succeeds.
func (e *Engine) RecognizePDF(ctx context.Context, path string) ([]PageText, []string, error) {
	tmpDir, err := os.MkdirTemp("", "ft-ocr-*")
	if err != nil {
		return nil, nil, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			e.logger.Warn("ocr.tmpdir.cleanup_failed", "dir", path, "error", err)
		}
	}(tmpDir)

	images, err := e.RasterizePDF(ctx, path, tmpDir)
	if err != nil {
		return nil, nil, err
	}

	var pages []PageText
	var warns []string
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return pages, warns, err
		}
		txt, err := e.RecognizeFile(ctx, img)
		if err != nil {
			warns = append(warns, fmt.Sprintf("page %d: %v", i+1, err))
			continue
		}
		pages = append(pages, PageText{Page: i + 1, Text: txt})
	}
	if len(pages) == 0 {
		return nil, warns, fmt.Errorf("ocr produced no pages: %s", strings.Join(warns, "; "))
	}
	return pages, warns, nil
}
