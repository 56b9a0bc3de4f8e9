package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

func openPDF(path string) (*os.File, *pdf.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("open pdf: %w", err)
	}
	return f, r, nil
}

// eachPage calls fn for every non-null page (1-based) up to maxPages (0 = all).
// Errors from fn are collected and do not stop the walk; a cancelled ctx does.
func eachPage(ctx context.Context, r *pdf.Reader, maxPages int, fn func(n int, p pdf.Page) error) ([]error, error) {
	total := r.NumPage()
	if maxPages > 0 && total > maxPages {
		total = maxPages
	}
	var pageErrs []error
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return pageErrs, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		if err := fn(i, p); err != nil {
			pageErrs = append(pageErrs, fmt.Errorf("page %d: %w", i, err))
		}
	}
	return pageErrs, nil
}

// pageGlyphs returns the positioned glyphs of p. The content interpreter panics
// on malformed operators; that becomes an error for this page only.
func pageGlyphs(p pdf.Page) (texts []pdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			texts, err = nil, fmt.Errorf("read page content: %v", r)
		}
	}()
	return p.Content().Text, nil
}
