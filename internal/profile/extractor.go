// Package profile reads individual directory profile pages: visible text,
// display name and contact fields, with an OCR fallback for emails published
// as images.
package profile

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
	"github.com/joseph-ayodele/faculty-tracker/internal/recognize"
)

// Fetcher is the slice of the fetch client this package needs.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

// ImageReader turns image bytes into text.
type ImageReader interface {
	RecognizeBytes(ctx context.Context, data []byte) (string, error)
}

// contact hints that mark an image as a rendered email address
var contactHints = []string{"email", "e-mail", "mail", "contacto", "contact"}

type Extractor struct {
	rec          *recognize.Recognizer
	fetcher      Fetcher
	images       ImageReader
	imageTimeout time.Duration
	logger       *slog.Logger
}

// NewExtractor builds an Extractor. fetcher and images may be nil, which disables
// the image fallback.
func NewExtractor(rec *recognize.Recognizer, fetcher Fetcher, images ImageReader, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = recognize.New(recognize.DefaultConfig())
	}
	return &Extractor{
		rec:          rec,
		fetcher:      fetcher,
		images:       images,
		imageTimeout: 10 * time.Second,
		logger:       logger,
	}
}

// Extract recognizes the fields of the profile page at pageURL.
func (e *Extractor) Extract(ctx context.Context, pageURL string, body []byte) (entity.Fields, error) {
	page, err := Parse(body)
	if err != nil {
		return entity.Fields{}, err
	}
	f := e.rec.RecognizeProfile(page.Text)
	if name, ok := e.rec.NameFromHeadings(page.NameCandidates()); ok {
		f.Set(constants.FieldName, name)
	}
	if f.Email == "" {
		f.Set(constants.FieldEmail, e.emailFromImages(ctx, pageURL, page.Images))
	}
	return f, nil
}

func (e *Extractor) emailFromImages(ctx context.Context, pageURL string, imgs []Image) string {
	if e.fetcher == nil || e.images == nil {
		return ""
	}
	for _, img := range imgs {
		if img.Src == "" || !mentionsContact(img) {
			continue
		}
		src, err := resolve(pageURL, img.Src)
		if err != nil {
			e.logger.Debug("profile.image.bad_src", "page", pageURL, "src", img.Src, "error", err)
			continue
		}
		data, err := e.fetcher.FetchBytes(ctx, src, e.imageTimeout)
		if err != nil {
			e.logger.Debug("profile.image.fetch_failed", "url", src, "error", err)
			continue
		}
		txt, err := e.images.RecognizeBytes(ctx, data)
		if err != nil {
			e.logger.Debug("profile.image.ocr_failed", "url", src, "error", err)
			continue
		}
		if email := recognize.PreferredEmail(txt, e.rec.Config().PreferredEmailDomain); email != "" {
			e.logger.Debug("profile.image.email_found", "page", pageURL, "url", src)
			return email
		}
	}
	return ""
}

func mentionsContact(img Image) bool {
	hay := strings.ToLower(img.Src + " " + img.Alt + " " + img.Title + " " + img.Context)
	for _, h := range contactHints {
		if strings.Contains(hay, h) {
			return true
		}
	}
	return false
}

func resolve(base, ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if base == "" {
		return r.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}
