package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

// ReadMetadata describes doc: size, hash, page count and the Info dictionary.
// Problems are recorded in Error rather than returned.
func ReadMetadata(doc entity.Document) (meta entity.DocumentMetadata) {
	meta = entity.DocumentMetadata{
		Path:        doc.Path,
		SizeBytes:   doc.Size,
		SHA256:      doc.SHA256,
		ExtractedAt: time.Now().UTC(),
	}
	defer func() {
		if r := recover(); r != nil {
			meta.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	if meta.SHA256 == "" || meta.SizeBytes == 0 {
		sum, size, err := hashFile(doc.Path)
		if err != nil {
			meta.Error = err.Error()
			return meta
		}
		meta.SHA256, meta.SizeBytes = sum, size
	}

	f, r, err := openPDF(doc.Path)
	if err != nil {
		meta.Error = err.Error()
		return meta
	}
	defer func() { _ = f.Close() }()

	meta.NumPages = r.NumPage()
	info := r.Trailer().Key("Info")
	meta.Title = strings.TrimSpace(info.Key("Title").Text())
	meta.Author = strings.TrimSpace(info.Key("Author").Text())
	meta.Creator = strings.TrimSpace(info.Key("Creator").Text())
	return meta
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
