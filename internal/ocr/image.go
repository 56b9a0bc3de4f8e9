package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
)

// RecognizeFile decodes an image file, cleans it and runs tesseract on the result.
func (e *Engine) RecognizeFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	img, _, err := image.Decode(f)
	_ = f.Close()
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return e.RecognizeImage(ctx, img)
}

// RecognizeBytes is RecognizeFile for in-memory PNG, JPEG or GIF data.
func (e *Engine) RecognizeBytes(ctx context.Context, data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	return e.RecognizeImage(ctx, img)
}

// RecognizeImage preprocesses img and returns the normalized tesseract output.
func (e *Engine) RecognizeImage(ctx context.Context, img image.Image) (string, error) {
	clean := Preprocess(img)

	tmp, err := os.CreateTemp("", "ft-ocr-*.png")
	if err != nil {
		return "", err
	}
	defer func(name string) { _ = os.Remove(name) }(tmp.Name())

	if err := png.Encode(tmp, clean); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("encode preprocessed image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	txt, err := e.tesseract(ctx, tmp.Name())
	if err != nil {
		return "", err
	}
	return Normalize(txt), nil
}

func (e *Engine) tesseract(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Lang, "--psm", strconv.Itoa(e.cfg.PSM)}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l por+eng --psm 6
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
