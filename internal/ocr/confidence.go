package ocr

import (
	"regexp"
	"strings"
)

var (
	reHasEmail = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	reHasPhone = regexp.MustCompile(`\d{3}\s?\d{3}\s?\d{3}`)
	reHasName  = regexp.MustCompile(`\p{Lu}\p{Ll}+\s+\p{Lu}\p{Ll}+`)
	reGarbage  = regexp.MustCompile(`[^\p{L}\p{N}\s.,;:@()/'+-]`)
)

// Confidence is a naive 0..1 score of how much directory-like content text holds.
func Confidence(txt string) float32 {
	if strings.TrimSpace(txt) == "" {
		return 0
	}
	score := float32(0.2) // base
	if reHasName.MatchString(txt) {
		score += 0.25
	}
	if reHasEmail.MatchString(txt) {
		score += 0.2
	}
	if reHasPhone.MatchString(txt) {
		score += 0.1
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content

	// penalize symbol soup typical of failed recognition
	if ratio := float32(len(reGarbage.FindAllString(txt, -1))) / float32(len([]rune(txt))); ratio > 0.1 {
		score -= ratio
	}
	if score < 0 {
		score = 0
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
