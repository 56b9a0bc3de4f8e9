// Package recognize infers semantic fields (name, category, department and
// contact identifiers) from free text and table columns using ordered pattern
// rules. The first matching rule wins; rules never vote.
package recognize

import (
	"strings"
)

type Config struct {
	NameMinLength        int    // rune length lower bound, default 5
	NameMaxLength        int    // rune length upper bound, default 80
	NameColumnSample     int    // values sampled per column, default 5
	NameColumnMinHits    int    // sampled values that must look like names, default 2
	PreferredEmailDomain string // e.g. "ipt.pt"; empty = first address wins
}

func DefaultConfig() Config {
	return Config{
		NameMinLength:        5,
		NameMaxLength:        80,
		NameColumnSample:     5,
		NameColumnMinHits:    2,
		PreferredEmailDomain: "ipt.pt",
	}
}

// Recognizer is immutable after construction and safe for concurrent use.
type Recognizer struct {
	cfg Config
}

func New(cfg Config) *Recognizer {
	def := DefaultConfig()
	if cfg.NameMinLength <= 0 {
		cfg.NameMinLength = def.NameMinLength
	}
	if cfg.NameMaxLength <= 0 {
		cfg.NameMaxLength = def.NameMaxLength
	}
	if cfg.NameColumnSample <= 0 {
		cfg.NameColumnSample = def.NameColumnSample
	}
	if cfg.NameColumnMinHits <= 0 {
		cfg.NameColumnMinHits = def.NameColumnMinHits
	}
	return &Recognizer{cfg: cfg}
}

// Config returns the effective configuration.
func (r *Recognizer) Config() Config { return r.cfg }

// CollapseSpaces trims s and folds internal whitespace runs to one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
