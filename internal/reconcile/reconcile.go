// Package reconcile collapses overlapping candidate records into one canonical
// entity per person.
package reconcile

import (
	"log/slog"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agext/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

type Config struct {
	MergeThreshold float64 // names at least this similar are the same person
	MinNameLength  int     // in runes, after normalization
}

func DefaultConfig() Config {
	return Config{MergeThreshold: 0.85, MinNameLength: 4}
}

// Result is a reconciled batch.
type Result struct {
	Entities []entity.CanonicalEntity
	Dropped  int // records without a usable name
}

type Reconciler struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.MergeThreshold <= 0 || cfg.MergeThreshold > 1 {
		cfg.MergeThreshold = def.MergeThreshold
	}
	if cfg.MinNameLength <= 0 {
		cfg.MinNameLength = def.MinNameLength
	}
	return &Reconciler{cfg: cfg, logger: logger}
}

// NormalizeName is the comparison key of a name: NFC, case folded, single spaced.
func NormalizeName(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}

// Similarity is the edit-distance ratio of two normalized names in [0,1].
func Similarity(a, b string) float64 {
	return levenshtein.Similarity(a, b, nil)
}

func numeric(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsSpace(r) || unicode.IsPunct(r):
		default:
			return false
		}
	}
	return digits > 0
}

// Reconcile clusters records whose normalized names are at least MergeThreshold
// similar (transitively), keeps the record with the most fields of each cluster
// (first seen on ties) and attaches every member as a contributing record.
// Entities come out in the input order of their winners.
func (r *Reconciler) Reconcile(records []entity.CandidateRecord) Result {
	var res Result

	type member struct {
		idx int
		key string
	}
	var kept []member
	for i, rec := range records {
		key := NormalizeName(rec.Fields.Name)
		if key == "" || utf8.RuneCountInString(key) < r.cfg.MinNameLength || numeric(key) {
			res.Dropped++
			continue
		}
		kept = append(kept, member{idx: i, key: key})
	}

	// identical keys collapse before the pairwise pass
	keyIndex := make(map[string]int)
	var keys []string
	groupOf := make([]int, len(kept))
	for i, m := range kept {
		g, ok := keyIndex[m.key]
		if !ok {
			g = len(keys)
			keyIndex[m.key] = g
			keys = append(keys, m.key)
		}
		groupOf[i] = g
	}

	uf := newUnionFind(len(keys))
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if Similarity(keys[i], keys[j]) >= r.cfg.MergeThreshold {
				uf.union(i, j)
			}
		}
	}

	// members per cluster root, in input order
	clusters := make(map[int][]int)
	var roots []int
	for i := range kept {
		root := uf.find(groupOf[i])
		if _, ok := clusters[root]; !ok {
			roots = append(roots, root)
		}
		clusters[root] = append(clusters[root], kept[i].idx)
	}

	type ranked struct {
		winner int
		entity entity.CanonicalEntity
	}
	out := make([]ranked, 0, len(roots))
	for _, root := range roots {
		idxs := clusters[root]
		winner := idxs[0]
		for _, i := range idxs[1:] {
			if records[i].FieldCount() > records[winner].FieldCount() {
				winner = i
			}
		}
		members := make([]entity.CandidateRecord, len(idxs))
		for k, i := range idxs {
			members[k] = records[i]
		}
		out = append(out, ranked{winner: winner, entity: entity.FromCandidate(records[winner], members)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].winner < out[j].winner })

	res.Entities = make([]entity.CanonicalEntity, len(out))
	for i, o := range out {
		res.Entities[i] = o.entity
	}
	r.logger.Info("reconcile.done",
		"candidates", len(records), "dropped", res.Dropped, "entities", len(res.Entities))
	return res
}

// Records turns canonical entities back into one candidate each, the winning record.
func Records(entities []entity.CanonicalEntity) []entity.CandidateRecord {
	out := make([]entity.CandidateRecord, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Winner())
	}
	return out
}
