package probe

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/faculty-tracker/internal/common"
)

// Interval is a closed range of numeric identifiers.
type Interval struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

func (iv Interval) String() string { return fmt.Sprintf("%d-%d", iv.Start, iv.End) }

// Len is the number of identifiers in the interval.
func (iv Interval) Len() int64 { return iv.End - iv.Start + 1 }

func (iv Interval) Contains(id int64) bool { return id >= iv.Start && id <= iv.End }

// ParseInterval reads "start-end" or a single identifier.
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	lo, hi, found := strings.Cut(s, "-")
	start, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
	if err != nil {
		return Interval{}, fmt.Errorf("interval %q: %w", s, err)
	}
	end := start
	if found {
		if end, err = strconv.ParseInt(strings.TrimSpace(hi), 10, 64); err != nil {
			return Interval{}, fmt.Errorf("interval %q: %w", s, err)
		}
	}
	return Interval{Start: start, End: end}, nil
}

// ParseIntervals parses and validates a list of ranges.
func ParseIntervals(specs []string) ([]Interval, error) {
	out := make([]Interval, 0, len(specs))
	for _, s := range specs {
		iv, err := ParseInterval(s)
		if err != nil {
			return nil, common.ConfigError("invalid probe range: %v", err)
		}
		out = append(out, iv)
	}
	if err := ValidateIntervals(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateIntervals requires non-negative, well-ordered and pairwise disjoint intervals.
func ValidateIntervals(ivs []Interval) error {
	v := common.NewValidator()
	for _, iv := range ivs {
		v.Check(iv.Start >= 0, "probe.ranges", iv.String(), "must not be negative")
		v.Check(iv.Start <= iv.End, "probe.ranges", iv.String(), "start must not exceed end")
	}
	sorted := append([]Interval(nil), ivs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start <= sorted[i-1].End {
			v.Check(false, "probe.ranges", sorted[i].String(), "overlaps "+sorted[i-1].String())
		}
	}
	return common.ValidateAndReturnError(v)
}
