// Package typemap translates dimension and measure kinds between LookML and
// Cube and synthesizes bucketed CASE expressions for tier dimensions.
//
// The tables are deliberately asymmetric. Several LookML kinds collapse into
// one Cube kind (sum_distinct -> sum, average_distinct -> avg, tier -> number,
// zipcode -> string, date -> time) and both Cube distinct-count kinds expand
// back into the single LookML count_distinct. Round trips through these
// classes are lossy; see Collapsed.
package typemap

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Direction selects which table Map consults.
type Direction int

const (
	// Forward maps LookML kinds to Cube kinds.
	Forward Direction = iota
	// Reverse maps Cube kinds to LookML kinds.
	Reverse
)

// Well-known kinds referenced by the converters.
const (
	KindTier          = "tier"
	KindCount         = "count"
	KindList          = "list"
	KindString        = "string"
	KindTime          = "time"
	KindNumber        = "number"
	KindCountDistinct = "count_distinct"
)

var forward = map[string]string{
	"zipcode":          "string",
	"string":           "string",
	"number":           "number",
	"tier":             "number",
	"count":            "count",
	"yesno":            "boolean",
	"sum":              "sum",
	"sum_distinct":     "sum",
	"average":          "avg",
	"average_distinct": "avg",
	"date":             "time",
	"time":             "time",
	"count_distinct":   "count_distinct_approx",
}

var reverse = map[string]string{
	"string":                "string",
	"number":                "number",
	"count":                 "count",
	"boolean":               "yesno",
	"sum":                   "sum",
	"avg":                   "average",
	"time":                  "time",
	"count_distinct":        "count_distinct",
	"count_distinct_approx": "count_distinct",
}

// collapsed lists the forward kinds whose round trip does not return the
// same symbol.
var collapsed = map[string]bool{
	"zipcode":          true,
	"tier":             true,
	"sum_distinct":     true,
	"average_distinct": true,
	"date":             true,
}

// ErrTooFewTiers is returned when a tier dimension has fewer than two boundaries.
var ErrTooFewTiers = errors.New("tier dimensions need at least two boundaries")

// Map translates kind in the given direction. The bool is false when the
// kind has no mapping; callers skip the field and report a diagnostic.
func Map(kind string, dir Direction) (string, bool) {
	var table map[string]string
	switch dir {
	case Forward:
		table = forward
	case Reverse:
		table = reverse
	default:
		return "", false
	}
	mapped, ok := table[kind]
	return mapped, ok
}

// Collapsed reports whether a forward kind loses its identity on a round trip.
func Collapsed(kind string) bool {
	return collapsed[kind]
}

// Kinds returns the kinds known in the given direction, sorted.
func Kinds(dir Direction) []string {
	table := forward
	if dir == Reverse {
		table = reverse
	}
	kinds := make([]string, 0, len(table))
	for k := range table {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Tier builds a CASE expression bucketing expr by the ascending boundaries
// in bins. Each adjacent pair produces one WHEN clause; values at or above
// the last boundary fall through to NULL.
func Tier(expr string, bins []float64) (string, error) {
	if len(bins) < 2 {
		return "", fmt.Errorf("%w: got %d", ErrTooFewTiers, len(bins))
	}

	var b strings.Builder
	b.WriteString("CASE")
	for i := 0; i < len(bins)-1; i++ {
		lo := formatBound(bins[i])
		hi := formatBound(bins[i+1])
		fmt.Fprintf(&b, " WHEN %s >= %s AND %s < %s THEN %s", expr, lo, expr, hi, lo)
	}
	b.WriteString(" ELSE NULL END")
	return b.String(), nil
}

// formatBound renders a boundary without a trailing ".0" for whole numbers.
func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
