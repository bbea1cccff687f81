// Package dateparse resolves freeform date strings from bibliographic
// sources into canonical calendar dates, using an ordered strategy chain
// with a strict fallback policy: a later strategy never fires once an
// earlier one has produced a value.
package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Result is a resolved date. ISO is always a full YYYY-MM-DD string;
// when YearOnly is set the month and day are synthesized (-01-01) and
// display logic should show the year alone. The distinction is carried
// here as a flag, never re-derived by parsing the string later.
type Result struct {
	ISO      string `json:"iso"`
	YearOnly bool   `json:"year_only,omitempty"`
}

// Display returns the user-facing form: the bare year for year-only
// results, the full ISO date otherwise.
func (r Result) Display() string {
	if r.YearOnly {
		return r.ISO[:4]
	}
	return r.ISO
}

// Year returns the four-digit year.
func (r Result) Year() string {
	return r.ISO[:4]
}

var (
	isoDate     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	isoPrefix   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	slashedDate = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	bareYear    = regexp.MustCompile(`^\d{4}$`)
	anyYearRun  = regexp.MustCompile(`\b(\d{4})\b`)
)

// Layouts tried by the generic parse strategy, most common first.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"January 2006",
	"2006-01",
}

// Resolve parses a freeform date string. The boolean is false when no
// date or even a year could be recovered; no date is ever invented from
// nothing.
//
// Strategies, in order, first success wins:
//  1. Already YYYY-MM-DD: used verbatim, avoiding timezone-shift bugs
//     from re-parsing.
//  2. Generic calendar-date parse; if the original string began with an
//     ISO date its components are re-extracted directly, again to dodge
//     timezone rounding.
//  3. M/D/Y or M-D-Y (two 1-2 digit fields then a 4-digit year).
//  4. D/M/Y, accepted only when the first field cannot be a month; the
//     ambiguity tie-break favors M/D/Y, the more common source format.
//  5. Bare 4-digit year, flagged year-only.
//  6. Any 4-digit run anywhere in the string, flagged year-only.
func Resolve(raw string) (Result, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Result{}, false
	}

	// Strategy 1: verbatim ISO date.
	if isoDate.MatchString(s) {
		return Result{ISO: s}, true
	}

	// Strategy 2: generic parse.
	for _, layout := range genericLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if m := isoPrefix.FindStringSubmatch(s); m != nil {
			return Result{ISO: fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])}, true
		}
		return Result{ISO: t.Format("2006-01-02")}, true
	}

	// Strategies 3 and 4: slashed or dashed numeric dates.
	if m := slashedDate.FindStringSubmatch(s); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		year := m[3]

		// M/D/Y when the first field is a plausible month; this also
		// wins the M/D vs D/M tie when both are plausible.
		if first >= 1 && first <= 12 && second >= 1 && second <= 31 {
			return Result{ISO: fmt.Sprintf("%s-%02d-%02d", year, first, second)}, true
		}
		// D/M/Y only when the first field cannot be a month.
		if first > 12 && first <= 31 && second >= 1 && second <= 12 {
			return Result{ISO: fmt.Sprintf("%s-%02d-%02d", year, second, first)}, true
		}
	}

	// Strategy 5: bare year.
	if bareYear.MatchString(s) {
		return Result{ISO: s + "-01-01", YearOnly: true}, true
	}

	// Strategy 6: any 4-digit run, last resort.
	if m := anyYearRun.FindStringSubmatch(s); m != nil {
		return Result{ISO: m[1] + "-01-01", YearOnly: true}, true
	}

	return Result{}, false
}
