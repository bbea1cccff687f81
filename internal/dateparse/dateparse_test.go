package dateparse

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		input    string
		iso      string
		yearOnly bool
		ok       bool
	}{
		// Strategy 1: verbatim ISO.
		{"2023-05-10", "2023-05-10", false, true},
		{"1999-12-31", "1999-12-31", false, true},
		// Strategy 2: generic parse, ISO prefix re-extracted.
		{"2023-05-10T00:00:00Z", "2023-05-10", false, true},
		{"January 2, 2006", "2006-01-02", false, true},
		{"2 January 2006", "2006-01-02", false, true},
		{"2018/07/04", "2018-07-04", false, true},
		// Strategy 3: M/D/Y preferred.
		{"05/10/2023", "2023-05-10", false, true},
		{"5/1/2023", "2023-05-01", false, true},
		{"12-25-1990", "1990-12-25", false, true},
		// Strategy 4: D/M/Y only when first field cannot be a month.
		{"25/12/1990", "1990-12-25", false, true},
		{"31-1-2000", "2000-01-31", false, true},
		// Strategy 5: bare year, flagged.
		{"2023", "2023-01-01", true, true},
		{"1887", "1887-01-01", true, true},
		// Strategy 6: year run anywhere, flagged.
		{"circa 1923, first printing", "1923-01-01", true, true},
		{"London 2005", "2005-01-01", true, true},
		// Nothing recoverable.
		{"no date here", "", false, false},
		{"", "", false, false},
		{"   ", "", false, false},
		{"12/34/56", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Resolve(tt.input)
			if ok != tt.ok {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if !ok {
				return
			}
			if got.ISO != tt.iso {
				t.Errorf("Resolve(%q).ISO = %q, want %q", tt.input, got.ISO, tt.iso)
			}
			if got.YearOnly != tt.yearOnly {
				t.Errorf("Resolve(%q).YearOnly = %v, want %v", tt.input, got.YearOnly, tt.yearOnly)
			}
		})
	}
}

func TestResolve_AmbiguityTieBreak(t *testing.T) {
	// Both fields are plausible months: M/D/Y must win.
	got, ok := Resolve("03/04/2020")
	if !ok || got.ISO != "2020-03-04" {
		t.Errorf("Resolve(03/04/2020) = %+v, want 2020-03-04 (M/D/Y)", got)
	}
}

func TestResolve_EarlierStrategyWins(t *testing.T) {
	// A verbatim ISO date must never fall through to the year-run
	// fallback, even though it contains a 4-digit run.
	got, ok := Resolve("2023-05-10")
	if !ok || got.YearOnly || got.ISO != "2023-05-10" {
		t.Errorf("Resolve(2023-05-10) = %+v, want exact date", got)
	}
}

func TestResultDisplay(t *testing.T) {
	tests := []struct {
		result   Result
		expected string
	}{
		{Result{ISO: "2023-05-10"}, "2023-05-10"},
		{Result{ISO: "2023-01-01", YearOnly: true}, "2023"},
	}

	for _, tt := range tests {
		if got := tt.result.Display(); got != tt.expected {
			t.Errorf("Display() = %q, want %q", got, tt.expected)
		}
	}
}
