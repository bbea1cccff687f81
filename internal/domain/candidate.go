package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SourceKind tags which record a candidate value came from.
type SourceKind string

// Source kinds.
const (
	SourceOriginal         SourceKind = "original"
	SourceEdition          SourceKind = "edition"
	SourceAudiobook        SourceKind = "audiobook"
	SourceAudiobookSummary SourceKind = "audiobookSummary"
)

// CandidateSource identifies one competing data source for a field:
// the original record, the Nth alternate edition, or the audiobook record.
type CandidateSource struct {
	Kind    SourceKind `json:"kind"`
	Edition int        `json:"edition,omitempty"`
}

// Original is the source tag for the original record.
func Original() CandidateSource { return CandidateSource{Kind: SourceOriginal} }

// EditionSource is the source tag for the alternate edition at index i.
func EditionSource(i int) CandidateSource {
	return CandidateSource{Kind: SourceEdition, Edition: i}
}

// Audiobook is the source tag for the audiobook record.
func Audiobook() CandidateSource { return CandidateSource{Kind: SourceAudiobook} }

// AudiobookSummary is the source tag for the audiobook's summary text,
// kept distinct from the audiobook record so descriptions can prefer it.
func AudiobookSummary() CandidateSource { return CandidateSource{Kind: SourceAudiobookSummary} }

// String renders a stable tag usable as a map key and wire value,
// e.g. "original", "edition:2", "audiobook".
func (s CandidateSource) String() string {
	if s.Kind == SourceEdition {
		return fmt.Sprintf("%s:%d", s.Kind, s.Edition)
	}
	return string(s.Kind)
}

// ParseSource parses the tag format produced by String.
func ParseSource(tag string) (CandidateSource, error) {
	if idx, ok := strings.CutPrefix(tag, string(SourceEdition)+":"); ok {
		n, err := strconv.Atoi(idx)
		if err != nil || n < 0 {
			return CandidateSource{}, fmt.Errorf("invalid edition index %q", idx)
		}
		return EditionSource(n), nil
	}
	switch SourceKind(tag) {
	case SourceOriginal, SourceAudiobook, SourceAudiobookSummary:
		return CandidateSource{Kind: SourceKind(tag)}, nil
	}
	return CandidateSource{}, fmt.Errorf("unknown source tag %q", tag)
}

// CandidateValue is one possible value for a semantic field, tagged by the
// source record that produced it.
type CandidateValue struct {
	Source CandidateSource `json:"source"`
	Value  any             `json:"value"`
}

// FieldSelection records the user's (or default) choice of which candidate
// feeds the effective record, per semantic field. It is created lazily on
// first render and discarded when the session's target record changes.
type FieldSelection map[SemanticField]CandidateSource
