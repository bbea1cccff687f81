package source

import (
	"io"
	"testing"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/logger"
)

func testSelector(cfg Config) *Selector {
	return New(cfg, logger.New(logger.Config{Writer: io.Discard}))
}

func TestSelect_NoCandidates(t *testing.T) {
	s := testSelector(DefaultConfig())

	_, ok := s.Select(domain.FieldTitle, nil, nil)
	if ok {
		t.Error("expected no value for empty candidate set")
	}
}

func TestSelect_ExplicitChoiceWins(t *testing.T) {
	s := testSelector(DefaultConfig())
	candidates := []domain.CandidateValue{
		{Source: domain.Original(), Value: "The Original Title"},
		{Source: domain.EditionSource(1), Value: "The Edition Title"},
	}

	choice := domain.EditionSource(1)
	got, ok := s.Select(domain.FieldTitle, candidates, &choice)
	if !ok || got.Value != "The Edition Title" {
		t.Errorf("Select() = %v, expected explicit edition choice", got)
	}
}

func TestSelect_ExplicitChoiceMissingFallsBack(t *testing.T) {
	s := testSelector(DefaultConfig())
	candidates := []domain.CandidateValue{
		{Source: domain.Original(), Value: "The Original Title"},
	}

	choice := domain.EditionSource(3)
	got, ok := s.Select(domain.FieldTitle, candidates, &choice)
	if !ok || got.Value != "The Original Title" {
		t.Errorf("Select() = %v, expected fallback to original", got)
	}
}

func TestSelect_DefaultTakesFirstSource(t *testing.T) {
	s := testSelector(DefaultConfig())
	candidates := []domain.CandidateValue{
		{Source: domain.Original(), Value: "Ace Books"},
		{Source: domain.EditionSource(0), Value: "Penguin"},
	}

	got, _ := s.Select(domain.FieldPublisher, candidates, nil)
	if got.Value != "Ace Books" {
		t.Errorf("Select() = %v, expected consolidated original source", got.Value)
	}
}

func TestSelect_DatePrefersCompleteOverYearOnly(t *testing.T) {
	s := testSelector(Config{})
	candidates := []domain.CandidateValue{
		{Source: domain.Original(), Value: "1965"},
		{Source: domain.EditionSource(0), Value: "1965-08-01"},
	}

	got, _ := s.Select(domain.FieldPublishedDate, candidates, nil)
	if got.Value != "1965-08-01" {
		t.Errorf("Select() = %v, expected the complete date", got.Value)
	}
}

func TestSelect_DateEquallyCompleteKeepsOriginal(t *testing.T) {
	s := testSelector(Config{})
	candidates := []domain.CandidateValue{
		{Source: domain.Original(), Value: "1965-08-01"},
		{Source: domain.EditionSource(0), Value: "1972-03-15"},
	}

	got, _ := s.Select(domain.FieldPublishedDate, candidates, nil)
	if got.Source.Kind != domain.SourceOriginal {
		t.Errorf("Select() chose %v, expected original", got.Source)
	}
}

func TestSelect_EarlierAudiobookDate(t *testing.T) {
	candidates := []domain.CandidateValue{
		{Source: domain.Original(), Value: "1972-03-15"},
		{Source: domain.Audiobook(), Value: "1965-08-01"},
	}

	got, _ := testSelector(DefaultConfig()).Select(domain.FieldPublishedDate, candidates, nil)
	if got.Source.Kind != domain.SourceAudiobook {
		t.Errorf("with preference on, chose %v, expected audiobook", got.Source)
	}

	got, _ = testSelector(Config{}).Select(domain.FieldPublishedDate, candidates, nil)
	if got.Source.Kind != domain.SourceOriginal {
		t.Errorf("with preference off, chose %v, expected original", got.Source)
	}
}

func TestSelect_LaterAudiobookDateNotPreferred(t *testing.T) {
	s := testSelector(DefaultConfig())
	candidates := []domain.CandidateValue{
		{Source: domain.Original(), Value: "1965-08-01"},
		{Source: domain.Audiobook(), Value: "2007-01-09"},
	}

	got, _ := s.Select(domain.FieldPublishedDate, candidates, nil)
	if got.Source.Kind != domain.SourceOriginal {
		t.Errorf("Select() chose %v, expected original", got.Source)
	}
}

func TestEffectiveIdentifier(t *testing.T) {
	values := map[domain.SemanticField]domain.CandidateValue{
		domain.FieldISBN10: {Source: domain.Original(), Value: "0441013597"},
		domain.FieldISBN13: {Source: domain.Original(), Value: "9780441013593"},
	}

	got, ok := EffectiveIdentifier(values)
	if !ok || got != "9780441013593" {
		t.Errorf("EffectiveIdentifier() = %q, expected the ISBN-13", got)
	}

	delete(values, domain.FieldISBN13)
	got, ok = EffectiveIdentifier(values)
	if !ok || got != "0441013597" {
		t.Errorf("EffectiveIdentifier() = %q, expected the ISBN-10", got)
	}

	_, ok = EffectiveIdentifier(nil)
	if ok {
		t.Error("expected no identifier from an empty set")
	}
}
