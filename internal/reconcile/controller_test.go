package reconcile

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/coerce"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/logger"
	"github.com/shelfmark/shelfmark-server/internal/notion"
	"github.com/shelfmark/shelfmark-server/internal/source"
)

type stubDestination struct {
	queryCalls  int
	createCalls int
	updateCalls int

	queryResults []notion.Record
	queryErr     error
	writeErr     error

	lastUpdateID   string
	lastProperties map[string]notion.PropertyValue
	lastCreate     *notion.CreateRecordRequest
}

func (d *stubDestination) QueryCollection(_ context.Context, _ string, _ notion.Filter) ([]notion.Record, error) {
	d.queryCalls++
	return d.queryResults, d.queryErr
}

func (d *stubDestination) CreateRecord(_ context.Context, req notion.CreateRecordRequest) (*notion.Record, error) {
	d.createCalls++
	d.lastCreate = &req
	if d.writeErr != nil {
		return nil, d.writeErr
	}
	return &notion.Record{ID: "rec-new", URL: "https://dest.example.com/rec-new"}, nil
}

func (d *stubDestination) UpdateRecord(_ context.Context, recordID string, properties map[string]notion.PropertyValue) (*notion.Record, error) {
	d.updateCalls++
	d.lastUpdateID = recordID
	d.lastProperties = properties
	if d.writeErr != nil {
		return nil, d.writeErr
	}
	return &notion.Record{ID: recordID}, nil
}

type stubSettings struct {
	settings domain.CategorySettings
}

func (s *stubSettings) GetCategorySettings(_ context.Context) (domain.CategorySettings, error) {
	return s.settings.Clone(), nil
}

func duplicateRecord() notion.Record {
	return notion.Record{
		ID:  "rec-existing",
		URL: "https://dest.example.com/rec-existing",
	}
}

func testProperties() []domain.TargetProperty {
	return []domain.TargetProperty{
		{Name: "Title", Kind: domain.KindTitle},
		{Name: "Author", Kind: domain.KindMultiSelect},
		{Name: "ISBN", Kind: domain.KindRichText},
		{Name: "Genres", Kind: domain.KindMultiSelect},
	}
}

func testRecord() *domain.SourceRecord {
	return &domain.SourceRecord{
		ID:         "vol-1",
		Title:      "Dune",
		Authors:    []string{"Frank Herbert"},
		ISBN13:     "9780441013593",
		Categories: []string{"Fiction, Science Fiction"},
	}
}

func newTestController(dest Destination) *Controller {
	return newTestControllerWithSettings(dest, &stubSettings{settings: domain.NewCategorySettings()})
}

func newTestControllerWithSettings(dest Destination, settings SettingsSource) *Controller {
	log := logger.New(logger.Config{Writer: io.Discard})
	return NewController(dest, settings, coerce.New(), source.New(source.DefaultConfig(), log), "coll-1", log)
}

func newTestSession() *Session {
	return NewSession("rec-sess1", testRecord(), nil, nil, testProperties())
}

func TestNewSession_SuggestsMappings(t *testing.T) {
	s := newTestSession()

	assert.Equal(t, StateUnknown, s.State)

	fm, ok := s.Mappings.ByField(domain.FieldTitle)
	require.True(t, ok)
	assert.Equal(t, "Title", fm.PropertyName)

	fm, ok = s.Mappings.ByField(domain.FieldAuthors)
	require.True(t, ok)
	assert.Equal(t, "Author", fm.PropertyName)
}

func TestCheckDuplicate_RoundTrip(t *testing.T) {
	dest := &stubDestination{queryResults: []notion.Record{duplicateRecord()}}
	c := newTestController(dest)
	s := newTestSession()

	match, err := c.CheckDuplicate(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "rec-existing", match.RecordID)
	assert.Equal(t, StateDuplicate, s.State)
	assert.Equal(t, 1, dest.queryCalls)

	// Second check without edits must reuse the verdict.
	again, err := c.CheckDuplicate(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, match, again)
	assert.Equal(t, 1, dest.queryCalls)
}

func TestCheckDuplicate_RequeriesAfterIdentifyingEdit(t *testing.T) {
	dest := &stubDestination{queryResults: []notion.Record{duplicateRecord()}}
	c := newTestController(dest)
	s := newTestSession()
	s.Editions = []domain.Edition{{ID: "vol-2", Title: "Dune (Reissue)", ISBN13: "9780593099322"}}

	_, err := c.CheckDuplicate(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 1, dest.queryCalls)

	// Switching the title source changes the fingerprint.
	s.SelectSource(domain.FieldTitle, domain.EditionSource(0))

	_, err = c.CheckDuplicate(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 2, dest.queryCalls)
}

func TestCheckDuplicate_Unique(t *testing.T) {
	dest := &stubDestination{}
	c := newTestController(dest)
	s := newTestSession()

	match, err := c.CheckDuplicate(context.Background(), s)
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Equal(t, StateUnique, s.State)
}

func TestCheckDuplicate_NothingMappedSkipsQuery(t *testing.T) {
	dest := &stubDestination{queryResults: []notion.Record{duplicateRecord()}}
	c := newTestController(dest)
	s := NewSession("rec-sess2", testRecord(), nil, nil, nil)

	match, err := c.CheckDuplicate(context.Background(), s)
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Equal(t, StateUnique, s.State)
	assert.Equal(t, 0, dest.queryCalls)
}

func TestCheckDuplicate_QueryErrorKeepsSessionOpen(t *testing.T) {
	dest := &stubDestination{queryErr: domainerrors.DestinationAuth("token expired")}
	c := newTestController(dest)
	s := newTestSession()

	_, err := c.CheckDuplicate(context.Background(), s)
	require.Error(t, err)
	assert.Equal(t, StateUnknown, s.State)
}

func TestResolve(t *testing.T) {
	dest := &stubDestination{queryResults: []notion.Record{duplicateRecord()}}
	c := newTestController(dest)

	tests := []struct {
		decision domain.DuplicateDecision
		expected State
	}{
		{domain.DecisionCancel, StateCancelled},
		{domain.DecisionReplace, StateReplacing},
		{domain.DecisionKeepBoth, StateKeepingBoth},
	}

	for _, tt := range tests {
		t.Run(string(tt.decision), func(t *testing.T) {
			s := newTestSession()
			_, err := c.CheckDuplicate(context.Background(), s)
			require.NoError(t, err)

			require.NoError(t, c.Resolve(s, tt.decision))
			assert.Equal(t, tt.expected, s.State)
		})
	}
}

func TestResolve_RequiresDuplicateState(t *testing.T) {
	c := newTestController(&stubDestination{})
	s := newTestSession()

	err := c.Resolve(s, domain.DecisionReplace)
	assert.Error(t, err)

	err = c.Resolve(s, domain.DuplicateDecision("merge"))
	assert.Error(t, err)
}

func TestWrite_UniqueCreates(t *testing.T) {
	dest := &stubDestination{}
	c := newTestController(dest)
	s := newTestSession()

	rec, err := c.Write(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "rec-new", rec.ID)
	assert.Equal(t, StateCompleted, s.State)
	assert.Equal(t, 1, dest.queryCalls)
	assert.Equal(t, 1, dest.createCalls)

	require.NotNil(t, dest.lastCreate)
	assert.Equal(t, "coll-1", dest.lastCreate.Parent.DatabaseID)

	title := dest.lastCreate.Properties["Title"]
	require.Len(t, title.Title, 1)
	assert.Equal(t, "Dune", title.Title[0].Text.Content)

	authors := dest.lastCreate.Properties["Author"]
	require.Len(t, authors.MultiSelect, 1)
	assert.Equal(t, "Frank Herbert", authors.MultiSelect[0].Name)

	// Raw categories split on the comma before writing.
	genres := dest.lastCreate.Properties["Genres"]
	require.Len(t, genres.MultiSelect, 2)
	assert.Equal(t, "Fiction", genres.MultiSelect[0].Name)
	assert.Equal(t, "Science Fiction", genres.MultiSelect[1].Name)
}

func TestWrite_SeesSettingsEditedAfterSessionOpened(t *testing.T) {
	dest := &stubDestination{}
	settings := &stubSettings{settings: domain.NewCategorySettings()}
	c := newTestControllerWithSettings(dest, settings)
	s := newTestSession()

	// An ignore recorded while the session is open must land in the
	// write without any reload step.
	settings.settings.Ignored["Fiction"] = true

	_, err := c.Write(context.Background(), s)
	require.NoError(t, err)

	genres := dest.lastCreate.Properties["Genres"]
	require.Len(t, genres.MultiSelect, 1)
	assert.Equal(t, "Science Fiction", genres.MultiSelect[0].Name)
}

func TestWrite_DuplicateParks(t *testing.T) {
	dest := &stubDestination{queryResults: []notion.Record{duplicateRecord()}}
	c := newTestController(dest)
	s := newTestSession()

	_, err := c.Write(context.Background(), s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateAmbiguous))
	assert.Equal(t, StateDuplicate, s.State)
	assert.Equal(t, 0, dest.createCalls)
	assert.Equal(t, 0, dest.updateCalls)
}

func TestWrite_KeepBothCreatesNewRecord(t *testing.T) {
	dest := &stubDestination{queryResults: []notion.Record{duplicateRecord()}}
	c := newTestController(dest)
	s := newTestSession()

	_, err := c.CheckDuplicate(context.Background(), s)
	require.NoError(t, err)
	require.NoError(t, c.Resolve(s, domain.DecisionKeepBoth))

	rec, err := c.Write(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, "rec-new", rec.ID)
	assert.NotEqual(t, s.Duplicate.RecordID, rec.ID)
	assert.Equal(t, 1, dest.createCalls)
	assert.Equal(t, 0, dest.updateCalls)
	assert.Equal(t, StateCompleted, s.State)
}

func TestWrite_ReplaceUpdatesExistingRecord(t *testing.T) {
	dest := &stubDestination{queryResults: []notion.Record{duplicateRecord()}}
	c := newTestController(dest)
	s := newTestSession()

	_, err := c.CheckDuplicate(context.Background(), s)
	require.NoError(t, err)
	require.NoError(t, c.Resolve(s, domain.DecisionReplace))

	rec, err := c.Write(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, "rec-existing", rec.ID)
	assert.Equal(t, 1, dest.updateCalls)
	assert.Equal(t, 0, dest.createCalls)
	assert.Equal(t, "rec-existing", dest.lastUpdateID)

	// The payload is limited to mapped properties.
	for name := range dest.lastProperties {
		_, ok := s.Mappings.ByProperty(name)
		assert.True(t, ok, "unmapped property %s in payload", name)
	}
}

func TestWrite_FailurePreservesErrorKind(t *testing.T) {
	dest := &stubDestination{writeErr: domainerrors.DestinationValidation("payload rejected", map[string]any{"message": "Title is required"})}
	c := newTestController(dest)
	s := newTestSession()

	_, err := c.Write(context.Background(), s)
	require.Error(t, err)
	assert.Equal(t, StateFailed, s.State)
	assert.Equal(t, string(domainerrors.CodeDestinationValidation), s.FailureKind)
}

func TestWrite_ClosedSessionRefuses(t *testing.T) {
	dest := &stubDestination{queryResults: []notion.Record{duplicateRecord()}}
	c := newTestController(dest)
	s := newTestSession()

	_, err := c.CheckDuplicate(context.Background(), s)
	require.NoError(t, err)
	require.NoError(t, c.Resolve(s, domain.DecisionCancel))

	_, err = c.Write(context.Background(), s)
	assert.Error(t, err)
	assert.Equal(t, 0, dest.createCalls)
}

func TestEffectiveValues_ExplicitSelection(t *testing.T) {
	c := newTestController(&stubDestination{})
	s := newTestSession()
	s.Editions = []domain.Edition{{ID: "vol-2", Publisher: "Penguin"}}
	s.Record.Publisher = "Ace Books"

	values := c.EffectiveValues(s)
	assert.Equal(t, "Ace Books", values[domain.FieldPublisher].Value)

	s.SelectSource(domain.FieldPublisher, domain.EditionSource(0))
	values = c.EffectiveValues(s)
	assert.Equal(t, "Penguin", values[domain.FieldPublisher].Value)
}
