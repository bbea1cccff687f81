package api

import (
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/coerce"
	"github.com/shelfmark/shelfmark-server/internal/logger"
	"github.com/shelfmark/shelfmark-server/internal/metadata/audible"
	"github.com/shelfmark/shelfmark-server/internal/metadata/googlebooks"
	"github.com/shelfmark/shelfmark-server/internal/notion"
	"github.com/shelfmark/shelfmark-server/internal/reconcile"
	"github.com/shelfmark/shelfmark-server/internal/service"
	"github.com/shelfmark/shelfmark-server/internal/source"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

const testCollectionID = "coll-1"

// destinationState drives the fake destination service.
type destinationState struct {
	queryCalls   int
	createCalls  int
	queryMatches bool
}

type redirectTransport string

func (rt redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = strings.TrimPrefix(string(rt), "http://")
	return http.DefaultTransport.RoundTrip(req)
}

type testServer struct {
	*Server
	api humatest.TestAPI
}

func newTestServer(t *testing.T, dest *destinationState) *testServer {
	t.Helper()

	booksServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/volumes/") {
			_, _ = w.Write([]byte(`{"id": "vol-1", "volumeInfo": {
				"title": "Dune", "authors": ["Frank Herbert"],
				"industryIdentifiers": [{"type": "ISBN_13", "identifier": "9780441013593"}],
				"publishedDate": "1965-08-01", "publisher": "Ace Books",
				"categories": ["Fiction, Science Fiction"]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"totalItems": 1, "items": [
			{"id": "vol-1", "volumeInfo": {"title": "Dune"}},
			{"id": "vol-2", "volumeInfo": {"title": "Dune", "publisher": "Penguin", "publishedDate": "2005-09-01"}}
		]}`))
	}))
	t.Cleanup(booksServer.Close)

	audioServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"products": [{"asin": "B002V8L5MG", "title": "Dune",
			"release_date": "2006-12-31", "runtime_length_min": 1267,
			"category_ladders": [{"ladder": [{"id": "1", "name": "Audio Drama"}]}]}]}`))
	}))
	t.Cleanup(audioServer.Close)

	destServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v1/databases/") && strings.HasSuffix(r.URL.Path, "/query"):
			dest.queryCalls++
			if dest.queryMatches {
				_, _ = w.Write([]byte(`{"results": [{"id": "rec-existing", "url": "https://dest/rec-existing",
					"properties": {"Title": {"title": [{"plain_text": "Dune"}]}}}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"results": []}`))
		case strings.HasPrefix(r.URL.Path, "/v1/databases/"):
			_, _ = w.Write([]byte(`{"id": "coll-1", "properties": {
				"Title": {"id": "t", "name": "Title", "type": "title"},
				"Author": {"id": "a", "name": "Author", "type": "multi_select"},
				"ISBN": {"id": "i", "name": "ISBN", "type": "rich_text"},
				"Genres": {"id": "g", "name": "Genres", "type": "multi_select"}}}`))
		case r.URL.Path == "/v1/pages" && r.Method == http.MethodPost:
			dest.createCalls++
			_, _ = w.Write([]byte(`{"id": "rec-new", "url": "https://dest/rec-new"}`))
		case strings.HasPrefix(r.URL.Path, "/v1/pages/") && r.Method == http.MethodPatch:
			_, _ = w.Write([]byte(`{"id": "rec-existing", "url": "https://dest/rec-existing"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code": "object_not_found", "message": "not found"}`))
		}
	}))
	t.Cleanup(destServer.Close)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	books := googlebooks.New("", slogger).WithBaseURL(booksServer.URL)
	t.Cleanup(books.Close)

	audioHTTP := audioServer.Client()
	audioHTTP.Transport = redirectTransport(audioServer.URL)
	audio := audible.New(slogger).WithHTTPClient(audioHTTP)
	t.Cleanup(audio.Close)

	destClient := notion.New("secret-token", slogger).WithBaseURL(destServer.URL)
	t.Cleanup(destClient.Close)

	st, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	log := logger.New(logger.Config{Writer: io.Discard})
	metadata := service.NewMetadataService(books, audio, audible.RegionUS, slogger)
	settings := service.NewSettingsService(st, slogger)
	controller := reconcile.NewController(destClient, st, coerce.New(), source.New(source.DefaultConfig(), log), testCollectionID, log)
	reconcileSvc := service.NewReconcileService(controller, metadata, settings, destClient, testCollectionID, slogger)

	s := NewServer(st, &Services{
		Reconcile: reconcileSvc,
		Settings:  settings,
		Metadata:  metadata,
	}, slogger)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
	}
}

func decodeBody[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), "body: %s", resp.Body.String())
	return out
}

func (ts *testServer) openSession(t *testing.T) SessionResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/sessions", map[string]any{"volume_id": "vol-1"})
	require.Equal(t, http.StatusOK, resp.Code, "open failed: %s", resp.Body.String())
	return decodeBody[SessionResponse](t, resp)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, &destinationState{})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decodeBody[HealthResponse](t, resp)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
}

func TestSessionEndpoints_UniqueWriteFlow(t *testing.T) {
	dest := &destinationState{}
	ts := newTestServer(t, dest)

	session := ts.openSession(t)
	assert.True(t, strings.HasPrefix(session.ID, "rec-"))
	assert.Equal(t, "unknown", session.State)
	assert.Equal(t, "Dune", session.Record.Title)
	assert.Len(t, session.Properties, 4)
	require.NotNil(t, session.Audiobook)

	var titleMapped bool
	for _, m := range session.Mappings {
		if m.Field == "title" && m.PropertyName == "Title" {
			titleMapped = true
		}
	}
	assert.True(t, titleMapped, "title should map to the Title property")

	resp := ts.api.Get("/api/v1/sessions/" + session.ID + "/values")
	require.Equal(t, http.StatusOK, resp.Code)
	values := decodeBody[EffectiveValuesResponse](t, resp)
	assert.Equal(t, "original", values.Values["title"].Source)

	resp = ts.api.Put("/api/v1/sessions/"+session.ID+"/fields/publisher/source",
		map[string]any{"source": "edition:0"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	values = decodeBody[EffectiveValuesResponse](t, resp)
	assert.Equal(t, "edition:0", values.Values["publisher"].Source)

	resp = ts.api.Post("/api/v1/sessions/" + session.ID + "/duplicate-check")
	require.Equal(t, http.StatusOK, resp.Code)
	check := decodeBody[DuplicateCheckResponse](t, resp)
	assert.Equal(t, "unique", check.State)
	assert.Nil(t, check.Duplicate)

	resp = ts.api.Post("/api/v1/sessions/" + session.ID + "/write")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	written := decodeBody[WriteSessionResponse](t, resp)
	assert.Equal(t, "rec-new", written.RecordID)
	assert.Equal(t, "completed", written.State)
	assert.Equal(t, 1, dest.createCalls)

	// The session is gone once the write completes.
	resp = ts.api.Get("/api/v1/sessions/" + session.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	apiErr := decodeBody[APIError](t, resp)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestSessionEndpoints_DuplicateFlow(t *testing.T) {
	dest := &destinationState{queryMatches: true}
	ts := newTestServer(t, dest)

	session := ts.openSession(t)

	resp := ts.api.Post("/api/v1/sessions/" + session.ID + "/duplicate-check")
	require.Equal(t, http.StatusOK, resp.Code)
	check := decodeBody[DuplicateCheckResponse](t, resp)
	assert.Equal(t, "duplicate", check.State)
	require.NotNil(t, check.Duplicate)
	assert.Equal(t, "rec-existing", check.Duplicate.RecordID)
	assert.Equal(t, "Dune", check.Duplicate.Title)

	// Writing while the verdict is unresolved is refused.
	resp = ts.api.Post("/api/v1/sessions/" + session.ID + "/write")
	require.Equal(t, http.StatusConflict, resp.Code)
	apiErr := decodeBody[APIError](t, resp)
	assert.Equal(t, "DUPLICATE_AMBIGUOUS", apiErr.Code)

	resp = ts.api.Post("/api/v1/sessions/"+session.ID+"/resolve",
		map[string]any{"decision": "keepBoth"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resolved := decodeBody[SessionResponse](t, resp)
	assert.Equal(t, "keepingBoth", resolved.State)

	resp = ts.api.Post("/api/v1/sessions/" + session.ID + "/write")
	require.Equal(t, http.StatusOK, resp.Code)
	written := decodeBody[WriteSessionResponse](t, resp)
	assert.Equal(t, "rec-new", written.RecordID, "keepBoth creates a new record")
	assert.Equal(t, 1, dest.createCalls)
}

func TestSessionEndpoints_CancelViaResolve(t *testing.T) {
	ts := newTestServer(t, &destinationState{queryMatches: true})

	session := ts.openSession(t)

	resp := ts.api.Post("/api/v1/sessions/" + session.ID + "/duplicate-check")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/sessions/"+session.ID+"/resolve",
		map[string]any{"decision": "cancel"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/sessions/" + session.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code, "cancel drops the session")
}

func TestSessionCategoriesEndpoints(t *testing.T) {
	ts := newTestServer(t, &destinationState{})

	session := ts.openSession(t)

	resp := ts.api.Get("/api/v1/sessions/" + session.ID + "/categories")
	require.Equal(t, http.StatusOK, resp.Code)
	cats := decodeBody[SessionCategoriesResponse](t, resp)
	assert.Equal(t, []string{"Fiction", "Science Fiction", "Audio Drama"}, cats.Processed)
	assert.Equal(t, cats.Processed, cats.Selected, "first render selects everything")

	resp = ts.api.Put("/api/v1/sessions/"+session.ID+"/categories",
		map[string]any{"selected": []string{"Science Fiction"}})
	require.Equal(t, http.StatusOK, resp.Code)
	cats = decodeBody[SessionCategoriesResponse](t, resp)
	assert.Equal(t, []string{"Science Fiction"}, cats.Selected)
}

func TestMappingEndpoints(t *testing.T) {
	ts := newTestServer(t, &destinationState{})

	resp := ts.api.Post("/api/v1/mappings/suggest", map[string]any{
		"properties": []map[string]string{
			{"name": "Book Title", "type": "title"},
			{"name": "Author", "type": "multi_select"},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	suggested := decodeBody[MappingsResponse](t, resp)

	byField := map[string]string{}
	for _, m := range suggested.Mappings {
		byField[m.Field] = m.PropertyName
	}
	assert.Equal(t, "Book Title", byField["title"])
	assert.Equal(t, "Author", byField["authors"])

	session := ts.openSession(t)

	resp = ts.api.Put("/api/v1/sessions/"+session.ID+"/mappings/description",
		map[string]any{"property_name": "ISBN"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	edited := decodeBody[MappingsResponse](t, resp)

	var descMapping *MappingResponse
	for i, m := range edited.Mappings {
		if m.Field == "description" {
			descMapping = &edited.Mappings[i]
		}
	}
	require.NotNil(t, descMapping)
	assert.Equal(t, "ISBN", descMapping.PropertyName)
	assert.True(t, descMapping.UserEdited)

	resp = ts.api.Put("/api/v1/sessions/"+session.ID+"/mappings/description",
		map[string]any{"property_name": "Nope"})
	assert.Equal(t, http.StatusBadRequest, resp.Code, "unknown property rejected")

	resp = ts.api.Delete("/api/v1/sessions/" + session.ID + "/mappings/description")
	require.Equal(t, http.StatusOK, resp.Code)
	removed := decodeBody[MappingsResponse](t, resp)
	for _, m := range removed.Mappings {
		assert.NotEqual(t, "description", m.Field)
	}
}

func TestCategorySettingsEndpoints(t *testing.T) {
	ts := newTestServer(t, &destinationState{})

	resp := ts.api.Post("/api/v1/settings/categories/ignore",
		map[string]any{"category": "General"})
	require.Equal(t, http.StatusOK, resp.Code)
	settings := decodeBody[CategorySettingsResponse](t, resp)
	assert.Equal(t, []string{"General"}, settings.Ignored)

	resp = ts.api.Post("/api/v1/settings/categories/merge",
		map[string]any{"from": "Sci-Fi", "to": "Science Fiction"})
	require.Equal(t, http.StatusOK, resp.Code)
	settings = decodeBody[CategorySettingsResponse](t, resp)
	assert.Equal(t, "Science Fiction", settings.Aliases["Sci-Fi"])

	// A self-merge is rejected.
	resp = ts.api.Post("/api/v1/settings/categories/merge",
		map[string]any{"from": "Fantasy", "to": "Fantasy"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Post("/api/v1/categories/process", map[string]any{
		"categories": []string{"General", "Sci-Fi", "Fantasy"},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	processed := decodeBody[ProcessCategoriesResponse](t, resp)
	assert.Equal(t, []string{"Science Fiction", "Fantasy"}, processed.Processed)
	assert.Equal(t, []string{"General"}, processed.Ignored)
	assert.Equal(t, "Science Fiction", processed.Mapped["Sci-Fi"])

	resp = ts.api.Post("/api/v1/settings/categories/unignore",
		map[string]any{"category": "General"})
	require.Equal(t, http.StatusOK, resp.Code)
	settings = decodeBody[CategorySettingsResponse](t, resp)
	assert.Empty(t, settings.Ignored)

	resp = ts.api.Put("/api/v1/settings/categories/split",
		map[string]any{"comma": true, "ampersand": true, "slash": false})
	require.Equal(t, http.StatusOK, resp.Code)
	settings = decodeBody[CategorySettingsResponse](t, resp)
	assert.True(t, settings.Split.Ampersand)

	resp = ts.api.Get("/api/v1/settings/categories")
	require.Equal(t, http.StatusOK, resp.Code)
	settings = decodeBody[CategorySettingsResponse](t, resp)
	assert.True(t, settings.Split.Ampersand, "split policy persisted")
}

func TestCategorySuggestionsEndpoint(t *testing.T) {
	ts := newTestServer(t, &destinationState{})

	resp := ts.api.Post("/api/v1/categories/suggestions", map[string]any{
		"categories": []string{"Science Fiction", "ScienceFiction", "History"},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	out := decodeBody[SuggestCategoryMergesResponse](t, resp)

	require.Len(t, out.Suggestions, 1)
	assert.Equal(t, "Science Fiction", out.Suggestions[0].A)
	assert.Equal(t, "ScienceFiction", out.Suggestions[0].B)
}

func TestCoerceEndpoints(t *testing.T) {
	ts := newTestServer(t, &destinationState{})

	resp := ts.api.Post("/api/v1/coerce/preview",
		map[string]any{"value": "05/10/2023", "type": "date"})
	require.Equal(t, http.StatusOK, resp.Code)
	preview := decodeBody[PreviewCoercionResponse](t, resp)
	require.True(t, preview.Accepted)
	require.NotNil(t, preview.Payload)
	require.NotNil(t, preview.Payload.Date)
	assert.Equal(t, "2023-05-10", preview.Payload.Date.Start)

	resp = ts.api.Post("/api/v1/coerce/preview",
		map[string]any{"value": "not a url", "type": "url"})
	require.Equal(t, http.StatusOK, resp.Code)
	preview = decodeBody[PreviewCoercionResponse](t, resp)
	assert.False(t, preview.Accepted, "unqualified URL is omitted, not written")

	resp = ts.api.Post("/api/v1/coerce/preview",
		map[string]any{"value": "x", "type": "bogus"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Post("/api/v1/dates/resolve", map[string]any{"value": "1999"})
	require.Equal(t, http.StatusOK, resp.Code)
	date := decodeBody[ResolveDateResponse](t, resp)
	assert.Equal(t, "1999-01-01", date.ISO)
	assert.True(t, date.YearOnly)
	assert.Equal(t, "1999", date.Display)

	resp = ts.api.Post("/api/v1/dates/resolve", map[string]any{"value": "no date here"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	apiErr := decodeBody[APIError](t, resp)
	assert.Equal(t, "DATE_UNRESOLVABLE", apiErr.Code)
}
