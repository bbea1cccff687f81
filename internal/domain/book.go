package domain

// SourceRecord is the original bibliographic record a reconciliation
// session is opened for, as returned by the book catalog source.
type SourceRecord struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	ISBN13        string   `json:"isbn13,omitempty"`
	ISBN10        string   `json:"isbn10,omitempty"`
	Description   string   `json:"description,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
	Language      string   `json:"language,omitempty"`
}

// Edition is one alternate edition of the source record. Only the fields
// that can differ between editions are carried.
type Edition struct {
	ID            string   `json:"id"`
	Title         string   `json:"title,omitempty"`
	ISBN13        string   `json:"isbn13,omitempty"`
	ISBN10        string   `json:"isbn10,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
}

// AudiobookRecord is the optional audiobook counterpart of the source
// record, supplying narrators, runtime and an alternate summary.
type AudiobookRecord struct {
	ID             string   `json:"id"`
	Title          string   `json:"title,omitempty"`
	Narrators      []string `json:"narrators,omitempty"`
	RuntimeMinutes int      `json:"runtime_minutes,omitempty"`
	ReleaseDate    string   `json:"release_date,omitempty"`
	Summary        string   `json:"summary,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	Rating         float64  `json:"rating,omitempty"`
}

// Candidates collects every candidate value for a semantic field across
// the original record, each alternate edition, and the audiobook record.
// Empty values are skipped so selectors only see real candidates.
func Candidates(field SemanticField, rec *SourceRecord, editions []Edition, audio *AudiobookRecord) []CandidateValue {
	var out []CandidateValue
	add := func(src CandidateSource, v any) {
		if emptyValue(v) {
			return
		}
		out = append(out, CandidateValue{Source: src, Value: v})
	}

	if rec != nil {
		switch field {
		case FieldTitle:
			add(Original(), rec.Title)
		case FieldAuthors:
			add(Original(), rec.Authors)
		case FieldISBN13:
			add(Original(), rec.ISBN13)
		case FieldISBN10:
			add(Original(), rec.ISBN10)
		case FieldISBN:
			if rec.ISBN13 != "" {
				add(Original(), rec.ISBN13)
			} else {
				add(Original(), rec.ISBN10)
			}
		case FieldDescription:
			add(Original(), rec.Description)
		case FieldCategories:
			add(Original(), rec.Categories)
		case FieldPublishedDate:
			add(Original(), rec.PublishedDate)
		case FieldPublisher:
			add(Original(), rec.Publisher)
		case FieldPageCount:
			add(Original(), rec.PageCount)
		case FieldThumbnail:
			add(Original(), rec.Thumbnail)
		case FieldRating:
			add(Original(), rec.Rating)
		case FieldLanguage:
			add(Original(), rec.Language)
		}
	}

	for i, ed := range editions {
		src := EditionSource(i)
		switch field {
		case FieldTitle:
			add(src, ed.Title)
		case FieldISBN13:
			add(src, ed.ISBN13)
		case FieldISBN10:
			add(src, ed.ISBN10)
		case FieldISBN:
			if ed.ISBN13 != "" {
				add(src, ed.ISBN13)
			} else {
				add(src, ed.ISBN10)
			}
		case FieldCategories:
			add(src, ed.Categories)
		case FieldPublishedDate:
			add(src, ed.PublishedDate)
		case FieldPublisher:
			add(src, ed.Publisher)
		case FieldPageCount:
			add(src, ed.PageCount)
		case FieldThumbnail:
			add(src, ed.Thumbnail)
		}
	}

	if audio != nil {
		switch field {
		case FieldTitle:
			add(Audiobook(), audio.Title)
		case FieldNarrators:
			add(Audiobook(), audio.Narrators)
		case FieldDuration:
			add(Audiobook(), audio.RuntimeMinutes)
		case FieldPublishedDate:
			add(Audiobook(), audio.ReleaseDate)
		case FieldDescription:
			add(AudiobookSummary(), audio.Summary)
		case FieldCategories:
			add(Audiobook(), audio.Genres)
		case FieldAudiobookRating:
			add(Audiobook(), audio.Rating)
		}
	}

	return out
}

// emptyValue reports whether a candidate value is empty for selection
// purposes (absent candidates are omitted, never defaulted).
func emptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case int:
		return t == 0
	case float64:
		return t == 0
	}
	return false
}
