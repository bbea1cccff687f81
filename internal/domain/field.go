// Package domain contains the core value types of the reconciliation engine:
// semantic book fields, destination properties, candidate values, category
// settings, and duplicate matches.
package domain

// SemanticField identifies a book attribute independent of any destination
// schema. The set is defined once and never mutated at runtime.
type SemanticField string

// Semantic fields gathered from the bibliographic and audiobook sources.
const (
	FieldTitle           SemanticField = "title"
	FieldAuthors         SemanticField = "authors"
	FieldISBN13          SemanticField = "isbn13"
	FieldISBN10          SemanticField = "isbn10"
	FieldISBN            SemanticField = "isbn"
	FieldDescription     SemanticField = "description"
	FieldCategories      SemanticField = "categories"
	FieldPublishedDate   SemanticField = "publishedDate"
	FieldPublisher       SemanticField = "publisher"
	FieldPageCount       SemanticField = "pageCount"
	FieldThumbnail       SemanticField = "thumbnail"
	FieldRating          SemanticField = "rating"
	FieldLanguage        SemanticField = "language"
	FieldNarrators       SemanticField = "narrators"
	FieldDuration        SemanticField = "duration"
	FieldAudiobookRating SemanticField = "audiobookRating"
)

// ValueKind classifies the shape of a semantic field's value. The names
// mirror PropertyKind so the compatibility table reads naturally.
type ValueKind string

// Value kinds.
const (
	ValueTitle       ValueKind = "title"
	ValueRichText    ValueKind = "richText"
	ValueMultiSelect ValueKind = "multiSelect"
	ValueSelect      ValueKind = "select"
	ValueNumber      ValueKind = "number"
	ValueDate        ValueKind = "date"
	ValueURL         ValueKind = "url"
	ValueFiles       ValueKind = "files"
	ValueCheckbox    ValueKind = "checkbox"
)

// FieldSpec describes one semantic field for the mapper: its value kind,
// its priority (lower number = higher priority, so ISBN-13 is claimed
// before ISBN-10), and the keywords the similarity scorer may match
// against destination property names.
type FieldSpec struct {
	Field    SemanticField
	Kind     ValueKind
	Priority int
	Keywords []string
}

// Registry returns the ordered table of all semantic fields. Priority
// policy lives here and nowhere else: identifiers first (most specific
// variant wins), then the display-critical fields, then the rest.
func Registry() []FieldSpec {
	return []FieldSpec{
		{Field: FieldTitle, Kind: ValueTitle, Priority: 1, Keywords: []string{"name", "book title"}},
		{Field: FieldISBN13, Kind: ValueRichText, Priority: 2, Keywords: []string{"isbn", "isbn-13", "isbn 13", "ean"}},
		{Field: FieldISBN10, Kind: ValueRichText, Priority: 3, Keywords: []string{"isbn-10", "isbn 10"}},
		{Field: FieldISBN, Kind: ValueRichText, Priority: 4, Keywords: []string{"identifier"}},
		{Field: FieldAuthors, Kind: ValueMultiSelect, Priority: 5, Keywords: []string{"author", "writer", "by"}},
		{Field: FieldPublishedDate, Kind: ValueDate, Priority: 6, Keywords: []string{"published", "publication date", "release date", "date"}},
		{Field: FieldCategories, Kind: ValueMultiSelect, Priority: 7, Keywords: []string{"category", "genre", "genres", "tags", "subjects"}},
		{Field: FieldDescription, Kind: ValueRichText, Priority: 8, Keywords: []string{"summary", "synopsis", "about"}},
		{Field: FieldPublisher, Kind: ValueSelect, Priority: 9, Keywords: []string{"publishing house", "imprint"}},
		{Field: FieldPageCount, Kind: ValueNumber, Priority: 10, Keywords: []string{"pages", "page count", "length"}},
		{Field: FieldThumbnail, Kind: ValueFiles, Priority: 11, Keywords: []string{"cover", "image", "cover image"}},
		{Field: FieldRating, Kind: ValueNumber, Priority: 12, Keywords: []string{"stars", "score", "average rating"}},
		{Field: FieldLanguage, Kind: ValueSelect, Priority: 13, Keywords: []string{"lang"}},
		{Field: FieldNarrators, Kind: ValueMultiSelect, Priority: 14, Keywords: []string{"narrator", "narrated by", "read by"}},
		{Field: FieldDuration, Kind: ValueNumber, Priority: 15, Keywords: []string{"runtime", "length minutes", "audio length"}},
		{Field: FieldAudiobookRating, Kind: ValueNumber, Priority: 16, Keywords: []string{"audible rating", "audio rating"}},
	}
}

// Spec returns the FieldSpec for a semantic field, or false if unknown.
func Spec(field SemanticField) (FieldSpec, bool) {
	for _, fs := range Registry() {
		if fs.Field == field {
			return fs, true
		}
	}
	return FieldSpec{}, false
}

// IsIdentifier reports whether the field is an identifier variant.
func (f SemanticField) IsIdentifier() bool {
	switch f {
	case FieldISBN13, FieldISBN10, FieldISBN:
		return true
	}
	return false
}

// IsDate reports whether the field carries a calendar date.
func (f SemanticField) IsDate() bool {
	return f == FieldPublishedDate
}

// IsAudiobookSpecific reports whether the field only exists on the
// audiobook record.
func (f SemanticField) IsAudiobookSpecific() bool {
	switch f {
	case FieldNarrators, FieldDuration, FieldAudiobookRating:
		return true
	}
	return false
}
