package notion

// Wire types for the destination database service. The payload shapes
// here are the contract: ValueCoercer output is written through these
// structs verbatim, and any drift from what the service expects is a
// silent data-loss bug rather than an error.

// RichText is one span of rich text content.
type RichText struct {
	Text      TextContent `json:"text"`
	PlainText string      `json:"plain_text,omitempty"`
}

// TextContent is the inner content object of a rich text span.
type TextContent struct {
	Content string `json:"content"`
}

// SelectOption is one option of a select or multi-select property.
type SelectOption struct {
	Name  string `json:"name"`
	ID    string `json:"id,omitempty"`
	Color string `json:"color,omitempty"`
}

// DateValue is a date property payload.
type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// ExternalFile points at an externally hosted file.
type ExternalFile struct {
	URL string `json:"url"`
}

// FileReference is one entry of a files property payload.
type FileReference struct {
	Type     string       `json:"type"`
	Name     string       `json:"name"`
	External ExternalFile `json:"external"`
}

// PropertyValue is the payload for one property of a record write.
// Exactly one member is set, matching the property's kind:
// title -> [{text:{content}}], multi_select -> [{name}], date -> {start},
// files -> [{type:"external", name, external:{url}}].
type PropertyValue struct {
	Title       []RichText      `json:"title,omitempty"`
	RichText    []RichText      `json:"rich_text,omitempty"`
	MultiSelect []SelectOption  `json:"multi_select,omitempty"`
	Select      *SelectOption   `json:"select,omitempty"`
	Number      *float64        `json:"number,omitempty"`
	Date        *DateValue      `json:"date,omitempty"`
	URL         string          `json:"url,omitempty"`
	Files       []FileReference `json:"files,omitempty"`
	Checkbox    *bool           `json:"checkbox,omitempty"`
}

// Record is a destination record as returned by search, query, and
// write endpoints.
type Record struct {
	ID             string                   `json:"id"`
	URL            string                   `json:"url,omitempty"`
	CreatedTime    string                   `json:"created_time,omitempty"`
	LastEditedTime string                   `json:"last_edited_time,omitempty"`
	Properties     map[string]recordedValue `json:"properties,omitempty"`
}

// recordedValue is the read shape of a property on a returned record.
// Only the members the engine actually inspects are decoded.
type recordedValue struct {
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
}

// Title extracts the record's title from its title-kind property.
func (r *Record) Title() string {
	for _, pv := range r.Properties {
		if len(pv.Title) > 0 {
			if pv.Title[0].PlainText != "" {
				return pv.Title[0].PlainText
			}
			return pv.Title[0].Text.Content
		}
	}
	return ""
}

// CollectionRef identifies the parent collection of a created record.
type CollectionRef struct {
	DatabaseID string `json:"database_id"`
}

// Icon is an optional record icon.
type Icon struct {
	Type     string        `json:"type"`
	External *ExternalFile `json:"external,omitempty"`
}

// Schema is the destination collection's property schema.
type Schema struct {
	ID         string                    `json:"id"`
	Title      []RichText                `json:"title,omitempty"`
	Properties map[string]SchemaProperty `json:"properties"`
}

// SchemaProperty is one typed slot of the schema.
type SchemaProperty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// TextFilter matches property text containing a substring.
type TextFilter struct {
	Contains string `json:"contains"`
}

// PropertyFilter filters a collection query on one property. The member
// set must match the property's kind; only text-search kinds are used.
type PropertyFilter struct {
	Property string      `json:"property"`
	Title    *TextFilter `json:"title,omitempty"`
	RichText *TextFilter `json:"rich_text,omitempty"`
}

// Filter is the query-within-collection filter:
// {or: [{property, kind: {contains: text}}, ...]}.
type Filter struct {
	Or []PropertyFilter `json:"or"`
}
