// Package coerce converts semantic field values into the destination
// service's typed property payloads. Every property kind has an explicit
// rule; invalid input always degrades to a nil payload (the caller omits
// the property from the write), never to a panic or an error mid-write.
package coerce

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/dateparse"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/id"
	"github.com/shelfmark/shelfmark-server/internal/notion"
)

// Destination service ceilings.
const (
	maxTextLength       = 2000
	maxSelectOptions    = 10
	maxOptionNameLength = 100
)

// Coercer converts raw values into property payloads. The zero value is
// not usable; construct with New.
type Coercer struct {
	now func() time.Time
}

// New creates a coercer.
func New() *Coercer {
	return &Coercer{now: time.Now}
}

// WithNow overrides the clock, for tests.
func (c *Coercer) WithNow(now func() time.Time) *Coercer {
	c.now = now
	return c
}

// Coerce converts a raw value into the payload for the given property
// kind. It returns nil when the value is empty or cannot be made to fit;
// the caller must then omit the property from the write entirely.
func (c *Coercer) Coerce(raw any, kind domain.PropertyKind) *notion.PropertyValue {
	if isEmpty(raw) {
		return nil
	}

	switch kind {
	case domain.KindTitle:
		text := truncate(joinStrings(raw), maxTextLength)
		if text == "" {
			return nil
		}
		return &notion.PropertyValue{Title: richText(text)}

	case domain.KindRichText:
		text := truncate(stripMarkup(joinStrings(raw)), maxTextLength)
		if text == "" {
			return nil
		}
		return &notion.PropertyValue{RichText: richText(text)}

	case domain.KindMultiSelect:
		options := selectOptions(raw)
		if len(options) == 0 {
			return nil
		}
		return &notion.PropertyValue{MultiSelect: options}

	case domain.KindSelect:
		options := selectOptions(raw)
		if len(options) == 0 {
			return nil
		}
		return &notion.PropertyValue{Select: &options[0]}

	case domain.KindNumber:
		n, ok := toNumber(raw)
		if !ok {
			return nil
		}
		return &notion.PropertyValue{Number: &n}

	case domain.KindDate:
		result, ok := dateparse.Resolve(joinStrings(raw))
		if !ok {
			return nil
		}
		return &notion.PropertyValue{Date: &notion.DateValue{Start: result.ISO}}

	case domain.KindURL:
		u := absoluteURL(joinStrings(raw))
		if u == "" {
			return nil
		}
		return &notion.PropertyValue{URL: u}

	case domain.KindFiles:
		u := absoluteURL(joinStrings(raw))
		if u == "" {
			return nil
		}
		// The name is synthesized fresh per write so the receiving side
		// never serves a stale cached copy for a reused name. Falls back
		// to a timestamp when the random source fails; coercion never
		// errors mid-write.
		name := fmt.Sprintf("cover-%d", c.now().UnixMilli())
		if nid, err := id.Generate("cover"); err == nil {
			name = nid
		}
		return &notion.PropertyValue{Files: []notion.FileReference{{
			Type:     "external",
			Name:     name,
			External: notion.ExternalFile{URL: u},
		}}}

	case domain.KindCheckbox:
		checked := toBool(raw)
		return &notion.PropertyValue{Checkbox: &checked}
	}

	// Unrecognized kinds fall back to the rich text rule.
	text := truncate(stripMarkup(joinStrings(raw)), maxTextLength)
	if text == "" {
		return nil
	}
	return &notion.PropertyValue{RichText: richText(text)}
}

// ResolveDate exposes date resolution with the year-only flag for
// callers that need the display distinction rather than a payload.
func (c *Coercer) ResolveDate(raw string) (dateparse.Result, bool) {
	return dateparse.Resolve(raw)
}

// isEmpty reports whether a raw value is empty or falsy, in which case
// the property is omitted from the write.
func isEmpty(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case int:
		return v == 0
	case int64:
		return v == 0
	case float64:
		return v == 0
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}

// joinStrings renders a raw value as one string, joining arrays with ", ".
func joinStrings(raw any) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case []string:
		return strings.TrimSpace(strings.Join(v, ", "))
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, joinStrings(item))
		}
		return strings.TrimSpace(strings.Join(parts, ", "))
	case fmt.Stringer:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return fmt.Sprintf("%v", raw)
}

// toStrings coerces a raw value to a slice, wrapping scalars.
func toStrings(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, joinStrings(item))
		}
		return out
	}
	return []string{joinStrings(raw)}
}

// selectOptions builds capped, sanitized select options from a raw
// value. Commas inside an option are replaced with " -" because option
// names cannot contain the array separator.
func selectOptions(raw any) []notion.SelectOption {
	values := toStrings(raw)
	if len(values) > maxSelectOptions {
		values = values[:maxSelectOptions]
	}

	options := make([]notion.SelectOption, 0, len(values))
	for _, v := range values {
		name := strings.TrimSpace(truncate(strings.ReplaceAll(v, ",", " -"), maxOptionNameLength))
		if name == "" {
			continue
		}
		options = append(options, notion.SelectOption{Name: name})
	}
	return options
}

// toNumber parses a raw value as a float. NaN and unparseable strings
// are rejected, never written.
func toNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		if v != v { // NaN
			return 0, false
		}
		return v, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || n != n {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// toBool applies boolean coercion to a raw value.
func toBool(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return strings.TrimSpace(v) != ""
		}
		return b
	case int:
		return v != 0
	case float64:
		return v != 0
	}
	return raw != nil
}

// absoluteURL returns the input only if it is an absolute http(s) URL.
func absoluteURL(s string) string {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.String()
}

// truncate shortens a string to the given rune ceiling.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// richText wraps plain text in the destination's rich text shape.
func richText(text string) []notion.RichText {
	return []notion.RichText{{Text: notion.TextContent{Content: text}}}
}
