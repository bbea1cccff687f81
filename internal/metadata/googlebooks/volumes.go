package googlebooks

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

// Raw API response types (internal)

type rawVolumeList struct {
	TotalItems int         `json:"totalItems"`
	Items      []rawVolume `json:"items"`
}

type rawVolume struct {
	ID         string        `json:"id"`
	VolumeInfo rawVolumeInfo `json:"volumeInfo"`
}

type rawVolumeInfo struct {
	Title               string          `json:"title"`
	Subtitle            string          `json:"subtitle"`
	Authors             []string        `json:"authors"`
	Publisher           string          `json:"publisher"`
	PublishedDate       string          `json:"publishedDate"`
	Description         string          `json:"description"`
	IndustryIdentifiers []rawIdentifier `json:"industryIdentifiers"`
	PageCount           int             `json:"pageCount"`
	Categories          []string        `json:"categories"`
	AverageRating       float64         `json:"averageRating"`
	ImageLinks          rawImageLinks   `json:"imageLinks"`
	Language            string          `json:"language"`
}

type rawIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type rawImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// GetVolume retrieves a single volume by its Google Books id.
func (c *Client) GetVolume(ctx context.Context, id string) (*domain.SourceRecord, error) {
	body, err := c.doRequest(ctx, "/volumes/"+url.PathEscape(id), url.Values{})
	if err != nil {
		return nil, fmt.Errorf("googlebooks get volume %s: %w", id, err)
	}

	var vol rawVolume
	if err := json.Unmarshal(body, &vol); err != nil {
		return nil, fmt.Errorf("googlebooks get volume %s: parse response: %w", id, err)
	}
	return toSourceRecord(&vol), nil
}

// SearchByISBN looks a volume up by ISBN. Returns ErrNotFound when the
// catalog has no volume for it.
func (c *Client) SearchByISBN(ctx context.Context, isbn string) (*domain.SourceRecord, error) {
	records, err := c.search(ctx, "isbn:"+sanitizeISBN(isbn), 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("googlebooks isbn %s: %w", isbn, ErrNotFound)
	}
	return records[0], nil
}

// Search queries volumes by title and optional author.
func (c *Client) Search(ctx context.Context, title, author string, limit int) ([]*domain.SourceRecord, error) {
	terms := []string{"intitle:" + quote(title)}
	if author != "" {
		terms = append(terms, "inauthor:"+quote(author))
	}
	return c.search(ctx, strings.Join(terms, "+"), limit)
}

// Editions fetches alternate editions of a record: other volumes with
// the same title and author, excluding the record itself. Editions carry
// only the fields that can differ between printings.
func (c *Client) Editions(ctx context.Context, rec *domain.SourceRecord) ([]domain.Edition, error) {
	author := ""
	if len(rec.Authors) > 0 {
		author = rec.Authors[0]
	}

	records, err := c.Search(ctx, rec.Title, author, defaultMaxResults)
	if err != nil {
		return nil, err
	}

	var editions []domain.Edition
	for _, r := range records {
		if r.ID == rec.ID {
			continue
		}
		editions = append(editions, domain.Edition{
			ID:            r.ID,
			Title:         r.Title,
			ISBN13:        r.ISBN13,
			ISBN10:        r.ISBN10,
			Categories:    r.Categories,
			PublishedDate: r.PublishedDate,
			Publisher:     r.Publisher,
			PageCount:     r.PageCount,
			Thumbnail:     r.Thumbnail,
		})
	}
	return editions, nil
}

func (c *Client) search(ctx context.Context, q string, limit int) ([]*domain.SourceRecord, error) {
	if limit <= 0 {
		limit = defaultMaxResults
	}
	if limit > maxMaxResults {
		limit = maxMaxResults
	}

	query := url.Values{}
	query.Set("q", q)
	query.Set("maxResults", strconv.Itoa(limit))
	query.Set("printType", "books")

	body, err := c.doRequest(ctx, "/volumes", query)
	if err != nil {
		return nil, fmt.Errorf("googlebooks search: %w", err)
	}

	var list rawVolumeList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("googlebooks search: parse response: %w", err)
	}

	records := make([]*domain.SourceRecord, 0, len(list.Items))
	for i := range list.Items {
		records = append(records, toSourceRecord(&list.Items[i]))
	}
	return records, nil
}

// toSourceRecord converts a raw volume to the source record the
// reconciliation session is opened for.
func toSourceRecord(vol *rawVolume) *domain.SourceRecord {
	info := &vol.VolumeInfo

	rec := &domain.SourceRecord{
		ID:            vol.ID,
		Title:         info.Title,
		Subtitle:      info.Subtitle,
		Authors:       info.Authors,
		Description:   info.Description,
		Categories:    info.Categories,
		PublishedDate: info.PublishedDate,
		Publisher:     info.Publisher,
		PageCount:     info.PageCount,
		Rating:        info.AverageRating,
		Language:      info.Language,
	}

	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			rec.ISBN13 = id.Identifier
		case "ISBN_10":
			rec.ISBN10 = id.Identifier
		}
	}

	// Thumbnails come back over plain http; upgrade the scheme before
	// handing them on.
	thumb := info.ImageLinks.Thumbnail
	if thumb == "" {
		thumb = info.ImageLinks.SmallThumbnail
	}
	rec.Thumbnail = strings.Replace(thumb, "http://", "https://", 1)

	return rec
}

func sanitizeISBN(isbn string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, isbn)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "") + `"`
}
