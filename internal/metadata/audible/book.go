package audible

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"regexp"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

// ASIN format: 10 alphanumeric characters, typically starting with B.
var asinRegex = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// ValidateASIN checks if an ASIN has valid format.
func ValidateASIN(asin string) bool {
	return asinRegex.MatchString(asin)
}

// GetAudiobook retrieves the audiobook record for a single ASIN.
func (c *Client) GetAudiobook(ctx context.Context, region Region, asin string) (*domain.AudiobookRecord, error) {
	if !region.Valid() {
		return nil, wrapError("getAudiobook", region, asin, ErrBadRequest)
	}
	if !ValidateASIN(asin) {
		return nil, wrapError("getAudiobook", region, asin, ErrInvalidASIN)
	}

	query := url.Values{}
	query.Set("response_groups", responseGroups())

	path := fmt.Sprintf("/1.0/catalog/products/%s", asin)
	body, err := c.doRequest(ctx, region, path, query)
	if err != nil {
		return nil, wrapError("getAudiobook", region, asin, err)
	}

	var resp struct {
		Product rawProduct `json:"product"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("getAudiobook", region, asin, fmt.Errorf("parse response: %w", err))
	}

	return toRecord(&resp.Product), nil
}

// toRecord converts a raw API product to the audiobook record the
// reconciliation session consumes.
func toRecord(p *rawProduct) *domain.AudiobookRecord {
	rec := &domain.AudiobookRecord{
		ID:             p.ASIN,
		Title:          p.Title,
		RuntimeMinutes: p.RuntimeLengthMin,
		ReleaseDate:    p.ReleaseDate,
		Summary:        stripHTML(p.MerchandisingSummary),
		Genres:         extractGenres(p.CategoryLadders),
	}
	for _, n := range p.Narrators {
		if n.Name != "" {
			rec.Narrators = append(rec.Narrators, n.Name)
		}
	}
	if p.Rating != nil {
		rec.Rating = p.Rating.OverallDistribution.DisplayAverageRating
	}
	return rec
}

// extractGenres pulls deduplicated genre names from category ladders.
func extractGenres(ladders []rawCategoryLadder) []string {
	seen := make(map[string]bool)
	var genres []string

	for _, ladder := range ladders {
		for _, cat := range ladder.Ladder {
			if cat.Name != "" && !seen[cat.Name] {
				seen[cat.Name] = true
				genres = append(genres, cat.Name)
			}
		}
	}

	return genres
}
