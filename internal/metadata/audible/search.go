package audible

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/match"
)

// SearchParams defines parameters for catalog search.
type SearchParams struct {
	Keywords string
	Title    string
	Author   string
	Limit    int // Max results (default 10, max 50)
}

// Search searches the Audible catalog and returns audiobook records.
func (c *Client) Search(ctx context.Context, region Region, params SearchParams) ([]*domain.AudiobookRecord, error) {
	if !region.Valid() {
		return nil, wrapError("search", region, "", ErrBadRequest)
	}

	query := url.Values{}
	if params.Keywords != "" {
		query.Set("keywords", params.Keywords)
	}
	if params.Title != "" {
		query.Set("title", params.Title)
	}
	if params.Author != "" {
		query.Set("author", params.Author)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultNumResults
	}
	if limit > maxNumResults {
		limit = maxNumResults
	}
	query.Set("num_results", strconv.Itoa(limit))
	query.Set("response_groups", responseGroups())
	query.Set("products_sort_by", "Relevance")

	body, err := c.doRequest(ctx, region, "/1.0/catalog/products", query)
	if err != nil {
		return nil, wrapError("search", region, "", err)
	}

	var resp struct {
		Products []rawProduct `json:"products"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("search", region, "", fmt.Errorf("parse response: %w", err))
	}

	records := make([]*domain.AudiobookRecord, 0, len(resp.Products))
	for i := range resp.Products {
		records = append(records, toRecord(&resp.Products[i]))
	}
	return records, nil
}

// matchThreshold is the minimum title similarity for FindMatch to accept
// a search result as the book's audiobook counterpart.
const matchThreshold = 80

// FindMatch searches for the audiobook counterpart of a book and returns
// the result whose title scores highest against the book title, or nil
// when nothing clears the threshold. Absence of an audiobook is normal,
// not an error.
func (c *Client) FindMatch(ctx context.Context, region Region, title, author string) (*domain.AudiobookRecord, error) {
	records, err := c.Search(ctx, region, SearchParams{Title: title, Author: author})
	if err != nil {
		return nil, err
	}

	scorer := match.NewScorer()
	var best *domain.AudiobookRecord
	bestScore := 0
	for _, rec := range records {
		if score := scorer.Score(title, rec.Title); score > bestScore {
			best, bestScore = rec, score
		}
	}
	if bestScore < matchThreshold {
		return nil, nil
	}
	return best, nil
}
