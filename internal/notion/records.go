package notion

import (
	"context"
	"net/http"
)

// searchRequest is the object search request body.
type searchRequest struct {
	Query  string        `json:"query,omitempty"`
	Filter *searchFilter `json:"filter,omitempty"`
}

type searchFilter struct {
	Value    string `json:"value"`
	Property string `json:"property"`
}

// listResponse is the common paged list shape of search and query.
type listResponse struct {
	Results    []Record `json:"results"`
	HasMore    bool     `json:"has_more"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

// Search performs a query-by-object-kind search across the workspace.
// objectKind is "page" or "database".
func (c *Client) Search(ctx context.Context, query, objectKind string) ([]Record, error) {
	req := searchRequest{Query: query}
	if objectKind != "" {
		req.Filter = &searchFilter{Value: objectKind, Property: "object"}
	}

	var resp listResponse
	if err := c.doRequest(ctx, http.MethodPost, "/v1/search", req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// GetSchema fetches the property schema of a collection.
func (c *Client) GetSchema(ctx context.Context, collectionID string) (*Schema, error) {
	var schema Schema
	if err := c.doRequest(ctx, http.MethodGet, "/v1/databases/"+collectionID, nil, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

// QueryCollection runs a filtered query within one collection.
func (c *Client) QueryCollection(ctx context.Context, collectionID string, filter Filter) ([]Record, error) {
	body := struct {
		Filter Filter `json:"filter"`
	}{Filter: filter}

	var resp listResponse
	if err := c.doRequest(ctx, http.MethodPost, "/v1/databases/"+collectionID+"/query", body, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// CreateRecordRequest is the body of a record create call.
type CreateRecordRequest struct {
	Parent     CollectionRef            `json:"parent"`
	Properties map[string]PropertyValue `json:"properties"`
	Icon       *Icon                    `json:"icon,omitempty"`
	Children   []any                    `json:"children,omitempty"`
}

// CreateRecord writes a brand-new record into a collection.
func (c *Client) CreateRecord(ctx context.Context, req CreateRecordRequest) (*Record, error) {
	var rec Record
	if err := c.doRequest(ctx, http.MethodPost, "/v1/pages", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateRecord overwrites the given properties of an existing record,
// leaving properties not named in the payload untouched.
func (c *Client) UpdateRecord(ctx context.Context, recordID string, properties map[string]PropertyValue) (*Record, error) {
	body := struct {
		Properties map[string]PropertyValue `json:"properties"`
	}{Properties: properties}

	var rec Record
	if err := c.doRequest(ctx, http.MethodPatch, "/v1/pages/"+recordID, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
