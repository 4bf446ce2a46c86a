package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// DefaultLimit is the default number of items per page.
const DefaultLimit = 20

// MaxLimit is the maximum allowed items per page.
const MaxLimit = 100

// ErrInvalidCursor is returned when a cursor cannot be decoded or was
// issued for a different query.
var ErrInvalidCursor = errors.New("invalid cursor")

// PaginationRequest represents pagination parameters from the request.
type PaginationRequest struct {
	// Cursor is an opaque string from a previous response's NextCursor.
	Cursor string `form:"cursor"`

	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the limit with defaults applied.
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// AfterID decodes the cursor into the id to resume after. An empty cursor
// means the first page. A cursor minted for another query is rejected.
func (p *PaginationRequest) AfterID(query string) (int64, error) {
	if p.Cursor == "" {
		return 0, nil
	}

	data, err := DecodeCursor(p.Cursor)
	if err != nil {
		return 0, err
	}

	if data.Query != query || data.AfterID < 1 {
		return 0, ErrInvalidCursor
	}

	return data.AfterID, nil
}

// PaginatedResponse is a generic paginated response structure.
type PaginatedResponse[T any] struct {
	Items []T `json:"items"`

	// NextCursor is empty on the last page.
	NextCursor string `json:"nextCursor,omitempty"`

	HasMore bool `json:"hasMore"`
}

// NewPaginatedResponse wraps one page. nextID is the id to resume after, or
// 0 when the page is the last.
func NewPaginatedResponse[T any](items []T, query string, nextID int64) *PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}

	resp := &PaginatedResponse[T]{Items: items}

	if nextID > 0 {
		resp.HasMore = true
		resp.NextCursor = EncodeCursor(&CursorData{AfterID: nextID, Query: query})
	}

	return resp
}

// CursorData is the position encoded in a search cursor. Query pins the
// cursor to the search it came from.
type CursorData struct {
	AfterID int64  `json:"a"`
	Query   string `json:"q,omitempty"`
}

// EncodeCursor encodes cursor data to a base64 string.
func EncodeCursor(data *CursorData) string {
	if data == nil {
		return ""
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a base64 cursor string.
func DecodeCursor(encoded string) (*CursorData, error) {
	jsonBytes, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var data CursorData

	if err := json.Unmarshal(jsonBytes, &data); err != nil {
		return nil, ErrInvalidCursor
	}

	return &data, nil
}
