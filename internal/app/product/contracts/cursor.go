package contracts

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// ErrInvalidCursor is returned for continuation cursors that cannot be decoded.
var ErrInvalidCursor = errors.New("invalid continuation cursor")

// CursorMode names the listing a cursor was issued by.
type CursorMode string

const (
	CursorIndex  CursorMode = "idx"
	CursorSearch CursorMode = "search"
)

// Cursor is a continuation position. Index pages resume strictly after
// (CreatedAt, ProductID) in newest-first order; ranked search pages resume at Offset.
type Cursor struct {
	Mode      CursorMode `json:"m"`
	CreatedAt time.Time  `json:"c,omitempty"`
	ProductID string     `json:"i,omitempty"`
	Offset    int        `json:"o,omitempty"`
}

// IndexCursor resumes an index page after the product at (createdAt, id).
func IndexCursor(createdAt time.Time, id string) *Cursor {
	return &Cursor{Mode: CursorIndex, CreatedAt: createdAt, ProductID: id}
}

// SearchCursor resumes a ranked search listing at offset.
func SearchCursor(offset int) *Cursor {
	return &Cursor{Mode: CursorSearch, Offset: offset}
}

// Expect returns ErrInvalidCursor unless c is nil or was issued in mode.
func (c *Cursor) Expect(mode CursorMode) error {
	if c != nil && c.Mode != mode {
		return ErrInvalidCursor
	}
	return nil
}

// Encode returns the opaque string form handed to clients.
func (c *Cursor) Encode() string {
	if c == nil {
		return ""
	}
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a cursor produced by Encode. The empty string means "start".
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, ErrInvalidCursor
	}
	switch c.Mode {
	case CursorIndex:
		if c.CreatedAt.IsZero() || c.ProductID == "" {
			return nil, ErrInvalidCursor
		}
	case CursorSearch:
		if c.Offset < 0 {
			return nil, ErrInvalidCursor
		}
	default:
		return nil, ErrInvalidCursor
	}
	return &c, nil
}

// Admits reports whether a product at (createdAt, id) sorts strictly after
// the cursor in newest-first order, i.e. belongs to the next page.
func (c *Cursor) Admits(createdAt time.Time, id string) bool {
	if c == nil {
		return true
	}
	if !createdAt.Equal(c.CreatedAt) {
		return createdAt.Before(c.CreatedAt)
	}
	return id < c.ProductID
}
