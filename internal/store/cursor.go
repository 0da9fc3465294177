// ABOUTME: Keyset pagination cursor over the (pub_date DESC, id ASC) ordering
// ABOUTME: Encoded as the literal string "<pub_date>:<id>"

package store

import (
	"math"
	"strconv"
	"strings"
)

// DefaultLimit is the page size used when a query does not specify one.
const DefaultLimit = 20

// Cursor encodes a point in the descending article ordering. The initial
// page uses PubDate MaxInt64 and ID 0.
type Cursor struct {
	PubDate int64
	ID      int64
}

// ParseCursor decodes a "<pub_date>:<id>" string. Malformed halves fall
// back to MaxInt64 and 0 respectively, so a bad cursor restarts listing
// from the top instead of failing.
func ParseCursor(raw string) Cursor {
	c := Cursor{PubDate: math.MaxInt64, ID: 0}
	pub, id, _ := strings.Cut(raw, ":")
	if v, err := strconv.ParseInt(pub, 10, 64); err == nil {
		c.PubDate = v
	}
	if v, err := strconv.ParseInt(id, 10, 64); err == nil {
		c.ID = v
	}
	return c
}

// String renders the cursor in its wire form.
func (c Cursor) String() string {
	return strconv.FormatInt(c.PubDate, 10) + ":" + strconv.FormatInt(c.ID, 10)
}
