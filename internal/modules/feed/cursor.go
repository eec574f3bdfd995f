package feed

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cursor is a keyset pagination position. The zero value means "first page".
type Cursor struct {
	Timestamp time.Time
	ID        uuid.UUID
}

// IsZero reports whether this cursor points at the first page.
func (c Cursor) IsZero() bool {
	return c.Timestamp.IsZero() && c.ID == uuid.Nil
}

// EncodeCursor produces the opaque token for a (timestamp, id) position.
func EncodeCursor(ts time.Time, id uuid.UUID) string {
	raw := fmt.Sprintf("%d_%s", ts.Unix(), id)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses an opaque token. Malformed input of any kind decodes
// to the zero cursor (first page) rather than an error; the pagination
// contract never fails a request over a bad token.
func DecodeCursor(token string) Cursor {
	if strings.TrimSpace(token) == "" {
		return Cursor{}
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}
	}
	parts := strings.SplitN(string(raw), "_", 2)
	if len(parts) != 2 {
		return Cursor{}
	}
	unix, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Cursor{}
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return Cursor{}
	}
	return Cursor{Timestamp: time.Unix(unix, 0).UTC(), ID: id}
}

// Excludes reports whether an item at (ts, id) was already served at or
// before the cursor position in a newest-first feed. Timestamps compare at
// second resolution because that is all the token carries.
func (c Cursor) Excludes(ts time.Time, id uuid.UUID) bool {
	if c.IsZero() {
		return false
	}
	if ts.After(c.Timestamp) {
		return true
	}
	if ts.Unix() == c.Timestamp.Unix() {
		return id == c.ID || id.String() >= c.ID.String()
	}
	return false
}
