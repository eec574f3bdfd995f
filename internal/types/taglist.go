package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// TagList stores a set of lowercase labels as comma-separated text.
type TagList []string

func (t TagList) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "", nil
	}
	return strings.Join(t, ","), nil
}

func (t *TagList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		*t = splitTags(v)
		return nil
	case []byte:
		*t = splitTags(string(v))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TagList", src)
	}
}

func splitTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Contains reports whether the list holds the given label, case-insensitive.
func (t TagList) Contains(name string) bool {
	for _, v := range t {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}
