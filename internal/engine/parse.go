package engine

import (
	"strings"
	"time"

	"execedge/internal/storage"
)

// ParseDate parses a completion date relative to today.
// Supported: "", today, yesterday, YYYY-MM-DD.
func ParseDate(input string, today time.Time) (time.Time, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}
	d, err := time.Parse(storage.DateLayout, s)
	if err != nil {
		return time.Time{}, ValidationError{Field: "date", Reason: "expected YYYY-MM-DD, today or yesterday"}
	}
	return d, nil
}
