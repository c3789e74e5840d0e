package util

import (
	"fmt"
	"time"
)

// barDateLayouts covers the renderings seen across bar data vendors.
var barDateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339, "01/02/2006"}

// ParseBarDate parses a daily bar date in any vendor layout and floors it to
// midnight UTC so dates compare by equality.
func ParseBarDate(s string) (time.Time, error) {
	for _, layout := range barDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DayFloor(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// DayFloor truncates a time to its UTC calendar day.
func DayFloor(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
