package patient

import (
	"fmt"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}
