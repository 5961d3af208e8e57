package filter

import (
	"fmt"
	"time"
)

// Date parses the output of a string filter with the first layout that
// fits.
func Date(in Filter[string], layouts ...string) Filter[time.Time] {
	return Map(in, func(s string) (time.Time, error) {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unable to parse date %q", s)
	})
}
