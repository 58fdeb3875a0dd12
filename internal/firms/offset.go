package firms

import (
	"fmt"
	"regexp"
	"strconv"
)

var offsetNumber = regexp.MustCompile(`\d+`)

// ParseOffset turns "24 hours", "48 hours" or "3 days" into a day count.
// Values of 11 and above are read as hours.
func ParseOffset(offset string) (int, error) {
	m := offsetNumber.FindString(offset)
	if m == "" {
		return 0, fmt.Errorf("invalid offset %q", offset)
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", offset, err)
	}
	if n >= 11 {
		n /= 24
	}
	if n < 1 {
		return 0, fmt.Errorf("offset %q is shorter than one day", offset)
	}
	return n, nil
}
