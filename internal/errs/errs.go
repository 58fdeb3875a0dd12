package errs

import (
	"errors"
	"fmt"
)

var (
	ErrAuthentication = errors.New("authentication failed: missing or invalid api key")
	ErrNoAoi          = errors.New("no area of interest selected")
	ErrRange          = errors.New("end date must not be before start date")
	ErrClassification = errors.New("unknown confidence classification")
	ErrNoClickPoint   = errors.New("no map location selected for imagery search")
	ErrOverload       = errors.New("too many alerts to display")
)

// MaxDisplayFeatures is the default number of alerts that can be drawn on a map.
const MaxDisplayFeatures = 20000

// OverloadError reports a result set that was computed but is too large to render.
type OverloadError struct {
	Count int
	Max   int
}

func (e *OverloadError) Error() string {
	return fmt.Sprintf("%d alerts found, only %d can be displayed: narrow the area or the date range", e.Count, e.Max)
}

func (e *OverloadError) Is(target error) bool {
	return target == ErrOverload
}

// CheckOverload returns an *OverloadError when count exceeds max.
func CheckOverload(count, max int) error {
	if count > max {
		return &OverloadError{Count: count, Max: max}
	}
	return nil
}
