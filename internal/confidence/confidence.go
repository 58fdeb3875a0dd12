// Package confidence maps raw FIRMS confidence values to display buckets.
//
// MODIS products report an integer 0-100 and use the Discrete scheme. VIIRS
// products report high, nominal or low (or h, n, l) and use the Categorical
// scheme. The scheme is chosen once per batch with SchemeFor.
package confidence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/errs"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
)

type Bucket struct {
	Label string
	Color string
	// Threshold is the lower bound of a discrete bucket, zero for categorical ones.
	Threshold int
}

type Scheme interface {
	Name() string
	// Classify buckets a raw confidence value.
	Classify(value string) (Bucket, error)
	// Buckets lists the buckets from most to least confident.
	Buckets() []Bucket
	// Matches reports whether a raw value belongs to the bucket with label.
	Matches(value, label string) (bool, error)
}

// SchemeFor picks the scheme of a satellite source.
func SchemeFor(source firms.SatSource) (Scheme, error) {
	if !source.Valid() {
		return nil, fmt.Errorf("unknown satellite source %q: %w", source, errs.ErrClassification)
	}
	if source.IsModis() {
		return Discrete{}, nil
	}
	return Categorical{}, nil
}

// BucketFor classifies a single value for a source.
func BucketFor(source firms.SatSource, value string) (Bucket, error) {
	s, err := SchemeFor(source)
	if err != nil {
		return Bucket{}, err
	}
	return s.Classify(value)
}

var discreteBuckets = []Bucket{
	{Label: ">80", Color: "green", Threshold: 80},
	{Label: ">50,<80", Color: "orange", Threshold: 50},
	{Label: "<50", Color: "red", Threshold: 30},
}

// Discrete is the 0-100 MODIS scale.
type Discrete struct{}

func (Discrete) Name() string { return "discrete" }

func (Discrete) Buckets() []Bucket {
	return append([]Bucket(nil), discreteBuckets...)
}

func parseDiscrete(value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || v < 0 || v > 100 {
		return 0, fmt.Errorf("confidence %q is not an integer between 0 and 100: %w", value, errs.ErrClassification)
	}
	return v, nil
}

// Classify selects the first threshold, from highest to lowest, the value
// reaches. The lowest bucket takes everything below it.
func (Discrete) Classify(value string) (Bucket, error) {
	v, err := parseDiscrete(value)
	if err != nil {
		return Bucket{}, err
	}
	for _, b := range discreteBuckets {
		if v >= b.Threshold {
			return b, nil
		}
	}
	return discreteBuckets[len(discreteBuckets)-1], nil
}

// Matches uses the range query lower < v <= upper of ThresholdRange. It does
// not agree with Classify on exact thresholds: 80 classifies as ">80" but
// matches ">50,<80".
func (d Discrete) Matches(value, label string) (bool, error) {
	b, err := d.byLabel(label)
	if err != nil {
		return false, err
	}
	upper, lower, err := ThresholdRange(b.Threshold)
	if err != nil {
		return false, err
	}
	v, err := parseDiscrete(value)
	if err != nil {
		return false, err
	}
	return lower < v && v <= upper, nil
}

func (Discrete) byLabel(label string) (Bucket, error) {
	for _, b := range discreteBuckets {
		if b.Label == label {
			return b, nil
		}
	}
	return Bucket{}, fmt.Errorf("unknown discrete label %q: %w", label, errs.ErrClassification)
}

// ThresholdRange returns the (upper, lower) bounds of the bucket whose
// lower threshold is lower: 100 for the highest bucket, else the next threshold up.
func ThresholdRange(lower int) (int, int, error) {
	for i, b := range discreteBuckets {
		if b.Threshold != lower {
			continue
		}
		if i == 0 {
			return 100, lower, nil
		}
		return discreteBuckets[i-1].Threshold, lower, nil
	}
	return 0, 0, fmt.Errorf("unknown threshold %d: %w", lower, errs.ErrClassification)
}

var categoricalBuckets = []Bucket{
	{Label: "high", Color: "green"},
	{Label: "nominal", Color: "orange"},
	{Label: "low", Color: "red"},
}

var categoricalAliases = map[string]string{
	"high": "high", "h": "high",
	"nominal": "nominal", "n": "nominal",
	"low": "low", "l": "low",
}

// Categorical is the VIIRS high/nominal/low scale.
type Categorical struct{}

func (Categorical) Name() string { return "categorical" }

func (Categorical) Buckets() []Bucket {
	return append([]Bucket(nil), categoricalBuckets...)
}

func normalize(value string) (string, error) {
	label, ok := categoricalAliases[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", fmt.Errorf("unknown categorical confidence %q: %w", value, errs.ErrClassification)
	}
	return label, nil
}

func (Categorical) Classify(value string) (Bucket, error) {
	label, err := normalize(value)
	if err != nil {
		return Bucket{}, err
	}
	for _, b := range categoricalBuckets {
		if b.Label == label {
			return b, nil
		}
	}
	return Bucket{}, fmt.Errorf("unknown categorical confidence %q: %w", value, errs.ErrClassification)
}

func (Categorical) Matches(value, label string) (bool, error) {
	want, err := normalize(label)
	if err != nil {
		return false, err
	}
	got, err := normalize(value)
	if err != nil {
		return false, err
	}
	return got == want, nil
}
