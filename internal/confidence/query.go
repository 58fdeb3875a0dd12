package confidence

import (
	"fmt"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
)

// Validate classifies every detection and fails on the first unknown value.
func Validate(dets []firms.Detection, s Scheme) error {
	for _, d := range dets {
		if _, err := s.Classify(d.Confidence); err != nil {
			return fmt.Errorf("detection %d: %w", d.ID, err)
		}
	}
	return nil
}

// Select returns the detections belonging to the bucket label, in input order.
func Select(dets []firms.Detection, s Scheme, label string) ([]firms.Detection, error) {
	out := make([]firms.Detection, 0)
	for _, d := range dets {
		ok, err := s.Matches(d.Confidence, label)
		if err != nil {
			return nil, fmt.Errorf("detection %d: %w", d.ID, err)
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// Count is the number of detections of one bucket.
type Count struct {
	Bucket Bucket
	Count  int
}

// Counts returns a histogram over every bucket of the scheme, including empty ones.
func Counts(dets []firms.Detection, s Scheme) ([]Count, error) {
	buckets := s.Buckets()
	out := make([]Count, len(buckets))
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		out[i] = Count{Bucket: b}
		index[b.Label] = i
	}
	for _, d := range dets {
		b, err := s.Classify(d.Confidence)
		if err != nil {
			return nil, fmt.Errorf("detection %d: %w", d.ID, err)
		}
		out[index[b.Label]].Count++
	}
	return out, nil
}
