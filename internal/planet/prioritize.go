package planet

import (
	"fmt"
	"sort"
)

type DayPolicy string

const (
	// BestPerDay keeps the least cloudy item of each calendar day.
	BestPerDay DayPolicy = "best"
	// LegacySecond buckets by (year, day of month) and keeps the second item
	// of each bucket, dropping buckets with a single item.
	LegacySecond DayPolicy = "legacy"
)

func ParseDayPolicy(s string) (DayPolicy, error) {
	switch DayPolicy(s) {
	case "", BestPerDay:
		return BestPerDay, nil
	case LegacySecond:
		return LegacySecond, nil
	}
	return "", fmt.Errorf("unknown day policy %q", s)
}

// Prioritize orders items by type, drops (date, id) duplicates, collapses
// days when the window reaches back before the alert and keeps at most
// maxImages items (0 keeps all).
func Prioritize(items []Item, daysBefore, maxImages int, policy DayPolicy) []Item {
	sorted := append([]Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ItemType < sorted[j].ItemType
	})

	type key struct{ date, id string }
	seen := make(map[key]bool, len(sorted))
	unique := sorted[:0]
	for _, it := range sorted {
		k := key{it.Date, it.ID}
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, it)
	}

	out := unique
	if daysBefore > 0 {
		switch policy {
		case LegacySecond:
			out = secondPerDayOfMonth(unique)
		default:
			out = bestPerDay(unique)
		}
	}

	if maxImages > 0 && len(out) > maxImages {
		out = out[:maxImages]
	}
	return out
}

func bestPerDay(items []Item) []Item {
	best := map[string]Item{}
	for _, it := range items {
		cur, ok := best[it.Date]
		if !ok || better(it, cur) {
			best[it.Date] = it
		}
	}
	out := make([]Item, 0, len(best))
	for _, it := range best {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Acquired.Before(out[j].Acquired)
	})
	return out
}

func better(a, b Item) bool {
	if a.CloudCover != b.CloudCover {
		return a.CloudCover < b.CloudCover
	}
	if !a.Acquired.Equal(b.Acquired) {
		return a.Acquired.Before(b.Acquired)
	}
	return a.ID < b.ID
}

func secondPerDayOfMonth(items []Item) []Item {
	type bucket struct{ year, day int }
	groups := map[bucket][]Item{}
	var keys []bucket
	for _, it := range items {
		k := bucket{it.Acquired.Year(), it.Acquired.Day()}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], it)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].day < keys[j].day
	})

	var out []Item
	for _, k := range keys {
		if g := groups[k]; len(g) > 1 {
			out = append(out, g[1])
		}
	}
	return out
}
