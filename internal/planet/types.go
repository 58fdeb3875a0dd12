package planet

import (
	"time"

	"github.com/paulmach/orb/geojson"
)

// ItemTypes are the orthorectified products searched. REScene is left out
// because it cannot be clipped.
var ItemTypes = []string{
	"PSScene",
	"PSScene4Band",
	"PSScene3Band",
	"PSOrthoTile",
	"REOrthoTile",
}

type GeometryFilter struct {
	Type      string            `json:"type"`
	FieldName string            `json:"field_name"`
	Config    *geojson.Geometry `json:"config"`
}

type DateRange struct {
	GTE *time.Time `json:"gte,omitempty"`
	LT  *time.Time `json:"lt,omitempty"`
}

type DateRangeFilter struct {
	Type      string     `json:"type"`
	FieldName string     `json:"field_name"`
	Config    *DateRange `json:"config"`
}

type Range struct {
	LTE *float64 `json:"lte,omitempty"`
	GTE *float64 `json:"gte,omitempty"`
}

type RangeFilter struct {
	Type      string `json:"type"`
	FieldName string `json:"field_name"`
	Config    *Range `json:"config"`
}

type AndFilter struct {
	Type   string        `json:"type"`
	Config []interface{} `json:"config"`
}

type SearchRequest struct {
	Filter    interface{} `json:"filter"`
	ItemTypes []string    `json:"item_types"`
}

type Properties struct {
	Acquired    time.Time `json:"acquired"`
	Published   time.Time `json:"published"`
	ItemType    string    `json:"item_type"`
	CloudCover  float64   `json:"cloud_cover"`
	SatelliteID string    `json:"satellite_id"`
}

type Links struct {
	Self string `json:"_self"`
	Next string `json:"_next"`
}

type Feature struct {
	Geometry   *geojson.Geometry `json:"geometry"`
	ID         string            `json:"id"`
	Properties *Properties       `json:"properties"`
}

type SearchResponse struct {
	Links    Links      `json:"_links"`
	Features []*Feature `json:"features"`
}

// Item is one imagery asset candidate for a detection.
type Item struct {
	ItemType   string
	ID         string
	Acquired   time.Time
	Date       string
	CloudCover float64
}

func itemFromFeature(f *Feature) Item {
	it := Item{ID: f.ID}
	if f.Properties != nil {
		it.ItemType = f.Properties.ItemType
		it.Acquired = f.Properties.Acquired.UTC()
		it.CloudCover = f.Properties.CloudCover
	}
	it.Date = it.Acquired.Format("2006-01-02")
	return it
}
