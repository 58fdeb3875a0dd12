package firms

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/errs"
)

type SatSource string

const (
	ModisNRT     SatSource = "modis_nrt"
	ViirsNoaaNRT SatSource = "viirs_noaa_nrt"
	ViirsSnppNRT SatSource = "viirs_snpp_nrt"
	ModisSP      SatSource = "modis_sp"
	ViirsNoaaSP  SatSource = "viirs_noaa_sp"
	ViirsSnppSP  SatSource = "viirs_snpp_sp"
)

var SatSources = []SatSource{ModisNRT, ViirsNoaaNRT, ViirsSnppNRT, ModisSP, ViirsNoaaSP, ViirsSnppSP}

type sourceInfo struct {
	code   string // area API product id
	sensor string // yearly archive prefix
}

var sources = map[SatSource]sourceInfo{
	ModisNRT:     {"MODIS_NRT", "modis"},
	ViirsNoaaNRT: {"VIIRS_NOAA20_NRT", "viirs-jpss1"},
	ViirsSnppNRT: {"VIIRS_SNPP_NRT", "viirs-snpp"},
	ModisSP:      {"MODIS_SP", "modis"},
	ViirsNoaaSP:  {"VIIRS_NOAA20_SP", "viirs-jpss1"},
	ViirsSnppSP:  {"VIIRS_SNPP_SP", "viirs-snpp"},
}

func ParseSatSource(s string) (SatSource, error) {
	src := SatSource(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := sources[src]; !ok {
		return "", fmt.Errorf("unknown satellite source %q: %w", s, errs.ErrClassification)
	}
	return src, nil
}

func (s SatSource) Valid() bool {
	_, ok := sources[s]
	return ok
}

// Code is the product id used by the area and availability endpoints.
func (s SatSource) Code() string {
	return sources[s].code
}

// Sensor is the prefix of the yearly archive for this source.
func (s SatSource) Sensor() string {
	return sources[s].sensor
}

func (s SatSource) IsModis() bool {
	return strings.HasPrefix(string(s), "modis")
}

// Detection is one FIRMS hotspot row.
type Detection struct {
	ID         int       `csv:"-" json:"id"`
	Latitude   float64   `csv:"latitude" json:"latitude"`
	Longitude  float64   `csv:"longitude" json:"longitude"`
	AcqDate    string    `csv:"acq_date" json:"acq_date"`
	AcqTime    string    `csv:"acq_time" json:"acq_time"`
	Confidence string    `csv:"confidence" json:"confidence"`
	SatSource  SatSource `csv:"-" json:"satsource"`
	Reviewed   string    `csv:"reviewed" json:"reviewed"`
	Observ     string    `csv:"observ" json:"observ"`

	Brightness float64 `csv:"brightness" json:"brightness,omitempty"`
	BrightTI4  float64 `csv:"bright_ti4" json:"bright_ti4,omitempty"`
	FRP        float64 `csv:"frp" json:"frp"`
	Satellite  string  `csv:"satellite" json:"satellite"`
	Instrument string  `csv:"instrument" json:"instrument"`
	DayNight   string  `csv:"daynight" json:"daynight"`
	Version    string  `csv:"version" json:"version"`
}

func (d Detection) Point() orb.Point {
	return orb.Point{d.Longitude, d.Latitude}
}

// FormattedTime renders acq_time as HH:MM, left padding short values.
func (d Detection) FormattedTime() string {
	t := strings.TrimSpace(d.AcqTime)
	if t == "" {
		return ""
	}
	if len(t) < 4 {
		t = strings.Repeat("0", 4-len(t)) + t
	}
	return t[:2] + ":" + t[2:4]
}

// Bright returns the brightness temperature whatever the product family.
func (d Detection) Bright() float64 {
	if d.BrightTI4 != 0 {
		return d.BrightTI4
	}
	return d.Brightness
}
