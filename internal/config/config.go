// YAML config loader layered over built-in defaults
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration of the explorer
type Config struct {
	Firms     FirmsConfig     `yaml:"firms"`
	Planet    PlanetConfig    `yaml:"planet"`
	Display   DisplayConfig   `yaml:"display"`
	Countries CountriesConfig `yaml:"countries"`
}

// FirmsConfig holds the NASA FIRMS endpoints and fetch defaults
type FirmsConfig struct {
	APIBase       string        `yaml:"api_base"`
	HistoricBase  string        `yaml:"historic_base"`
	Timeout       time.Duration `yaml:"timeout"`
	DefaultSource string        `yaml:"default_source"`
	DefaultOffset string        `yaml:"default_offset"`
}

// PlanetConfig holds the Planet endpoints and imagery search defaults
type PlanetConfig struct {
	APIBase    string        `yaml:"api_base"`
	TilesBase  string        `yaml:"tiles_base"`
	Timeout    time.Duration `yaml:"timeout"`
	CloudCover int           `yaml:"cloud_cover"`
	DaysBefore int           `yaml:"days_before"`
	DaysAfter  int           `yaml:"days_after"`
	MaxImages  int           `yaml:"max_images"`
	DayPolicy  string        `yaml:"day_policy"`
}

// DisplayConfig holds map rendering limits
type DisplayConfig struct {
	MaxFeatures int `yaml:"max_features"`
}

// CountriesConfig points to the world countries boundaries
type CountriesConfig struct {
	URL string `yaml:"url"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		Firms: FirmsConfig{
			APIBase:       "https://firms.modaps.eosdis.nasa.gov/api",
			HistoricBase:  "https://firms.modaps.eosdis.nasa.gov/data/country/zips",
			Timeout:       5 * time.Minute,
			DefaultSource: "viirs_snpp_nrt",
			DefaultOffset: "24 hours",
		},
		Planet: PlanetConfig{
			APIBase:    "https://api.planet.com",
			TilesBase:  "https://tiles0.planet.com",
			Timeout:    30 * time.Second,
			CloudCover: 20,
			DaysBefore: 0,
			DaysAfter:  1,
			MaxImages:  6,
			DayPolicy:  "best",
		},
		Display: DisplayConfig{
			MaxFeatures: 20000,
		},
		Countries: CountriesConfig{
			URL: "https://raw.githubusercontent.com/johan/world.geo.json/master/countries.geo.json",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the ranges the imagery panel enforces
func (c *Config) Validate() error {
	p := c.Planet
	switch {
	case p.CloudCover < 0 || p.CloudCover > 100:
		return fmt.Errorf("planet.cloud_cover must be between 0 and 100, got %d", p.CloudCover)
	case p.DaysBefore < 0 || p.DaysBefore > 5:
		return fmt.Errorf("planet.days_before must be between 0 and 5, got %d", p.DaysBefore)
	case p.DaysAfter < 0 || p.DaysAfter > 5:
		return fmt.Errorf("planet.days_after must be between 0 and 5, got %d", p.DaysAfter)
	case p.MaxImages < 1 || p.MaxImages > 6:
		return fmt.Errorf("planet.max_images must be between 1 and 6, got %d", p.MaxImages)
	case p.DayPolicy != "best" && p.DayPolicy != "legacy":
		return fmt.Errorf("planet.day_policy must be 'best' or 'legacy', got %q", p.DayPolicy)
	}
	if c.Display.MaxFeatures <= 0 {
		return fmt.Errorf("display.max_features must be positive, got %d", c.Display.MaxFeatures)
	}
	if c.Firms.APIBase == "" || c.Planet.APIBase == "" {
		return fmt.Errorf("firms.api_base and planet.api_base are required")
	}
	return nil
}
