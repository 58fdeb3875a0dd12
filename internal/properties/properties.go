package properties

import (
	"os"
	"path/filepath"
)

func RootPath() string {
	if root := os.Getenv("ROOT_PATH"); root != "" {
		return root
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "module_results", "Planet_fire_explorer")
}

func DataDir() string {
	return filepath.Join(RootPath(), "data")
}

func HistoricDir() string {
	return filepath.Join(RootPath(), "historical")
}

func ResultDir() string {
	return filepath.Join(RootPath(), "result")
}

func ConfigPath() string {
	return os.Getenv("FIRES_CONFIG")
}

func FirmsAPIKey() string {
	return os.Getenv("FIRMS_API_KEY")
}

func PlanetAPIKey() string {
	return os.Getenv("PLANET_API_KEY")
}

func PlanetClientID() string {
	return os.Getenv("PLANET_CLIENT_ID")
}

func PlanetClientSecret() string {
	return os.Getenv("PLANET_CLIENT_SECRET")
}

func PlanetTokenURL() string {
	return os.Getenv("PLANET_TOKEN_URL")
}

func LogFile() string {
	return os.Getenv("FIRES_LOG_FILE")
}

type Color struct {
	R, G, B uint8
}

// ColorMap resolves the confidence color names to RGB.
var ColorMap = map[string]Color{
	"green":   {0, 128, 0},
	"orange":  {255, 165, 0},
	"red":     {255, 0, 0},
	"unknown": {128, 128, 128},
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}
func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}
func DiscordWarnNotificationUrl() string {
	if url := os.Getenv("DISCORD_WARN_NOTIFICATION_URL"); url != "" {
		return url
	}
	return DiscordErrorNotificationUrl()
}
