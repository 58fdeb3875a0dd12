package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/airbusgeo/godal"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/aoi"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/config"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/errs"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/export"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/footprint"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/geoutils/proj"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/logger"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/notification"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/planet"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/properties"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/session"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/ui"
)

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = properties.ConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	logger.Default().SetLevel(level)
	if file := properties.LogFile(); file != "" {
		if err := logger.Default().AddFile(file); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func planetCredentials() planet.Credentials {
	return planet.Credentials{
		APIKey:       properties.PlanetAPIKey(),
		ClientID:     properties.PlanetClientID(),
		ClientSecret: properties.PlanetClientSecret(),
		TokenURL:     properties.PlanetTokenURL(),
	}
}

// newApp wires the alert pipeline, the imagery matcher and the exporter
// around one session.
func newApp(ctx context.Context) (*ui.App, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	godal.RegisterAll()

	countries, err := aoi.LoadCountriesFile(ctx, &http.Client{Timeout: cfg.Firms.Timeout},
		filepath.Join(properties.DataDir(), "countries.geo.json"), cfg.Countries.URL)
	if err != nil {
		logger.Warnf("country boundaries unavailable, only drawn areas can be used: %v", err)
	}

	projector, err := proj.NewProjector()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create projector: %w", err)
	}

	firmsClient := firms.NewClient(cfg.Firms, firms.WithProgressBar())
	planetClient := planet.NewClient(cfg.Planet)

	bus := session.NewBus()
	s := session.New(bus, countries, session.ImageryParamsFromConfig(cfg.Planet))
	matcher := planet.NewMatcher(planetClient,
		planet.WithValidator(planetClient),
		planet.WithStateHook(s.StateHook()),
	)

	bus.Subscribe(session.TopicAlertsOverload, func(e session.Event) {
		msg := fmt.Sprintf("%v", e.Payload)
		if a := s.AOI(); a != nil {
			msg = fmt.Sprintf("%s in %s", msg, a.Name)
		}
		if err := notification.SendDiscordWarnNotification(msg); err != nil {
			logger.Warnf("failed to send overload notification: %v", err)
		}
	})
	bus.Subscribe(session.TopicImageryState, func(e session.Event) {
		logger.Debugf("imagery search %v", e.Payload)
	})
	bus.Subscribe(session.TopicAlertMetadata, func(e session.Event) {
		if c, ok := e.Payload.(session.MetadataChange); ok {
			logger.Infof("alert %d of batch %s reviewed %q", c.ID, c.BatchID, c.Reviewed)
		}
	})

	maxFeatures := cfg.Display.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = errs.MaxDisplayFeatures
	}

	app := &ui.App{
		Config:   cfg,
		Session:  s,
		Pipeline: session.NewPipeline(s, firmsClient, footprint.NewBuilder(projector), maxFeatures),
		Imagery:  session.NewImagery(s, matcher, planetClient),
		Firms:    firmsClient,
		Exporter: export.NewWriter(properties.ResultDir()),
		FirmsKey: properties.FirmsAPIKey(),
		Planet:   planetCredentials(),
	}
	closeApp := func() {
		projector.Close()
		if err := logger.Default().Close(); err != nil {
			fmt.Printf("failed to close log file: %v\n", err)
		}
	}
	return app, closeApp, nil
}
