package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/config"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/properties"
)

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Show the date span served for each FIRMS product",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rows, err := availability(cmd, cfg)
		if err != nil {
			return err
		}
		for _, src := range firms.SatSources {
			first, last, err := rows.Bounds(src)
			if err != nil {
				fmt.Printf("%-16s unavailable\n", src)
				continue
			}
			fmt.Printf("%-16s %s  %s\n", src, first.Format("2006-01-02"), last.Format("2006-01-02"))
		}
		return nil
	},
}

func availability(cmd *cobra.Command, cfg *config.Config) (firms.Availabilities, error) {
	client := firms.NewClient(cfg.Firms)
	return client.Availability(cmd.Context(), properties.FirmsAPIKey())
}
