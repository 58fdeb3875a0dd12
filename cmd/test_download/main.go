package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/paulmach/orb"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/config"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/properties"
)

func main() {
	// Hardcoded test parameters - modify these to test different scenarios
	source := firms.ModisSP
	start := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 8, 3, 0, 0, 0, 0, time.UTC)
	bounds := orb.Bound{Min: orb.Point{-10, 36}, Max: orb.Point{4, 44}}

	fmt.Println("=== Historic Archive Download ===")
	fmt.Printf("Source: %s (%s)\n", source, source.Sensor())
	fmt.Printf("Dates: %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Println()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
		fmt.Println("Make sure you have set the required environment variables:")
		fmt.Println("- FIRMS_API_KEY")
		fmt.Println("- ROOT_PATH")
		fmt.Println()
	}

	client := firms.NewClient(config.DefaultConfig().Firms, firms.WithProgressBar())
	started := time.Now()
	rows, err := client.Fetch(context.Background(), firms.Request{
		SatSource: source,
		Mode:      firms.ModeHistoric,
		StartDate: start,
		EndDate:   end,
		Bounds:    bounds,
	})
	if err != nil {
		log.Fatalf("Failed to read archives: %v", err)
	}

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Detections in range: %d (%s)\n", len(rows), time.Since(started).Round(time.Millisecond))
	for i, d := range rows {
		if i == 5 {
			break
		}
		fmt.Printf("- %s %s %.4f,%.4f confidence %s\n", d.AcqDate, d.FormattedTime(), d.Longitude, d.Latitude, d.Confidence)
	}

	path := client.ArchivePath(source.Sensor(), start.Year())
	if info, err := os.Stat(path); err == nil {
		fmt.Printf("\nArchive cached at %s (%d bytes)\n", path, info.Size())
	}
	fmt.Printf("Historic directory: %s\n", properties.HistoricDir())

	fmt.Println("\n✓ Test completed successfully!")
}
