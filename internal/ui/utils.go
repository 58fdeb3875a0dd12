package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// Colors for consistent UI
const (
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorReset  = "\033[0m"
)

var (
	in  = bufio.NewReader(os.Stdin)
	out io.Writer = os.Stdout
	// set once stdin is exhausted
	inputClosed bool
)

// PrintWarning displays a warning message with consistent formatting
func PrintWarning(message string) {
	fmt.Fprintf(out, "%s\nWarning:%s\n", ColorYellow, ColorReset)
	fmt.Fprintf(out, "%s%s%s\n", ColorYellow, message, ColorReset)
}

// PrintError displays an error message with consistent formatting
func PrintError(message string) {
	fmt.Fprintf(out, "\n%sError: %s%s\n", ColorRed, message, ColorReset)
}

// PrintSuccess displays a success message with consistent formatting
func PrintSuccess(message string) {
	fmt.Fprintf(out, "\n%s%s%s\n", ColorGreen, message, ColorReset)
}

// PrintInfo displays an info message with consistent formatting
func PrintInfo(message string) {
	fmt.Fprintf(out, "%s%s%s", ColorBlue, message, ColorReset)
}

// ReadString reads a string from stdin with trimming
func ReadString(prompt string) string {
	PrintInfo(prompt)
	input, err := in.ReadString('\n')
	if err == io.EOF && input == "" {
		inputClosed = true
	}
	return strings.TrimSpace(input)
}

// ReadDefault reads a string and falls back to def on an empty answer
func ReadDefault(prompt, def string) string {
	input := ReadString(fmt.Sprintf("%s [%s]: ", prompt, def))
	if input == "" {
		return def
	}
	return input
}

// ReadInt reads an integer from stdin with validation
func ReadInt(prompt string, min, max int) (int, error) {
	input := ReadString(prompt)
	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}

	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}

	return value, nil
}

// ReadIntDefault is ReadInt with a value kept on an empty answer
func ReadIntDefault(prompt string, def, min, max int) (int, error) {
	input := ReadString(fmt.Sprintf("%s [%d]: ", prompt, def))
	if input == "" {
		return def, nil
	}
	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}
	return value, nil
}

// ReadDate reads a date from stdin with validation
func ReadDate(prompt string) (time.Time, error) {
	input := ReadString(prompt)
	if input == "today" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	date, err := time.Parse("2006-01-02", input)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s. Please use YYYY-MM-DD", input)
	}
	return date, nil
}

// ReadDateRange reads a start and an end date
func ReadDateRange() (time.Time, time.Time, error) {
	startDate, err := ReadDate("Enter the start date (YYYY-MM-DD): ")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := ReadDate("Enter the end date (YYYY-MM-DD or 'today'): ")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s",
			endDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
	}
	return startDate, endDate, nil
}

// parsePoint reads a "lon,lat" pair
func parsePoint(input string) (orb.Point, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("invalid format. Please use lon,lat")
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid longitude")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid latitude")
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return orb.Point{}, fmt.Errorf("coordinates out of range")
	}
	return orb.Point{lon, lat}, nil
}

// Choose lists options and returns the selected index
func Choose(title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("nothing to choose from")
	}
	fmt.Fprintf(out, "%s\n%s:%s\n", ColorGreen, title, ColorReset)
	for i, opt := range options {
		fmt.Fprintf(out, "%s%d. %s%s\n", ColorGreen, i+1, opt, ColorReset)
	}
	choice, err := ReadInt("Enter your choice: ", 1, len(options))
	if err != nil {
		return 0, err
	}
	return choice - 1, nil
}
