package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/notification"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "fires",
	Short: "Explore active fire alerts and match them with Planet imagery",
	Long: "fires fetches NASA FIRMS active fire alerts over an area of interest, " +
		"draws their pixel footprints and looks up Planet scenes acquired around each alert.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		printBanner()
		app, closeApp, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer closeApp()
		app.ShowMenu(cmd.Context())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML configuration (defaults to $FIRES_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.AddCommand(fetchCmd, imageryCmd, availabilityCmd)
}

func printBanner() {
	figure1 := figure.NewFigure("Active", "isometric1", true)
	figure2 := figure.NewFigure("Fires", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func recoverPanic() {
	if r := recover(); r != nil {
		pc, file, line, ok := runtime.Caller(3)
		var location string
		if ok {
			fn := runtime.FuncForPC(pc)
			location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
		} else {
			location = "Unknown location"
		}

		fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
		fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
		fmt.Printf("\033[31mExiting...\033[0m\n")

		stack := debug.Stack()
		errMessage := fmt.Sprintf("Active fires CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack)
		if err := notification.SendDiscordErrorNotification(errMessage); err != nil {
			fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
		}
		os.Exit(2)
	}
}

func main() {
	defer recoverPanic()

	if err := godotenv.Load("../../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("\033[33mNo .env file loaded, using the environment only\033[0m\n")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
