package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/V4T54L/winloss/internal/client"
)

var version = "dev"

var (
	apiURL     string
	timeout    time.Duration
	noColor    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:           "winlossctl",
	Short:         "Command line client for the win/loss insights API",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// newAPIClient is a variable so tests can point commands at a fake server.
var newAPIClient = func() *client.Client {
	return client.New(apiURL, client.WithTimeout(timeout))
}

func init() {
	defaultURL := os.Getenv("WINLOSS_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	_, noColorEnv := os.LookupEnv("NO_COLOR")

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "base URL of the API server")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", noColorEnv, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON instead of tables")

	rootCmd.AddCommand(interviewsCmd, promptsCmd, reportsCmd, usersCmd, dashboardCmd, chatCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError("%v", err)
		stop()
		os.Exit(1)
	}
}

