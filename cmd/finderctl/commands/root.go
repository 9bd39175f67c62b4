package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/laptopfinder/backend/config"
	"github.com/laptopfinder/backend/internal/app"
	"github.com/laptopfinder/backend/internal/platform/logger"
)

var (
	verbose bool
	timeout string
)

var rootCmd = &cobra.Command{
	Use:   "finderctl",
	Short: "LaptopFinder command line tools",
	Long: `finderctl runs the laptop finder pipelines without the HTTP server.
It reads the same configuration as the server (config.yaml, .env and
LAPTOPFINDER_* environment variables).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&timeout, "timeout", "2m", "overall command timeout")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc, error) {
	d, err := parseTimeout(timeout)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), d)
	return ctx, cancel, nil
}

func newLogger() (*logger.Logger, error) {
	if !verbose {
		return logger.Nop(), nil
	}
	return logger.New("development")
}

// openApp loads configuration and builds the full pipeline.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, log)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
