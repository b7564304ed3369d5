package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/nikogura/portfolio/pkg/carousel"
	"github.com/nikogura/portfolio/pkg/config"
	"github.com/nikogura/portfolio/pkg/portfolio"
	"github.com/nikogura/portfolio/pkg/renderer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Render a personal portfolio page from a JSON document",
	Long: `portfolio renders a single page personal portfolio from a structured JSON
document into a fixed HTML page shell.

It can build a static site or run a local live preview where the project
carousels stay in sync across every open browser.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		// A missing .env file is normal; anything else is reported.
		err = godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			err = errors.Wrap(err, "failed to load .env")
			return err
		}
		err = nil
		return err
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./"+config.DefaultFile+")")
}

// getVerbose returns the verbose flag value.
func getVerbose() (result bool) {
	result = verbose
	return result
}

// getConfigFile returns the config file path.
func getConfigFile() (result string) {
	result = configFile
	return result
}

// loadConfig reads the config and builds the logger it describes.
func loadConfig() (cfg config.Config, logger *slog.Logger, err error) {
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return cfg, logger, err
	}

	logger, err = cfg.Log.NewLogger(os.Stderr, getVerbose())
	if err != nil {
		return cfg, logger, err
	}

	return cfg, logger, err
}

// dataSource picks the document location from the argument or the config.
func dataSource(args []string, cfg config.Config) (location string, err error) {
	if len(args) > 0 {
		location = args[0]
	} else {
		location = cfg.DataSource
	}

	if location == "" {
		err = errors.New("no data source: pass one as an argument or set data_source in config")
		return location, err
	}

	return location, err
}

// timedSource bounds each document load by the configured fetch timeout.
func timedSource(location string, cfg config.Config) (src renderer.Source) {
	inner := renderer.FromLocation(location)
	src = renderer.SourceFunc(func(ctx context.Context) (doc portfolio.Document, err error) {
		if cfg.FetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.FetchTimeout)
			defer cancel()
		}

		doc, err = inner.Load(ctx)
		return doc, err
	})
	return src
}

// rendererOptions maps config onto renderer options.
func rendererOptions(cfg config.Config, logger *slog.Logger) (opts []renderer.Option, err error) {
	var rich renderer.RichText
	rich, err = renderer.NewRichText(cfg.RichText)
	if err != nil {
		return opts, err
	}

	opts = []renderer.Option{
		renderer.WithLogger(logger),
		renderer.WithRichText(rich),
		renderer.WithCarouselOptions(carousel.WithInterval(cfg.Carousel.Interval)),
	}

	if cfg.ContactQR != "" {
		opts = append(opts, renderer.WithContactQR(filepath.ToSlash(cfg.ContactQR)))
	}

	return opts, err
}
