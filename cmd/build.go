package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/nikogura/portfolio/pkg/assets"
	"github.com/nikogura/portfolio/pkg/config"
	"github.com/nikogura/portfolio/pkg/dom"
	"github.com/nikogura/portfolio/pkg/renderer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var buildOutputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var buildTemplate string

//nolint:gochecknoglobals // Cobra boilerplate
var buildSkipAssets bool

//nolint:gochecknoglobals // Cobra boilerplate
var buildCmd = &cobra.Command{
	Use:   "build [data-source]",
	Short: "Render the portfolio into a static site",
	Long: `Render the portfolio document into the page shell and write a static site.

The data source is a local JSON file or an http(s) URL. When omitted, data_source
from the config is used. Static assets matching the configured patterns are copied
from asset_root next to the page, and a contact QR code is generated when
contact_qr is set.

Example:
  portfolio build
  portfolio build site/data.json --output-dir ./public
  portfolio build https://example.com/portfolio.json --skip-assets`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildOutputDir, "output-dir", "", "Output directory (default from config)")
	buildCmd.Flags().StringVar(&buildTemplate, "template", "", "Page shell HTML (default from config)")
	buildCmd.Flags().BoolVar(&buildSkipAssets, "skip-assets", false, "Only write the page, do not copy static assets")
}

// buildResult lists what a build wrote.
type buildResult struct {
	Page      string
	Assets    []string
	ContactQR string
	Rendered  renderer.Result
}

func runBuild(cmd *cobra.Command, args []string) (err error) {
	var cfg config.Config
	var logger *slog.Logger
	cfg, logger, err = loadConfig()
	if err != nil {
		return err
	}

	var location string
	location, err = dataSource(args, cfg)
	if err != nil {
		return err
	}

	cfg.OutputDir = flagOrConfig(buildOutputDir, cfg.OutputDir)
	cfg.TemplatePath = flagOrConfig(buildTemplate, cfg.TemplatePath)
	if buildSkipAssets {
		cfg.Assets = nil
	}

	if getVerbose() {
		fmt.Printf("Loading portfolio from: %s\n", location)
		fmt.Printf("Page shell: %s\n", cfg.TemplatePath)
	}

	var progress *spinner
	if !getVerbose() {
		progress = newSpinner("Building portfolio...")
		progress.start()
	}

	var result buildResult
	result, err = buildSite(cmd.Context(), cfg, location, logger)
	if progress != nil {
		progress.stopSpinner()
	}
	if err != nil {
		return err
	}

	fmt.Printf("Portfolio written to: %s\n", result.Page)
	if len(result.Assets) > 0 {
		fmt.Printf("Copied %d assets\n", len(result.Assets))
	}
	if result.ContactQR != "" {
		fmt.Printf("Contact QR code saved at: %s\n", result.ContactQR)
	}

	return err
}

// flagOrConfig prefers the flag value over the configured one.
func flagOrConfig(flagValue, configValue string) (value string) {
	value = flagValue
	if value == "" {
		value = configValue
	}
	return value
}

// buildSite renders the page once and writes it with its assets into cfg.OutputDir.
func buildSite(ctx context.Context, cfg config.Config, location string, logger *slog.Logger) (result buildResult, err error) {
	err = renderer.ValidateFiles(cfg.TemplatePath)
	if err != nil {
		return result, err
	}

	var page *dom.Document
	page, err = dom.ParseFile(cfg.TemplatePath)
	if err != nil {
		return result, err
	}

	var opts []renderer.Option
	opts, err = rendererOptions(cfg, logger)
	if err != nil {
		return result, err
	}

	var r *renderer.Renderer
	r, err = renderer.New(timedSource(location, cfg), page, opts...)
	if err != nil {
		return result, err
	}
	defer r.Close()

	r.OnRendered(func(res renderer.Result) { result.Rendered = res })

	var ok bool
	ok, err = r.Render(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to render portfolio")
		return result, err
	}

	if !ok {
		err = errors.Errorf("failed to load portfolio document from %s", location)
		return result, err
	}

	// A static page keeps the first slide of every carousel active.
	r.Close()

	if cfg.ContactQR != "" {
		doc, _ := r.Document()
		result.ContactQR = filepath.Join(cfg.OutputDir, filepath.FromSlash(cfg.ContactQR))
		err = assets.WriteContactQR(doc, result.ContactQR)
		if err != nil {
			return result, err
		}
	}

	if cfg.AssetRoot != "" && len(cfg.Assets) > 0 {
		result.Assets, err = assets.Copy(ctx, cfg.AssetRoot, cfg.OutputDir, cfg.Assets, assets.DefaultWorkers)
		if err != nil {
			err = errors.Wrap(err, "failed to copy assets")
			return result, err
		}
		logger.Debug("assets copied", "count", len(result.Assets), "from", cfg.AssetRoot)
	}

	result.Page = filepath.Join(cfg.OutputDir, "index.html")
	err = renderer.WritePage(page, result.Page)
	if err != nil {
		return result, err
	}

	return result, err
}
