package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/nikogura/portfolio/pkg/assets"
	"github.com/nikogura/portfolio/pkg/config"
	"github.com/nikogura/portfolio/pkg/dom"
	"github.com/nikogura/portfolio/pkg/preview"
	"github.com/nikogura/portfolio/pkg/renderer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveAddr string

//nolint:gochecknoglobals // Cobra boilerplate
var serveAllowAll bool

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve [data-source]",
	Short: "Run a live preview of the portfolio",
	Long: `Render the portfolio once and serve it locally.

Carousels run in the preview process. Every open browser mirrors their state
over a websocket, and clicks or hovers in any browser drive the shared carousel.
Static files are served from asset_root.

Example:
  portfolio serve
  portfolio serve site/data.json --addr :8080`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "Allow cross origin requests from anywhere")
}

func runServe(cmd *cobra.Command, args []string) (err error) {
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

	cfg.Preview.Addr = flagOrConfig(serveAddr, cfg.Preview.Addr)
	if serveAllowAll {
		cfg.Preview.AllowAllOrigins = true
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = servePreview(ctx, cfg, location, logger)
	return err
}

// servePreview renders the page with live carousels and serves it until ctx ends.
func servePreview(ctx context.Context, cfg config.Config, location string, logger *slog.Logger) (err error) {
	var srv *preview.Server
	var cleanup func()
	srv, cleanup, err = newPreview(ctx, cfg, location, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("Previewing %s at http://%s/\n", location, displayAddr(cfg.Preview.Addr))

	err = srv.Run(ctx)
	return err
}

// newPreview renders the page and builds its preview server. Files that a build
// would generate into output_dir are written to a scratch directory and served
// from there. Cleanup stops the carousels and removes the scratch directory.
func newPreview(ctx context.Context, cfg config.Config, location string, logger *slog.Logger) (srv *preview.Server, cleanup func(), err error) {
	var closers []func()
	cleanup = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	var page *dom.Document
	page, err = dom.ParseFile(cfg.TemplatePath)
	if err != nil {
		return srv, cleanup, err
	}

	var opts []renderer.Option
	opts, err = rendererOptions(cfg, logger)
	if err != nil {
		return srv, cleanup, err
	}

	hub := preview.NewHub(logger)
	opts = append(opts, renderer.WithSlideObserver(hub.Publish))

	var r *renderer.Renderer
	r, err = renderer.New(timedSource(location, cfg), page, opts...)
	if err != nil {
		return srv, cleanup, err
	}
	closers = append(closers, r.Close)

	var ok bool
	ok, err = r.Render(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to render portfolio")
		return srv, cleanup, err
	}

	if !ok {
		err = errors.Errorf("failed to load portfolio document from %s", location)
		return srv, cleanup, err
	}

	generated := make(map[string]string)
	if cfg.ContactQR != "" {
		var dir string
		dir, err = os.MkdirTemp("", "portfolio-preview-")
		if err != nil {
			err = errors.Wrap(err, "failed to create preview scratch directory")
			return srv, cleanup, err
		}
		closers = append(closers, func() { _ = os.RemoveAll(dir) })

		doc, _ := r.Document()
		file := filepath.Join(dir, "contact-qr.png")
		err = assets.WriteContactQR(doc, file)
		if err != nil {
			return srv, cleanup, err
		}
		generated["/"+strings.TrimPrefix(filepath.ToSlash(cfg.ContactQR), "/")] = file
	}

	srv, err = preview.New(preview.Config{
		Addr:            cfg.Preview.Addr,
		AssetRoot:       cfg.AssetRoot,
		Generated:       generated,
		AllowAllOrigins: cfg.Preview.AllowAllOrigins,
		Logger:          logger,
	}, r, hub)
	if err != nil {
		return srv, cleanup, err
	}

	return srv, cleanup, err
}

// displayAddr fills in a host for bare port addresses.
func displayAddr(addr string) (out string) {
	out = addr
	if len(addr) > 0 && addr[0] == ':' {
		out = "localhost" + addr
	}
	return out
}
