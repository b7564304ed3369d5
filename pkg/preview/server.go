// Package preview serves a rendered page locally and mirrors its carousels to
// every open browser over a websocket.
package preview

import (
	"context"
	"embed"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/nikogura/portfolio/pkg/carousel"
	"github.com/nikogura/portfolio/pkg/renderer"
	"github.com/pkg/errors"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"
)

//go:embed static/live.js
var staticFS embed.FS

// LiveScriptPath is where the preview client script is served.
const LiveScriptPath = "/_preview/live.js"

// SocketPath is the preview websocket endpoint.
const SocketPath = "/_preview/ws"

// Config holds server configuration.
type Config struct {
	Addr            string
	AssetRoot       string            // directory served for paths other than the page
	Generated       map[string]string // URL path to a file produced for the preview only
	AllowAllOrigins bool
	Logger          *slog.Logger
}

// Server serves one rendered page.
type Server struct {
	cfg        Config
	renderer   *renderer.Renderer
	hub        *Hub
	logger     *slog.Logger
	router     chi.Router
	upgrader   websocket.Upgrader
	httpServer *http.Server

	hoverMu  sync.Mutex
	hovering map[string]map[string]bool // slider id to hovering session ids
}

// New creates a server for a rendered page and adds the preview client script
// to it. The hub must be the one passed to the renderer as its slide observer.
func New(cfg Config, r *renderer.Renderer, hub *Hub) (s *Server, err error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s = &Server{
		cfg:      cfg,
		renderer: r,
		hub:      hub,
		logger:   logger,
		hovering: make(map[string]map[string]bool),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.router = s.buildRouter()

	err = r.Page().AppendHTML(atom.Body, `<script src="`+LiveScriptPath+`"></script>`)
	if err != nil {
		err = errors.Wrap(err, "failed to add preview client to page")
		return s, err
	}

	return s, err
}

// Handler returns the HTTP handler.
func (s *Server) Handler() (h http.Handler) {
	h = s.router
	return h
}

func (s *Server) buildRouter() (r chi.Router) {
	r = chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get(SocketPath, s.handleSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/", s.handlePage)
		r.Get("/index.html", s.handlePage)
		r.Get("/healthz", s.handleHealth)
		r.Get(LiveScriptPath, s.handleLiveScript)

		for urlPath, file := range s.cfg.Generated {
			r.Get(urlPath, func(w http.ResponseWriter, req *http.Request) {
				http.ServeFile(w, req, file)
			})
		}

		if s.cfg.AssetRoot != "" {
			r.Handle("/*", http.FileServer(http.Dir(s.cfg.AssetRoot)))
		}
	})

	return r
}

func (s *Server) checkOrigin(r *http.Request) (ok bool) {
	origin := r.Header.Get("Origin")
	if origin == "" || s.cfg.AllowAllOrigins {
		ok = true
		return ok
	}

	ok = strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://") == r.Host
	return ok
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page := s.renderer.Page().String()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.WriteString(w, page)
}

type healthResponse struct {
	Status    string   `json:"status"`
	Clients   int      `json:"clients"`
	Carousels []string `json:"carousels"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Clients:   s.hub.Len(),
		Carousels: s.renderer.CarouselIDs(),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleLiveScript(w http.ResponseWriter, r *http.Request) {
	data, err := staticFS.ReadFile("static/live.js")
	if err != nil {
		http.Error(w, "live script unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("preview websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c, writerDone := s.hub.register(conn)
	defer func() {
		s.releaseHover(c.id)
		s.hub.unregister(c)
		<-writerDone
	}()

	s.hub.queue(c, Message{Type: TypeHello, Session: c.id})
	for _, id := range s.renderer.CarouselIDs() {
		if ctrl, ok := s.renderer.Carousel(id); ok {
			s.hub.queue(c, Message{Type: TypeSlide, Slider: id, Index: ctrl.Current()})
		}
	}

	for {
		var msg Message
		err = conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("preview websocket read failed", "session", c.id, "error", err)
			}
			return
		}

		err = s.apply(c.id, msg)
		if err != nil {
			s.hub.queue(c, Message{Type: TypeError, Slider: msg.Slider, Error: err.Error()})
		}
	}
}

// apply forwards a browser interaction to the carousel it names. The resulting
// slide change reaches every client through the hub.
func (s *Server) apply(session string, msg Message) (err error) {
	ctrl, ok := s.renderer.Carousel(msg.Slider)
	if !ok {
		err = errors.Errorf("unknown slider %q", msg.Slider)
		return err
	}

	switch msg.Type {
	case TypePrev:
		ctrl.Prev()
	case TypeNext:
		ctrl.Next()
	case TypeSel:
		if msg.Index < 0 || msg.Index >= ctrl.Len() {
			err = errors.Errorf("slide index %d out of range for slider %q", msg.Index, msg.Slider)
			return err
		}
		ctrl.Select(msg.Index)
	case TypeEnter:
		s.enter(session, msg.Slider, ctrl)
	case TypeLeave:
		s.leave(session, msg.Slider, ctrl)
	default:
		err = errors.Errorf("unknown message type %q", msg.Type)
	}

	return err
}

// enter records session as hovering the slider. Autoplay pauses when the first
// session starts hovering.
func (s *Server) enter(session, slider string, ctrl *carousel.Controller) {
	s.hoverMu.Lock()
	defer s.hoverMu.Unlock()

	set := s.hovering[slider]
	if set == nil {
		set = make(map[string]bool)
		s.hovering[slider] = set
	}

	if set[session] {
		return
	}

	set[session] = true
	if len(set) == 1 {
		ctrl.PointerEnter()
	}
}

// leave drops session from the slider's hover set. Autoplay resumes when the
// last hovering session leaves.
func (s *Server) leave(session, slider string, ctrl *carousel.Controller) {
	s.hoverMu.Lock()
	defer s.hoverMu.Unlock()

	set := s.hovering[slider]
	if !set[session] {
		return
	}

	delete(set, session)
	if len(set) == 0 {
		ctrl.PointerLeave()
	}
}

// releaseHover ends every hover held by a disconnecting session.
func (s *Server) releaseHover(session string) {
	s.hoverMu.Lock()
	var sliders []string
	for slider, set := range s.hovering {
		if set[session] {
			sliders = append(sliders, slider)
		}
	}
	s.hoverMu.Unlock()

	for _, slider := range sliders {
		if ctrl, ok := s.renderer.Carousel(slider); ok {
			s.leave(session, slider, ctrl)
		}
	}
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) (err error) {
	var ln net.Listener
	ln, err = net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		err = errors.Wrapf(err, "failed to listen on %s", s.cfg.Addr)
		return err
	}

	err = s.Serve(ctx, ln)
	return err
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) (err error) {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("preview server listening", "addr", ln.Addr().String())
		serveErr := s.httpServer.Serve(ln)
		if errors.Is(serveErr, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(serveErr, "preview server failed")
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.hub.Close()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	return err
}
