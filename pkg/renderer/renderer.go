// Package renderer projects a portfolio document into a page shell and starts
// the project carousels.
package renderer

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/nikogura/portfolio/pkg/carousel"
	"github.com/nikogura/portfolio/pkg/dom"
	"github.com/nikogura/portfolio/pkg/portfolio"
	"github.com/pkg/errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Section ids that carry a section number.
const (
	SectionAbout      = "about"
	SectionExperience = "experience"
	SectionProjects   = "projects"
	SectionContact    = "contact"
)

// RequiredIDs is the page shell contract. Every id must exist before a render pass.
//
//nolint:gochecknoglobals // Page shell contract
var RequiredIDs = []string{
	"nav-logo", "nav-links",
	"hero-image-frame", "hero-badges", "hero-title-tag", "hero-name",
	"hero-description", "hero-highlights", "hero-bg-text",
	"about-section-number", "about-bg-number", "about-title", "about-intro",
	"about-detail", "skills-showcase", "about-contact-cards",
	"exp-section-number", "exp-bg-number", "timeline-container",
	"proj-section-number", "proj-bg-number", "projects-container",
	"contact-section-number", "contact-info-grid", "contact-socials",
	"footer-logo", "footer-copyright", "footer-credit",
}

// MarqueeID is rendered only when both the element and marquee data exist.
const MarqueeID = "marquee-content"

// Source supplies the portfolio document.
type Source interface {
	Load(ctx context.Context) (doc portfolio.Document, err error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (doc portfolio.Document, err error)

// Load calls f(ctx).
func (f SourceFunc) Load(ctx context.Context) (doc portfolio.Document, err error) {
	doc, err = f(ctx)
	return doc, err
}

// FromLocation reads the document from a file path or URL.
func FromLocation(location string) (src Source) {
	src = SourceFunc(func(ctx context.Context) (doc portfolio.Document, err error) {
		doc, err = portfolio.Load(ctx, location)
		return doc, err
	})
	return src
}

// Result describes a completed render pass.
type Result struct {
	Title     string
	Sections  map[string]string
	Projects  int
	Carousels []string
}

// Option configures a Renderer.
type Option func(r *Renderer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) (opt Option) {
	opt = func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
	return opt
}

// WithRichText sets how rich fields are converted.
func WithRichText(rt RichText) (opt Option) {
	opt = func(r *Renderer) {
		if rt != nil {
			r.rich = rt
		}
	}
	return opt
}

// WithCarouselOptions passes options to every carousel controller.
func WithCarouselOptions(opts ...carousel.Option) (opt Option) {
	opt = func(r *Renderer) {
		r.carouselOpts = append(r.carouselOpts, opts...)
	}
	return opt
}

// WithContactQR adds a QR code card pointing at src to the contact grid.
func WithContactQR(src string) (opt Option) {
	opt = func(r *Renderer) {
		r.contactQR = src
	}
	return opt
}

// WithSlideObserver is notified after every carousel slide change.
func WithSlideObserver(fn func(sliderID string, index int)) (opt Option) {
	opt = func(r *Renderer) {
		r.slideObserver = fn
	}
	return opt
}

// Renderer renders one page. It owns the carousels it starts.
type Renderer struct {
	source        Source
	page          *dom.Document
	rich          RichText
	logger        *slog.Logger
	tmpl          *template.Template
	carouselOpts  []carousel.Option
	contactQR     string
	slideObserver func(sliderID string, index int)

	mu        sync.Mutex
	doc       portfolio.Document
	loaded    bool
	rendered  bool
	rendering bool // a Render call is in flight
	observers []func(Result)
	done      chan struct{}
	carousels map[string]*carousel.Controller
	order     []string
}

// New creates a Renderer for page.
func New(source Source, page *dom.Document, opts ...Option) (r *Renderer, err error) {
	if source == nil {
		err = errors.New("document source is required")
		return r, err
	}

	if page == nil {
		err = errors.New("page shell is required")
		return r, err
	}

	var tmpl *template.Template
	tmpl, err = template.New("sections").Funcs(template.FuncMap{
		"inc":    func(i int) int { return i + 1 },
		"number": FormatNumber,
		"chars":  splitChars,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		err = errors.Wrap(err, "failed to parse section templates")
		return r, err
	}

	r = &Renderer{
		source:    source,
		page:      page,
		rich:      TrustedHTML{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		tmpl:      tmpl,
		done:      make(chan struct{}),
		carousels: make(map[string]*carousel.Controller),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, err
}

// FormatNumber zero pads a section or project number to at least two digits.
func FormatNumber(n int) (s string) {
	s = fmt.Sprintf("%02d", n)
	return s
}

func splitChars(s string) (chars []string) {
	for _, c := range s {
		chars = append(chars, string(c))
	}
	return chars
}

// Load fetches the document. Failures are logged and reported as false.
func (r *Renderer) Load(ctx context.Context) (ok bool) {
	start := time.Now()

	doc, err := r.source.Load(ctx)
	if err != nil {
		r.logger.Error("failed to load portfolio document", "error", err)
		return ok
	}

	r.mu.Lock()
	r.doc = doc
	r.loaded = true
	r.mu.Unlock()

	r.logger.Debug("portfolio document loaded",
		"projects", len(doc.Projects),
		"sections", len(doc.Navigation),
		"elapsed", time.Since(start))

	ok = true
	return ok
}

// Render loads the document and renders every section in order. A load failure
// leaves the page untouched and returns false with a nil error. A page shell
// that breaks the element contract returns an error.
func (r *Renderer) Render(ctx context.Context) (ok bool, err error) {
	r.mu.Lock()
	if r.rendered || r.rendering {
		r.mu.Unlock()
		err = errors.New("page already rendered")
		return ok, err
	}
	r.rendering = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.rendering = false
		r.mu.Unlock()
	}()

	if !r.Load(ctx) {
		return ok, err
	}

	err = r.page.Require(RequiredIDs...)
	if err != nil {
		err = errors.Wrap(err, "page shell contract violated")
		return ok, err
	}

	r.mu.Lock()
	doc := r.doc
	r.mu.Unlock()

	steps := []struct {
		name string
		fn   func(doc *portfolio.Document) error
	}{
		{"navigation", r.renderNavigation},
		{"hero", r.renderHero},
		{"marquee", r.renderMarquee},
		{"about", r.renderAbout},
		{"experience", r.renderExperience},
		{"projects", r.renderProjects},
		{"contact", r.renderContact},
		{"footer", r.renderFooter},
	}

	for _, step := range steps {
		err = step.fn(&doc)
		if err != nil {
			err = errors.Wrapf(err, "failed to render %s", step.name)
			return ok, err
		}
		r.logger.Debug("section rendered", "section", step.name)
	}

	title := fmt.Sprintf("%s | %s", doc.Profile.Name, doc.Profile.Title)
	err = r.page.SetTitle(title)
	if err != nil {
		return ok, err
	}

	err = r.initCarousels()
	if err != nil {
		return ok, err
	}

	result := Result{
		Title: title,
		Sections: map[string]string{
			SectionAbout:      FormatNumber(doc.SectionNumber(SectionAbout)),
			SectionExperience: FormatNumber(doc.SectionNumber(SectionExperience)),
			SectionProjects:   FormatNumber(doc.SectionNumber(SectionProjects)),
			SectionContact:    FormatNumber(doc.SectionNumber(SectionContact)),
		},
		Projects:  len(doc.Projects),
		Carousels: r.CarouselIDs(),
	}

	r.mu.Lock()
	r.rendered = true
	observers := append([]func(Result){}, r.observers...)
	r.mu.Unlock()

	close(r.done)
	for _, fn := range observers {
		fn(result)
	}

	r.logger.Info("portfolio rendered", "title", title, "projects", result.Projects, "carousels", len(result.Carousels))

	ok = true
	return ok, err
}

// OnRendered registers fn for the completion signal.
func (r *Renderer) OnRendered(fn func(Result)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.observers = append(r.observers, fn)
}

// Done is closed once the render pass completes.
func (r *Renderer) Done() (done <-chan struct{}) {
	done = r.done
	return done
}

// Document returns the loaded document.
func (r *Renderer) Document() (doc portfolio.Document, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc = r.doc
	ok = r.loaded
	return doc, ok
}

// Page returns the page being rendered.
func (r *Renderer) Page() (page *dom.Document) {
	page = r.page
	return page
}

// Carousel returns the controller for a slider id.
func (r *Renderer) Carousel(id string) (c *carousel.Controller, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok = r.carousels[id]
	return c, ok
}

// CarouselIDs returns slider ids in page order.
func (r *Renderer) CarouselIDs() (ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids = append(ids, r.order...)
	return ids
}

// Close stops every carousel timer.
func (r *Renderer) Close() {
	r.mu.Lock()
	controllers := make([]*carousel.Controller, 0, len(r.carousels))
	for _, id := range r.order {
		controllers = append(controllers, r.carousels[id])
	}
	r.mu.Unlock()

	for _, c := range controllers {
		c.Close()
	}
}
