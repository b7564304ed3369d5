package renderer

import (
	"github.com/nikogura/portfolio/pkg/carousel"
	"github.com/nikogura/portfolio/pkg/dom"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

const activeClass = "active"

// sliderView marks the active slide and dot of one project slider in the page.
type sliderView struct {
	page     *dom.Document
	id       string
	slides   []*html.Node
	dots     []*html.Node
	observer func(sliderID string, index int)
}

func (v *sliderView) Show(index int) {
	_ = v.page.Update(func(*html.Node) error {
		for i, n := range v.slides {
			dom.ToggleClass(n, activeClass, i == index)
		}
		for i, n := range v.dots {
			dom.ToggleClass(n, activeClass, i == index)
		}
		return nil
	})

	if v.observer != nil {
		v.observer(v.id, index)
	}
}

// initCarousels starts one controller per slider with more than one slide.
func (r *Renderer) initCarousels() (err error) {
	var views []*sliderView

	err = r.page.Update(func(root *html.Node) error {
		container := dom.FindByID(root, "projects-container")
		if container == nil {
			return &dom.MissingElementError{ID: "projects-container"}
		}

		for _, slider := range dom.FindAllByClass(container, "project-slider") {
			slides := dom.FindAllByClass(slider, "slider-slide")
			if len(slides) <= 1 {
				continue
			}

			id, _ := dom.Attr(slider, "data-slider-id")
			views = append(views, &sliderView{
				page:     r.page,
				id:       id,
				slides:   slides,
				dots:     dom.FindAllByClass(slider, "slider-dot"),
				observer: r.slideObserver,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, view := range views {
		var c *carousel.Controller
		c, err = carousel.New(len(view.slides), view, r.carouselOpts...)
		if err != nil {
			err = errors.Wrapf(err, "failed to start carousel %s", view.id)
			return err
		}

		r.mu.Lock()
		r.carousels[view.id] = c
		r.order = append(r.order, view.id)
		r.mu.Unlock()

		r.logger.Debug("carousel started", "slider", view.id, "slides", len(view.slides))
	}

	return err
}
