package renderer

import (
	"bytes"
	"html/template"

	"github.com/nikogura/portfolio/pkg/portfolio"
	"github.com/pkg/errors"
	"golang.org/x/net/html/atom"
)

type projectView struct {
	Index       int
	Number      string
	Project     portfolio.Project
	Description template.HTML
}

type contactView struct {
	Contact portfolio.Contact
	QR      string
}

// fragment executes a named section template.
func (r *Renderer) fragment(name string, data any) (out string, err error) {
	var buf bytes.Buffer
	err = r.tmpl.ExecuteTemplate(&buf, name, data)
	if err != nil {
		err = errors.Wrapf(err, "failed to execute template %s", name)
		return out, err
	}

	out = buf.String()
	return out, err
}

// setFragment renders a template into the element with id.
func (r *Renderer) setFragment(id, name string, data any) (err error) {
	var out string
	out, err = r.fragment(name, data)
	if err != nil {
		return err
	}

	err = r.page.SetHTML(id, out)
	return err
}

// setRich converts a rich field and inserts it into the element with id.
// Elements that only hold phrasing content get the inline rendition.
func (r *Renderer) setRich(id, text string) (err error) {
	var tag atom.Atom
	tag, err = r.page.Tag(id)
	if err != nil {
		return err
	}

	convert := r.rich.Render
	if phrasingOnly[tag] {
		convert = r.rich.Inline
	}

	var out template.HTML
	out, err = convert(text)
	if err != nil {
		err = errors.Wrapf(err, "rich text for #%s", id)
		return err
	}

	err = r.page.SetHTML(id, string(out))
	return err
}

//nolint:gochecknoglobals // lookup table
var phrasingOnly = map[atom.Atom]bool{
	atom.P: true, atom.Span: true, atom.A: true, atom.Label: true, atom.Em: true, atom.Strong: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

// setSectionNumbers writes the formatted number of section into every id.
func (r *Renderer) setSectionNumbers(doc *portfolio.Document, section string, ids ...string) (err error) {
	number := FormatNumber(doc.SectionNumber(section))
	for _, id := range ids {
		err = r.page.SetText(id, number)
		if err != nil {
			return err
		}
	}
	return err
}

func (r *Renderer) renderNavigation(doc *portfolio.Document) (err error) {
	err = r.setFragment("nav-logo", "logo", doc.Profile.Logo)
	if err != nil {
		return err
	}

	err = r.setFragment("nav-links", "nav-links", doc.Navigation)
	return err
}

func (r *Renderer) renderHero(doc *portfolio.Document) (err error) {
	err = r.setFragment("hero-image-frame", "hero-image", doc.Profile)
	if err != nil {
		return err
	}

	err = r.setFragment("hero-badges", "hero-badges", doc.Badges)
	if err != nil {
		return err
	}

	err = r.page.SetText("hero-title-tag", doc.Profile.Title)
	if err != nil {
		return err
	}

	err = r.setFragment("hero-name", "hero-name", doc.Profile.Name)
	if err != nil {
		return err
	}

	err = r.setRich("hero-description", doc.Profile.Description)
	if err != nil {
		return err
	}

	err = r.setFragment("hero-highlights", "hero-highlights", doc.Highlights)
	if err != nil {
		return err
	}

	err = r.page.SetText("hero-bg-text", doc.Profile.BgText)
	return err
}

// renderMarquee duplicates the items so the strip can loop seamlessly.
func (r *Renderer) renderMarquee(doc *portfolio.Document) (err error) {
	if len(doc.Marquee) == 0 || !r.page.Has(MarqueeID) {
		return err
	}

	err = r.setFragment(MarqueeID, "marquee", doc.Marquee)
	return err
}

func (r *Renderer) renderAbout(doc *portfolio.Document) (err error) {
	err = r.setSectionNumbers(doc, SectionAbout, "about-section-number", "about-bg-number")
	if err != nil {
		return err
	}

	err = r.setFragment("about-title", "about-title", doc.About.SectionTitle)
	if err != nil {
		return err
	}

	err = r.setRich("about-intro", doc.About.Intro)
	if err != nil {
		return err
	}

	err = r.setRich("about-detail", doc.About.Detail)
	if err != nil {
		return err
	}

	err = r.setFragment("skills-showcase", "skills", doc.Skills)
	if err != nil {
		return err
	}

	err = r.setFragment("about-contact-cards", "about-contact-cards", doc.Contact)
	return err
}

func (r *Renderer) renderExperience(doc *portfolio.Document) (err error) {
	err = r.setSectionNumbers(doc, SectionExperience, "exp-section-number", "exp-bg-number")
	if err != nil {
		return err
	}

	err = r.setFragment("timeline-container", "timeline", doc.Experiences)
	return err
}

func (r *Renderer) renderProjects(doc *portfolio.Document) (err error) {
	err = r.setSectionNumbers(doc, SectionProjects, "proj-section-number", "proj-bg-number")
	if err != nil {
		return err
	}

	views := make([]projectView, len(doc.Projects))
	for i, project := range doc.Projects {
		var description template.HTML
		description, err = r.rich.Render(project.Description)
		if err != nil {
			err = errors.Wrapf(err, "rich text for project %d", i)
			return err
		}

		views[i] = projectView{
			Index:       i,
			Number:      FormatNumber(i + 1),
			Project:     project,
			Description: description,
		}
	}

	err = r.setFragment("projects-container", "projects", views)
	return err
}

func (r *Renderer) renderContact(doc *portfolio.Document) (err error) {
	err = r.setSectionNumbers(doc, SectionContact, "contact-section-number")
	if err != nil {
		return err
	}

	err = r.setFragment("contact-info-grid", "contact-grid", contactView{Contact: doc.Contact, QR: r.contactQR})
	if err != nil {
		return err
	}

	err = r.setFragment("contact-socials", "socials", doc.Socials)
	return err
}

func (r *Renderer) renderFooter(doc *portfolio.Document) (err error) {
	err = r.setFragment("footer-logo", "logo", doc.Profile.Logo)
	if err != nil {
		return err
	}

	err = r.page.SetText("footer-copyright", doc.Footer.Copyright)
	if err != nil {
		return err
	}

	err = r.page.SetText("footer-credit", doc.Footer.Credit)
	return err
}
