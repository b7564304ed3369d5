package portfolio

// Document represents the complete portfolio data document.
type Document struct {
	Profile     Profile      `json:"profile"`
	Navigation  []NavItem    `json:"navigation"`
	Badges      []Badge      `json:"badges"`
	Highlights  []Highlight  `json:"highlights"`
	Marquee     []string     `json:"marquee,omitempty"`
	About       About        `json:"about"`
	Skills      []Skill      `json:"skills"`
	Contact     Contact      `json:"contact"`
	Experiences []Experience `json:"experiences"`
	Projects    []Project    `json:"projects"`
	Socials     []Social     `json:"socials"`
	Footer      Footer       `json:"footer"`
}

// Profile represents the page owner.
type Profile struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Logo        string `json:"logo"`
	HeroImage   string `json:"heroImage"`
	Description string `json:"description"` // rich
	BgText      string `json:"bgText"`
}

// NavItem is a menu entry. ID matches a section anchor.
type NavItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Badge is a floating hero badge.
type Badge struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// Highlight is a hero highlight line.
type Highlight struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
}

// About represents the about section.
type About struct {
	SectionTitle SectionTitle `json:"sectionTitle"`
	Intro        string       `json:"intro"`  // rich
	Detail       string       `json:"detail"` // rich
}

// SectionTitle is a stroked heading followed by filled words.
type SectionTitle struct {
	Stroke string   `json:"stroke"`
	Fill   []string `json:"fill"`
}

// Skill is a single skill pill.
type Skill struct {
	Icon string `json:"icon"`
	Name string `json:"name"`
}

// Contact holds contact details. Rendered in both the about and contact sections.
type Contact struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

// Experience represents one timeline entry.
type Experience struct {
	StartYear    string   `json:"startYear"`
	EndYear      string   `json:"endYear"`
	Company      string   `json:"company"`
	Role         string   `json:"role"`
	Type         string   `json:"type"`
	Achievements []string `json:"achievements"`
	Tags         []string `json:"tags"`
}

// Orientation controls project image framing.
type Orientation string

const (
	// OrientationDefault is the landscape framing. An empty value means the same.
	OrientationDefault Orientation = "default"
	// OrientationPortrait frames images vertically.
	OrientationPortrait Orientation = "portrait"
)

// Project represents a showcased project.
type Project struct {
	Title       string      `json:"title"`
	Description string      `json:"description"` // rich
	Category    string      `json:"category"`
	Year        string      `json:"year,omitempty"`
	Duration    string      `json:"duration,omitempty"`
	GitHub      string      `json:"github,omitempty"`
	Tech        []string    `json:"tech"`
	Images      []string    `json:"images"`
	Featured    bool        `json:"featured"`
	Orientation Orientation `json:"orientation,omitempty"`
}

// IsPortrait reports whether the project uses portrait framing.
func (p Project) IsPortrait() (portrait bool) {
	portrait = p.Orientation == OrientationPortrait
	return portrait
}

// HasSlider reports whether the project needs carousel controls.
func (p Project) HasSlider() (slider bool) {
	slider = len(p.Images) > 1
	return slider
}

// Social is an external profile link.
type Social struct {
	URL   string `json:"url"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// Footer holds footer text.
type Footer struct {
	Copyright string `json:"copyright"`
	Credit    string `json:"credit"`
}

// SectionNumber returns the 1-based position of id in the navigation, or 0 when absent.
func (d *Document) SectionNumber(id string) (number int) {
	for i, item := range d.Navigation {
		if item.ID == id {
			number = i + 1
			return number
		}
	}
	return number
}
