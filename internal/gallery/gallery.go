// Package gallery filters the project gallery and computes the card
// transitions for filtering and the staggered entrance on page load.
package gallery

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	folioerrors "github.com/conneroisu/folio/internal/errors"
)

// FilterAll shows every card.
const FilterAll = "all"

// Timings of the card transitions.
const (
	RevealDelay     = 10 * time.Millisecond
	HideDelay       = 300 * time.Millisecond
	EntranceDelay   = 100 * time.Millisecond
	EntranceStagger = 100 * time.Millisecond
)

// Project is one gallery card.
type Project struct {
	Title       string   `yaml:"title" json:"title"`
	Category    string   `yaml:"category" json:"category"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags,omitempty"`
	URL         string   `yaml:"url" json:"url,omitempty"`
}

// Style is the inline style a card ends up with.
type Style struct {
	Display   string
	Opacity   string
	Transform string
}

// String renders s as an inline style attribute value. Empty properties
// are left out.
func (s Style) String() string {
	var parts []string
	if s.Display != "" {
		parts = append(parts, "display: "+s.Display)
	}
	if s.Opacity != "" {
		parts = append(parts, "opacity: "+s.Opacity)
	}
	if s.Transform != "" {
		parts = append(parts, "transform: "+s.Transform)
	}
	return strings.Join(parts, "; ")
}

// Merge overlays the non-empty properties of o on s.
func (s Style) Merge(o Style) Style {
	if o.Display != "" {
		s.Display = o.Display
	}
	if o.Opacity != "" {
		s.Opacity = o.Opacity
	}
	if o.Transform != "" {
		s.Transform = o.Transform
	}
	return s
}

// Transition is the two-step change applied to one card. Immediate is set
// right away, Final after Delay. Empty properties are left unchanged.
type Transition struct {
	Visible   bool
	Immediate Style
	Final     Style
	Delay     time.Duration
}

// Resting returns the style once both steps have applied.
func (t Transition) Resting() Style {
	return t.Immediate.Merge(t.Final)
}

// Matches reports whether p is visible under filter.
func Matches(p Project, filter string) bool {
	return filter == FilterAll || filter == "" || p.Category == filter
}

// Filter returns one transition per project in order.
func Filter(projects []Project, filter string) []Transition {
	out := make([]Transition, len(projects))
	for i, p := range projects {
		if Matches(p, filter) {
			out[i] = Transition{
				Visible:   true,
				Immediate: Style{Display: "block"},
				Final:     Style{Opacity: "1", Transform: "translateY(0)"},
				Delay:     RevealDelay,
			}
			continue
		}
		out[i] = Transition{
			Visible:   false,
			Immediate: Style{Opacity: "0", Transform: "translateY(20px)"},
			Final:     Style{Display: "none"},
			Delay:     HideDelay,
		}
	}
	return out
}

// Entrance describes the load animation of the card at index.
type Entrance struct {
	Initial         Style
	TransitionDelay time.Duration
	RevealAfter     time.Duration
}

// EntranceFor returns the staggered entrance of the card at index.
func EntranceFor(index int) Entrance {
	return Entrance{
		Initial:         Style{Opacity: "0", Transform: "translateY(30px)"},
		TransitionDelay: time.Duration(index) * EntranceStagger,
		RevealAfter:     EntranceDelay,
	}
}

// Categories returns distinct categories in first-seen order.
func Categories(projects []Project) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range projects {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Label turns a category slug into a button label, "web-apps" becomes
// "Web Apps".
func Label(category string) string {
	words := strings.FieldsFunc(category, func(r rune) bool { return r == '-' || r == '_' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}

type catalog struct {
	Projects []Project `yaml:"projects"`
}

// LoadCatalog reads a YAML file with a top-level projects list.
func LoadCatalog(path string) ([]Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, folioerrors.WrapIO(err, folioerrors.ErrCodeFileNotFound, "read project catalog").
			WithContext("path", path)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes catalog YAML.
func ParseCatalog(data []byte) ([]Project, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, folioerrors.NewValidationError(folioerrors.ErrCodeValidationFailed, "project catalog is not valid YAML").
			WithContext("cause", err.Error())
	}
	for i, p := range c.Projects {
		if strings.TrimSpace(p.Title) == "" {
			return nil, folioerrors.NewValidationError(folioerrors.ErrCodeValidationFailed,
				fmt.Sprintf("project %d has no title", i))
		}
	}
	return c.Projects, nil
}

// DefaultProjects is the catalog used when no file is configured.
func DefaultProjects() []Project {
	return []Project{
		{Title: "Folio", Category: "web", Description: "This portfolio, rendered by a Go server.", Tags: []string{"go", "templ"}},
		{Title: "Packet Relay", Category: "backend", Description: "A small store-and-forward relay.", Tags: []string{"go", "websocket"}},
		{Title: "Sketchbook", Category: "design", Description: "Illustrations and UI studies."},
		{Title: "Trail Log", Category: "mobile", Description: "Offline-first hiking journal.", Tags: []string{"pwa"}},
	}
}
