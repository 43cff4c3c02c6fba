// Package gallery renders the project card list and the spotlight panel.
package gallery

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/dom"
	"github.com/Zachkp/portfolio/internal/loader"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/models"
)

// Fallbacks and layout constants.
const (
	PlaceholderCard      = "./images/card_placeholder_bg.webp"
	PlaceholderSpotlight = "./images/spotlight_placeholder_bg.webp"

	DefaultCardTitle      = "Untitled Project"
	DefaultShortDesc      = "No short description"
	DefaultSpotlightTitle = "Unnamed Project"
	DefaultLongDesc       = "No description available."
	DefaultLink           = "#"
	LinkText              = "Click here to see more..."

	// ScrollStep is how far one arrow click scrolls the card list.
	ScrollStep = 200
	// DesktopBreakpoint is the viewport width at which the card list
	// scrolls vertically.
	DesktopBreakpoint = 1024
)

// Elements are the page elements the gallery renders into.
type Elements struct {
	List       *dom.Element
	Spotlight  *dom.Element
	Titles     *dom.Element
	ArrowLeft  *dom.Element
	ArrowRight *dom.Element
}

// Viewport answers whether the desktop layout is active.
type Viewport interface {
	Matches() bool
}

// State is the ordered project list and the spotlighted index.
type State struct {
	mu       sync.Mutex
	projects []models.Project
	current  int
}

// NewState wraps projects. The first project is current.
func NewState(projects []models.Project) *State {
	return &State{projects: projects}
}

func (s *State) reset(projects []models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = projects
	s.current = 0
}

// Len returns the number of projects.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.projects)
}

// Current returns the spotlighted index; false when there are no projects.
func (s *State) Current() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, len(s.projects) > 0
}

// Select makes index current and returns its project. Out-of-range indexes
// leave the state untouched.
func (s *State) Select(index int) (models.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.projects) {
		return models.Project{}, false
	}
	s.current = index
	return s.projects[index], true
}

// Gallery owns the gallery state and its elements.
type Gallery struct {
	doc     *dom.Document
	el      Elements
	desktop Viewport
	fetcher loader.Fetcher
	source  string
	logger  *zap.Logger
	state   *State
}

// New creates a Gallery. desktop is consulted on every arrow click.
func New(doc *dom.Document, el Elements, desktop Viewport, fetcher loader.Fetcher, source string, logger *zap.Logger) *Gallery {
	return &Gallery{
		doc:     doc,
		el:      el,
		desktop: desktop,
		fetcher: fetcher,
		source:  source,
		logger:  logging.OrNop(logger),
		state:   NewState(nil),
	}
}

// State returns the gallery state.
func (g *Gallery) State() *State {
	return g.state
}

// Load fetches the project list, renders it and spotlights the first
// project, then wires the scroll arrows. The arrows are wired even when no
// projects were loaded.
func (g *Gallery) Load(ctx context.Context) {
	defer g.setupScroll()

	projects, ok := loader.Fetch[[]models.Project](ctx, g.fetcher, g.source)
	if !ok || len(*projects) == 0 {
		g.logger.Warn("Projects section skipped", zap.String("source", g.source))
		return
	}
	g.Render(*projects)
}

// Render replaces the state with projects, appends a card per project and
// spotlights the first one.
func (g *Gallery) Render(projects []models.Project) {
	g.state.reset(projects)

	for i, proj := range projects {
		card := g.doc.CreateElement("div")
		card.SetClass("projectCard")
		card.SetAttr("id", proj.ProjectID)
		card.SetStyle("background-image", cssURL(orDefault(proj.CardImage, PlaceholderCard)))

		title := g.doc.CreateElement("h4")
		title.SetText(orDefault(proj.ProjectName, DefaultCardTitle))
		short := g.doc.CreateElement("p")
		short.SetText(orDefault(proj.ShortDescription, DefaultShortDesc))
		card.AppendChild(title)
		card.AppendChild(short)

		card.AddEventListener("click", func(*dom.Event) { g.Spotlight(i) })
		g.el.List.AppendChild(card)
	}

	g.Spotlight(0)
}

// Spotlight shows project index in the spotlight panel. It reports false and
// changes nothing when index is out of range.
func (g *Gallery) Spotlight(index int) bool {
	proj, ok := g.state.Select(index)
	if !ok {
		g.logger.Debug("Spotlight index out of range", zap.Int("index", index), zap.Int("projects", g.state.Len()))
		return false
	}

	g.el.Spotlight.SetStyle("background-image", cssURL(orDefault(proj.SpotlightImage, PlaceholderSpotlight)))
	g.el.Titles.Clear()

	name := g.doc.CreateElement("h3")
	name.SetText(orDefault(proj.ProjectName, DefaultSpotlightTitle))
	desc := g.doc.CreateElement("p")
	desc.SetText(orDefault(proj.LongDescription, DefaultLongDesc))
	link := g.doc.CreateElement("a")
	link.SetAttr("href", orDefault(proj.URL, DefaultLink))
	link.SetText(LinkText)
	link.SetAttr("target", "_blank")
	link.SetAttr("rel", "noopener noreferrer")

	g.el.Titles.AppendChild(name)
	g.el.Titles.AppendChild(desc)
	g.el.Titles.AppendChild(link)
	return true
}

// Scroll moves the card list one step in dir (-1 or 1) along the axis of the
// current layout.
func (g *Gallery) Scroll(dir int) {
	if g.desktop.Matches() {
		g.el.List.ScrollBy(0, dir*ScrollStep)
		return
	}
	g.el.List.ScrollBy(dir*ScrollStep, 0)
}

func (g *Gallery) setupScroll() {
	g.el.ArrowLeft.AddEventListener("click", func(*dom.Event) { g.Scroll(-1) })
	g.el.ArrowRight.AddEventListener("click", func(*dom.Event) { g.Scroll(1) })
}

func cssURL(u string) string {
	return "url(" + u + ")"
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
