// Package page assembles one visitor's live portfolio page.
package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/aboutme"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/dom"
	"github.com/Zachkp/portfolio/internal/gallery"
	"github.com/Zachkp/portfolio/internal/loader"
	"github.com/Zachkp/portfolio/internal/logging"
)

// PageAttr on the body carries the page id for the browser shim.
const PageAttr = "data-live-page"

// ErrContract is returned when the skeleton lacks an element the page needs.
var ErrContract = errors.New("page skeleton is missing required elements")

// Selectors the page needs in its skeleton.
var requiredSelectors = []string{
	"#aboutMe",
	"#projectList",
	"#projectSpotlight",
	"#spotlightTitles",
	".arrow-left",
	".arrow-right",
	"#formSection",
	"#contactEmail",
	"#contactMessage",
	"#emailError",
	"#messageError",
	"#charactersLeft",
	"body",
}

// Deps are shared by every page.
type Deps struct {
	Fetcher        loader.Fetcher
	AboutMeSource  string
	ProjectsSource string
	MessageIllegal *regexp.Regexp
	Logger         *zap.Logger
}

// Event is a browser event addressed to an element key. Seq numbers the
// events a browser sends for one page; zero means unnumbered.
type Event struct {
	Key    string            `json:"key" binding:"required"`
	Type   string            `json:"type" binding:"required"`
	Seq    uint64            `json:"seq"`
	Width  int               `json:"width"`
	Values map[string]string `json:"values"`
}

// Page is a live document with its components attached.
type Page struct {
	ID string

	mu       sync.Mutex
	doc      *dom.Document
	about    *aboutme.Renderer
	gallery  *gallery.Gallery
	form     *contact.Form
	lastSeen time.Time
	lastSeq  uint64
}

// New parses skeleton, attaches the components and loads the page data.
// The two data sections load concurrently; a section whose data is
// unavailable is left empty.
func New(ctx context.Context, skeleton []byte, deps Deps) (*Page, error) {
	ctx, span := otel.Tracer("github.com/Zachkp/portfolio/internal/page").Start(ctx, "page.New")
	defer span.End()

	doc, err := dom.Parse(bytes.NewReader(skeleton))
	if err != nil {
		return nil, err
	}
	if err := CheckContract(doc); err != nil {
		return nil, err
	}

	logger := logging.OrNop(deps.Logger)
	p := &Page{
		ID:  uuid.NewString(),
		doc: doc,
	}
	logger = logger.With(zap.String("page", p.ID))
	doc.Body().SetAttr(PageAttr, p.ID)

	p.about = aboutme.NewRenderer(doc, doc.GetElementByID("aboutMe"), deps.Fetcher, deps.AboutMeSource, logger)
	p.gallery = gallery.New(doc, gallery.Elements{
		List:       doc.GetElementByID("projectList"),
		Spotlight:  doc.GetElementByID("projectSpotlight"),
		Titles:     doc.GetElementByID("spotlightTitles"),
		ArrowLeft:  doc.QuerySelector(".arrow-left"),
		ArrowRight: doc.QuerySelector(".arrow-right"),
	}, doc.Window().MatchMedia(gallery.DesktopBreakpoint), deps.Fetcher, deps.ProjectsSource, logger)
	p.form = contact.Attach(contact.Elements{
		Form:         doc.GetElementByID("formSection"),
		Email:        doc.GetElementByID("contactEmail"),
		Message:      doc.GetElementByID("contactMessage"),
		EmailError:   doc.GetElementByID("emailError"),
		MessageError: doc.GetElementByID("messageError"),
		Counter:      doc.GetElementByID("charactersLeft"),
	}, contact.NewValidator(deps.MessageIllegal), doc.Window(), logger)

	var wg conc.WaitGroup
	wg.Go(func() { p.about.Load(ctx) })
	wg.Go(func() { p.gallery.Load(ctx) })
	wg.Wait()

	// the first render carries everything done so far
	doc.Flush()
	p.lastSeen = time.Now()
	return p, nil
}

// CheckContract reports every required element the document lacks.
func CheckContract(doc *dom.Document) error {
	var missing []string
	for _, sel := range requiredSelectors {
		if doc.QuerySelector(sel) == nil {
			missing = append(missing, sel)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrContract, strings.Join(missing, ", "))
	}
	return nil
}

// Render writes the full page.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Render(w)
}

// HandleEvent applies the browser's viewport width and control values,
// dispatches the event and returns the resulting changes. Events on a page
// are handled one at a time. A numbered event older than one already handled
// is ignored, since it carries stale control values.
func (p *Page) HandleEvent(ev Event) (dom.Update, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ev.Seq != 0 {
		if ev.Seq <= p.lastSeq {
			return dom.Update{}, nil
		}
		p.lastSeq = ev.Seq
	}

	if ev.Width > 0 {
		p.doc.Window().Resize(ev.Width)
	}
	p.doc.SyncValues(ev.Values)
	if err := p.doc.Dispatch(ev.Key, ev.Type); err != nil {
		return dom.Update{}, err
	}
	return p.doc.Flush(), nil
}

// Document exposes the page document.
func (p *Page) Document() *dom.Document {
	return p.doc
}

// Gallery exposes the page's project gallery.
func (p *Page) Gallery() *gallery.Gallery {
	return p.gallery
}

func (p *Page) touch(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen = now
}

func (p *Page) idleSince(now time.Time) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return now.Sub(p.lastSeen)
}
