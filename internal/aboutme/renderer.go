// Package aboutme renders the About Me section.
package aboutme

import (
	"context"

	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/dom"
	"github.com/Zachkp/portfolio/internal/loader"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/models"
)

// Fallbacks for absent biography fields.
const (
	DefaultText     = "About me text not available."
	DefaultHeadshot = "./images/headshot.webp"
)

// Renderer fills the About Me container from a biography document.
type Renderer struct {
	doc       *dom.Document
	container *dom.Element
	fetcher   loader.Fetcher
	source    string
	logger    *zap.Logger
}

// NewRenderer creates a Renderer that appends into container.
func NewRenderer(doc *dom.Document, container *dom.Element, fetcher loader.Fetcher, source string, logger *zap.Logger) *Renderer {
	return &Renderer{
		doc:       doc,
		container: container,
		fetcher:   fetcher,
		source:    source,
		logger:    logging.OrNop(logger),
	}
}

// Load fetches the biography and renders it. Without data nothing is
// rendered. Each call appends another copy.
func (r *Renderer) Load(ctx context.Context) {
	bio, ok := loader.Fetch[models.Biography](ctx, r.fetcher, r.source)
	if !ok {
		r.logger.Warn("About Me section skipped", zap.String("source", r.source))
		return
	}
	r.Render(bio)
}

// Render appends the paragraph and headshot for bio.
func (r *Renderer) Render(bio *models.Biography) {
	paragraph := r.doc.CreateElement("p")
	paragraph.SetText(orDefault(bio.AboutMe, DefaultText))

	headshotDiv := r.doc.CreateElement("div")
	headshotDiv.SetClass("headshotContainer")
	img := r.doc.CreateElement("img")
	img.SetAttr("src", orDefault(bio.Headshot, DefaultHeadshot))
	img.SetAttr("alt", "Headshot")
	headshotDiv.AppendChild(img)

	r.container.AppendChild(paragraph)
	r.container.AppendChild(headshotDiv)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
