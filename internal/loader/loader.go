// Package loader fetches the JSON documents the page sections render from.
//
// A fetch never returns an error. Failures are logged and reported as false
// so callers can skip the section that depended on the data.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/logging"
)

var errNoSource = errors.New("no source configured for relative reference")

// Fetcher is what page sections depend on.
type Fetcher interface {
	FetchJSON(ctx context.Context, ref string, target any) bool
}

// Loader resolves references against a base URL or a file system.
type Loader struct {
	client *http.Client
	base   *url.URL
	files  fs.FS
	logger *zap.Logger
	tracer trace.Tracer
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithBaseURL resolves relative references over HTTP against base.
func WithBaseURL(base *url.URL) Option {
	return func(l *Loader) { l.base = base }
}

// WithFS reads relative references from files when no base URL is set.
func WithFS(files fs.FS) Option {
	return func(l *Loader) { l.files = files }
}

// WithLogger sets the logger used for failure diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{client: http.DefaultClient}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.OrNop(l.logger)
	l.tracer = otel.Tracer("github.com/Zachkp/portfolio/internal/loader")
	return l
}

// FetchJSON decodes the document at ref into target and reports success.
// A JSON null leaves a pointer target nil, which callers treat as no data.
func (l *Loader) FetchJSON(ctx context.Context, ref string, target any) bool {
	ctx, span := l.tracer.Start(ctx, "loader.FetchJSON", trace.WithAttributes(attribute.String("ref", ref)))
	defer span.End()

	if err := l.fetch(ctx, ref, target); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.logger.Error("Error loading JSON", zap.String("ref", ref), zap.Error(err))
		return false
	}
	return true
}

func (l *Loader) fetch(ctx context.Context, ref string, target any) error {
	u, err := url.Parse(ref)
	if err != nil {
		return fmt.Errorf("parse reference: %w", err)
	}

	switch {
	case u.Scheme == "http" || u.Scheme == "https":
		return l.fetchHTTP(ctx, u, target)
	case u.Scheme != "":
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	case l.base != nil:
		return l.fetchHTTP(ctx, l.base.ResolveReference(u), target)
	case l.files != nil:
		return l.fetchFile(u.Path, target)
	default:
		return errNoSource
	}
}

func (l *Loader) fetchHTTP(ctx context.Context, u *url.URL, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("failed to fetch %s: %s", u, resp.Status)
	}
	return decode(resp.Body, target)
}

func (l *Loader) fetchFile(p string, target any) error {
	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	f, err := l.files.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	return decode(f, target)
}

func decode(r io.Reader, target any) error {
	if err := json.NewDecoder(r).Decode(target); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}
	return nil
}

// Fetch is FetchJSON for a pointer-typed result. It reports false for
// failures and for a JSON null document.
func Fetch[T any](ctx context.Context, f Fetcher, ref string) (*T, bool) {
	var v *T
	if !f.FetchJSON(ctx, ref, &v) || v == nil {
		return nil, false
	}
	return v, true
}
