// Package dom is a server-side document model for live pages.
//
// A Document is parsed from the page skeleton and mutated through Element
// handles the way browser scripts mutate a DOM. Every element carries a
// stable key (the data-live attribute) so a browser copy of the page can
// address it. Changes are collected until Flush turns them into patches.
package dom

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// KeyAttr holds an element's key in rendered HTML.
	KeyAttr = "data-live"
	// OnAttr lists the event types an element has listeners for.
	OnAttr = "data-live-on"
)

// ErrUnknownTarget is returned by Dispatch for a key no element carries.
var ErrUnknownTarget = errors.New("dom: unknown event target")

// Document is a parsed HTML page. It is safe for concurrent use.
type Document struct {
	mu sync.Mutex

	doc  *goquery.Document
	root *html.Node

	keys    map[*html.Node]string
	byKey   map[string]*html.Node
	nextKey int

	listeners map[*html.Node]map[string][]Listener
	offsets   map[*html.Node][2]int

	dirty    []*html.Node
	dirtySet map[*html.Node]bool
	scrolls  []Scroll
	alerts   []string

	window *Window
}

// Parse reads an HTML page into a Document.
func Parse(r io.Reader) (*Document, error) {
	gq, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	d := &Document{
		doc:       gq,
		root:      gq.Nodes[0],
		keys:      make(map[*html.Node]string),
		byKey:     make(map[string]*html.Node),
		listeners: make(map[*html.Node]map[string][]Listener),
		offsets:   make(map[*html.Node][2]int),
		dirtySet:  make(map[*html.Node]bool),
	}
	d.window = &Window{doc: d}
	walk(d.root, func(n *html.Node) {
		if n.Type == html.ElementNode {
			d.assignKey(n)
		}
	})
	return d, nil
}

// Window returns the viewport the document is shown in.
func (d *Document) Window() *Window {
	return d.window
}

// GetElementByID returns the first element with the given id, or nil.
func (d *Document) GetElementByID(id string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	match := d.doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("id")
		return v == id
	}).First()
	if match.Length() == 0 {
		return nil
	}
	return d.element(match.Get(0))
}

// QuerySelector returns the first element matching a CSS selector, or nil.
func (d *Document) QuerySelector(selector string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	match := d.doc.Find(selector).First()
	if match.Length() == 0 {
		return nil
	}
	return d.element(match.Get(0))
}

// Body returns the body element.
func (d *Document) Body() *Element {
	return d.QuerySelector("body")
}

// CreateElement returns a detached element with the given tag name.
func (d *Document) CreateElement(tag string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	d.assignKey(n)
	return d.element(n)
}

// Lookup returns the element carrying key, or nil.
func (d *Document) Lookup(key string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.element(d.byKey[key])
}

// Dispatch runs the listeners registered for eventType on the element
// carrying key. Listeners run without the document lock held, so they may
// mutate the document.
func (d *Document) Dispatch(key, eventType string) error {
	d.mu.Lock()
	n, ok := d.byKey[key]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownTarget, key)
	}
	ls := append([]Listener(nil), d.listeners[n][eventType]...)
	d.mu.Unlock()

	ev := &Event{Type: eventType, Target: &Element{doc: d, node: n}}
	for _, fn := range ls {
		fn(ev)
	}
	return nil
}

// SyncValues copies control values reported by the browser into the
// document. Synced values are not reported back as changes.
func (d *Document) SyncValues(values map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, v := range values {
		if n, ok := d.byKey[key]; ok {
			setValue(n, v)
		}
	}
}

// Flush returns and clears the changes made since the previous Flush.
// Only the outermost changed element of each attached subtree is patched.
func (d *Document) Flush() Update {
	d.mu.Lock()
	defer d.mu.Unlock()

	var u Update
	for _, n := range d.dirty {
		if !d.attached(n) || d.hasDirtyAncestor(n) {
			continue
		}
		markup, err := goquery.OuterHtml(selection(n))
		if err != nil {
			continue
		}
		u.Patches = append(u.Patches, Patch{Key: d.keys[n], HTML: markup})
	}
	u.Scrolls = d.scrolls
	u.Alerts = d.alerts

	d.dirty = nil
	d.dirtySet = make(map[*html.Node]bool)
	d.scrolls = nil
	d.alerts = nil
	return u
}

// Render writes the whole document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

func (d *Document) element(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

func (d *Document) assignKey(n *html.Node) {
	d.nextKey++
	key := "n" + strconv.Itoa(d.nextKey)
	d.keys[n] = key
	d.byKey[key] = n
	setAttr(n, KeyAttr, key)
}

// forget drops bookkeeping for a subtree removed from the document.
func (d *Document) forget(n *html.Node) {
	walk(n, func(c *html.Node) {
		if key, ok := d.keys[c]; ok {
			delete(d.byKey, key)
			delete(d.keys, c)
		}
		delete(d.listeners, c)
		delete(d.offsets, c)
	})
}

func (d *Document) markDirty(n *html.Node) {
	if d.dirtySet[n] {
		return
	}
	d.dirtySet[n] = true
	d.dirty = append(d.dirty, n)
}

func (d *Document) attached(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == d.root {
			return true
		}
	}
	return false
}

func (d *Document) hasDirtyAncestor(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if d.dirtySet[p] {
			return true
		}
	}
	return false
}

func selection(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}
