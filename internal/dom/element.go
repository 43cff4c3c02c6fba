package dom

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Listener handles an event dispatched to an element.
type Listener func(ev *Event)

// Event is a user event delivered by Dispatch.
type Event struct {
	Type   string
	Target *Element
}

// Element is a handle on a node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Key is the element's stable address in rendered HTML.
func (e *Element) Key() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.doc.keys[e.node]
}

// TagName returns the lower-case tag name.
func (e *Element) TagName() string {
	return e.node.Data
}

// ID returns the id attribute.
func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

// Attr returns an attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return selection(e.node).Attr(name)
}

// SetAttr sets an attribute.
func (e *Element) SetAttr(name, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	setAttr(e.node, name, value)
	e.doc.markDirty(e.node)
}

// Class returns the class attribute.
func (e *Element) Class() string {
	v, _ := e.Attr("class")
	return v
}

// SetClass replaces the class attribute.
func (e *Element) SetClass(class string) {
	e.SetAttr("class", class)
}

// Style returns one property of the inline style.
func (e *Element) Style(property string) string {
	style, _ := e.Attr("style")
	for _, decl := range parseStyle(style) {
		if decl[0] == property {
			return decl[1]
		}
	}
	return ""
}

// SetStyle sets one property of the inline style, keeping the others.
func (e *Element) SetStyle(property, value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	style, _ := getAttr(e.node, "style")
	decls := parseStyle(style)
	i := slices.IndexFunc(decls, func(d [2]string) bool { return d[0] == property })
	if i >= 0 {
		decls[i][1] = value
	} else {
		decls = append(decls, [2]string{property, value})
	}
	setAttr(e.node, "style", formatStyle(decls))
	e.doc.markDirty(e.node)
}

// Text returns the combined text of the element and its descendants.
func (e *Element) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return selection(e.node).Text()
}

// SetText replaces the element's children with a single text node.
func (e *Element) SetText(text string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.doc.removeChildren(e.node)
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	e.doc.markDirty(e.node)
}

// AppendChild moves child to the end of the element's children.
func (e *Element) AppendChild(child *Element) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if p := child.node.Parent; p != nil {
		p.RemoveChild(child.node)
		e.doc.markDirty(p)
	}
	e.node.AppendChild(child.node)
	e.doc.markDirty(e.node)
}

// Children returns the element children in document order.
func (e *Element) Children() []*Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.element(c))
		}
	}
	return out
}

// Clear removes all children. Handles to removed elements stop being
// addressable by key.
func (e *Element) Clear() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.doc.removeChildren(e.node)
	e.doc.markDirty(e.node)
}

// Value returns the current value of an input or textarea.
func (e *Element) Value() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.node.Data == "textarea" {
		return selection(e.node).Text()
	}
	v, _ := getAttr(e.node, "value")
	return v
}

// SetValue sets the value of an input or textarea.
func (e *Element) SetValue(value string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	setValue(e.node, value)
	e.doc.markDirty(e.node)
}

// AddEventListener registers fn for events of the given type.
func (e *Element) AddEventListener(eventType string, fn Listener) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	byType := e.doc.listeners[e.node]
	if byType == nil {
		byType = make(map[string][]Listener)
		e.doc.listeners[e.node] = byType
	}
	byType[eventType] = append(byType[eventType], fn)

	on, _ := getAttr(e.node, OnAttr)
	types := strings.Fields(on)
	if !slices.Contains(types, eventType) {
		setAttr(e.node, OnAttr, strings.Join(append(types, eventType), " "))
		e.doc.markDirty(e.node)
	}
}

// ScrollBy scrolls the element by (left, top) and queues the same scroll for
// the browser.
func (e *Element) ScrollBy(left, top int) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	off := e.doc.offsets[e.node]
	e.doc.offsets[e.node] = [2]int{off[0] + left, off[1] + top}
	e.doc.scrolls = append(e.doc.scrolls, Scroll{Key: e.doc.keys[e.node], Left: left, Top: top})
}

// ScrollOffset returns the accumulated scroll position.
func (e *Element) ScrollOffset() (left, top int) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	off := e.doc.offsets[e.node]
	return off[0], off[1]
}

func (d *Document) removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		d.forget(c)
	}
}

func setValue(n *html.Node, value string) {
	if n.Data != "textarea" {
		setAttr(n, "value", value)
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	if value != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
	}
}

func getAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func parseStyle(style string) [][2]string {
	var decls [][2]string
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		decls = append(decls, [2]string{prop, strings.TrimSpace(val)})
	}
	return decls
}

func formatStyle(decls [][2]string) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d[0] + ": " + d[1]
	}
	return strings.Join(parts, "; ")
}
