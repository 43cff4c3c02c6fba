package dom

// Window is the viewport a document is displayed in. Its width follows the
// browser and is updated before each event is dispatched.
type Window struct {
	doc   *Document
	width int
}

// Width returns the current viewport width.
func (w *Window) Width() int {
	w.doc.mu.Lock()
	defer w.doc.mu.Unlock()
	return w.width
}

// Resize records a new viewport width.
func (w *Window) Resize(width int) {
	w.doc.mu.Lock()
	defer w.doc.mu.Unlock()
	w.width = width
}

// MatchMedia returns a (min-width: minWidth) query.
func (w *Window) MatchMedia(minWidth int) *MediaQuery {
	return &MediaQuery{window: w, minWidth: minWidth}
}

// Alert queues a message for the browser to show.
func (w *Window) Alert(message string) {
	w.doc.mu.Lock()
	defer w.doc.mu.Unlock()
	w.doc.alerts = append(w.doc.alerts, message)
}

// MediaQuery is a live min-width query.
type MediaQuery struct {
	window   *Window
	minWidth int
}

// Matches evaluates the query against the current width.
func (q *MediaQuery) Matches() bool {
	return q.window.Width() >= q.minWidth
}
