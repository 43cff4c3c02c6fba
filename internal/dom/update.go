package dom

// Update is everything a browser needs to catch up with the document.
type Update struct {
	Patches []Patch  `json:"patches"`
	Scrolls []Scroll `json:"scrolls"`
	Alerts  []string `json:"alerts"`
}

// Empty reports whether the update carries nothing.
func (u Update) Empty() bool {
	return len(u.Patches) == 0 && len(u.Scrolls) == 0 && len(u.Alerts) == 0
}

// Patch replaces the element carrying Key with HTML.
type Patch struct {
	Key  string `json:"key"`
	HTML string `json:"html"`
}

// Scroll scrolls the element carrying Key by (Left, Top).
type Scroll struct {
	Key  string `json:"key"`
	Left int    `json:"left"`
	Top  int    `json:"top"`
}
