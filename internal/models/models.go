// Package models holds the records the page data files decode into.
package models

// Biography is the About Me document.
type Biography struct {
	AboutMe  string `json:"aboutMe"`
	Headshot string `json:"headshot,omitempty"`
}

// Project represents a portfolio project. List position, not ProjectID,
// addresses a project in the gallery.
type Project struct {
	ProjectID        string `json:"project_id"`
	ProjectName      string `json:"project_name"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`
	CardImage        string `json:"card_image,omitempty"`
	SpotlightImage   string `json:"spotlight_image,omitempty"`
	URL              string `json:"url,omitempty"`
}
