package domain

import (
	"strings"
	"time"
)

// Category classifies the kind of event an invitation announces.
type Category string

const (
	// CategoryWedding covers weddings and records without a category name.
	CategoryWedding Category = "wedding"
	// CategoryCircumcision covers khitanan (circumcision celebration) invitations.
	CategoryCircumcision Category = "circumcision"
	// CategoryOther covers every other named category (e.g. aqiqah, birthdays).
	CategoryOther Category = "other"
)

// CategoryFromName classifies a free-form category name such as "Khitanan" or "Pernikahan".
func CategoryFromName(name string) Category {
	lower := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(lower, "khitan"):
		return CategoryCircumcision
	case lower == "", strings.Contains(lower, "nikah"), strings.Contains(lower, "wedding"), strings.Contains(lower, "marriage"):
		return CategoryWedding
	default:
		return CategoryOther
	}
}

// IsCircumcision reports whether the category uses the single-subject circumcision rules.
func (c Category) IsCircumcision() bool { return c == CategoryCircumcision }

// Invitation is the fully defaulted model produced from a raw invitation record.
// Every field holds a usable zero value when the record omitted it.
type Invitation struct {
	Slug         string
	Status       string
	ThemeID      string
	Category     Category
	CategoryName string
	Phases       []EventPhase
	Children     []Person
	Gallery      []string
	Quote        Quote
	Description  string
	Fonts        Fonts
	Decorations  map[string]string
	Owner        Owner
	ViewCount    int64
	UpdatedAt    time.Time
}

// EventPhase is one named sub-event (e.g. "akad", "resepsi") exactly as the record supplied it.
type EventPhase struct {
	Key      string
	Title    string
	Date     string
	Time     string
	Location string
	MapsLink string
}

// EventEntry is a normalized sub-event ready for display and scheduling.
type EventEntry struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
	MapsLink string `json:"maps_link"`
}

// Person is a subject of the invitation (a child, bride or groom).
type Person struct {
	Name    string `json:"name"`
	Profile string `json:"profile"`
}

// Owner holds the account fields of the invitation author used as fallbacks.
type Owner struct {
	FirstName  string
	PictureURL string
}

// Quote is the optional verse or message shown on the invitation.
type Quote struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Fonts holds normalized font-family expressions for headings and body text.
type Fonts struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ShareImage is the image surfaced to link previews and search engines.
type ShareImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt"`
}
