package services

import (
	"strings"
	"time"

	"github.com/ginvite/ginvite-api/internal/domain"
	"github.com/ginvite/ginvite-api/internal/platform/textutil"
)

const (
	// CountdownFallback is how far ahead the countdown points when no event is scheduled.
	CountdownFallback = 30 * 24 * time.Hour
	// DefaultCalendarURL is the calendar template endpoint.
	DefaultCalendarURL = "https://calendar.google.com/calendar/render"

	calendarDateLayout = "20060102T150405Z"
)

// Countdown is the instant guests count down to.
type Countdown struct {
	Target time.Time
	// FromEvent is false when Target is the synthetic fallback.
	FromEvent bool
}

// DeriveCountdown targets the first sorted event when it has both a date and a time
// forming a valid instant, otherwise now plus CountdownFallback.
func DeriveCountdown(events []domain.EventEntry, loc *time.Location, now time.Time) Countdown {
	if start, ok := firstEventStart(events, loc); ok {
		return Countdown{Target: start, FromEvent: true}
	}
	return Countdown{Target: now.Add(CountdownFallback)}
}

func firstEventStart(events []domain.EventEntry, loc *time.Location) (time.Time, bool) {
	if len(events) == 0 {
		return time.Time{}, false
	}
	first := events[0]
	if first.Date == "" || first.Time == "" {
		return time.Time{}, false
	}
	return EventInstant(first, loc)
}

// CalendarVariant selects how a calendar link is phrased and how long the event lasts.
type CalendarVariant int

const (
	// CalendarThemePage is used on themed guest pages: two hours, all events summarised.
	CalendarThemePage CalendarVariant = iota
	// CalendarLegacyEvent is used by the single-event page: one hour, location only.
	CalendarLegacyEvent
)

// Duration returns the event length assumed by the variant.
func (v CalendarVariant) Duration() time.Duration {
	if v == CalendarLegacyEvent {
		return time.Hour
	}
	return 2 * time.Hour
}

// CalendarRequest is the input of CalendarURL. Events must already be sorted.
type CalendarRequest struct {
	Variant     CalendarVariant
	Events      []domain.EventEntry
	Category    domain.Category
	DisplayName string
	BaseURL     string
	Location    *time.Location
}

// CalendarURL builds a calendar template link for the first event, or returns "" when
// the first event has no valid instant.
func CalendarURL(req CalendarRequest) string {
	start, ok := firstEventStart(req.Events, req.Location)
	if !ok {
		return ""
	}
	end := start.Add(req.Variant.Duration())
	first := req.Events[0]

	var text, details string
	switch req.Variant {
	case CalendarLegacyEvent:
		text = first.Title
		details = first.Location
	default:
		text = eventWording(req.Category) + " " + req.DisplayName
		details = calendarSummary(req)
	}

	base := strings.TrimSpace(req.BaseURL)
	if base == "" {
		base = DefaultCalendarURL
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString(sep)
	b.WriteString("action=TEMPLATE")
	b.WriteString("&text=")
	b.WriteString(textutil.EncodeURIComponent(strings.TrimSpace(text)))
	b.WriteString("&dates=")
	b.WriteString(start.UTC().Format(calendarDateLayout))
	b.WriteString("/")
	b.WriteString(end.UTC().Format(calendarDateLayout))
	b.WriteString("&details=")
	b.WriteString(textutil.EncodeURIComponent(details))
	b.WriteString("&location=")
	b.WriteString(textutil.EncodeURIComponent(first.Location))
	return b.String()
}

func eventWording(category domain.Category) string {
	if category.IsCircumcision() {
		return "Khitanan"
	}
	return "Pernikahan"
}

func calendarSummary(req CalendarRequest) string {
	lines := make([]string, 0, len(req.Events)+1)
	lines = append(lines, "Undangan "+eventWording(req.Category)+" "+req.DisplayName)
	for _, e := range req.Events {
		line := e.Title + ": " + strings.TrimSpace(e.Date+" "+e.Time)
		if e.Location != "" {
			line += " - " + e.Location
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
