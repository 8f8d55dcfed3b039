package seo

import (
	"encoding/json"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// EventPlace names where a sub-event happens.
type EventPlace struct {
	Name string
	URL  string
}

// EventSchema carries the fields used to build a schema.org Event.
type EventSchema struct {
	Name        string
	Description string
	URL         string
	Image       string
	StartDate   string
	EndDate     string
	Place       EventPlace
	Organizer   string
	SubEvents   []EventSchema
}

// Event returns a schema.org Event payload. Empty fields are omitted.
func Event(e EventSchema) map[string]any {
	m := eventBody(e)
	m["@context"] = "https://schema.org"
	return m
}

func eventBody(e EventSchema) map[string]any {
	m := map[string]any{
		"@type":               "Event",
		"name":                e.Name,
		"eventStatus":         "https://schema.org/EventScheduled",
		"eventAttendanceMode": "https://schema.org/OfflineEventAttendanceMode",
	}
	if e.Description != "" {
		m["description"] = e.Description
	}
	if e.URL != "" {
		m["url"] = e.URL
	}
	if e.Image != "" {
		m["image"] = []string{e.Image}
	}
	if e.StartDate != "" {
		m["startDate"] = e.StartDate
	}
	if e.EndDate != "" {
		m["endDate"] = e.EndDate
	}
	if e.Place.Name != "" || e.Place.URL != "" {
		place := map[string]any{"@type": "Place"}
		if e.Place.Name != "" {
			place["name"] = e.Place.Name
			place["address"] = e.Place.Name
		}
		if e.Place.URL != "" {
			place["hasMap"] = e.Place.URL
		}
		m["location"] = place
	}
	if e.Organizer != "" {
		m["organizer"] = map[string]any{"@type": "Person", "name": e.Organizer}
	}
	if len(e.SubEvents) > 0 {
		subs := make([]map[string]any, 0, len(e.SubEvents))
		for _, sub := range e.SubEvents {
			subs = append(subs, eventBody(sub))
		}
		m["subEvent"] = subs
	}
	return m
}

// WebPage returns a minimal WebPage schema, used when an invitation has no dated events.
func WebPage(name, description, url, imageURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebPage",
		"name":     name,
	}
	if description != "" {
		m["description"] = description
	}
	if url != "" {
		m["url"] = url
	}
	if imageURL != "" {
		m["primaryImageOfPage"] = map[string]any{"@type": "ImageObject", "url": imageURL}
	}
	return m
}
