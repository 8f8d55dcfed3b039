package services

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ginvite/ginvite-api/internal/domain"
	"github.com/ginvite/ginvite-api/internal/platform/richtext"
	"github.com/ginvite/ginvite-api/internal/platform/textutil"
	"github.com/ginvite/ginvite-api/internal/seo"
)

const (
	titlePrefix          = "Undangan Digital | "
	maxDescriptionRunes  = 160
	fallbackDescription  = "Kami mengundang Anda untuk hadir dan memberikan doa restu."
	defaultCategoryLabel = "Digital"
	siteName             = "Undangan Digital"
	siteLocale           = "id_ID"
)

// MetadataInput is what BuildMetadata needs. Events must already be sorted.
type MetadataInput struct {
	Invitation domain.Invitation
	Slug       string
	Events     []domain.EventEntry
	Site       SiteSettings
}

// Metadata is the link-preview and indexing data for one invitation page.
type Metadata struct {
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Canonical      string            `json:"canonical"`
	Image          domain.ShareImage `json:"image"`
	StructuredData map[string]any    `json:"structured_data"`
}

// BuildMetadata derives title, description, share image and schema.org Event data.
// It resolves the display name itself so that metadata never depends on the caller.
func BuildMetadata(in MetadataInput) Metadata {
	inv := in.Invitation
	name := ResolveDisplayName(inv, in.Slug)
	canonical := InvitationURL(in.Site.BaseURL, in.Slug)
	image := SelectShareImage(inv, name, in.Site.PlaceholderImageURL)
	description := BuildDescription(inv, name)

	return Metadata{
		Title:          titlePrefix + name,
		Description:    description,
		Canonical:      canonical,
		Image:          image,
		StructuredData: seo.Event(eventSchema(in, name, description, canonical, image)),
	}
}

// SEO maps the metadata onto head tags.
func (m Metadata) SEO() seo.Meta {
	image := seo.Image{URL: m.Image.URL, Width: m.Image.Width, Height: m.Image.Height, Alt: m.Image.Alt}
	return seo.Meta{
		Title:       m.Title,
		Description: m.Description,
		Canonical:   m.Canonical,
		Robots:      "index, follow",
		OG: seo.OpenGraph{
			Title:       m.Title,
			Description: m.Description,
			Image:       image,
			Type:        "website",
			URL:         m.Canonical,
			SiteName:    siteName,
			Locale:      siteLocale,
		},
		Twitter: seo.Twitter{
			Card:        "summary_large_image",
			Title:       m.Title,
			Description: m.Description,
			Image:       image,
		},
		JSONLD: seo.JSON(m.StructuredData),
	}
}

// BuildDescription returns the first 160 characters of the invitation text with markup
// removed, or a generated sentence naming the category and subject.
func BuildDescription(inv domain.Invitation, displayName string) string {
	source := textutil.FirstNonEmpty(inv.Description, inv.Quote.Text)
	if text := richtext.PlainText(source); text != "" {
		return strings.TrimSpace(textutil.TruncateRunes(text, maxDescriptionRunes))
	}
	return "Undangan " + CategoryLabel(inv) + " " + displayName + ". " + fallbackDescription
}

// CategoryLabel is the human label of the invitation category.
func CategoryLabel(inv domain.Invitation) string {
	switch inv.Category {
	case domain.CategoryCircumcision:
		return "Khitanan"
	case domain.CategoryWedding:
		return "Pernikahan"
	}
	if name := strings.TrimSpace(inv.CategoryName); name != "" {
		// Casers carry state, so one is built per call.
		return cases.Title(language.Indonesian).String(name)
	}
	return defaultCategoryLabel
}

// InvitationURL is the public guest page URL for slug.
func InvitationURL(baseURL, slug string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return base + "/"
	}
	return base + "/u/" + url.PathEscape(slug)
}

func eventSchema(in MetadataInput, name, description, canonical string, image domain.ShareImage) seo.EventSchema {
	schema := seo.EventSchema{
		Name:        "Undangan " + CategoryLabel(in.Invitation) + " " + name,
		Description: description,
		URL:         canonical,
		Image:       image.URL,
		Organizer:   strings.TrimSpace(in.Invitation.Owner.FirstName),
	}
	for _, e := range in.Events {
		start, ok := EventInstant(e, in.Site.Location)
		if !ok {
			continue
		}
		sub := seo.EventSchema{
			Name:      e.Title,
			StartDate: start.Format(time.RFC3339),
			Place:     seo.EventPlace{Name: e.Location, URL: e.MapsLink},
		}
		if schema.StartDate == "" {
			schema.StartDate = sub.StartDate
			schema.Place = sub.Place
		}
		schema.SubEvents = append(schema.SubEvents, sub)
	}
	return schema
}
