package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ginvite/ginvite-api/internal/domain"
	"github.com/ginvite/ginvite-api/internal/platform/observability"
	"github.com/ginvite/ginvite-api/internal/platform/remote"
	"github.com/ginvite/ginvite-api/internal/themes"
)

var tracer = otel.Tracer("github.com/ginvite/ginvite-api/internal/services")

var (
	// ErrInvitationNotFound indicates the content service has no record for the slug.
	ErrInvitationNotFound = errors.New("invitation: not found")
	// ErrInvitationInvalid indicates the record could not be decoded.
	ErrInvitationInvalid = errors.New("invitation: invalid record")
	// ErrInvitationUnavailable indicates the content service could not be reached.
	ErrInvitationUnavailable = errors.New("invitation: source unavailable")
)

// PageView is the fully prepared presentation of one invitation.
type PageView struct {
	Slug               string              `json:"slug"`
	ThemeID            string              `json:"theme_id"`
	Category           domain.Category     `json:"category"`
	DisplayName        string              `json:"display_name"`
	Events             []domain.EventEntry `json:"events"`
	Countdown          time.Time           `json:"countdown_target"`
	CountdownFromEvent bool                `json:"countdown_from_event"`
	CalendarURL        string              `json:"calendar_url,omitempty"`
	Gallery            []string            `json:"gallery"`
	Children           []domain.Person     `json:"children"`
	Quote              domain.Quote        `json:"quote"`
	Fonts              domain.Fonts        `json:"fonts"`
	Decorations        map[string]string   `json:"decorations,omitempty"`
	Metadata           Metadata            `json:"metadata"`
	DateAnomalies      []DateAnomaly       `json:"date_anomalies,omitempty"`
}

// LegacyEventView is the single-event summary of the legacy event page.
type LegacyEventView struct {
	Slug        string             `json:"slug"`
	DisplayName string             `json:"display_name"`
	Event       *domain.EventEntry `json:"event"`
	Countdown   time.Time          `json:"countdown_target"`
	CalendarURL string             `json:"calendar_url,omitempty"`
}

// InvitationServiceDeps wires dependencies for the invitation service.
type InvitationServiceDeps struct {
	Source  RecordSource
	Themes  ThemeResolver
	Site    SiteSettings
	Clock   func() time.Time
	Metrics *observability.Metrics
}

type invitationService struct {
	source  RecordSource
	themes  ThemeResolver
	site    SiteSettings
	clock   func() time.Time
	metrics *observability.Metrics
}

// NewInvitationService constructs the invitation service. Source may be nil for callers
// that only prepare records they already hold.
func NewInvitationService(deps InvitationServiceDeps) (InvitationService, error) {
	if deps.Themes == nil {
		return nil, errors.New("invitation service: theme resolver is required")
	}
	site := deps.Site
	if site.Location == nil {
		site.Location = siteLocationFallback
	}
	if strings.TrimSpace(site.CalendarURL) == "" {
		site.CalendarURL = DefaultCalendarURL
	}
	if strings.TrimSpace(site.PlaceholderImageURL) == "" {
		site.PlaceholderImageURL = DefaultPlaceholderImageURL
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &invitationService{
		source:  deps.Source,
		themes:  deps.Themes,
		site:    site,
		clock:   clock,
		metrics: deps.Metrics,
	}, nil
}

func (s *invitationService) Load(ctx context.Context, slug string) (PageView, error) {
	ctx, span := tracer.Start(ctx, "services.InvitationService.Load")
	defer span.End()
	span.SetAttributes(attribute.String("invitation.slug", observability.SanitizeValue(slug)))

	raw, err := s.fetch(ctx, slug)
	if err != nil {
		return PageView{}, err
	}
	return s.Prepare(ctx, raw, slug)
}

func (s *invitationService) Prepare(ctx context.Context, raw []byte, slug string) (PageView, error) {
	inv, err := domain.ParseRecord(raw)
	if err != nil {
		return PageView{}, fmt.Errorf("%w: %v", ErrInvitationInvalid, err)
	}
	return s.prepare(ctx, inv, slug), nil
}

func (s *invitationService) LegacyEvent(ctx context.Context, slug string) (LegacyEventView, error) {
	raw, err := s.fetch(ctx, slug)
	if err != nil {
		return LegacyEventView{}, err
	}
	inv, err := domain.ParseRecord(raw)
	if err != nil {
		return LegacyEventView{}, fmt.Errorf("%w: %v", ErrInvitationInvalid, err)
	}
	slug = s.slugFor(inv, slug)

	sorted, anomalies := SortEvents(AggregateEvents(inv.Phases), s.site.Location)
	reportAnomalies(ctx, s.metrics, slug, anomalies)

	view := LegacyEventView{
		Slug:        slug,
		DisplayName: ResolveDisplayName(inv, slug),
		Countdown:   DeriveCountdown(sorted, s.site.Location, s.clock()).Target,
		CalendarURL: CalendarURL(CalendarRequest{
			Variant:  CalendarLegacyEvent,
			Events:   sorted,
			Category: inv.Category,
			BaseURL:  s.site.CalendarURL,
			Location: s.site.Location,
		}),
	}
	if len(sorted) > 0 {
		first := sorted[0]
		view.Event = &first
	}
	return view, nil
}

func (s *invitationService) RenderPage(ctx context.Context, w io.Writer, view PageView) error {
	module := s.themes.Resolve(ctx, view.ThemeID)
	return module.Render(w, themes.PageData{
		ThemeID:     view.ThemeID,
		DisplayName: view.DisplayName,
		Category:    view.Category,
		Events:      view.Events,
		Countdown:   view.Countdown,
		CalendarURL: view.CalendarURL,
		Gallery:     view.Gallery,
		Children:    view.Children,
		Quote:       view.Quote,
		Fonts:       view.Fonts,
		Decorations: view.Decorations,
		Meta:        view.Metadata.SEO(),
	})
}

func (s *invitationService) fetch(ctx context.Context, slug string) ([]byte, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: no record source configured", ErrInvitationUnavailable)
	}
	raw, err := s.source.GetInvitation(ctx, slug)
	switch {
	case err == nil:
		return raw, nil
	case errors.Is(err, remote.ErrNotFound), errors.Is(err, remote.ErrInvalidSlug):
		return nil, fmt.Errorf("%w: %s", ErrInvitationNotFound, slug)
	default:
		return nil, fmt.Errorf("%w: %w", ErrInvitationUnavailable, err)
	}
}

func (s *invitationService) slugFor(inv domain.Invitation, slug string) string {
	if trimmed := strings.TrimSpace(slug); trimmed != "" {
		return trimmed
	}
	return inv.Slug
}

// prepare runs the presentation pipeline. The body name and the metadata name are
// resolved separately from the same input and must match.
func (s *invitationService) prepare(ctx context.Context, inv domain.Invitation, slug string) PageView {
	slug = s.slugFor(inv, slug)
	loc := s.site.Location

	sorted, anomalies := SortEvents(AggregateEvents(inv.Phases), loc)
	reportAnomalies(ctx, s.metrics, slug, anomalies)

	name := ResolveDisplayName(inv, slug)
	countdown := DeriveCountdown(sorted, loc, s.clock())

	themeID := inv.ThemeID
	if themeID == "" {
		themeID = string(inv.Category)
	}

	return PageView{
		Slug:               slug,
		ThemeID:            themeID,
		Category:           inv.Category,
		DisplayName:        name,
		Events:             sorted,
		Countdown:          countdown.Target,
		CountdownFromEvent: countdown.FromEvent,
		CalendarURL: CalendarURL(CalendarRequest{
			Variant:     CalendarThemePage,
			Events:      sorted,
			Category:    inv.Category,
			DisplayName: name,
			BaseURL:     s.site.CalendarURL,
			Location:    loc,
		}),
		Gallery:     nonNil(inv.Gallery),
		Children:    nonNilPeople(inv.Children),
		Quote:       inv.Quote,
		Fonts:       inv.Fonts,
		Decorations: inv.Decorations,
		Metadata: BuildMetadata(MetadataInput{
			Invitation: inv,
			Slug:       slug,
			Events:     sorted,
			Site:       s.site,
		}),
		DateAnomalies: anomalies,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nonNilPeople(values []domain.Person) []domain.Person {
	if values == nil {
		return []domain.Person{}
	}
	return values
}
