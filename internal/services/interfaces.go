package services

import (
	"context"
	"io"
	"time"

	"github.com/ginvite/ginvite-api/internal/domain"
	"github.com/ginvite/ginvite-api/internal/themes"
)

// RecordSource supplies raw invitation records. The remote content client satisfies it.
type RecordSource interface {
	GetInvitation(ctx context.Context, slug string) ([]byte, error)
	ListInvitations(ctx context.Context) ([]domain.Invitation, error)
}

// ThemeResolver maps a category id to a renderable module, never failing.
type ThemeResolver interface {
	Resolve(ctx context.Context, id string) themes.Module
}

// DraftSubmitter forwards draft saves to the content service.
type DraftSubmitter interface {
	SubmitDraft(ctx context.Context, draft domain.Draft) error
}

// SitemapPublisher stores a rendered sitemap document.
type SitemapPublisher interface {
	PublishSitemap(ctx context.Context, data []byte) error
}

// SiteSettings carries the public-facing parameters shared by every presentation step.
type SiteSettings struct {
	BaseURL             string
	Location            *time.Location
	PlaceholderImageURL string
	CalendarURL         string
}

// InvitationService prepares guest-facing views of invitations.
type InvitationService interface {
	// Load fetches the record for slug and prepares it.
	Load(ctx context.Context, slug string) (PageView, error)
	// Prepare normalizes an already fetched raw record.
	Prepare(ctx context.Context, raw []byte, slug string) (PageView, error)
	// LegacyEvent returns the single-event summary used by the legacy event page.
	LegacyEvent(ctx context.Context, slug string) (LegacyEventView, error)
	// RenderPage writes the guest page for view using its resolved theme.
	RenderPage(ctx context.Context, w io.Writer, view PageView) error
}

// SitemapService produces the sitemap over all published invitations.
type SitemapService interface {
	Sitemap(ctx context.Context) ([]byte, error)
	Publish(ctx context.Context) (int, error)
}

// DraftService deduplicates and forwards auto-saved drafts.
type DraftService interface {
	Save(ctx context.Context, cmd DraftCommand) (DraftResult, error)
}
