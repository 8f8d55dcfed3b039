package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/ginvite/ginvite-api/internal/domain"
	"github.com/ginvite/ginvite-api/internal/platform/textutil"
	"github.com/ginvite/ginvite-api/internal/seo"
)

const (
	maxSitemapImages      = 15
	defaultSitemapWorkers = 8
	basePriority          = 0.5
	draftStatus           = "draft"
	lastModLayout         = "2006-01-02"
)

// SitemapBuilder turns invitation records into sitemap entries. Records are processed
// independently on a bounded pool and the output keeps input order.
type SitemapBuilder struct {
	site    SiteSettings
	workers int
	clock   func() time.Time
}

// NewSitemapBuilder constructs a builder. Non-positive workers use the default pool size.
func NewSitemapBuilder(site SiteSettings, workers int, clock func() time.Time) *SitemapBuilder {
	if workers <= 0 {
		workers = defaultSitemapWorkers
	}
	if clock == nil {
		clock = time.Now
	}
	return &SitemapBuilder{site: site, workers: workers, clock: clock}
}

// Build returns one entry per published record with a slug.
func (b *SitemapBuilder) Build(ctx context.Context, records []domain.Invitation) ([]seo.SitemapURL, error) {
	ctx, span := tracer.Start(ctx, "services.SitemapBuilder.Build")
	defer span.End()
	span.SetAttributes(attribute.Int("sitemap.records", len(records)))

	now := b.clock()
	slots := make([]*seo.SitemapURL, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if entry, ok := b.entry(records[i], now); ok {
				slots[i] = &entry
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("services: build sitemap: %w", err)
	}

	out := make([]seo.SitemapURL, 0, len(records))
	for _, slot := range slots {
		if slot != nil {
			out = append(out, *slot)
		}
	}
	span.SetAttributes(attribute.Int("sitemap.urls", len(out)))
	return out, nil
}

// BuildXML renders Build's output as a sitemap document.
func (b *SitemapBuilder) BuildXML(ctx context.Context, records []domain.Invitation) ([]byte, error) {
	urls, err := b.Build(ctx, records)
	if err != nil {
		return nil, err
	}
	return seo.MarshalSitemap(urls)
}

func (b *SitemapBuilder) entry(inv domain.Invitation, now time.Time) (seo.SitemapURL, bool) {
	slug := strings.TrimSpace(inv.Slug)
	if slug == "" || inv.Status == draftStatus {
		return seo.SitemapURL{}, false
	}
	name := ResolveDisplayName(inv, slug)

	entry := seo.SitemapURL{
		Loc:    InvitationURL(b.site.BaseURL, slug),
		Images: SitemapImages(inv, name),
	}

	updated := !inv.UpdatedAt.IsZero()
	var days float64
	if updated {
		entry.LastMod = inv.UpdatedAt.UTC().Format(lastModLayout)
		days = now.Sub(inv.UpdatedAt).Hours() / 24
		if days < 0 {
			days = 0
		}
	}
	entry.Priority = SitemapPriority(inv.ViewCount, days, updated)
	entry.ChangeFreq = ChangeFrequency(days, updated)
	return entry, true
}

// SitemapPriority scores a page from its view count and age. The result is clamped
// to [0.1, 1.0] and rounded to one decimal.
func SitemapPriority(views int64, daysSinceUpdate float64, updated bool) float64 {
	p := basePriority
	switch {
	case views >= 1000:
		p += 0.3
	case views >= 100:
		p += 0.2
	case views >= 10:
		p += 0.1
	}
	if updated {
		switch {
		case daysSinceUpdate <= 7:
			p += 0.1
		case daysSinceUpdate > 180:
			p -= 0.2
		}
	}
	p = math.Max(0.1, math.Min(1.0, p))
	return math.Round(p*10) / 10
}

// ChangeFrequency maps the age of the last update to a sitemap changefreq.
func ChangeFrequency(daysSinceUpdate float64, updated bool) string {
	if !updated {
		return "monthly"
	}
	switch {
	case daysSinceUpdate <= 1:
		return "daily"
	case daysSinceUpdate <= 7:
		return "weekly"
	case daysSinceUpdate <= 30:
		return "monthly"
	default:
		return "yearly"
	}
}

// SitemapImages collects up to 15 distinct images: https gallery items, https child
// photos and the owner photo, each with generated alt text.
func SitemapImages(inv domain.Invitation, displayName string) []seo.SitemapImage {
	var out []seo.SitemapImage
	seen := make(map[string]struct{})
	add := func(loc, title string) bool {
		loc = strings.TrimSpace(loc)
		if _, dup := seen[loc]; dup {
			return len(out) < maxSitemapImages
		}
		seen[loc] = struct{}{}
		out = append(out, seo.SitemapImage{Loc: loc, Title: title})
		return len(out) < maxSitemapImages
	}

	for i, item := range inv.Gallery {
		if !textutil.IsAbsoluteURL(item, "https") {
			continue
		}
		if !add(item, fmt.Sprintf("Galeri %s %d", displayName, i+1)) {
			return out
		}
	}
	for _, child := range inv.Children {
		if !textutil.IsAbsoluteURL(child.Profile, "https") {
			continue
		}
		if !add(child.Profile, "Foto "+textutil.FirstNonEmpty(child.Name, displayName)) {
			return out
		}
	}
	if textutil.IsAbsoluteURL(inv.Owner.PictureURL, "http", "https") {
		add(UpgradeProfilePhoto(inv.Owner.PictureURL), "Foto "+textutil.FirstNonEmpty(inv.Owner.FirstName, displayName))
	}
	return out
}
