package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ginvite/ginvite-api/internal/platform/requestctx"
	"go.uber.org/zap"
)

// ErrSitemapPublishDisabled is returned by Publish when no publisher is configured.
var ErrSitemapPublishDisabled = errors.New("sitemap: publishing is not configured")

// SitemapServiceDeps wires dependencies for the sitemap service.
type SitemapServiceDeps struct {
	Source    RecordSource
	Site      SiteSettings
	Workers   int
	Publisher SitemapPublisher
	Clock     func() time.Time
}

type sitemapService struct {
	source    RecordSource
	builder   *SitemapBuilder
	publisher SitemapPublisher
}

// NewSitemapService constructs the sitemap service.
func NewSitemapService(deps SitemapServiceDeps) (SitemapService, error) {
	if deps.Source == nil {
		return nil, errors.New("sitemap service: record source is required")
	}
	return &sitemapService{
		source:    deps.Source,
		builder:   NewSitemapBuilder(deps.Site, deps.Workers, deps.Clock),
		publisher: deps.Publisher,
	}, nil
}

func (s *sitemapService) Sitemap(ctx context.Context) ([]byte, error) {
	records, err := s.source.ListInvitations(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvitationUnavailable, err)
	}
	return s.builder.BuildXML(ctx, records)
}

// Publish renders the sitemap and hands it to the publisher, returning the document size.
func (s *sitemapService) Publish(ctx context.Context) (int, error) {
	if s.publisher == nil {
		return 0, ErrSitemapPublishDisabled
	}
	doc, err := s.Sitemap(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.publisher.PublishSitemap(ctx, doc); err != nil {
		return 0, fmt.Errorf("sitemap: publish: %w", err)
	}
	requestctx.Logger(ctx).Info("sitemap published", zap.Int("bytes", len(doc)))
	return len(doc), nil
}
