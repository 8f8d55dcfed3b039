package handlers

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ginvite/ginvite-api/internal/platform/httpx"
	"github.com/ginvite/ginvite-api/internal/platform/requestctx"
	"github.com/ginvite/ginvite-api/internal/services"
)

const (
	pageCacheControl    = "public, max-age=60"
	sitemapCacheControl = "public, max-age=3600"
)

// PageHandlers serves the public guest pages and the sitemap.
type PageHandlers struct {
	invitations services.InvitationService
	sitemap     services.SitemapService
}

// NewPageHandlers constructs the guest page handlers. Either service may be nil.
func NewPageHandlers(invitations services.InvitationService, sitemap services.SitemapService) *PageHandlers {
	return &PageHandlers{invitations: invitations, sitemap: sitemap}
}

// Routes registers the page endpoints.
func (h *PageHandlers) Routes(r chi.Router) {
	r.Get("/u/{slug}", h.invitationPage)
	r.Get("/sitemap.xml", h.sitemapXML)
}

func (h *PageHandlers) invitationPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.invitations == nil {
		httpx.WriteError(ctx, w, httpx.NewError("pages_unavailable", "invitation service is unavailable", http.StatusServiceUnavailable))
		return
	}
	view, err := h.invitations.Load(ctx, slugParam(r))
	if err != nil {
		writeInvitationError(ctx, w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.invitations.RenderPage(ctx, &buf, view); err != nil {
		requestctx.Logger(ctx).Error("render invitation page", zap.Error(err), zap.String("theme_id", view.ThemeID))
		httpx.WriteError(ctx, w, httpx.NewError("render_failed", "failed to render invitation", http.StatusInternalServerError))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", pageCacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *PageHandlers) sitemapXML(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.sitemap == nil {
		httpx.WriteError(ctx, w, httpx.NewError("sitemap_unavailable", "sitemap service is unavailable", http.StatusServiceUnavailable))
		return
	}
	doc, err := h.sitemap.Sitemap(ctx)
	if err != nil {
		writeInvitationError(ctx, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", sitemapCacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
