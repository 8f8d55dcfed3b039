package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ginvite/ginvite-api/internal/platform/httpx"
	"github.com/ginvite/ginvite-api/internal/services"
	"github.com/ginvite/ginvite-api/internal/themes"
)

const maxPreviewBodyBytes = 1 << 20

// ThemeLister lists the registered themes.
type ThemeLister interface {
	Themes() []themes.Info
}

// InvitationHandlers exposes prepared invitation views as JSON.
type InvitationHandlers struct {
	invitations services.InvitationService
	themes      ThemeLister
}

// NewInvitationHandlers constructs the invitation API handlers.
func NewInvitationHandlers(invitations services.InvitationService, lister ThemeLister) *InvitationHandlers {
	return &InvitationHandlers{invitations: invitations, themes: lister}
}

// slugParam returns the decoded slug path segment. chi routes on RawPath when it is
// set, in which case the captured segment is still escaped.
func slugParam(r *http.Request) string {
	raw := chi.URLParam(r, "slug")
	if r.URL.RawPath == "" {
		return raw
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// Routes registers the invitation endpoints.
func (h *InvitationHandlers) Routes(r chi.Router) {
	r.Get("/invitations/{slug}", h.getInvitation)
	r.Get("/invitations/{slug}/event", h.getLegacyEvent)
	r.Post("/previews", h.preview)
	r.Get("/themes", h.listThemes)
}

func (h *InvitationHandlers) getInvitation(w http.ResponseWriter, r *http.Request) {
	if h.invitations == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invitations_unavailable", "invitation service is unavailable", http.StatusServiceUnavailable))
		return
	}
	view, err := h.invitations.Load(r.Context(), slugParam(r))
	if err != nil {
		writeInvitationError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *InvitationHandlers) getLegacyEvent(w http.ResponseWriter, r *http.Request) {
	if h.invitations == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invitations_unavailable", "invitation service is unavailable", http.StatusServiceUnavailable))
		return
	}
	view, err := h.invitations.LegacyEvent(r.Context(), slugParam(r))
	if err != nil {
		writeInvitationError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *InvitationHandlers) preview(w http.ResponseWriter, r *http.Request) {
	if h.invitations == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invitations_unavailable", "invitation service is unavailable", http.StatusServiceUnavailable))
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPreviewBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteError(r.Context(), w, httpx.NewError("payload_too_large", "record exceeds 1 MiB", http.StatusRequestEntityTooLarge))
			return
		}
		httpx.WriteError(r.Context(), w, httpx.BadRequest("invalid_request", "failed to read request body"))
		return
	}

	view, err := h.invitations.Prepare(r.Context(), body, strings.TrimSpace(r.URL.Query().Get("slug")))
	if err != nil {
		if errors.Is(err, services.ErrInvitationInvalid) {
			httpx.WriteError(r.Context(), w, httpx.BadRequest("invalid_record", "record must be a JSON object"))
			return
		}
		writeInvitationError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *InvitationHandlers) listThemes(w http.ResponseWriter, r *http.Request) {
	items := []themes.Info{}
	if h.themes != nil {
		items = append(items, h.themes.Themes()...)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"themes": items})
}
