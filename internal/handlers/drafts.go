package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ginvite/ginvite-api/internal/platform/httpx"
	"github.com/ginvite/ginvite-api/internal/services"
)

const maxDraftBodyBytes = 1 << 20

// DraftHandlers accepts auto-saved drafts from the editor.
type DraftHandlers struct {
	drafts services.DraftService
}

// NewDraftHandlers constructs the draft handlers.
func NewDraftHandlers(drafts services.DraftService) *DraftHandlers {
	return &DraftHandlers{drafts: drafts}
}

// Routes registers the draft endpoints.
func (h *DraftHandlers) Routes(r chi.Router) {
	r.Post("/drafts", h.saveDraft)
}

func (h *DraftHandlers) saveDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.drafts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("drafts_unavailable", "draft service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var cmd services.DraftCommand
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDraftBodyBytes))
	if err := dec.Decode(&cmd); err != nil {
		httpx.WriteError(ctx, w, httpx.BadRequest("invalid_request", "request body must be a JSON object"))
		return
	}

	result, err := h.drafts.Save(ctx, cmd)
	if err != nil {
		writeDraftError(ctx, w, err)
		return
	}
	status := http.StatusCreated
	if result.Deduplicated {
		status = http.StatusOK
	}
	httpx.WriteJSON(w, status, result)
}
