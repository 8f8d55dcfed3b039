package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ginvite/ginvite-api/internal/platform/httpx"
	"github.com/ginvite/ginvite-api/internal/platform/requestctx"
	"github.com/ginvite/ginvite-api/internal/services"
)

func writeInvitationError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		requestctx.Logger(ctx).Warn("content service timed out", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("timeout", "request timed out", http.StatusGatewayTimeout))
	case errors.Is(err, services.ErrInvitationNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("invitation_not_found", "invitation not found", http.StatusNotFound))
	case errors.Is(err, services.ErrInvitationInvalid):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_upstream_record", "content service returned an unreadable record", http.StatusBadGateway))
	case errors.Is(err, services.ErrInvitationUnavailable):
		requestctx.Logger(ctx).Warn("content service unavailable", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("content_unavailable", "content service is unavailable", http.StatusBadGateway))
	default:
		requestctx.Logger(ctx).Error("invitation request failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "internal server error", http.StatusInternalServerError))
	}
}

func writeDraftError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *services.DraftValidationError
	switch {
	case errors.As(err, &verr):
		details := make(map[string]any, len(verr.Fields))
		for field, rule := range verr.Fields {
			details[field] = rule
		}
		httpx.WriteError(ctx, w, httpx.BadRequest("invalid_draft", "draft failed validation").WithDetails(map[string]any{"fields": details}))
	case errors.Is(err, services.ErrDraftInvalid):
		httpx.WriteError(ctx, w, httpx.BadRequest("invalid_draft", err.Error()))
	case errors.Is(err, services.ErrDraftForwardFailed):
		httpx.WriteError(ctx, w, httpx.NewError("draft_forward_failed", "content service did not accept the draft", http.StatusBadGateway))
	case errors.Is(err, services.ErrDraftCacheUnavailable):
		requestctx.Logger(ctx).Error("draft cache unavailable", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("draft_cache_unavailable", "draft cache is unavailable", http.StatusServiceUnavailable))
	default:
		requestctx.Logger(ctx).Error("draft save failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "internal server error", http.StatusInternalServerError))
	}
}
