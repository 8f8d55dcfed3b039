package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ginvite/ginvite-api/internal/domain"
	"github.com/ginvite/ginvite-api/internal/platform/savecache"
	"github.com/ginvite/ginvite-api/internal/services"
)

type stubSubmitter struct {
	calls int
	err   error
}

func (s *stubSubmitter) SubmitDraft(context.Context, domain.Draft) error {
	s.calls++
	return s.err
}

func newDraftRouter(t *testing.T, submitter *stubSubmitter) http.Handler {
	t.Helper()
	svc, err := services.NewDraftService(services.DraftServiceDeps{
		Cache:     savecache.NewMemoryStore(),
		Submitter: submitter,
		Clock:     func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("draft service: %v", err)
	}
	return NewRouter(WithAPIRoutes(NewDraftHandlers(svc).Routes))
}

func postDraft(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/drafts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestDraftHandlers_SaveAndDeduplicate(t *testing.T) {
	submitter := &stubSubmitter{}
	router := newDraftRouter(t, submitter)
	payload := `{"user_id": "u1", "title": "rahma-martin", "content": {"event": {}}}`

	rr := postDraft(router, payload)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["deduplicated"] != false || body["id"] == "" {
		t.Fatalf("unexpected body %#v", body)
	}

	rr = postDraft(router, payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 for duplicate, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["deduplicated"] != true {
		t.Fatalf("expected deduplicated response, got %#v", body)
	}
	if submitter.calls != 1 {
		t.Fatalf("expected one forwarded draft, got %d", submitter.calls)
	}
}

func TestDraftHandlers_Errors(t *testing.T) {
	router := newDraftRouter(t, &stubSubmitter{})

	rr := postDraft(router, `{"user_id": "u1", "content": {}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	fields, _ := body["fields"].(map[string]any)
	if body["error"] != "invalid_draft" || fields["title"] != "required" {
		t.Fatalf("unexpected validation body %#v", body)
	}

	rr = postDraft(router, `not json`)
	if rr.Code != http.StatusBadRequest || decodeBody(t, rr)["error"] != "invalid_request" {
		t.Fatalf("expected invalid_request, got %d %s", rr.Code, rr.Body.String())
	}

	failing := newDraftRouter(t, &stubSubmitter{err: errors.New("upstream 500")})
	rr = postDraft(failing, `{"user_id": "u1", "title": "t", "content": {}}`)
	if rr.Code != http.StatusBadGateway || decodeBody(t, rr)["error"] != "draft_forward_failed" {
		t.Fatalf("expected 502 draft_forward_failed, got %d %s", rr.Code, rr.Body.String())
	}
}
