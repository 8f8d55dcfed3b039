package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/ginvite/ginvite-api/internal/domain"
	"github.com/ginvite/ginvite-api/internal/platform/observability"
	"github.com/ginvite/ginvite-api/internal/platform/requestctx"
	"github.com/ginvite/ginvite-api/internal/platform/savecache"
)

const defaultDraftSubmitTimeout = 10 * time.Second

var (
	// ErrDraftInvalid indicates the draft command failed validation.
	ErrDraftInvalid = errors.New("draft: invalid input")
	// ErrDraftForwardFailed indicates the content service rejected or did not answer the save.
	ErrDraftForwardFailed = errors.New("draft: forward failed")
	// ErrDraftCacheUnavailable indicates the dedup store could not be reached.
	ErrDraftCacheUnavailable = errors.New("draft: dedup cache unavailable")
)

// DraftCommand is an auto-save request from the editor.
type DraftCommand struct {
	UserID  string          `json:"user_id" validate:"required,max=128"`
	Title   string          `json:"title" validate:"required,max=200"`
	Content json.RawMessage `json:"content" validate:"required,jsonobject"`
}

// DraftResult reports what happened to a save.
type DraftResult struct {
	ID           string    `json:"id,omitempty"`
	Deduplicated bool      `json:"deduplicated"`
	ExpiresAt    time.Time `json:"dedup_expires_at"`
}

// DraftValidationError lists the fields that failed validation.
type DraftValidationError struct {
	Fields map[string]string
}

func (e *DraftValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, rule := range e.Fields {
		parts = append(parts, field+" ("+rule+")")
	}
	return "draft: invalid fields: " + strings.Join(parts, ", ")
}

func (e *DraftValidationError) Unwrap() error { return ErrDraftInvalid }

// DraftServiceDeps wires dependencies for the draft service.
type DraftServiceDeps struct {
	Cache     savecache.Store
	Submitter DraftSubmitter
	Window    time.Duration
	Timeout   time.Duration
	Clock     func() time.Time
	IDGen     func() string
	Metrics   *observability.Metrics
}

type draftService struct {
	cache     savecache.Store
	submitter DraftSubmitter
	window    time.Duration
	timeout   time.Duration
	clock     func() time.Time
	idGen     func() string
	metrics   *observability.Metrics
	validate  *validator.Validate
}

// NewDraftService constructs the draft service.
func NewDraftService(deps DraftServiceDeps) (DraftService, error) {
	if deps.Cache == nil {
		return nil, errors.New("draft service: cache is required")
	}
	if deps.Submitter == nil {
		return nil, errors.New("draft service: submitter is required")
	}
	window := deps.Window
	if window <= 0 {
		window = savecache.DefaultWindow
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultDraftSubmitTimeout
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	v := validator.New()
	if err := v.RegisterValidation("jsonobject", isJSONObject); err != nil {
		return nil, fmt.Errorf("draft service: register validation: %w", err)
	}

	return &draftService{
		cache:     deps.Cache,
		submitter: deps.Submitter,
		window:    window,
		timeout:   timeout,
		clock:     clock,
		idGen:     idGen,
		metrics:   deps.Metrics,
		validate:  v,
	}, nil
}

func (s *draftService) Save(ctx context.Context, cmd DraftCommand) (DraftResult, error) {
	cmd.UserID = strings.TrimSpace(cmd.UserID)
	cmd.Title = strings.TrimSpace(cmd.Title)
	if err := s.validateCommand(cmd); err != nil {
		return DraftResult{}, err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, cmd.Content); err != nil {
		return DraftResult{}, &DraftValidationError{Fields: map[string]string{"content": "jsonobject"}}
	}

	key := savecache.Key(cmd.UserID, cmd.Title)
	fingerprint := savecache.Fingerprint(compact.Bytes())
	now := s.clock()
	logger := requestctx.Logger(ctx).With(zap.String("draft_key_hash", fingerprintPrefix(savecache.Fingerprint([]byte(key)))))

	claim, err := s.cache.Claim(ctx, key, fingerprint, now, s.window)
	if err != nil {
		return DraftResult{}, fmt.Errorf("%w: %v", ErrDraftCacheUnavailable, err)
	}
	if claim.Duplicate() {
		s.metrics.DedupHit(ctx)
		logger.Debug("draft save deduplicated")
		return DraftResult{Deduplicated: true, ExpiresAt: claim.ExpiresAt}, nil
	}

	draft := domain.Draft{
		ID:          s.idGen(),
		UserID:      cmd.UserID,
		Title:       cmd.Title,
		Content:     json.RawMessage(compact.Bytes()),
		SubmittedAt: now.UTC(),
	}

	submitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.submitter.SubmitDraft(submitCtx, draft); err != nil {
		// release with a fresh context so a cancelled request still frees the key
		releaseCtx, releaseCancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer releaseCancel()
		if releaseErr := s.cache.Release(releaseCtx, key, fingerprint); releaseErr != nil {
			logger.Warn("draft claim release failed", zap.Error(releaseErr))
		}
		logger.Warn("draft forward failed", zap.Error(err))
		return DraftResult{}, fmt.Errorf("%w: %v", ErrDraftForwardFailed, err)
	}

	logger.Info("draft forwarded", zap.String("draft_id", draft.ID))
	return DraftResult{ID: draft.ID, ExpiresAt: claim.ExpiresAt}, nil
}

func (s *draftService) validateCommand(cmd DraftCommand) error {
	err := s.validate.Struct(cmd)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrDraftInvalid, err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonFieldName(fe.Field())] = fe.Tag()
	}
	return &DraftValidationError{Fields: fields}
}

func jsonFieldName(field string) string {
	switch field {
	case "UserID":
		return "user_id"
	case "Title":
		return "title"
	case "Content":
		return "content"
	}
	return strings.ToLower(field)
}

func isJSONObject(fl validator.FieldLevel) bool {
	raw, ok := fl.Field().Interface().(json.RawMessage)
	if !ok {
		return false
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Valid(trimmed)
}

func fingerprintPrefix(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
