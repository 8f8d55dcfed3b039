// Package savecache suppresses repeated draft saves of an identical payload within a
// short window. Entries are keyed by user and title and hold a fingerprint of the
// last forwarded payload.
package savecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// DefaultWindow is the suppression window applied when callers pass a non-positive one.
const DefaultWindow = 5 * time.Second

// ClaimState describes the outcome of claiming a save.
type ClaimState int

const (
	// ClaimNew means the save should be forwarded; the store now holds its fingerprint.
	ClaimNew ClaimState = iota
	// ClaimDuplicate means an identical payload was claimed inside the window.
	ClaimDuplicate
)

func (s ClaimState) String() string {
	switch s {
	case ClaimNew:
		return "new"
	case ClaimDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Claim is the result of Store.Claim.
type Claim struct {
	State       ClaimState
	Key         string
	Fingerprint string
	ExpiresAt   time.Time
}

// Duplicate reports whether the save must be skipped.
func (c Claim) Duplicate() bool { return c.State == ClaimDuplicate }

// Store records recently forwarded saves.
type Store interface {
	// Claim registers fingerprint under key unless the same fingerprint is already held
	// and unexpired. A different fingerprint replaces the held one.
	Claim(ctx context.Context, key, fingerprint string, now time.Time, window time.Duration) (Claim, error)
	// Release drops the entry if it still holds fingerprint, so a failed forward can be retried.
	Release(ctx context.Context, key, fingerprint string) error
}

// ErrEmptyKey is returned when the user or title part of the key is blank.
var ErrEmptyKey = errors.New("savecache: key must not be empty")

// Key builds the cache key for a user's draft title.
func Key(userID, title string) string {
	return strings.TrimSpace(userID) + "|" + strings.TrimSpace(title)
}

// Fingerprint hashes a serialised payload.
func Fingerprint(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func validKey(key string) bool {
	user, title, ok := strings.Cut(key, "|")
	if !ok {
		return strings.TrimSpace(key) != ""
	}
	return strings.TrimSpace(user) != "" && strings.TrimSpace(title) != ""
}

func normalizeWindow(window time.Duration) time.Duration {
	if window <= 0 {
		return DefaultWindow
	}
	return window
}
