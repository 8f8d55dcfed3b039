package domain

import (
	"encoding/json"
	"time"
)

// Draft is an auto-saved invitation draft forwarded to the content service.
type Draft struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	Content     json.RawMessage `json:"content"`
	SubmittedAt time.Time       `json:"submitted_at"`
}
