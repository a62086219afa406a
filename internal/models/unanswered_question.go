package models

import (
	"time"

	"github.com/google/uuid"
)

// UnansweredQuestion is a user message that no stored question matched.
// Question holds the raw message as received, before spell correction.
type UnansweredQuestion struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"created_at"`
}
