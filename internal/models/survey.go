package models

import (
	"time"

	"github.com/google/uuid"
)

// Survey is owned by the external survey CRUD service; this backend only reads it.
type Survey struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Owner (session user id)
	UserID uuid.UUID `json:"-"`

	Title        string `json:"title"`
	RequireName  bool   `json:"require_name"`
	UniqueLinkID string `json:"unique_link_id"`
	IsActive     bool   `json:"is_active"`
}
