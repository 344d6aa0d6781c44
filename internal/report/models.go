package report

import (
	"time"

	"github.com/eruvierda/safe-commute/internal/category"
)

type Report struct {
	ID              string            `json:"id"`
	Category        category.Category `json:"category"`
	Description     string            `json:"description"`
	Lat             float64           `json:"lat"`
	Lng             float64           `json:"lng"`
	TrustScore      int               `json:"trust_score"`
	IsResolved      bool              `json:"is_resolved"`
	UserID          string            `json:"user_id"`
	CreatedAt       time.Time         `json:"created_at"`
	LastConfirmedAt time.Time         `json:"last_confirmed_at"`
	DeletedAt       time.Time         `json:"deleted_at,omitempty"`
}

// ActionResult carries the outcome of an owner-gated mutation. Semantic
// rejections (not owner, window expired) travel as data, not errors.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
