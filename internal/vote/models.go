package vote

import (
	"time"

	"github.com/eruvierda/safe-commute/internal/category"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func (d Direction) Valid() bool {
	return d == Up || d == Down
}

func (d Direction) delta() int {
	if d == Up {
		return 1
	}
	return -1
}

type VoteResult struct {
	Success    bool   `json:"success"`
	TrustScore int    `json:"trust_score"`
	Changed    bool   `json:"changed"`
	Message    string `json:"message"`
}

type UserVote struct {
	Direction         Direction         `json:"direction"`
	CastAt            time.Time         `json:"cast_at"`
	ReportID          string            `json:"report_id"`
	ReportCategory    category.Category `json:"report_category"`
	ReportDescription string            `json:"report_description"`
	ReportLat         float64           `json:"report_lat"`
	ReportLng         float64           `json:"report_lng"`
	ReportCreatedAt   time.Time         `json:"report_created_at"`
	CurrentTrustScore int               `json:"current_trust_score"`
	ReportDeleted     bool              `json:"report_deleted"`
}
