package report

import (
	"time"

	"github.com/eruvierda/safe-commute/internal/category"
	"github.com/eruvierda/safe-commute/internal/config"
)

// Policy holds the temporal and quality rules that gate report visibility.
// Values come from config; the defaults are observed behavior, not law.
type Policy struct {
	FastTTL    time.Duration
	SlowTTL    time.Duration
	TrustFloor int
	EditWindow time.Duration
}

func PolicyFromConfig(cfg config.Config) Policy {
	return Policy{
		FastTTL:    time.Duration(cfg.FastTTLHours) * time.Hour,
		SlowTTL:    time.Duration(cfg.SlowTTLHours) * time.Hour,
		TrustFloor: cfg.TrustFloor,
		EditWindow: time.Duration(cfg.EditWindowMinutes) * time.Minute,
	}
}

func DefaultPolicy() Policy {
	return Policy{
		FastTTL:    2 * time.Hour,
		SlowTTL:    72 * time.Hour,
		TrustFloor: -3,
		EditWindow: 15 * time.Minute,
	}
}

// TTL returns how long a report of the given category stays fresh after its
// last positive confirmation.
func (p Policy) TTL(c category.Category) time.Duration {
	if c.Decay() == category.FastDecay {
		return p.FastTTL
	}
	return p.SlowTTL
}

// IsActive reports whether r should still be visible at the given instant.
func (p Policy) IsActive(r Report, now time.Time) bool {
	if !r.DeletedAt.IsZero() {
		return false
	}
	if r.IsResolved {
		return false
	}
	return now.Sub(r.LastConfirmedAt) <= p.TTL(r.Category)
}

// CanEdit reports whether userID may still edit r. Only the owner can edit,
// and only inside the edit window measured from creation.
func (p Policy) CanEdit(r Report, now time.Time, userID string) bool {
	if userID == "" || userID != r.UserID {
		return false
	}
	return now.Sub(r.CreatedAt) < p.EditWindow
}

// Discredited reports whether community votes have pushed r at or below the
// trust floor. Discredited reports are suppressed from ambient warnings but
// still surface in route hazard checks.
func (p Policy) Discredited(r Report) bool {
	return r.TrustScore <= p.TrustFloor
}
