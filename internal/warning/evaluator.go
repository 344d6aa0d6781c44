package warning

import (
	"math"
	"sort"
	"time"

	"github.com/eruvierda/safe-commute/internal/category"
	"github.com/eruvierda/safe-commute/internal/report"
	"github.com/eruvierda/safe-commute/internal/shared/geo"
)

// topAlerts is how many warnings surface as full alerts; the rest collapse
// into an overflow count. Presentation policy, not a computation cap.
const topAlerts = 3

type Position struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

type Settings struct {
	Enabled    bool                       `json:"enabled"`
	RadiusKm   float64                    `json:"radius_km"`
	Categories map[category.Category]bool `json:"categories"`
}

type Warning struct {
	ReportID   string        `json:"report_id"`
	Report     report.Report `json:"report"`
	DistanceKm float64       `json:"distance_km"`

	// Unrounded distance, kept for stable ranking.
	distance float64
}

type Evaluation struct {
	Warnings []Warning `json:"warnings"`
	Top      []Warning `json:"top"`
	Overflow int       `json:"overflow"`
	// BecameActive marks the empty-to-non-empty edge so the caller can fire
	// an alert without diffing lists.
	BecameActive bool `json:"became_active"`
}

// Evaluator turns a position and the live report set into a ranked warning
// list. Dismissals stick for the current settings epoch: changing the radius
// or the enabled categories clears them.
type Evaluator struct {
	settings  Settings
	policy    report.Policy
	dismissed map[string]struct{}
	hadActive bool
}

func NewEvaluator(settings Settings, policy report.Policy) *Evaluator {
	return &Evaluator{
		settings:  settings,
		policy:    policy,
		dismissed: map[string]struct{}{},
	}
}

// SetSettings applies a new configuration. A changed radius or category set
// is a fresh request for information, so all dismissals reset.
func (e *Evaluator) SetSettings(s Settings) {
	if s.RadiusKm != e.settings.RadiusKm || !sameCategories(s.Categories, e.settings.Categories) {
		e.dismissed = map[string]struct{}{}
	}
	e.settings = s
}

func (e *Evaluator) Dismiss(reportID string) {
	e.dismissed[reportID] = struct{}{}
}

// Evaluate is idempotent: identical inputs and dismissal state produce an
// identical list. Only the became-active edge depends on the previous call.
func (e *Evaluator) Evaluate(pos *Position, reports []report.Report) Evaluation {
	if !e.settings.Enabled || pos == nil || e.settings.RadiusKm <= 0 || len(e.settings.Categories) == 0 {
		e.hadActive = false
		return Evaluation{Warnings: []Warning{}, Top: []Warning{}}
	}

	seen := map[string]struct{}{}
	var warnings []Warning
	for _, r := range reports {
		if !e.settings.Categories[r.Category] {
			continue
		}
		if r.IsResolved {
			continue
		}
		if e.policy.Discredited(r) {
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		if _, gone := e.dismissed[r.ID]; gone {
			continue
		}

		d := geo.HaversineKm(pos.Lat, pos.Lng, r.Lat, r.Lng)
		if d > e.settings.RadiusKm {
			continue
		}
		seen[r.ID] = struct{}{}
		warnings = append(warnings, Warning{
			ReportID:   r.ID,
			Report:     r,
			DistanceKm: math.Round(d*10) / 10,
			distance:   d,
		})
	}

	sort.Slice(warnings, func(i, j int) bool {
		if warnings[i].distance != warnings[j].distance {
			return warnings[i].distance < warnings[j].distance
		}
		return warnings[i].ReportID < warnings[j].ReportID
	})

	top := warnings
	if len(top) > topAlerts {
		top = top[:topAlerts]
	}

	eval := Evaluation{
		Warnings:     warnings,
		Top:          top,
		Overflow:     len(warnings) - len(top),
		BecameActive: len(warnings) > 0 && !e.hadActive,
	}
	if eval.Warnings == nil {
		eval.Warnings = []Warning{}
		eval.Top = []Warning{}
	}
	e.hadActive = len(warnings) > 0
	return eval
}

func sameCategories(a, b map[category.Category]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for c, enabled := range a {
		if b[c] != enabled {
			return false
		}
	}
	return true
}
