package warning

import (
	"sync"
	"time"

	"github.com/eruvierda/safe-commute/internal/report"
)

// Monitor pairs an evaluator with a moving user's latest position. Position
// samples are most-recent-wins: anything older than the last applied
// timestamp is dropped, so a reordered transport cannot rewind the user.
type Monitor struct {
	mu   sync.Mutex
	eval *Evaluator
	pos  *Position
}

func NewMonitor(settings Settings, policy report.Policy) *Monitor {
	return &Monitor{eval: NewEvaluator(settings, policy)}
}

// UpdatePosition applies a sample and reports whether it was accepted.
func (m *Monitor) UpdatePosition(p Position) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pos != nil && p.Timestamp.Before(m.pos.Timestamp) {
		return false
	}
	m.pos = &p
	return true
}

func (m *Monitor) Configure(s Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eval.SetSettings(s)
}

func (m *Monitor) Dismiss(reportID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eval.Dismiss(reportID)
}

// Evaluate filters the snapshot through the lifecycle gate, then ranks what
// is in range. The snapshot is never mutated.
func (m *Monitor) Evaluate(reports []report.Report, now time.Time) Evaluation {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := make([]report.Report, 0, len(reports))
	for _, r := range reports {
		if m.eval.policy.IsActive(r, now) {
			live = append(live, r)
		}
	}
	return m.eval.Evaluate(m.pos, live)
}
