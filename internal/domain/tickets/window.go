package tickets

import (
	"math"
	"time"
)

const (
	DefaultScanLead  = 2 * time.Hour
	DefaultScanGrace = 2 * time.Hour
)

type WindowVerdict int

const (
	WindowAdmissible WindowVerdict = iota
	WindowTooEarly
	WindowTooLate
)

type WindowDecision struct {
	Verdict WindowVerdict
	// HoursRemaining is set for WindowTooEarly only: whole hours until the window opens, rounded up.
	HoursRemaining int
}

// WindowPolicy decides whether scanning is open for an event.
// The window is [start - Lead, end + Grace], both bounds inclusive.
// Without an end date there is no upper bound.
type WindowPolicy struct {
	Lead  time.Duration
	Grace time.Duration
}

func DefaultWindowPolicy() WindowPolicy {
	return WindowPolicy{
		Lead:  DefaultScanLead,
		Grace: DefaultScanGrace,
	}
}

func (p WindowPolicy) Opens(start time.Time) time.Time {
	return start.Add(-p.Lead)
}

func (p WindowPolicy) Evaluate(start time.Time, end *time.Time, now time.Time) WindowDecision {
	opens := p.Opens(start)
	if now.Before(opens) {
		return WindowDecision{
			Verdict:        WindowTooEarly,
			HoursRemaining: int(math.Ceil(opens.Sub(now).Hours())),
		}
	}

	if end != nil && now.After(end.Add(p.Grace)) {
		return WindowDecision{Verdict: WindowTooLate}
	}

	return WindowDecision{Verdict: WindowAdmissible}
}
