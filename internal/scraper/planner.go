package scraper

import "github.com/user/catalog-scraper/internal/entity"

// Planner splits a request into browser sessions. It holds no state between calls.
type Planner struct {
	// SessionCapacity is the number of items one full session view shows per click.
	SessionCapacity int
	// MaxInteractionsPerSession caps the clicks a single session may perform.
	MaxInteractionsPerSession int
}

// NewPlanner returns a Planner for the given capacity and click cap.
func NewPlanner(sessionCapacity, maxInteractions int) Planner {
	return Planner{SessionCapacity: sessionCapacity, MaxInteractionsPerSession: maxInteractions}
}

// Plan computes the ordered steps needed to reach totalRequested items.
//
// remainder is the number of items still obtainable from the zero-click view beyond what
// the caller already consumed. It is folded into the first clicking step only; when no
// clicking step is needed it becomes a single zero-click step.
func (p Planner) Plan(remainder, totalRequested int) (entity.BatchPlan, error) {
	if p.SessionCapacity <= 0 {
		return nil, ValidationError{Reason: "session capacity must be positive"}
	}
	if p.MaxInteractionsPerSession <= 0 {
		return nil, ValidationError{Reason: "max interactions per session must be positive"}
	}
	if totalRequested < 0 {
		return nil, ValidationError{Reason: "total requested cannot be negative"}
	}

	plan := entity.BatchPlan{}
	cumulative := 0
	remaining := max(0, totalRequested-p.SessionCapacity)
	looped := false

	for remaining > 0 {
		looped = true
		needed := ceilDiv(remaining, p.SessionCapacity)
		interactions := min(needed, p.MaxInteractionsPerSession)
		cumulative += interactions
		items := min(interactions*p.SessionCapacity, remaining+max(0, remainder))
		plan = append(plan, entity.BatchStep{CumulativeInteractions: cumulative, ItemsToExtract: items})
		remaining -= items
		remainder = 0
	}

	if !looped && remainder > 0 {
		plan = append(plan, entity.BatchStep{CumulativeInteractions: 0, ItemsToExtract: remainder})
	}
	return plan, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
