package entity

import "time"

// BatchStep is one session's worth of work: click CumulativeInteractions times from a
// fresh session, then read the trailing ItemsToExtract entries of the listing.
type BatchStep struct {
	CumulativeInteractions int `json:"cumulative_interactions"`
	ItemsToExtract         int `json:"items_to_extract"`
}

// BatchPlan is the ordered list of steps for one request.
type BatchPlan []BatchStep

// TotalItems sums ItemsToExtract over the plan.
func (p BatchPlan) TotalItems() int {
	total := 0
	for _, s := range p {
		total += s.ItemsToExtract
	}
	return total
}

// BatchJob is the descriptor submitted to the task queue for one asynchronous step.
type BatchJob struct {
	ID             string    `json:"id"`
	Filter         Filter    `json:"filter"`
	TotalRequested int       `json:"total_requested"`
	PageSize       int       `json:"page_size"`
	Step           BatchStep `json:"step"`
	EnqueuedAt     time.Time `json:"enqueued_at"`

	// Receipt is the raw queue payload, set on dequeue and used to acknowledge the job.
	Receipt string `json:"-"`
}
