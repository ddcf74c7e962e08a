package model

import "time"

// UnboundedExtension marks a goal whose new allocation is zero, so it would
// never reach its target.
const UnboundedExtension = -1

// Adjustment is the proposed allocation change for one goal.
type Adjustment struct {
	GoalID            string `json:"goal_id"`
	GoalName          string `json:"goal_name"`
	CurrentAllocation int64  `json:"current_allocation"`
	NewAllocation     int64  `json:"new_allocation"`
	Reduction         int64  `json:"reduction"`
	// TimelineExtensionMonths counts extra pay cycles; UnboundedExtension when NeedsReplan.
	TimelineExtensionMonths int       `json:"timeline_extension_months"`
	NeedsReplan             bool      `json:"needs_replan"`
	Overdue                 bool      `json:"overdue"`
	ProposedDueDate         time.Time `json:"proposed_due_date"`
}

// SavingsStatus compares committed outflows with cash on hand.
type SavingsStatus struct {
	HasShortfall     bool         `json:"has_shortfall"`
	Strategy         Strategy     `json:"strategy"`
	ExpectedBalance  int64        `json:"expected_balance"`
	AvailableBalance int64        `json:"available_balance"`
	Shortfall        int64        `json:"shortfall"`
	Absorbed         int64        `json:"absorbed"`
	Unabsorbed       int64        `json:"unabsorbed"`
	Adjustments      []Adjustment `json:"adjustments"`
}
