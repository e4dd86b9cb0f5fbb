package matters

import "time"

const (
	StatusOpen      = "OPEN"
	StatusSuspended = "SUSPENDED"
	StatusArchived  = "ARCHIVED"
)

type Matter struct {
	ID                 string     `json:"id"`
	TenantID           string     `json:"tenantId"`
	CaseNumber         string     `json:"caseNumber"`
	DefendantName      string     `json:"defendantName"`
	AreaOfLaw          string     `json:"areaOfLaw"`
	Status             string     `json:"status"`
	Detained           bool       `json:"detained"`
	DueDate            *time.Time `json:"dueDate,omitempty"`
	DeadlineType       string     `json:"deadlineType,omitempty"`
	AssignedDefenderID string     `json:"assignedDefenderId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// ClassifiedMatter is a matter annotated with its urgency bucket
// relative to a reference day.
type ClassifiedMatter struct {
	Matter
	Bucket        string `json:"bucket"`
	DaysRemaining int    `json:"daysRemaining"`
}
