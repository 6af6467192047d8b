package models

import "time"

// Benefit is a recurring employee benefit with a monthly cost.
type Benefit struct {
	ID          string     `db:"id" json:"id"`
	CompanyID   string     `db:"company_id" json:"company_id"`
	EmployeeID  string     `db:"employee_id" json:"employee_id"`
	BenefitType string     `db:"benefit_type" json:"benefit_type"`
	MonthlyCost float64    `db:"monthly_cost" json:"monthly_cost"`
	StartedAt   time.Time  `db:"started_at" json:"started_at"`
	EndedAt     *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// ActiveDuring reports whether the benefit overlaps the given calendar year.
func (b Benefit) ActiveDuring(year int) bool {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !b.StartedAt.Before(end) {
		return false
	}
	return b.EndedAt == nil || !b.EndedAt.Before(start)
}
