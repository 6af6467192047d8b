package models

import "time"

// Employee is a member of a company's workforce.
type Employee struct {
	ID         string     `db:"id" json:"id"`
	CompanyID  string     `db:"company_id" json:"company_id"`
	FullName   string     `db:"full_name" json:"full_name"`
	Email      string     `db:"email" json:"email"`
	Document   string     `db:"document" json:"document"`
	Department string     `db:"department" json:"department"`
	Position   string     `db:"position" json:"position"`
	Gender     string     `db:"gender" json:"gender"`
	BirthDate  *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	HireDate   time.Time  `db:"hire_date" json:"hire_date"`
	Active     bool       `db:"active" json:"active"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// EmployeeFilter encapsulates allowed search parameters for listing employees.
type EmployeeFilter struct {
	CompanyID  string
	Search     string
	Department string
	Active     *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
