package models

import "time"

// TrainingStatus is the lifecycle phase of an employee training record.
// The string values are part of the wire contract.
type TrainingStatus string

const (
	TrainingStatusPlanned            TrainingStatus = "Planejado"
	TrainingStatusInProgress         TrainingStatus = "Em Andamento"
	TrainingStatusAwaitingEvaluation TrainingStatus = "Aguardando Avaliação de Eficácia"
	TrainingStatusCompleted          TrainingStatus = "Concluído"
	TrainingStatusCancelled          TrainingStatus = "Cancelado"
)

// TrainingStatuses lists every status in lifecycle order.
var TrainingStatuses = []TrainingStatus{
	TrainingStatusPlanned,
	TrainingStatusInProgress,
	TrainingStatusAwaitingEvaluation,
	TrainingStatusCompleted,
	TrainingStatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s TrainingStatus) Valid() bool {
	for _, known := range TrainingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// TrainingProgram defines the schedule shared by every enrolled employee.
type TrainingProgram struct {
	ID                         string     `db:"id" json:"id"`
	CompanyID                  string     `db:"company_id" json:"company_id"`
	Name                       string     `db:"name" json:"name"`
	Description                string     `db:"description" json:"description"`
	Category                   string     `db:"category" json:"category"`
	StartDate                  time.Time  `db:"start_date" json:"start_date"`
	EndDate                    time.Time  `db:"end_date" json:"end_date"`
	EfficacyEvaluationDeadline *time.Time `db:"efficacy_evaluation_deadline" json:"efficacy_evaluation_deadline,omitempty"`
	ValidForMonths             *int       `db:"valid_for_months" json:"valid_for_months,omitempty"`
	IsMandatory                bool       `db:"is_mandatory" json:"is_mandatory"`
	DurationHours              float64    `db:"duration_hours" json:"duration_hours"`
	CreatedAt                  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                  time.Time  `db:"updated_at" json:"updated_at"`
}

// TrainingProgramFilter narrows program listings.
type TrainingProgramFilter struct {
	CompanyID string
	Search    string
	Category  string
	Mandatory *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// EmployeeTraining links an employee to a training program.
// StoredStatus is the snapshot persisted at write time.
type EmployeeTraining struct {
	ID                    string         `db:"id" json:"id"`
	CompanyID             string         `db:"company_id" json:"company_id"`
	EmployeeID            string         `db:"employee_id" json:"employee_id"`
	ProgramID             string         `db:"program_id" json:"program_id"`
	CompletionDate        *time.Time     `db:"completion_date" json:"completion_date,omitempty"`
	ExpirationDate        *time.Time     `db:"expiration_date" json:"expiration_date,omitempty"`
	Score                 *float64       `db:"score" json:"score,omitempty"`
	Notes                 string         `db:"notes" json:"notes"`
	Instructor            string         `db:"instructor" json:"instructor"`
	HasEfficacyEvaluation bool           `db:"has_efficacy_evaluation" json:"has_efficacy_evaluation"`
	IsCancelled           bool           `db:"is_cancelled" json:"is_cancelled"`
	StoredStatus          TrainingStatus `db:"status" json:"stored_status"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

// EmployeeTrainingDetail joins the program window and employee name onto a training row.
// Status is resolved by the service according to the configured status source.
type EmployeeTrainingDetail struct {
	EmployeeTraining
	Status                     TrainingStatus `db:"-" json:"status"`
	EmployeeName               string         `db:"employee_name" json:"employee_name"`
	Department                 string         `db:"department" json:"department"`
	ProgramName                string         `db:"program_name" json:"program_name"`
	ProgramStartDate           time.Time      `db:"program_start_date" json:"program_start_date"`
	ProgramEndDate             time.Time      `db:"program_end_date" json:"program_end_date"`
	EfficacyEvaluationDeadline *time.Time     `db:"program_efficacy_deadline" json:"efficacy_evaluation_deadline,omitempty"`
	ProgramValidForMonths      *int           `db:"program_valid_for_months" json:"valid_for_months,omitempty"`
	ProgramDurationHours       float64        `db:"program_duration_hours" json:"duration_hours"`
	ProgramMandatory           bool           `db:"program_is_mandatory" json:"is_mandatory"`
}

// EmployeeTrainingFilter provides filters for listing training records.
type EmployeeTrainingFilter struct {
	CompanyID  string
	EmployeeID string
	ProgramID  string
	Department string
	Page       int
	PageSize   int
}
