package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// WizardStep names one of the fixed report-builder steps.
type WizardStep string

const (
	WizardStepOrganization  WizardStep = "organization"
	WizardStepEnvironmental WizardStep = "environmental"
	WizardStepSocial        WizardStep = "social"
	WizardStepEconomic      WizardStep = "economic"
	WizardStepGovernance    WizardStep = "governance"
	WizardStepStakeholders  WizardStep = "stakeholders"
	WizardStepReview        WizardStep = "review"
)

// SectionData holds the free-form fields captured on a wizard step, keyed by GRI code.
type SectionData map[string]interface{}

// ReportSections maps each wizard step to its captured data. Persisted as JSONB.
type ReportSections map[WizardStep]SectionData

// Value marshals the sections to JSON for persistence.
func (s ReportSections) Value() (driver.Value, error) {
	if s == nil {
		s = ReportSections{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal report sections: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSONB payloads into the sections map.
func (s *ReportSections) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*s = ReportSections{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ReportSections", value)
	}
	out := ReportSections{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return fmt.Errorf("unmarshal report sections: %w", err)
		}
	}
	*s = out
	return nil
}

// SustainabilityReport is a yearly GRI report assembled through the wizard.
type SustainabilityReport struct {
	ID          string         `db:"id" json:"id"`
	CompanyID   string         `db:"company_id" json:"company_id"`
	Year        int            `db:"year" json:"year"`
	Title       string         `db:"title" json:"title"`
	CurrentStep WizardStep     `db:"current_step" json:"current_step"`
	Sections    ReportSections `db:"sections" json:"sections"`
	CompletedAt *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
	CreatedBy   string         `db:"created_by" json:"created_by"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// ReportFilter narrows report listings.
type ReportFilter struct {
	CompanyID string
	Year      int
	Page      int
	PageSize  int
}
