package service

import (
	"fmt"

	"github.com/noah-isme/esg-report-api/internal/models"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
)

// WizardSteps is the fixed, linear order of the report builder.
var WizardSteps = []models.WizardStep{
	models.WizardStepOrganization,
	models.WizardStepEnvironmental,
	models.WizardStepSocial,
	models.WizardStepEconomic,
	models.WizardStepGovernance,
	models.WizardStepStakeholders,
	models.WizardStepReview,
}

// WizardStepIndex returns the zero-based position of step, or -1 when unknown.
func WizardStepIndex(step models.WizardStep) int {
	for i, s := range WizardSteps {
		if s == step {
			return i
		}
	}
	return -1
}

// ValidWizardStep reports whether step belongs to the sequence.
func ValidWizardStep(step models.WizardStep) bool {
	return WizardStepIndex(step) >= 0
}

// NextWizardStep moves forward one step.
func NextWizardStep(current models.WizardStep) (models.WizardStep, error) {
	idx, err := wizardIndex(current)
	if err != nil {
		return current, err
	}
	if idx == len(WizardSteps)-1 {
		return current, appErrors.Clone(appErrors.ErrWizardBoundary, "already at the last step")
	}
	return WizardSteps[idx+1], nil
}

// PreviousWizardStep moves back one step.
func PreviousWizardStep(current models.WizardStep) (models.WizardStep, error) {
	idx, err := wizardIndex(current)
	if err != nil {
		return current, err
	}
	if idx == 0 {
		return current, appErrors.Clone(appErrors.ErrWizardBoundary, "already at the first step")
	}
	return WizardSteps[idx-1], nil
}

// WizardProgress is the completed share of the sequence in percent, counting the current step.
func WizardProgress(current models.WizardStep) float64 {
	idx := WizardStepIndex(current)
	if idx < 0 {
		return 0
	}
	return round2(float64(idx+1) / float64(len(WizardSteps)) * 100)
}

func wizardIndex(step models.WizardStep) (int, error) {
	idx := WizardStepIndex(step)
	if idx < 0 {
		return -1, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown wizard step %q", step))
	}
	return idx, nil
}
