package dto

import "github.com/noah-isme/esg-report-api/internal/models"

// CreateReportRequest opens a report for a reporting year.
type CreateReportRequest struct {
	Year  int    `json:"year" validate:"required,gte=1900,lte=2100"`
	Title string `json:"title" validate:"required,max=200"`
}

// UpdateSectionRequest replaces the data captured on one wizard step.
type UpdateSectionRequest struct {
	Fields models.SectionData `json:"fields" validate:"required"`
}

// GoToStepRequest jumps the wizard to an arbitrary known step.
type GoToStepRequest struct {
	Step models.WizardStep `json:"step" validate:"required"`
}

// ReportResponse wraps a report with its wizard position.
type ReportResponse struct {
	Report   models.SustainabilityReport `json:"report"`
	Progress float64                     `json:"progress"`
	Steps    []models.WizardStep         `json:"steps"`
}

// SectionUpdateResponse flags field keys that are not GRI indicators. Unknown keys are stored.
type SectionUpdateResponse struct {
	ReportResponse
	UnknownIndicators []string `json:"unknown_indicators"`
}

// ExportRequest captures POST /reports/:id/exports payload.
type ExportRequest struct {
	Format  models.ExportFormat  `json:"format" validate:"required,oneof=pdf docx"`
	Options models.ExportOptions `json:"options"`
}

// ExportJobResponse exposes export job progress.
type ExportJobResponse struct {
	ID        string              `json:"id"`
	ReportID  string              `json:"report_id"`
	Format    models.ExportFormat `json:"format"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}

// NewExportJobResponse copies the client-visible fields of a job.
func NewExportJobResponse(job *models.ReportExport) *ExportJobResponse {
	resp := &ExportJobResponse{
		ID:        job.ID,
		ReportID:  job.ReportID,
		Format:    job.Format,
		Status:    job.Status,
		Progress:  job.Progress,
		ResultURL: job.ResultURL,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp
}
