package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ExportFormat enumerates supported report document formats.
type ExportFormat string

const (
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatDOCX ExportFormat = "docx"
)

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
	// ExportStatusExpired marks a finished job whose file was removed by cleanup.
	ExportStatusExpired ExportStatus = "EXPIRED"
)

// ReportExport is a persisted export job for a sustainability report.
type ReportExport struct {
	ID           string        `db:"id" json:"id"`
	ReportID     string        `db:"report_id" json:"report_id"`
	CompanyID    string        `db:"company_id" json:"company_id"`
	Format       ExportFormat  `db:"format" json:"format"`
	Options      ExportOptions `db:"options" json:"options"`
	Status       ExportStatus  `db:"status" json:"status"`
	Progress     int           `db:"progress" json:"progress"`
	FilePath     *string       `db:"file_path" json:"-"`
	ResultURL    *string       `db:"result_url" json:"result_url,omitempty"`
	CreatedBy    string        `db:"created_by" json:"created_by"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time    `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string       `db:"error_message" json:"error_message,omitempty"`
}

// ExportOptions stores request-scoped rendering options persisted as JSONB.
type ExportOptions struct {
	IncludeEmptySections bool `json:"include_empty_sections"`
	IncludeDashboards    bool `json:"include_dashboards"`
}

// Value marshals options to JSON for persistence.
func (o ExportOptions) Value() (driver.Value, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal export options: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the options struct.
func (o *ExportOptions) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*o = ExportOptions{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ExportOptions", value)
	}
	if len(data) == 0 {
		*o = ExportOptions{}
		return nil
	}
	if err := json.Unmarshal(data, o); err != nil {
		return fmt.Errorf("unmarshal export options: %w", err)
	}
	return nil
}
