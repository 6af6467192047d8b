package models

import "time"

// Audit actions written by services and the audit middleware.
const (
	AuditActionLogin           = "LOGIN"
	AuditActionCreate          = "CREATE"
	AuditActionUpdate          = "UPDATE"
	AuditActionDelete          = "DELETE"
	AuditActionDocumentUpload  = "DOCUMENT_UPLOAD"
	AuditActionReportExport    = "REPORT_EXPORT"
	AuditActionStatusRecompute = "TRAINING_STATUS_RECOMPUTE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	CompanyID  *string   `db:"company_id" json:"company_id,omitempty"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
