package models

import "time"

// Document is an uploaded file attached to the company or one employee.
type Document struct {
	ID         string     `db:"id" json:"id"`
	CompanyID  string     `db:"company_id" json:"company_id"`
	EmployeeID *string    `db:"employee_id" json:"employee_id,omitempty"`
	Category   string     `db:"category" json:"category"`
	Filename   string     `db:"filename" json:"filename"`
	FilePath   string     `db:"file_path" json:"-"`
	MimeType   string     `db:"mime_type" json:"mime_type"`
	SizeBytes  int64      `db:"size_bytes" json:"size_bytes"`
	UploadedBy string     `db:"uploaded_by" json:"uploaded_by"`
	UploadedAt time.Time  `db:"uploaded_at" json:"uploaded_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// DocumentFilter narrows listing queries.
type DocumentFilter struct {
	CompanyID      string
	EmployeeID     string
	Category       string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// BatchUploadItem reports the outcome for one file of a batch.
type BatchUploadItem struct {
	Filename string    `json:"filename"`
	Document *Document `json:"document,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// BatchUploadResult aggregates per-file outcomes; a failed item never aborts the batch.
type BatchUploadResult struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Items     []BatchUploadItem `json:"items"`
}
