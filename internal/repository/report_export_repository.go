package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/esg-report-api/internal/models"
)

const exportColumns = `id, report_id, company_id, format, options, status, progress, file_path, result_url, created_by, created_at, finished_at, error_message`

// ReportExportRepository persists export job metadata.
type ReportExportRepository struct {
	db *sqlx.DB
}

// NewReportExportRepository constructs the repository.
func NewReportExportRepository(db *sqlx.DB) *ReportExportRepository {
	return &ReportExportRepository{db: db}
}

// Create inserts a new export job row with generated defaults.
func (r *ReportExportRepository) Create(ctx context.Context, job *models.ReportExport) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO report_exports (id, report_id, company_id, format, options, status, progress, file_path, result_url, created_by, created_at, finished_at, error_message)
VALUES (:id, :report_id, :company_id, :format, :options, :status, :progress, :file_path, :result_url, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create report export: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier.
func (r *ReportExportRepository) GetByID(ctx context.Context, id string) (*models.ReportExport, error) {
	var job models.ReportExport
	if err := r.db.GetContext(ctx, &job, `SELECT `+exportColumns+` FROM report_exports WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateExportParams defines the mutable fields; nil fields are left untouched.
type UpdateExportParams struct {
	Status       *models.ExportStatus
	Progress     *int
	FilePath     *string
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update persists the provided changes for a job row.
func (r *ReportExportRepository) Update(ctx context.Context, id string, params UpdateExportParams) error {
	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.Progress != nil {
		add("progress", *params.Progress)
	}
	if params.FilePath != nil {
		add("file_path", *params.FilePath)
	}
	if params.ResultURL != nil {
		add("result_url", *params.ResultURL)
	}
	if params.ErrorMessage != nil {
		add("error_message", *params.ErrorMessage)
	}
	if params.FinishedAt != nil {
		add("finished_at", *params.FinishedAt)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE report_exports SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update report export: %w", err)
	}
	return nil
}

// ListByReport returns a report's export jobs, newest first.
func (r *ReportExportRepository) ListByReport(ctx context.Context, reportID string) ([]models.ReportExport, error) {
	var jobs []models.ReportExport
	if err := r.db.SelectContext(ctx, &jobs, `SELECT `+exportColumns+` FROM report_exports WHERE report_id = $1 ORDER BY created_at DESC`, reportID); err != nil {
		return nil, fmt.Errorf("list report exports: %w", err)
	}
	return jobs, nil
}

// ListPending fetches queued or interrupted jobs for cold start recovery.
func (r *ReportExportRepository) ListPending(ctx context.Context, limit int) ([]models.ReportExport, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + exportColumns + ` FROM report_exports WHERE status IN ('QUEUED', 'PROCESSING') ORDER BY created_at ASC LIMIT $1`
	var jobs []models.ReportExport
	if err := r.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("list pending report exports: %w", err)
	}
	return jobs, nil
}

// ListFinishedBefore retrieves completed jobs prior to cutoff for cleanup.
func (r *ReportExportRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportExport, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + exportColumns + ` FROM report_exports WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2`
	var jobs []models.ReportExport
	if err := r.db.SelectContext(ctx, &jobs, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list finished report exports: %w", err)
	}
	return jobs, nil
}
