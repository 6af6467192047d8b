package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/esg-report-api/internal/models"
)

const reportColumns = `id, company_id, year, title, current_step, sections, completed_at, created_by, created_at, updated_at`

// ReportRepository persists sustainability reports built through the wizard.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a report positioned on its first wizard step.
func (r *ReportRepository) Create(ctx context.Context, report *models.SustainabilityReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.Sections == nil {
		report.Sections = models.ReportSections{}
	}
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now
	const query = `INSERT INTO sustainability_reports (id, company_id, year, title, current_step, sections, completed_at, created_by, created_at, updated_at)
VALUES (:id, :company_id, :year, :title, :current_step, :sections, :completed_at, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create sustainability report: %w", err)
	}
	return nil
}

// FindByID returns a report by id.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.SustainabilityReport, error) {
	var report models.SustainabilityReport
	if err := r.db.GetContext(ctx, &report, `SELECT `+reportColumns+` FROM sustainability_reports WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &report, nil
}

// ExistsForYear reports whether the company already has a report for year.
func (r *ReportRepository) ExistsForYear(ctx context.Context, companyID string, year int) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM sustainability_reports WHERE company_id = $1 AND year = $2 LIMIT 1`, companyID, year)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check report year: %w", err)
	}
	return true, nil
}

// List returns a company's reports, newest year first.
func (r *ReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.SustainabilityReport, int, error) {
	args := []interface{}{filter.CompanyID}
	conditions := []string{"company_id = $1"}
	if filter.Year > 0 {
		args = append(args, filter.Year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}
	base := "FROM sustainability_reports WHERE " + strings.Join(conditions, " AND ")
	page, size := pageBounds(filter.Page, filter.PageSize)

	var reports []models.SustainabilityReport
	query := fmt.Sprintf("SELECT %s %s ORDER BY year DESC, created_at DESC LIMIT %d OFFSET %d", reportColumns, base, size, (page-1)*size)
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sustainability reports: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count sustainability reports: %w", err)
	}
	return reports, total, nil
}

// UpdateSection replaces the data of one step in place and returns the merged sections, so
// concurrent saves of different steps do not overwrite each other.
func (r *ReportRepository) UpdateSection(ctx context.Context, id string, step models.WizardStep, data models.SectionData) (models.ReportSections, error) {
	if data == nil {
		data = models.SectionData{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal report section: %w", err)
	}
	const query = `UPDATE sustainability_reports
        SET sections = jsonb_set(COALESCE(sections, '{}'::jsonb), ARRAY[$2::text], $3::jsonb, true), updated_at = $4
        WHERE id = $1 RETURNING sections`
	var sections models.ReportSections
	if err := r.db.GetContext(ctx, &sections, query, id, string(step), payload, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("update report section: %w", err)
	}
	return sections, nil
}

// UpdateStep persists the wizard position and completion timestamp.
func (r *ReportRepository) UpdateStep(ctx context.Context, id string, step models.WizardStep, completedAt *time.Time) error {
	const query = `UPDATE sustainability_reports SET current_step = $2, completed_at = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, step, completedAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("update report step: %w", err)
	}
	return nil
}

// Delete removes a report and, through the cascade, its export jobs.
func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sustainability_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sustainability report: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check report delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
