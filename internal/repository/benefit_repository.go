package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/esg-report-api/internal/models"
)

const benefitColumns = `id, company_id, employee_id, benefit_type, monthly_cost, started_at, ended_at, created_at`

// BenefitRepository persists employee benefits.
type BenefitRepository struct {
	db *sqlx.DB
}

// NewBenefitRepository constructs the repository.
func NewBenefitRepository(db *sqlx.DB) *BenefitRepository {
	return &BenefitRepository{db: db}
}

// Create inserts a benefit row.
func (r *BenefitRepository) Create(ctx context.Context, benefit *models.Benefit) error {
	if benefit.ID == "" {
		benefit.ID = uuid.NewString()
	}
	if benefit.CreatedAt.IsZero() {
		benefit.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO benefits (id, company_id, employee_id, benefit_type, monthly_cost, started_at, ended_at, created_at)
VALUES (:id, :company_id, :employee_id, :benefit_type, :monthly_cost, :started_at, :ended_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, benefit); err != nil {
		return fmt.Errorf("create benefit: %w", err)
	}
	return nil
}

// FindByID returns one benefit.
func (r *BenefitRepository) FindByID(ctx context.Context, id string) (*models.Benefit, error) {
	var benefit models.Benefit
	if err := r.db.GetContext(ctx, &benefit, `SELECT `+benefitColumns+` FROM benefits WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &benefit, nil
}

// ListByEmployee returns the benefits of one employee, newest first.
func (r *BenefitRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.Benefit, error) {
	var benefits []models.Benefit
	if err := r.db.SelectContext(ctx, &benefits, `SELECT `+benefitColumns+` FROM benefits WHERE employee_id = $1 ORDER BY started_at DESC`, employeeID); err != nil {
		return nil, fmt.Errorf("list employee benefits: %w", err)
	}
	return benefits, nil
}

// ListByCompany returns every benefit of a company.
func (r *BenefitRepository) ListByCompany(ctx context.Context, companyID string) ([]models.Benefit, error) {
	var benefits []models.Benefit
	if err := r.db.SelectContext(ctx, &benefits, `SELECT `+benefitColumns+` FROM benefits WHERE company_id = $1`, companyID); err != nil {
		return nil, fmt.Errorf("list company benefits: %w", err)
	}
	return benefits, nil
}

// Delete removes a benefit row.
func (r *BenefitRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM benefits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete benefit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check benefit delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
