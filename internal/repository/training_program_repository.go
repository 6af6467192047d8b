package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/esg-report-api/internal/models"
)

const programColumns = `id, company_id, name, description, category, start_date, end_date, efficacy_evaluation_deadline,
        valid_for_months, is_mandatory, duration_hours, created_at, updated_at`

// TrainingProgramRepository persists training programs.
type TrainingProgramRepository struct {
	db *sqlx.DB
}

// NewTrainingProgramRepository constructs the repository.
func NewTrainingProgramRepository(db *sqlx.DB) *TrainingProgramRepository {
	return &TrainingProgramRepository{db: db}
}

// List returns programs for a company with pagination.
func (r *TrainingProgramRepository) List(ctx context.Context, filter models.TrainingProgramFilter) ([]models.TrainingProgram, int, error) {
	args := []interface{}{filter.CompanyID}
	conditions := []string{"company_id = $1"}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Mandatory != nil {
		args = append(args, *filter.Mandatory)
		conditions = append(conditions, fmt.Sprintf("is_mandatory = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}
	base := "FROM training_programs WHERE " + strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"name":       "name",
		"start_date": "start_date",
		"end_date":   "end_date",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "start_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page, size := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", programColumns, base, column, order, size, (page-1)*size)
	var programs []models.TrainingProgram
	if err := r.db.SelectContext(ctx, &programs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list training programs: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count training programs: %w", err)
	}
	return programs, total, nil
}

// FindByID returns one program.
func (r *TrainingProgramRepository) FindByID(ctx context.Context, id string) (*models.TrainingProgram, error) {
	query := `SELECT ` + programColumns + ` FROM training_programs WHERE id = $1`
	var program models.TrainingProgram
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// Create inserts a program.
func (r *TrainingProgramRepository) Create(ctx context.Context, program *models.TrainingProgram) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if program.CreatedAt.IsZero() {
		program.CreatedAt = now
	}
	program.UpdatedAt = now
	const query = `INSERT INTO training_programs (id, company_id, name, description, category, start_date, end_date, efficacy_evaluation_deadline,
        valid_for_months, is_mandatory, duration_hours, created_at, updated_at)
        VALUES (:id, :company_id, :name, :description, :category, :start_date, :end_date, :efficacy_evaluation_deadline,
        :valid_for_months, :is_mandatory, :duration_hours, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("create training program: %w", err)
	}
	return nil
}

// Update rewrites the mutable program fields.
func (r *TrainingProgramRepository) Update(ctx context.Context, program *models.TrainingProgram) error {
	program.UpdatedAt = time.Now().UTC()
	const query = `UPDATE training_programs SET name = :name, description = :description, category = :category, start_date = :start_date,
        end_date = :end_date, efficacy_evaluation_deadline = :efficacy_evaluation_deadline, valid_for_months = :valid_for_months,
        is_mandatory = :is_mandatory, duration_hours = :duration_hours, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("update training program: %w", err)
	}
	return nil
}

// Delete removes a program; enrolled trainings are removed by the foreign key cascade.
func (r *TrainingProgramRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM training_programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete training program: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check training program delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
