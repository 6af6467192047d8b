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

const trainingDetailSelect = `SELECT et.id, et.company_id, et.employee_id, et.program_id, et.completion_date, et.expiration_date, et.score,
        et.notes, et.instructor, et.has_efficacy_evaluation, et.is_cancelled, et.status, et.created_at, et.updated_at,
        e.full_name AS employee_name, e.department,
        p.name AS program_name, p.start_date AS program_start_date, p.end_date AS program_end_date,
        p.efficacy_evaluation_deadline AS program_efficacy_deadline, p.valid_for_months AS program_valid_for_months,
        p.duration_hours AS program_duration_hours, p.is_mandatory AS program_is_mandatory
        FROM employee_trainings et
        JOIN employees e ON e.id = et.employee_id
        JOIN training_programs p ON p.id = et.program_id`

// EmployeeTrainingRepository persists employee training records.
type EmployeeTrainingRepository struct {
	db *sqlx.DB
}

// NewEmployeeTrainingRepository constructs the repository.
func NewEmployeeTrainingRepository(db *sqlx.DB) *EmployeeTrainingRepository {
	return &EmployeeTrainingRepository{db: db}
}

// Create inserts a training record including its status snapshot.
func (r *EmployeeTrainingRepository) Create(ctx context.Context, training *models.EmployeeTraining) error {
	if training.ID == "" {
		training.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if training.CreatedAt.IsZero() {
		training.CreatedAt = now
	}
	training.UpdatedAt = now
	const query = `INSERT INTO employee_trainings (id, company_id, employee_id, program_id, completion_date, expiration_date, score, notes, instructor,
        has_efficacy_evaluation, is_cancelled, status, created_at, updated_at)
        VALUES (:id, :company_id, :employee_id, :program_id, :completion_date, :expiration_date, :score, :notes, :instructor,
        :has_efficacy_evaluation, :is_cancelled, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, training); err != nil {
		return fmt.Errorf("create employee training: %w", err)
	}
	return nil
}

// FindByID returns the joined detail row.
func (r *EmployeeTrainingRepository) FindByID(ctx context.Context, id string) (*models.EmployeeTrainingDetail, error) {
	var detail models.EmployeeTrainingDetail
	if err := r.db.GetContext(ctx, &detail, trainingDetailSelect+" WHERE et.id = $1", id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Exists reports whether the employee is already enrolled in the program.
func (r *EmployeeTrainingRepository) Exists(ctx context.Context, employeeID, programID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM employee_trainings WHERE employee_id = $1 AND program_id = $2 LIMIT 1`, employeeID, programID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// List returns detail rows filtered by company, employee, program or department.
func (r *EmployeeTrainingRepository) List(ctx context.Context, filter models.EmployeeTrainingFilter) ([]models.EmployeeTrainingDetail, int, error) {
	where, args := trainingConditions(filter)
	page, size := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s WHERE %s ORDER BY p.start_date DESC, e.full_name ASC LIMIT %d OFFSET %d", trainingDetailSelect, where, size, (page-1)*size)
	var rows []models.EmployeeTrainingDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employee trainings: %w", err)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM employee_trainings et
        JOIN employees e ON e.id = et.employee_id
        JOIN training_programs p ON p.id = et.program_id WHERE %s`, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employee trainings: %w", err)
	}
	return rows, total, nil
}

// ListAll returns every detail row matching the filter without paging, for exports and caches.
func (r *EmployeeTrainingRepository) ListAll(ctx context.Context, filter models.EmployeeTrainingFilter) ([]models.EmployeeTrainingDetail, error) {
	where, args := trainingConditions(filter)
	query := fmt.Sprintf("%s WHERE %s ORDER BY p.start_date DESC, e.full_name ASC", trainingDetailSelect, where)
	var rows []models.EmployeeTrainingDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list all employee trainings: %w", err)
	}
	return rows, nil
}

// ListByYear returns the company's trainings whose program starts in year.
func (r *EmployeeTrainingRepository) ListByYear(ctx context.Context, companyID string, year int) ([]models.EmployeeTrainingDetail, error) {
	query := trainingDetailSelect + ` WHERE et.company_id = $1 AND EXTRACT(YEAR FROM p.start_date) = $2`
	var rows []models.EmployeeTrainingDetail
	if err := r.db.SelectContext(ctx, &rows, query, companyID, year); err != nil {
		return nil, fmt.Errorf("list employee trainings by year: %w", err)
	}
	return rows, nil
}

// ListForRecompute pages through non-cancelled rows ordered by id, starting after afterID.
// An empty afterID starts from the first row.
func (r *EmployeeTrainingRepository) ListForRecompute(ctx context.Context, afterID string, limit int) ([]models.EmployeeTrainingDetail, error) {
	if limit <= 0 {
		limit = 200
	}
	if afterID == "" {
		afterID = uuid.Nil.String()
	}
	query := trainingDetailSelect + ` WHERE et.is_cancelled = FALSE AND et.id > $1::uuid ORDER BY et.id ASC LIMIT $2`
	var rows []models.EmployeeTrainingDetail
	if err := r.db.SelectContext(ctx, &rows, query, afterID, limit); err != nil {
		return nil, fmt.Errorf("list trainings for recompute: %w", err)
	}
	return rows, nil
}

// EmployeeIDsByProgram lists the employees enrolled in a program.
func (r *EmployeeTrainingRepository) EmployeeIDsByProgram(ctx context.Context, programID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT DISTINCT employee_id FROM employee_trainings WHERE program_id = $1`, programID); err != nil {
		return nil, fmt.Errorf("list program employees: %w", err)
	}
	return ids, nil
}

// Update rewrites the mutable fields together with the derived expiration date and status snapshot.
func (r *EmployeeTrainingRepository) Update(ctx context.Context, training *models.EmployeeTraining) error {
	training.UpdatedAt = time.Now().UTC()
	const query = `UPDATE employee_trainings SET completion_date = :completion_date, expiration_date = :expiration_date, score = :score,
        notes = :notes, instructor = :instructor, has_efficacy_evaluation = :has_efficacy_evaluation, is_cancelled = :is_cancelled,
        status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, training); err != nil {
		return fmt.Errorf("update employee training: %w", err)
	}
	return nil
}

// UpdateStatus rewrites only the status snapshot when it differs.
func (r *EmployeeTrainingRepository) UpdateStatus(ctx context.Context, id string, status models.TrainingStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE employee_trainings SET status = $2, updated_at = $3 WHERE id = $1 AND status <> $2`, id, status, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update training status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check training status rows: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a training record.
func (r *EmployeeTrainingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employee_trainings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee training: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check employee training delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func trainingConditions(filter models.EmployeeTrainingFilter) (string, []interface{}) {
	args := []interface{}{filter.CompanyID}
	conditions := []string{"et.company_id = $1"}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("et.employee_id = $%d", len(args)))
	}
	if filter.ProgramID != "" {
		args = append(args, filter.ProgramID)
		conditions = append(conditions, fmt.Sprintf("et.program_id = $%d", len(args)))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		conditions = append(conditions, fmt.Sprintf("e.department = $%d", len(args)))
	}
	return strings.Join(conditions, " AND "), args
}
