package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/esg-report-api/internal/models"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
	"github.com/noah-isme/esg-report-api/pkg/export"
)

type employeeTrainingRepository interface {
	Create(ctx context.Context, training *models.EmployeeTraining) error
	FindByID(ctx context.Context, id string) (*models.EmployeeTrainingDetail, error)
	Exists(ctx context.Context, employeeID, programID string) (bool, error)
	List(ctx context.Context, filter models.EmployeeTrainingFilter) ([]models.EmployeeTrainingDetail, int, error)
	ListAll(ctx context.Context, filter models.EmployeeTrainingFilter) ([]models.EmployeeTrainingDetail, error)
	Update(ctx context.Context, training *models.EmployeeTraining) error
	Delete(ctx context.Context, id string) error
}

type programFinder interface {
	FindByID(ctx context.Context, id string) (*models.TrainingProgram, error)
}

type employeeFinder interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

// EnrollTrainingRequest registers an employee in a program.
type EnrollTrainingRequest struct {
	ProgramID             string       `json:"program_id" validate:"required"`
	CompletionDate        *models.Date `json:"completion_date"`
	Score                 *float64     `json:"score" validate:"omitempty,gte=0,lte=100"`
	Notes                 string       `json:"notes"`
	Instructor            string       `json:"instructor"`
	HasEfficacyEvaluation bool         `json:"has_efficacy_evaluation"`
	IsCancelled           bool         `json:"is_cancelled"`
}

// UpdateTrainingRequest patches a training record; nil fields are left unchanged.
type UpdateTrainingRequest struct {
	CompletionDate        *models.Date `json:"completion_date"`
	ClearCompletionDate   bool         `json:"clear_completion_date"`
	Score                 *float64     `json:"score" validate:"omitempty,gte=0,lte=100"`
	Notes                 *string      `json:"notes"`
	Instructor            *string      `json:"instructor"`
	HasEfficacyEvaluation *bool        `json:"has_efficacy_evaluation"`
	IsCancelled           *bool        `json:"is_cancelled"`
}

// EmployeeTrainingService manages enrollments and resolves their statuses.
type EmployeeTrainingService struct {
	repo      employeeTrainingRepository
	programs  programFinder
	employees employeeFinder
	resolver  *TrainingStatusResolver
	cache     *CacheService
	cacheTTL  time.Duration
	csv       *export.CSVExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeTrainingService constructs the service.
func NewEmployeeTrainingService(repo employeeTrainingRepository, programs programFinder, employees employeeFinder, resolver *TrainingStatusResolver, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *EmployeeTrainingService {
	if resolver == nil {
		resolver = NewTrainingStatusResolver(StatusSourceLive, time.UTC)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeTrainingService{
		repo:      repo,
		programs:  programs,
		employees: employees,
		resolver:  resolver,
		cache:     cache,
		cacheTTL:  cacheTTL,
		csv:       export.NewCSVExporter(),
		validator: validate,
		logger:    logger,
	}
}

// Enroll creates a training record with its derived expiration date and status snapshot.
func (s *EmployeeTrainingService) Enroll(ctx context.Context, companyID, employeeID, createdBy string, req EnrollTrainingRequest) (*models.EmployeeTrainingDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid training payload")
	}
	employee, err := s.loadEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	if !employee.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "inactive employees cannot be enrolled")
	}
	program, err := s.loadProgram(ctx, companyID, req.ProgramID)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.Exists(ctx, employeeID, program.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "employee already enrolled in this program")
	}

	training := &models.EmployeeTraining{
		CompanyID:             companyID,
		EmployeeID:            employeeID,
		ProgramID:             program.ID,
		CompletionDate:        req.CompletionDate.Ptr(),
		Score:                 req.Score,
		Notes:                 req.Notes,
		Instructor:            req.Instructor,
		HasEfficacyEvaluation: req.HasEfficacyEvaluation,
		IsCancelled:           req.IsCancelled,
	}
	s.derive(program, training)
	if err := s.repo.Create(ctx, training); err != nil {
		return nil, appErrors.Internal(err, "failed to enroll employee")
	}
	s.logger.Info("employee enrolled",
		zap.String("training_id", training.ID),
		zap.String("program_id", program.ID),
		zap.String("created_by", createdBy),
		zap.String("status", string(training.StoredStatus)),
	)
	s.invalidate(ctx, companyID, employeeID)
	return s.Get(ctx, companyID, training.ID)
}

// Get returns one training with its resolved status.
func (s *EmployeeTrainingService) Get(ctx context.Context, companyID, id string) (*models.EmployeeTrainingDetail, error) {
	detail, err := s.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	s.resolver.Resolve(detail)
	return detail, nil
}

// ListByEmployee returns every training of one employee. The rows are cached with their stored
// snapshot; status is resolved after the cache so the live source never serves a stale value.
func (s *EmployeeTrainingService) ListByEmployee(ctx context.Context, companyID, employeeID string) ([]models.EmployeeTrainingDetail, bool, error) {
	// The cache key is per employee, so tenancy is checked before the cache is read or written.
	if _, err := s.loadEmployee(ctx, companyID, employeeID); err != nil {
		return nil, false, err
	}
	key := EmployeeTrainingsKey(employeeID)
	var rows []models.EmployeeTrainingDetail
	hit, _ := s.cache.Get(ctx, key, &rows)
	if !hit {
		var err error
		rows, err = s.repo.ListAll(ctx, models.EmployeeTrainingFilter{CompanyID: companyID, EmployeeID: employeeID})
		if err != nil {
			return nil, false, appErrors.Internal(err, "failed to list employee trainings")
		}
		if rows == nil {
			rows = []models.EmployeeTrainingDetail{}
		}
		_ = s.cache.Set(ctx, key, rows, s.cacheTTL)
	}
	s.resolver.ResolveAll(rows)
	return rows, hit, nil
}

// List returns a page of trainings, typically narrowed to one program.
func (s *EmployeeTrainingService) List(ctx context.Context, filter models.EmployeeTrainingFilter) ([]models.EmployeeTrainingDetail, *models.Pagination, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list trainings")
	}
	s.resolver.ResolveAll(rows)
	return rows, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Update applies the patch and recomputes the derived fields.
func (s *EmployeeTrainingService) Update(ctx context.Context, companyID, id string, req UpdateTrainingRequest) (*models.EmployeeTrainingDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid training payload")
	}
	detail, err := s.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	program, err := s.loadProgram(ctx, companyID, detail.ProgramID)
	if err != nil {
		return nil, err
	}

	training := detail.EmployeeTraining
	switch {
	case req.ClearCompletionDate:
		training.CompletionDate = nil
	case req.CompletionDate.Ptr() != nil:
		training.CompletionDate = req.CompletionDate.Ptr()
	}
	if req.Score != nil {
		training.Score = req.Score
	}
	if req.Notes != nil {
		training.Notes = *req.Notes
	}
	if req.Instructor != nil {
		training.Instructor = *req.Instructor
	}
	if req.HasEfficacyEvaluation != nil {
		training.HasEfficacyEvaluation = *req.HasEfficacyEvaluation
	}
	if req.IsCancelled != nil {
		training.IsCancelled = *req.IsCancelled
	}
	s.derive(program, &training)
	if err := s.repo.Update(ctx, &training); err != nil {
		return nil, appErrors.Internal(err, "failed to update training")
	}
	s.invalidate(ctx, companyID, training.EmployeeID)
	return s.Get(ctx, companyID, id)
}

// Delete removes a training record.
func (s *EmployeeTrainingService) Delete(ctx context.Context, companyID, id string) error {
	detail, err := s.load(ctx, companyID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "training not found")
		}
		return appErrors.Internal(err, "failed to delete training")
	}
	s.invalidate(ctx, companyID, detail.EmployeeID)
	return nil
}

// ExportCSV renders the filtered roster with resolved statuses.
func (s *EmployeeTrainingService) ExportCSV(ctx context.Context, filter models.EmployeeTrainingFilter) ([]byte, error) {
	rows, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load trainings for export")
	}
	s.resolver.ResolveAll(rows)
	data, err := s.csv.Render(trainingRosterDataset(rows))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render training export")
	}
	return data, nil
}

// derive fills the expiration date and status snapshot from the program.
func (s *EmployeeTrainingService) derive(program *models.TrainingProgram, training *models.EmployeeTraining) {
	training.ExpirationDate = TrainingExpirationDate(training.CompletionDate, program.ValidForMonths)
	training.StoredStatus = s.resolver.Snapshot(StatusInputFor(*program, *training))
}

func (s *EmployeeTrainingService) load(ctx context.Context, companyID, id string) (*models.EmployeeTrainingDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "training not found")
		}
		return nil, appErrors.Internal(err, "failed to load training")
	}
	if detail.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "training not found")
	}
	return detail, nil
}

func (s *EmployeeTrainingService) loadEmployee(ctx context.Context, companyID, id string) (*models.Employee, error) {
	employee, err := s.employees.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Internal(err, "failed to load employee")
	}
	if employee.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	return employee, nil
}

func (s *EmployeeTrainingService) loadProgram(ctx context.Context, companyID, id string) (*models.TrainingProgram, error) {
	program, err := s.programs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "training program not found")
		}
		return nil, appErrors.Internal(err, "failed to load training program")
	}
	if program.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "training program not found")
	}
	return program, nil
}

func (s *EmployeeTrainingService) invalidate(ctx context.Context, companyID, employeeID string) {
	if err := s.cache.InvalidateAll(ctx, EmployeeScope(employeeID), DashboardScope(companyID, DashboardTraining)); err != nil {
		s.logger.Warn("training cache invalidation failed", zap.String("employee_id", employeeID), zap.Error(err))
	}
}

func trainingRosterDataset(rows []models.EmployeeTrainingDetail) export.Dataset {
	data := export.Dataset{
		Columns: []export.Column{
			{Key: "employee", Label: "Colaborador"},
			{Key: "department", Label: "Departamento"},
			{Key: "program", Label: "Treinamento"},
			{Key: "start", Label: "Início"},
			{Key: "end", Label: "Término"},
			{Key: "hours", Label: "Carga Horária"},
			{Key: "status", Label: "Status"},
			{Key: "completion", Label: "Conclusão"},
			{Key: "expiration", Label: "Validade"},
			{Key: "score", Label: "Nota"},
		},
		Rows: make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"employee":   row.EmployeeName,
			"department": row.Department,
			"program":    row.ProgramName,
			"start":      formatDate(&row.ProgramStartDate),
			"end":        formatDate(&row.ProgramEndDate),
			"hours":      strconv.FormatFloat(row.ProgramDurationHours, 'f', -1, 64),
			"status":     string(row.Status),
			"completion": formatDate(row.CompletionDate),
			"expiration": formatDate(row.ExpirationDate),
			"score":      formatScore(row.Score),
		})
	}
	return data
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatScore(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
