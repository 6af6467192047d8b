package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/esg-report-api/internal/models"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
)

type trainingProgramRepository interface {
	List(ctx context.Context, filter models.TrainingProgramFilter) ([]models.TrainingProgram, int, error)
	FindByID(ctx context.Context, id string) (*models.TrainingProgram, error)
	Create(ctx context.Context, program *models.TrainingProgram) error
	Update(ctx context.Context, program *models.TrainingProgram) error
	Delete(ctx context.Context, id string) error
}

type programEnrollmentLookup interface {
	EmployeeIDsByProgram(ctx context.Context, programID string) ([]string, error)
}

// ProgramStatusRefresher rewrites stored status snapshots after a program window changes.
type ProgramStatusRefresher interface {
	RefreshProgram(ctx context.Context, companyID, programID string) (int, error)
}

// TrainingProgramRequest is the payload for creating or updating programs.
type TrainingProgramRequest struct {
	Name                       string       `json:"name" validate:"required,max=200"`
	Description                string       `json:"description"`
	Category                   string       `json:"category" validate:"omitempty,max=100"`
	StartDate                  models.Date  `json:"start_date"`
	EndDate                    models.Date  `json:"end_date"`
	EfficacyEvaluationDeadline *models.Date `json:"efficacy_evaluation_deadline"`
	ValidForMonths             *int         `json:"valid_for_months" validate:"omitempty,min=0"`
	IsMandatory                bool         `json:"is_mandatory"`
	DurationHours              float64      `json:"duration_hours" validate:"gte=0"`
}

// TrainingProgramService manages training programs.
type TrainingProgramService struct {
	repo        trainingProgramRepository
	enrollments programEnrollmentLookup
	refresher   ProgramStatusRefresher
	cache       *CacheService
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTrainingProgramService constructs the service. refresher may be nil.
func NewTrainingProgramService(repo trainingProgramRepository, enrollments programEnrollmentLookup, refresher ProgramStatusRefresher, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *TrainingProgramService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrainingProgramService{
		repo:        repo,
		enrollments: enrollments,
		refresher:   refresher,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger,
	}
}

// List returns the company's programs.
func (s *TrainingProgramService) List(ctx context.Context, filter models.TrainingProgramFilter) ([]models.TrainingProgram, *models.Pagination, error) {
	programs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list training programs")
	}
	return programs, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one program, served from cache when possible.
func (s *TrainingProgramService) Get(ctx context.Context, companyID, id string) (*models.TrainingProgram, error) {
	var cached models.TrainingProgram
	if hit, _ := s.cache.Get(ctx, ProgramKey(id), &cached); hit && cached.CompanyID == companyID {
		return &cached, nil
	}
	program, err := s.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, ProgramKey(id), program, s.cacheTTL)
	return program, nil
}

// Create validates and stores a program.
func (s *TrainingProgramService) Create(ctx context.Context, companyID string, req TrainingProgramRequest) (*models.TrainingProgram, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	program := &models.TrainingProgram{CompanyID: companyID}
	applyProgramRequest(program, req)
	if err := s.repo.Create(ctx, program); err != nil {
		return nil, appErrors.Internal(err, "failed to create training program")
	}
	if err := s.cache.Invalidate(ctx, DashboardScope(companyID, DashboardTraining)); err != nil {
		s.logger.Warn("dashboard invalidation failed", zap.Error(err))
	}
	return program, nil
}

// Update rewrites the program, refreshes enrolled status snapshots and drops every dependent cache.
func (s *TrainingProgramService) Update(ctx context.Context, companyID, id string, req TrainingProgramRequest) (*models.TrainingProgram, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	program, err := s.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	applyProgramRequest(program, req)
	if err := s.repo.Update(ctx, program); err != nil {
		return nil, appErrors.Internal(err, "failed to update training program")
	}
	if s.refresher != nil {
		if _, err := s.refresher.RefreshProgram(ctx, companyID, id); err != nil {
			s.logger.Warn("training status refresh failed", zap.String("program_id", id), zap.Error(err))
		}
	}
	s.invalidate(ctx, program)
	return program, nil
}

// Delete removes a program. Enrolled trainings are removed by the database cascade.
func (s *TrainingProgramService) Delete(ctx context.Context, companyID, id string) error {
	program, err := s.load(ctx, companyID, id)
	if err != nil {
		return err
	}
	// Collected before delete; the cascade removes the rows we look them up from.
	patterns := s.dependentPatterns(ctx, program)
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "training program not found")
		}
		return appErrors.Internal(err, "failed to delete training program")
	}
	if err := s.cache.InvalidateAll(ctx, patterns...); err != nil {
		s.logger.Warn("program cache invalidation failed", zap.String("program_id", id), zap.Error(err))
	}
	return nil
}

func (s *TrainingProgramService) load(ctx context.Context, companyID, id string) (*models.TrainingProgram, error) {
	program, err := s.repo.FindByID(ctx, id)
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

func (s *TrainingProgramService) validate(req TrainingProgramRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid training program payload")
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "start_date and end_date are required")
	}
	if calendarDay(req.EndDate.Time).Before(calendarDay(req.StartDate.Time)) {
		return appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}
	if deadline := req.EfficacyEvaluationDeadline.Ptr(); deadline != nil && calendarDay(*deadline).Before(calendarDay(req.EndDate.Time)) {
		return appErrors.Clone(appErrors.ErrValidation, "efficacy_evaluation_deadline must not be before end_date")
	}
	return nil
}

func (s *TrainingProgramService) invalidate(ctx context.Context, program *models.TrainingProgram) {
	if err := s.cache.InvalidateAll(ctx, s.dependentPatterns(ctx, program)...); err != nil {
		s.logger.Warn("program cache invalidation failed", zap.String("program_id", program.ID), zap.Error(err))
	}
}

func (s *TrainingProgramService) dependentPatterns(ctx context.Context, program *models.TrainingProgram) []string {
	patterns := []string{ProgramScope(program.ID), DashboardScope(program.CompanyID, DashboardTraining)}
	if !s.cache.Enabled() || s.enrollments == nil {
		return patterns
	}
	employeeIDs, err := s.enrollments.EmployeeIDsByProgram(ctx, program.ID)
	if err != nil {
		s.logger.Warn("failed to list enrolled employees", zap.String("program_id", program.ID), zap.Error(err))
		return patterns
	}
	for _, id := range employeeIDs {
		patterns = append(patterns, EmployeeScope(id))
	}
	return patterns
}

func applyProgramRequest(program *models.TrainingProgram, req TrainingProgramRequest) {
	program.Name = req.Name
	program.Description = req.Description
	program.Category = req.Category
	program.StartDate = req.StartDate.Time
	program.EndDate = req.EndDate.Time
	program.EfficacyEvaluationDeadline = req.EfficacyEvaluationDeadline.Ptr()
	program.ValidForMonths = req.ValidForMonths
	program.IsMandatory = req.IsMandatory
	program.DurationHours = req.DurationHours
}
