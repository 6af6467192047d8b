package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/esg-report-api/internal/models"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
)

type benefitRepository interface {
	Create(ctx context.Context, benefit *models.Benefit) error
	FindByID(ctx context.Context, id string) (*models.Benefit, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]models.Benefit, error)
	Delete(ctx context.Context, id string) error
}

// CreateBenefitRequest is the payload for granting a benefit.
type CreateBenefitRequest struct {
	BenefitType string       `json:"benefit_type" validate:"required,max=100"`
	MonthlyCost float64      `json:"monthly_cost" validate:"gte=0"`
	StartedAt   models.Date  `json:"started_at"`
	EndedAt     *models.Date `json:"ended_at"`
}

// BenefitService manages employee benefits.
type BenefitService struct {
	repo      benefitRepository
	employees employeeFinder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBenefitService constructs the service.
func NewBenefitService(repo benefitRepository, employees employeeFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BenefitService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BenefitService{repo: repo, employees: employees, cache: cache, validator: validate, logger: logger}
}

// Create grants a benefit to an employee of the company.
func (s *BenefitService) Create(ctx context.Context, companyID, employeeID string, req CreateBenefitRequest) (*models.Benefit, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid benefit payload")
	}
	if req.StartedAt.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "started_at is required")
	}
	if req.EndedAt.Ptr() != nil && req.EndedAt.Before(req.StartedAt.Time) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ended_at must not be before started_at")
	}
	if err := s.ensureEmployee(ctx, companyID, employeeID); err != nil {
		return nil, err
	}
	benefit := &models.Benefit{
		CompanyID:   companyID,
		EmployeeID:  employeeID,
		BenefitType: req.BenefitType,
		MonthlyCost: req.MonthlyCost,
		StartedAt:   req.StartedAt.Time,
		EndedAt:     req.EndedAt.Ptr(),
	}
	if err := s.repo.Create(ctx, benefit); err != nil {
		return nil, appErrors.Internal(err, "failed to create benefit")
	}
	s.invalidate(ctx, companyID)
	return benefit, nil
}

// ListByEmployee returns the benefits of one employee.
func (s *BenefitService) ListByEmployee(ctx context.Context, companyID, employeeID string) ([]models.Benefit, error) {
	if err := s.ensureEmployee(ctx, companyID, employeeID); err != nil {
		return nil, err
	}
	benefits, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list benefits")
	}
	return benefits, nil
}

// Delete removes a benefit.
func (s *BenefitService) Delete(ctx context.Context, companyID, id string) error {
	benefit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "benefit not found")
		}
		return appErrors.Internal(err, "failed to load benefit")
	}
	if benefit.CompanyID != companyID {
		return appErrors.Clone(appErrors.ErrNotFound, "benefit not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "benefit not found")
		}
		return appErrors.Internal(err, "failed to delete benefit")
	}
	s.invalidate(ctx, companyID)
	return nil
}

func (s *BenefitService) ensureEmployee(ctx context.Context, companyID, employeeID string) error {
	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return appErrors.Internal(err, "failed to load employee")
	}
	if employee.CompanyID != companyID {
		return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	return nil
}

func (s *BenefitService) invalidate(ctx context.Context, companyID string) {
	if err := s.cache.Invalidate(ctx, DashboardScope(companyID, DashboardBenefits)); err != nil {
		s.logger.Warn("benefit dashboard invalidation failed", zap.Error(err))
	}
}
