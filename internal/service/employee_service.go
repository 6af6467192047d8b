package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/esg-report-api/internal/models"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	ExistsByEmail(ctx context.Context, companyID, email, excludeID string) (bool, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	Deactivate(ctx context.Context, id string) error
}

// CreateEmployeeRequest holds payload for registering employees.
type CreateEmployeeRequest struct {
	FullName   string       `json:"full_name" validate:"required,max=200"`
	Email      string       `json:"email" validate:"required,email"`
	Document   string       `json:"document" validate:"omitempty,max=32"`
	Department string       `json:"department" validate:"required"`
	Position   string       `json:"position"`
	Gender     string       `json:"gender" validate:"omitempty,oneof=F M X"`
	BirthDate  *models.Date `json:"birth_date"`
	HireDate   models.Date  `json:"hire_date"`
}

// UpdateEmployeeRequest holds payload for updating employees.
type UpdateEmployeeRequest struct {
	CreateEmployeeRequest
	Active bool `json:"active"`
}

// EmployeeService handles employee use-cases.
type EmployeeService struct {
	repo      employeeRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs the employee service.
func NewEmployeeService(repo employeeRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns employees of a company and pagination metadata.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list employees")
	}
	return employees, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one employee of the company.
func (s *EmployeeService) Get(ctx context.Context, companyID, id string) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
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

// Create registers a new employee.
func (s *EmployeeService) Create(ctx context.Context, companyID string, req CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, companyID, req.Email, ""); err != nil {
		return nil, err
	}
	employee := &models.Employee{CompanyID: companyID, Active: true}
	applyEmployeeRequest(employee, req)
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, appErrors.Internal(err, "failed to create employee")
	}
	s.invalidate(ctx, employee)
	return employee, nil
}

// Update modifies an existing employee record.
func (s *EmployeeService) Update(ctx context.Context, companyID, id string, req UpdateEmployeeRequest) (*models.Employee, error) {
	if err := s.validateRequest(req.CreateEmployeeRequest); err != nil {
		return nil, err
	}
	employee, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, companyID, req.Email, id); err != nil {
		return nil, err
	}
	applyEmployeeRequest(employee, req.CreateEmployeeRequest)
	employee.Active = req.Active
	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, appErrors.Internal(err, "failed to update employee")
	}
	s.invalidate(ctx, employee)
	return employee, nil
}

// Deactivate marks the employee inactive; history is kept.
func (s *EmployeeService) Deactivate(ctx context.Context, companyID, id string) error {
	employee, err := s.Get(ctx, companyID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to deactivate employee")
	}
	s.invalidate(ctx, employee)
	return nil
}

func (s *EmployeeService) validateRequest(req CreateEmployeeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	if req.HireDate.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "hire_date is required")
	}
	return nil
}

func (s *EmployeeService) ensureEmailFree(ctx context.Context, companyID, email, excludeID string) error {
	exists, err := s.repo.ExistsByEmail(ctx, companyID, email, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to validate email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "email already used by another employee")
	}
	return nil
}

func (s *EmployeeService) invalidate(ctx context.Context, employee *models.Employee) {
	if err := s.cache.InvalidateAll(ctx, EmployeeScope(employee.ID), DashboardScope(employee.CompanyID, "")); err != nil {
		s.logger.Warn("employee cache invalidation failed", zap.String("employee_id", employee.ID), zap.Error(err))
	}
}

func applyEmployeeRequest(employee *models.Employee, req CreateEmployeeRequest) {
	employee.FullName = strings.TrimSpace(req.FullName)
	employee.Email = strings.ToLower(strings.TrimSpace(req.Email))
	employee.Document = req.Document
	employee.Department = req.Department
	employee.Position = req.Position
	employee.Gender = req.Gender
	employee.BirthDate = req.BirthDate.Ptr()
	employee.HireDate = req.HireDate.Time
}
