package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/esg-report-api/internal/models"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, id string) error
}

type companyFinder interface {
	FindByID(ctx context.Context, id string) (*models.Company, error)
}

// CreateUserRequest represents payload for creating users.
type CreateUserRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	FullName string          `json:"full_name" validate:"required,max=200"`
	Role     models.UserRole `json:"role" validate:"required,oneof=ADMIN MANAGER VIEWER"`
	Password string          `json:"password" validate:"required,min=8"`
}

// UpdateUserRequest payload for updating users.
type UpdateUserRequest struct {
	FullName string          `json:"full_name" validate:"required,max=200"`
	Role     models.UserRole `json:"role" validate:"required,oneof=ADMIN MANAGER VIEWER"`
	Active   *bool           `json:"active"`
}

// UserActor identifies who performs a user administration call.
type UserActor struct {
	UserID    string
	CompanyID string
	IP        string
	UserAgent string
}

// UserService manages the API accounts of a company.
type UserService struct {
	repo      userRepository
	companies companyFinder
	audit     AuditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, companies companyFinder, audit AuditWriter, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, companies: companies, audit: audit, validator: validate, logger: logger}
}

// Company returns the tenant profile of the caller.
func (s *UserService) Company(ctx context.Context, companyID string) (*models.Company, error) {
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}
	return company, nil
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a user of the company by ID.
func (s *UserService) Get(ctx context.Context, companyID, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return user, nil
}

// Create adds a new user to the actor's company.
func (s *UserService) Create(ctx context.Context, actor UserActor, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create user payload")
	}

	// Emails are unique across tenants because login has no company selector.
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		CompanyID:    actor.CompanyID,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         req.Role,
		Active:       true,
		PasswordHash: string(passwordHash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.record(ctx, actor, models.AuditActionCreate, user.ID, nil, map[string]interface{}{"email": user.Email, "role": user.Role})
	return user, nil
}

// Update modifies the user attributes.
func (s *UserService) Update(ctx context.Context, actor UserActor, id string, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}
	user, err := s.Get(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if user.ID == actor.UserID && (req.Role != user.Role || (req.Active != nil && !*req.Active)) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot change your own role or active state")
	}

	old := map[string]interface{}{"role": user.Role, "active": user.Active}
	user.FullName = strings.TrimSpace(req.FullName)
	user.Role = req.Role
	if req.Active != nil {
		user.Active = *req.Active
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	s.record(ctx, actor, models.AuditActionUpdate, user.ID, old, map[string]interface{}{"role": user.Role, "active": user.Active})
	return user, nil
}

// Deactivate performs a soft delete on a user.
func (s *UserService) Deactivate(ctx context.Context, actor UserActor, id string) error {
	user, err := s.Get(ctx, actor.CompanyID, id)
	if err != nil {
		return err
	}
	if user.ID == actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot deactivate yourself")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate user")
	}

	s.record(ctx, actor, models.AuditActionDelete, user.ID, map[string]interface{}{"active": user.Active}, map[string]interface{}{"active": false})
	return nil
}

func (s *UserService) record(ctx context.Context, actor UserActor, action, userID string, oldValues, newValues map[string]interface{}) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     &actor.UserID,
		CompanyID:  &actor.CompanyID,
		Action:     action,
		Resource:   "users",
		ResourceID: &userID,
		IPAddress:  actor.IP,
		UserAgent:  actor.UserAgent,
	}
	payload := map[string]interface{}{"after": newValues}
	if oldValues != nil {
		payload["before"] = oldValues
	}
	entry.NewValues, _ = json.Marshal(payload)
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record user audit log", zap.String("action", action), zap.Error(err))
	}
}
