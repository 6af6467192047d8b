package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/esg-report-api/internal/models"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
)

type esgMetricRepository interface {
	CreateEmission(ctx context.Context, rec *models.EmissionRecord) error
	CreateResource(ctx context.Context, rec *models.ResourceRecord) error
	CreateStakeholderEngagement(ctx context.Context, rec *models.StakeholderEngagement) error
	CreateEconomicValue(ctx context.Context, rec *models.EconomicValueItem) error
	ListEmissions(ctx context.Context, companyID string, year int) ([]models.EmissionRecord, error)
	ListResources(ctx context.Context, companyID string, year int) ([]models.ResourceRecord, error)
	ListStakeholderEngagements(ctx context.Context, companyID string, year int) ([]models.StakeholderEngagement, error)
	ListEconomicValues(ctx context.Context, companyID string, year int) ([]models.EconomicValueItem, error)
}

// EmissionRequest records a GHG inventory line.
type EmissionRequest struct {
	Year   int     `json:"year" validate:"required,gte=1900,lte=2100"`
	Scope  int     `json:"scope" validate:"required,oneof=1 2 3"`
	Source string  `json:"source" validate:"required,max=200"`
	TCO2e  float64 `json:"tco2e" validate:"gte=0"`
}

// ResourceRequest records water, waste and energy figures.
type ResourceRequest struct {
	Year           int     `json:"year" validate:"required,gte=1900,lte=2100"`
	WaterM3        float64 `json:"water_m3" validate:"gte=0"`
	WasteTonnes    float64 `json:"waste_tonnes" validate:"gte=0"`
	RecycledTonnes float64 `json:"recycled_tonnes" validate:"gte=0,ltefield=WasteTonnes"`
	EnergyMWh      float64 `json:"energy_mwh" validate:"gte=0"`
}

// StakeholderRequest records an engagement score.
type StakeholderRequest struct {
	Year  int     `json:"year" validate:"required,gte=1900,lte=2100"`
	Group string  `json:"group" validate:"required,max=100"`
	Score float64 `json:"score" validate:"gte=0,lte=10"`
	Notes string  `json:"notes"`
}

// EconomicValueRequest records one DVA line.
type EconomicValueRequest struct {
	Year        int     `json:"year" validate:"required,gte=1900,lte=2100"`
	Kind        string  `json:"kind" validate:"required,oneof=generated distributed"`
	Group       string  `json:"group" validate:"required_if=Kind distributed"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

// ESGMetricService appends the raw rows that back the environmental, stakeholder and economic
// dashboards.
type ESGMetricService struct {
	repo      esgMetricRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewESGMetricService constructs the service.
func NewESGMetricService(repo esgMetricRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ESGMetricService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ESGMetricService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// RecordEmission stores an emission record.
func (s *ESGMetricService) RecordEmission(ctx context.Context, companyID string, req EmissionRequest) (*models.EmissionRecord, error) {
	if err := s.validate(req, "emission"); err != nil {
		return nil, err
	}
	rec := &models.EmissionRecord{CompanyID: companyID, Year: req.Year, Scope: req.Scope, Source: strings.TrimSpace(req.Source), TCO2e: req.TCO2e}
	if err := s.repo.CreateEmission(ctx, rec); err != nil {
		return nil, appErrors.Internal(err, "failed to record emission")
	}
	s.invalidate(ctx, companyID, DashboardEnvironmental)
	return rec, nil
}

// RecordResource stores a resource usage record.
func (s *ESGMetricService) RecordResource(ctx context.Context, companyID string, req ResourceRequest) (*models.ResourceRecord, error) {
	if err := s.validate(req, "resource"); err != nil {
		return nil, err
	}
	rec := &models.ResourceRecord{
		CompanyID:      companyID,
		Year:           req.Year,
		WaterM3:        req.WaterM3,
		WasteTonnes:    req.WasteTonnes,
		RecycledTonnes: req.RecycledTonnes,
		EnergyMWh:      req.EnergyMWh,
	}
	if err := s.repo.CreateResource(ctx, rec); err != nil {
		return nil, appErrors.Internal(err, "failed to record resource usage")
	}
	s.invalidate(ctx, companyID, DashboardEnvironmental)
	return rec, nil
}

// RecordStakeholderEngagement stores an engagement score.
func (s *ESGMetricService) RecordStakeholderEngagement(ctx context.Context, companyID string, req StakeholderRequest) (*models.StakeholderEngagement, error) {
	if err := s.validate(req, "stakeholder engagement"); err != nil {
		return nil, err
	}
	rec := &models.StakeholderEngagement{CompanyID: companyID, Year: req.Year, Group: strings.TrimSpace(req.Group), Score: req.Score, Notes: req.Notes}
	if err := s.repo.CreateStakeholderEngagement(ctx, rec); err != nil {
		return nil, appErrors.Internal(err, "failed to record stakeholder engagement")
	}
	s.invalidate(ctx, companyID, DashboardStakeholders)
	return rec, nil
}

// RecordEconomicValue stores a generated or distributed value line.
func (s *ESGMetricService) RecordEconomicValue(ctx context.Context, companyID string, req EconomicValueRequest) (*models.EconomicValueItem, error) {
	if err := s.validate(req, "economic value"); err != nil {
		return nil, err
	}
	rec := &models.EconomicValueItem{
		CompanyID:   companyID,
		Year:        req.Year,
		Kind:        models.EconomicValueKind(req.Kind),
		Group:       strings.TrimSpace(req.Group),
		Description: req.Description,
		Amount:      req.Amount,
	}
	if err := s.repo.CreateEconomicValue(ctx, rec); err != nil {
		return nil, appErrors.Internal(err, "failed to record economic value")
	}
	s.invalidate(ctx, companyID, DashboardEconomic)
	return rec, nil
}

func (s *ESGMetricService) validate(req interface{}, what string) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+what+" payload")
	}
	return nil
}

func (s *ESGMetricService) invalidate(ctx context.Context, companyID, kind string) {
	if err := s.cache.Invalidate(ctx, DashboardScope(companyID, kind)); err != nil {
		s.logger.Warn("dashboard invalidation failed", zap.String("kind", kind), zap.Error(err))
	}
}
