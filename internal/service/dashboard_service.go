package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/esg-report-api/internal/dto"
	"github.com/noah-isme/esg-report-api/internal/models"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
)

type trainingYearLister interface {
	ListByYear(ctx context.Context, companyID string, year int) ([]models.EmployeeTrainingDetail, error)
}

type companyBenefitLister interface {
	ListByCompany(ctx context.Context, companyID string) ([]models.Benefit, error)
}

type headcountCounter interface {
	CountActive(ctx context.Context, companyID string) (int, error)
}

type esgMetricLister interface {
	ListEmissions(ctx context.Context, companyID string, year int) ([]models.EmissionRecord, error)
	ListResources(ctx context.Context, companyID string, year int) ([]models.ResourceRecord, error)
	ListStakeholderEngagements(ctx context.Context, companyID string, year int) ([]models.StakeholderEngagement, error)
	ListEconomicValues(ctx context.Context, companyID string, year int) ([]models.EconomicValueItem, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL       time.Duration
	ExpiringWithin time.Duration
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Trainings trainingYearLister
	Benefits  companyBenefitLister
	Employees headcountCounter
	Metrics   esgMetricLister
	Resolver  *TrainingStatusResolver
	Cache     *CacheService
	Logger    *zap.Logger
	Config    DashboardServiceConfig
}

// DashboardService loads rows for one company and year, reduces them and caches the result.
type DashboardService struct {
	trainings trainingYearLister
	benefits  companyBenefitLister
	employees headcountCounter
	metrics   esgMetricLister
	resolver  *TrainingStatusResolver
	cache     *CacheService
	logger    *zap.Logger
	cfg       DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.ExpiringWithin <= 0 {
		cfg.ExpiringWithin = 30 * 24 * time.Hour
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := params.Resolver
	if resolver == nil {
		resolver = NewTrainingStatusResolver(StatusSourceLive, time.UTC)
	}
	return &DashboardService{
		trainings: params.Trainings,
		benefits:  params.Benefits,
		employees: params.Employees,
		metrics:   params.Metrics,
		resolver:  resolver,
		cache:     params.Cache,
		logger:    logger,
		cfg:       cfg,
	}
}

// Training summarises training records of programs starting in year. Statuses and the expiring
// window depend on the current day, so the entry never outlives the day it was built on.
func (s *DashboardService) Training(ctx context.Context, companyID string, year int) (*dto.TrainingDashboard, bool, error) {
	return cachedDashboard(ctx, s, companyID, DashboardTraining, year, s.untilEndOfDay(), func(year int) (dto.TrainingDashboard, error) {
		records, err := s.trainings.ListByYear(ctx, companyID, year)
		if err != nil {
			return dto.TrainingDashboard{}, appErrors.Internal(err, "failed to load trainings")
		}
		headcount, err := s.headcount(ctx, companyID)
		if err != nil {
			return dto.TrainingDashboard{}, err
		}
		s.resolver.ResolveAll(records)
		return AggregateTraining(year, records, headcount, s.resolver.Now(), s.cfg.ExpiringWithin), nil
	})
}

// Benefits summarises benefit costs active during year.
func (s *DashboardService) Benefits(ctx context.Context, companyID string, year int) (*dto.BenefitsDashboard, bool, error) {
	return cachedDashboard(ctx, s, companyID, DashboardBenefits, year, s.cfg.CacheTTL, func(year int) (dto.BenefitsDashboard, error) {
		benefits, err := s.benefits.ListByCompany(ctx, companyID)
		if err != nil {
			return dto.BenefitsDashboard{}, appErrors.Internal(err, "failed to load benefits")
		}
		headcount, err := s.headcount(ctx, companyID)
		if err != nil {
			return dto.BenefitsDashboard{}, err
		}
		return AggregateBenefits(year, benefits, headcount), nil
	})
}

// Environmental summarises emissions and resource usage.
func (s *DashboardService) Environmental(ctx context.Context, companyID string, year int) (*dto.EnvironmentalDashboard, bool, error) {
	return cachedDashboard(ctx, s, companyID, DashboardEnvironmental, year, s.cfg.CacheTTL, func(year int) (dto.EnvironmentalDashboard, error) {
		emissions, err := s.metrics.ListEmissions(ctx, companyID, year)
		if err != nil {
			return dto.EnvironmentalDashboard{}, appErrors.Internal(err, "failed to load emissions")
		}
		resources, err := s.metrics.ListResources(ctx, companyID, year)
		if err != nil {
			return dto.EnvironmentalDashboard{}, appErrors.Internal(err, "failed to load resource usage")
		}
		headcount, err := s.headcount(ctx, companyID)
		if err != nil {
			return dto.EnvironmentalDashboard{}, err
		}
		return AggregateEnvironmental(year, emissions, resources, headcount), nil
	})
}

// Stakeholders summarises engagement scores.
func (s *DashboardService) Stakeholders(ctx context.Context, companyID string, year int) (*dto.StakeholderDashboard, bool, error) {
	return cachedDashboard(ctx, s, companyID, DashboardStakeholders, year, s.cfg.CacheTTL, func(year int) (dto.StakeholderDashboard, error) {
		rows, err := s.metrics.ListStakeholderEngagements(ctx, companyID, year)
		if err != nil {
			return dto.StakeholderDashboard{}, appErrors.Internal(err, "failed to load stakeholder engagements")
		}
		return AggregateStakeholders(year, rows), nil
	})
}

// Economic builds the added-value statement.
func (s *DashboardService) Economic(ctx context.Context, companyID string, year int) (*dto.EconomicDashboard, bool, error) {
	return cachedDashboard(ctx, s, companyID, DashboardEconomic, year, s.cfg.CacheTTL, func(year int) (dto.EconomicDashboard, error) {
		items, err := s.metrics.ListEconomicValues(ctx, companyID, year)
		if err != nil {
			return dto.EconomicDashboard{}, appErrors.Internal(err, "failed to load economic values")
		}
		return AggregateEconomic(year, items), nil
	})
}

func (s *DashboardService) untilEndOfDay() time.Duration {
	now := s.resolver.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	if left := midnight.Sub(now); left < s.cfg.CacheTTL {
		return left
	}
	return s.cfg.CacheTTL
}

func (s *DashboardService) headcount(ctx context.Context, companyID string) (int, error) {
	n, err := s.employees.CountActive(ctx, companyID)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to count employees")
	}
	return n, nil
}

// cachedDashboard runs the try-cache, compose, persist sequence shared by every dashboard.
// A zero year means the current year in the training location.
func cachedDashboard[T any](ctx context.Context, s *DashboardService, companyID, kind string, year int, ttl time.Duration, compose func(int) (T, error)) (*T, bool, error) {
	if year == 0 {
		year = s.resolver.Now().Year()
	}
	if year < 1900 || year > 2100 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "year out of range")
	}
	key := DashboardKey(companyID, kind, year)

	var cached T
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	summary, err := compose(year)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.Set(ctx, key, summary, ttl); err != nil {
		s.logger.Warn("failed to persist dashboard cache", zap.String("key", key), zap.Error(err))
	}
	return &summary, false, nil
}
