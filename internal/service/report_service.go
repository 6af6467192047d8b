package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/esg-report-api/internal/dto"
	"github.com/noah-isme/esg-report-api/internal/models"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
	"github.com/noah-isme/esg-report-api/pkg/gri"
)

type reportStore interface {
	Create(ctx context.Context, report *models.SustainabilityReport) error
	FindByID(ctx context.Context, id string) (*models.SustainabilityReport, error)
	ExistsForYear(ctx context.Context, companyID string, year int) (bool, error)
	List(ctx context.Context, filter models.ReportFilter) ([]models.SustainabilityReport, int, error)
	UpdateSection(ctx context.Context, id string, step models.WizardStep, data models.SectionData) (models.ReportSections, error)
	UpdateStep(ctx context.Context, id string, step models.WizardStep, completedAt *time.Time) error
	Delete(ctx context.Context, id string) error
}

// ReportService drives sustainability reports through the wizard.
type ReportService struct {
	repo      reportStore
	catalog   *gri.Catalog
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(repo reportStore, catalog *gri.Catalog, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:      repo,
		catalog:   catalog,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Create opens a new report at the first wizard step. One report per company and year.
func (s *ReportService) Create(ctx context.Context, companyID, createdBy string, req dto.CreateReportRequest) (*dto.ReportResponse, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	exists, err := s.repo.ExistsForYear(ctx, companyID, req.Year)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check report year")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("a report for %d already exists", req.Year))
	}
	report := &models.SustainabilityReport{
		CompanyID:   companyID,
		Year:        req.Year,
		Title:       req.Title,
		CurrentStep: WizardSteps[0],
		Sections:    models.ReportSections{},
		CreatedBy:   createdBy,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, appErrors.Internal(err, "failed to create report")
	}
	return reportResponse(report), nil
}

// Get returns a report, served from cache when possible.
func (s *ReportService) Get(ctx context.Context, companyID, id string) (*dto.ReportResponse, bool, error) {
	key := ReportKey(id)
	var cached models.SustainabilityReport
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit && cached.CompanyID == companyID {
		return reportResponse(&cached), true, nil
	}
	report, err := s.load(ctx, companyID, id)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache report", zap.String("report_id", id), zap.Error(err))
	}
	return reportResponse(report), false, nil
}

// List pages through a company's reports, newest year first.
func (s *ReportService) List(ctx context.Context, filter models.ReportFilter) ([]models.SustainabilityReport, *models.Pagination, error) {
	reports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list reports")
	}
	return reports, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// UpdateSection replaces the data of one step. Field keys are matched against the GRI catalog and
// the unmatched ones are returned alongside the stored report.
func (s *ReportService) UpdateSection(ctx context.Context, companyID, id string, step models.WizardStep, req dto.UpdateSectionRequest) (*dto.SectionUpdateResponse, error) {
	if !ValidWizardStep(step) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown wizard step %q", step))
	}
	if step == models.WizardStepReview {
		return nil, appErrors.Clone(appErrors.ErrValidation, "the review step holds no section data")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	report, err := s.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	sections, err := s.repo.UpdateSection(ctx, id, step, req.Fields)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Internal(err, "failed to update report section")
	}
	report.Sections = sections
	report.UpdatedAt = s.now().UTC()
	s.invalidate(ctx, id)

	keys := make([]string, 0, len(req.Fields))
	for k := range req.Fields {
		keys = append(keys, k)
	}
	unknown := []string{}
	if s.catalog != nil {
		if u := s.catalog.Unknown(keys); u != nil {
			unknown = u
		}
	}
	return &dto.SectionUpdateResponse{ReportResponse: *reportResponse(report), UnknownIndicators: unknown}, nil
}

// Next advances one step. Reaching review from stakeholders marks the report completed.
func (s *ReportService) Next(ctx context.Context, companyID, id string) (*dto.ReportResponse, error) {
	return s.move(ctx, companyID, id, func(report *models.SustainabilityReport) (models.WizardStep, error) {
		next, err := NextWizardStep(report.CurrentStep)
		if err != nil {
			return "", err
		}
		if report.CurrentStep == models.WizardStepStakeholders && next == models.WizardStepReview && report.CompletedAt == nil {
			completed := s.now().UTC()
			report.CompletedAt = &completed
		}
		return next, nil
	})
}

// Previous moves back one step.
func (s *ReportService) Previous(ctx context.Context, companyID, id string) (*dto.ReportResponse, error) {
	return s.move(ctx, companyID, id, func(report *models.SustainabilityReport) (models.WizardStep, error) {
		return PreviousWizardStep(report.CurrentStep)
	})
}

// GoTo jumps to any known step without touching completed_at.
func (s *ReportService) GoTo(ctx context.Context, companyID, id string, req dto.GoToStepRequest) (*dto.ReportResponse, error) {
	if !ValidWizardStep(req.Step) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown wizard step %q", req.Step))
	}
	return s.move(ctx, companyID, id, func(*models.SustainabilityReport) (models.WizardStep, error) {
		return req.Step, nil
	})
}

// Delete removes a report and its exports.
func (s *ReportService) Delete(ctx context.Context, companyID, id string) error {
	if _, err := s.load(ctx, companyID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return appErrors.Internal(err, "failed to delete report")
	}
	s.invalidate(ctx, id)
	return nil
}

// Load returns the raw report for collaborators such as the export pipeline.
func (s *ReportService) Load(ctx context.Context, companyID, id string) (*models.SustainabilityReport, error) {
	return s.load(ctx, companyID, id)
}

func (s *ReportService) move(ctx context.Context, companyID, id string, target func(*models.SustainabilityReport) (models.WizardStep, error)) (*dto.ReportResponse, error) {
	report, err := s.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	step, err := target(report)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStep(ctx, id, step, report.CompletedAt); err != nil {
		return nil, appErrors.Internal(err, "failed to update wizard step")
	}
	report.CurrentStep = step
	report.UpdatedAt = s.now().UTC()
	s.invalidate(ctx, id)
	return reportResponse(report), nil
}

func (s *ReportService) load(ctx context.Context, companyID, id string) (*models.SustainabilityReport, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Internal(err, "failed to load report")
	}
	if report.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	return report, nil
}

func (s *ReportService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, ReportScope(id)); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.String("report_id", id), zap.Error(err))
	}
}

func reportResponse(report *models.SustainabilityReport) *dto.ReportResponse {
	return &dto.ReportResponse{
		Report:   *report,
		Progress: WizardProgress(report.CurrentStep),
		Steps:    WizardSteps,
	}
}
