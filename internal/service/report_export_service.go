package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/esg-report-api/internal/dto"
	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/internal/repository"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
	"github.com/noah-isme/esg-report-api/pkg/jobs"
)

// JobTypeReportExport routes queue jobs to ReportExportWorker.
const JobTypeReportExport = "report.export"

type reportExportStore interface {
	Create(ctx context.Context, job *models.ReportExport) error
	GetByID(ctx context.Context, id string) (*models.ReportExport, error)
	Update(ctx context.Context, id string, params repository.UpdateExportParams) error
	ListByReport(ctx context.Context, reportID string) ([]models.ReportExport, error)
	ListPending(ctx context.Context, limit int) ([]models.ReportExport, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportExport, error)
}

type reportLoader interface {
	Load(ctx context.Context, companyID, id string) (*models.SustainabilityReport, error)
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ReportExport) (*ExportResult, error)
}

// ReportExportConfig governs queue recovery and cleanup.
type ReportExportConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ReportExportService orchestrates the export job lifecycle.
type ReportExportService struct {
	repo      reportExportStore
	reports   reportLoader
	queue     jobDispatcher
	exporter  *ExportService
	audit     AuditWriter
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportExportConfig
	now       func() time.Time
}

// NewReportExportService constructs the service.
func NewReportExportService(repo reportExportStore, reports reportLoader, queue jobDispatcher, exporter *ExportService, audit AuditWriter, validate *validator.Validate, logger *zap.Logger, cfg ReportExportConfig) *ReportExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ReportExportService{
		repo:      repo,
		reports:   reports,
		queue:     queue,
		exporter:  exporter,
		audit:     audit,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// RequestExport persists a QUEUED job for the report and hands it to the worker queue.
func (s *ReportExportService) RequestExport(ctx context.Context, companyID, reportID, actorID string, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	req.Format = models.ExportFormat(strings.ToLower(string(req.Format)))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format")
	}
	if _, err := s.reports.Load(ctx, companyID, reportID); err != nil {
		return nil, err
	}
	job := &models.ReportExport{
		ReportID:  reportID,
		CompanyID: companyID,
		Format:    req.Format,
		Options:   req.Options,
		Status:    models.ExportStatusQueued,
		CreatedBy: actorID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Internal(err, "failed to create export job")
	}
	s.recordAudit(ctx, job)
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: JobTypeReportExport}); err != nil {
		status := models.ExportStatusFailed
		msg := "failed to enqueue job"
		now := s.now().UTC()
		progress := 100
		_ = s.repo.Update(ctx, job.ID, repository.UpdateExportParams{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, appErrors.Internal(err, "failed to enqueue export job")
	}
	return dto.NewExportJobResponse(job), nil
}

// GetStatus exposes job metadata to clients of the owning company.
func (s *ReportExportService) GetStatus(ctx context.Context, companyID, id string) (*dto.ExportJobResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, appErrors.Internal(err, "failed to load export job")
	}
	if job.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	return dto.NewExportJobResponse(job), nil
}

// ListByReport returns every export of a report.
func (s *ReportExportService) ListByReport(ctx context.Context, companyID, reportID string) ([]dto.ExportJobResponse, error) {
	if _, err := s.reports.Load(ctx, companyID, reportID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByReport(ctx, reportID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list exports")
	}
	out := make([]dto.ExportJobResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *dto.NewExportJobResponse(&rows[i]))
	}
	return out, nil
}

// ResolveDownload validates token and opens the stored export file.
func (s *ReportExportService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, appErrors.Internal(err, "failed to load export job")
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.exporter.Open(relPath)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open export file")
	}
	return &ExportDownload{
		File:        file,
		Filename:    filepath.Base(relPath),
		ContentType: s.exporter.ContentType(job.Format),
		ExpiresAt:   expiresAt,
	}, nil
}

// RecoverPendingJobs replays queued or interrupted jobs after a restart.
func (s *ReportExportService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListPending(ctx, 50)
	if err != nil {
		s.logger.Warn("failed to recover pending export jobs", zap.Error(err))
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: JobTypeReportExport}); err != nil {
			s.logger.Warn("failed to requeue pending export", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ReportExportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

// cleanupExpired deletes files of jobs finished before the TTL and flags them EXPIRED so they
// drop out of the next listing.
func (s *ReportExportService) cleanupExpired(ctx context.Context) {
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	for {
		expired, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
		if err != nil {
			s.logger.Warn("export cleanup list failed", zap.Error(err))
			return
		}
		for _, job := range expired {
			if relPath := s.storedPath(job); relPath != "" {
				if err := s.exporter.Delete(relPath); err != nil {
					s.logger.Warn("export cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
				}
			}
			status := models.ExportStatusExpired
			if err := s.repo.Update(ctx, job.ID, repository.UpdateExportParams{Status: &status}); err != nil {
				s.logger.Warn("failed to mark export expired", zap.String("job_id", job.ID), zap.Error(err))
				return
			}
		}
		if len(expired) < 100 {
			break
		}
	}
	if _, err := s.exporter.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("export filesystem cleanup failed", zap.Error(err))
	}
}

func (s *ReportExportService) storedPath(job models.ReportExport) string {
	if job.FilePath != nil && *job.FilePath != "" {
		return *job.FilePath
	}
	if job.ResultURL == nil {
		return ""
	}
	token := extractToken(*job.ResultURL)
	if token == "" {
		return ""
	}
	_, relPath, _, err := s.exporter.ParseToken(token, true)
	if err != nil {
		return ""
	}
	return relPath
}

func (s *ReportExportService) recordAudit(ctx context.Context, job *models.ReportExport) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{"report_id": job.ReportID, "format": job.Format})
	companyID, userID, id := job.CompanyID, job.CreatedBy, job.ID
	if err := s.audit.Create(ctx, &models.AuditLog{
		CompanyID:  &companyID,
		UserID:     &userID,
		Action:     models.AuditActionReportExport,
		Resource:   "report_exports",
		ResourceID: &id,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to record export audit log", zap.String("job_id", job.ID), zap.Error(err))
	}
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// ReportExportWorker bridges queue jobs to ExportService.
type ReportExportWorker struct {
	repo       reportExportStore
	exporter   exportGenerator
	metrics    *MetricsService
	logger     *zap.Logger
	maxRetries int
}

// NewReportExportWorker constructs a worker.
func NewReportExportWorker(repo reportExportStore, exporter exportGenerator, metrics *MetricsService, maxRetries int, logger *zap.Logger) *ReportExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ReportExportWorker{
		repo:       repo,
		exporter:   exporter,
		metrics:    metrics,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Handle processes a queue job. Failures before the last attempt put the job back to QUEUED.
func (w *ReportExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ExportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportParams{
		Status:   &processing,
		Progress: &progress,
	}); err != nil {
		return err
	}
	result, err := w.exporter.Generate(ctx, record)
	if err != nil {
		msg := err.Error()
		if job.Attempt >= w.maxRetries {
			failed := models.ExportStatusFailed
			progress = 100
			now := time.Now().UTC()
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportParams{
				Status:       &failed,
				Progress:     &progress,
				ErrorMessage: &msg,
				FinishedAt:   &now,
			}); updateErr != nil {
				w.logger.Warn("failed to mark export failed", zap.String("job_id", job.ID), zap.Error(updateErr))
			}
			w.metrics.RecordExport(string(record.Format), string(models.ExportStatusFailed))
		} else {
			queued := models.ExportStatusQueued
			reset := 0
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportParams{
				Status:       &queued,
				Progress:     &reset,
				ErrorMessage: &msg,
			}); updateErr != nil {
				w.logger.Warn("failed to mark export queued", zap.String("job_id", job.ID), zap.Error(updateErr))
			}
		}
		return err
	}
	finished := models.ExportStatusFinished
	progress = 100
	now := time.Now().UTC()
	url := result.URL
	path := result.RelativePath
	clear := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportParams{
		Status:       &finished,
		Progress:     &progress,
		FilePath:     &path,
		ResultURL:    &url,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Warn("failed to mark export finished", zap.String("job_id", job.ID), zap.Error(err))
		return err
	}
	w.metrics.RecordExport(string(record.Format), string(models.ExportStatusFinished))
	return nil
}
