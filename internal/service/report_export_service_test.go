package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/esg-report-api/internal/dto"
	"github.com/noah-isme/esg-report-api/internal/models"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
	"github.com/noah-isme/esg-report-api/pkg/jobs"
)

type exportFixture struct {
	svc      *ReportExportService
	worker   *ReportExportWorker
	exporter *ExportService
	jobs     *fakeExportRepo
	queue    *fakeQueue
	audit    *recordingAudit
	metrics  *MetricsService
}

func newExportFixture(t *testing.T) *exportFixture {
	t.Helper()
	reportRepo := newFakeReportRepo(sampleReport())
	reports, _, _ := newReportFixture(t, sampleReport())
	exporter, _ := newExportServiceForTest(t, reportRepo, nil)
	f := &exportFixture{
		exporter: exporter,
		jobs:     newFakeExportRepo(),
		queue:    &fakeQueue{},
		audit:    &recordingAudit{},
		metrics:  NewMetricsService(),
	}
	f.svc = NewReportExportService(f.jobs, reports, f.queue, exporter, f.audit, nil, nil, ReportExportConfig{ResultTTL: time.Hour, CleanupInterval: time.Hour})
	f.worker = NewReportExportWorker(f.jobs, exporter, f.metrics, 3, nil)
	return f
}

func TestReportExportServiceRequestExport(t *testing.T) {
	f := newExportFixture(t)

	resp, err := f.svc.RequestExport(context.Background(), "co-1", "rep-1", "u1", dto.ExportRequest{Format: "PDF"})
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, resp.Status)
	assert.Equal(t, models.ExportFormatPDF, resp.Format)
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, jobs.Job{ID: resp.ID, Type: JobTypeReportExport}, f.queue.jobs[0])
	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, models.AuditActionReportExport, f.audit.logs[0].Action)

	_, err = f.svc.RequestExport(context.Background(), "co-1", "rep-1", "u1", dto.ExportRequest{Format: "xlsx"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.RequestExport(context.Background(), "co-2", "rep-1", "u1", dto.ExportRequest{Format: "pdf"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestReportExportServiceEnqueueFailureMarksJobFailed(t *testing.T) {
	f := newExportFixture(t)
	f.queue.err = errors.New("queue full")

	_, err := f.svc.RequestExport(context.Background(), "co-1", "rep-1", "u1", dto.ExportRequest{Format: "docx"})
	require.ErrorIs(t, err, appErrors.ErrInternal)
	require.Len(t, f.jobs.jobs, 1)
	for _, job := range f.jobs.jobs {
		assert.Equal(t, models.ExportStatusFailed, job.Status)
		assert.Equal(t, 100, job.Progress)
	}
}

func TestReportExportWorkerSuccessThenDownload(t *testing.T) {
	f := newExportFixture(t)
	resp, err := f.svc.RequestExport(context.Background(), "co-1", "rep-1", "u1", dto.ExportRequest{Format: "docx"})
	require.NoError(t, err)

	require.NoError(t, f.worker.Handle(context.Background(), f.queue.jobs[0]))
	status, err := f.svc.GetStatus(context.Background(), "co-1", resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, status.Status)
	assert.Equal(t, 100, status.Progress)
	require.NotNil(t, status.ResultURL)
	assert.Nil(t, status.Error)
	assert.Contains(t, scrape(t, f.metrics), `report_exports_total{format="docx",status="FINISHED"} 1`)

	token := extractToken(*status.ResultURL)
	download, err := f.svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, ".docx", filepath.Ext(download.Filename))
	assert.Equal(t, f.exporter.ContentType(models.ExportFormatDOCX), download.ContentType)

	_, err = f.svc.ResolveDownload(context.Background(), "garbage")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = f.svc.GetStatus(context.Background(), "co-2", resp.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

type failingExporter struct{ err error }

func (e failingExporter) Generate(ctx context.Context, job *models.ReportExport) (*ExportResult, error) {
	return nil, e.err
}

func TestReportExportWorkerRetriesThenFails(t *testing.T) {
	repo := newFakeExportRepo(models.ReportExport{ID: "exp-1", ReportID: "rep-1", CompanyID: "co-1", Format: models.ExportFormatPDF, Status: models.ExportStatusQueued})
	metrics := NewMetricsService()
	worker := NewReportExportWorker(repo, failingExporter{err: errors.New("render failed")}, metrics, 2, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "exp-1", Attempt: 0})
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusQueued, repo.jobs["exp-1"].Status)
	assert.Equal(t, 0, repo.jobs["exp-1"].Progress)
	require.NotNil(t, repo.jobs["exp-1"].ErrorMessage)

	err = worker.Handle(context.Background(), jobs.Job{ID: "exp-1", Attempt: 2})
	require.Error(t, err)
	assert.Equal(t, models.ExportStatusFailed, repo.jobs["exp-1"].Status)
	assert.Equal(t, "render failed", *repo.jobs["exp-1"].ErrorMessage)
	assert.NotNil(t, repo.jobs["exp-1"].FinishedAt)
	assert.Contains(t, scrape(t, metrics), `report_exports_total{format="pdf",status="FAILED"} 1`)
}

func TestReportExportServiceRecoverAndCleanup(t *testing.T) {
	f := newExportFixture(t)
	resp, err := f.svc.RequestExport(context.Background(), "co-1", "rep-1", "u1", dto.ExportRequest{Format: "pdf"})
	require.NoError(t, err)
	f.queue.jobs = nil

	f.svc.RecoverPendingJobs(context.Background())
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, resp.ID, f.queue.jobs[0].ID)

	require.NoError(t, f.worker.Handle(context.Background(), f.queue.jobs[0]))
	job := f.jobs.jobs[resp.ID]
	require.NotNil(t, job.FilePath)
	stored, err := f.exporter.Open(*job.FilePath)
	require.NoError(t, err)
	stored.Close()

	f.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	f.svc.cleanupExpired(context.Background())

	assert.Equal(t, models.ExportStatusExpired, f.jobs.jobs[resp.ID].Status)
	_, err = f.exporter.Open(*job.FilePath)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReportExportServiceListByReport(t *testing.T) {
	f := newExportFixture(t)
	_, err := f.svc.RequestExport(context.Background(), "co-1", "rep-1", "u1", dto.ExportRequest{Format: "pdf"})
	require.NoError(t, err)

	list, err := f.svc.ListByReport(context.Background(), "co-1", "rep-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
