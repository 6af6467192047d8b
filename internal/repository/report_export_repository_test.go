package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/esg-report-api/internal/models"
)

var exportRowColumns = []string{"id", "report_id", "company_id", "format", "options", "status", "progress", "file_path", "result_url", "created_by", "created_at", "finished_at", "error_message"}

func TestReportExportRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportExportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_exports")).WillReturnResult(sqlmock.NewResult(1, 1))
	job := &models.ReportExport{ReportID: "r1", CompanyID: "co-1", Format: models.ExportFormatPDF, CreatedBy: "u1"}
	require.NoError(t, repo.Create(context.Background(), job))
	require.Equal(t, models.ExportStatusQueued, job.Status)

	rows := sqlmock.NewRows(exportRowColumns).
		AddRow(job.ID, "r1", "co-1", "pdf", `{"include_empty_sections":true}`, "QUEUED", 0, nil, nil, "u1", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + exportColumns + " FROM report_exports WHERE id = $1")).
		WithArgs(job.ID).
		WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, job.ID, fetched.ID)
	require.True(t, fetched.Options.IncludeEmptySections)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportExportRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportExportRepository(db)

	now := time.Now()
	status := models.ExportStatusFinished
	progress := 100
	path := "reports/r1/exp-1.pdf"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_exports SET status = $1, progress = $2, file_path = $3, finished_at = $4 WHERE id = $5")).
		WithArgs(status, progress, path, now, "exp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "exp-1", UpdateExportParams{
		Status:     &status,
		Progress:   &progress,
		FilePath:   &path,
		FinishedAt: &now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportExportRepositoryUpdateNoop(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportExportRepository(db)

	require.NoError(t, repo.Update(context.Background(), "exp-1", UpdateExportParams{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportExportRepositoryListPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportExportRepository(db)

	rows := sqlmock.NewRows(exportRowColumns).
		AddRow("exp-1", "r1", "co-1", "docx", `{}`, "PROCESSING", 10, nil, nil, "u1", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status IN ('QUEUED', 'PROCESSING') ORDER BY created_at ASC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListPending(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, models.ExportFormatDOCX, jobs[0].Format)
}

func TestReportExportRepositoryListFinishedBefore(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportExportRepository(db)

	cutoff := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1")).
		WithArgs(cutoff, 5).
		WillReturnRows(sqlmock.NewRows(exportRowColumns))

	jobs, err := repo.ListFinishedBefore(context.Background(), cutoff, 5)
	require.NoError(t, err)
	require.Empty(t, jobs)
}
