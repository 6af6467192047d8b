package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/esg-report-api/internal/models"
)

var reportRowColumns = []string{"id", "company_id", "year", "title", "current_step", "sections", "completed_at", "created_by", "created_at", "updated_at"}

func TestReportRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec("INSERT INTO sustainability_reports").WillReturnResult(sqlmock.NewResult(1, 1))
	report := &models.SustainabilityReport{CompanyID: "co-1", Year: 2024, Title: "Relatório 2024", CurrentStep: models.WizardStepOrganization, CreatedBy: "u1"}
	require.NoError(t, repo.Create(context.Background(), report))
	require.NotEmpty(t, report.ID)

	now := time.Now()
	rows := sqlmock.NewRows(reportRowColumns).
		AddRow(report.ID, "co-1", 2024, "Relatório 2024", "environmental", `{"organization":{"GRI 2-1":"Acme"}}`, nil, "u1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + reportColumns + " FROM sustainability_reports WHERE id = $1")).
		WithArgs(report.ID).
		WillReturnRows(rows)

	fetched, err := repo.FindByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WizardStepEnvironmental, fetched.CurrentStep)
	assert.Equal(t, "Acme", fetched.Sections[models.WizardStepOrganization]["GRI 2-1"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListFiltersByYear(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM sustainability_reports WHERE company_id = $1 AND year = $2 ORDER BY year DESC, created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("co-1", 2024).
		WillReturnRows(sqlmock.NewRows(reportRowColumns).AddRow("r1", "co-1", 2024, "R", "organization", `{}`, nil, "u1", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sustainability_reports WHERE company_id = $1 AND year = $2")).
		WithArgs("co-1", 2024).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	reports, total, err := repo.List(context.Background(), models.ReportFilter{CompanyID: "co-1", Year: 2024})
	require.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryUpdateStep(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	completed := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sustainability_reports SET current_step = $2, completed_at = $3, updated_at = $4 WHERE id = $1")).
		WithArgs("r1", models.WizardStepReview, &completed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStep(context.Background(), "r1", models.WizardStepReview, &completed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryExistsForYear(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery("SELECT 1 FROM sustainability_reports").WithArgs("co-1", 2023).WillReturnError(sql.ErrNoRows)
	exists, err := repo.ExistsForYear(context.Background(), "co-1", 2023)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReportRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec("DELETE FROM sustainability_reports").WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)
}

func TestReportRepositoryUpdateSectionWritesOnlyThatStep(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SET sections = jsonb_set(COALESCE(sections, '{}'::jsonb), ARRAY[$2::text], $3::jsonb, true)")).
		WithArgs("r1", "environmental", []byte(`{"gri_305-1":120.5}`), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"sections"}).
			AddRow(`{"environmental":{"gri_305-1":120.5},"social":{"gri_401-1":3}}`))

	sections, err := repo.UpdateSection(context.Background(), "r1", models.WizardStepEnvironmental, models.SectionData{"gri_305-1": 120.5})
	require.NoError(t, err)
	assert.Equal(t, 120.5, sections[models.WizardStepEnvironmental]["gri_305-1"])
	assert.Equal(t, 3.0, sections[models.WizardStepSocial]["gri_401-1"])

	mock.ExpectQuery("jsonb_set").WillReturnRows(sqlmock.NewRows([]string{"sections"}))
	_, err = repo.UpdateSection(context.Background(), "missing", models.WizardStepSocial, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
