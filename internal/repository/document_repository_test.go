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

func TestDocumentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectExec("INSERT INTO documents").WillReturnResult(sqlmock.NewResult(1, 1))
	doc := &models.Document{CompanyID: "co-1", Category: "certificate", Filename: "nr35.pdf", FilePath: "co-1/emp-1/nr35.pdf", MimeType: "application/pdf", SizeBytes: 42, UploadedBy: "u1"}
	require.NoError(t, repo.Create(context.Background(), doc))
	assert.NotEmpty(t, doc.ID)
	assert.False(t, doc.UploadedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "company_id", "employee_id", "category", "filename", "file_path", "mime_type", "size_bytes", "uploaded_by", "uploaded_at", "deleted_at"}).
		AddRow("d1", "co-1", "emp-1", "certificate", "a.pdf", "co-1/emp-1/a.pdf", "application/pdf", 10, "u1", time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM documents WHERE company_id = $1 AND deleted_at IS NULL AND employee_id = $2 ORDER BY uploaded_at DESC LIMIT 50 OFFSET 0")).
		WithArgs("co-1", "emp-1").
		WillReturnRows(rows)

	docs, err := repo.List(context.Background(), models.DocumentFilter{CompanyID: "co-1", EmployeeID: "emp-1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.NotNil(t, docs[0].EmployeeID)
	assert.Equal(t, "emp-1", *docs[0].EmployeeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositorySoftDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	ts := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs("d1", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SoftDelete(context.Background(), "d1", ts))

	mock.ExpectExec("UPDATE documents SET deleted_at").
		WithArgs("d1", ts).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SoftDelete(context.Background(), "d1", ts), sql.ErrNoRows)
}
