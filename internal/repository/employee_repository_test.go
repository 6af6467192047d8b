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

func TestEmployeeRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	active := true
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "company_id", "full_name", "email", "document", "department", "position", "gender", "birth_date", "hire_date", "active", "created_at", "updated_at"}).
		AddRow("emp-1", "co-1", "Maria Silva", "maria@acme.com", "123", "Operations", "Analyst", "F", nil, now, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM employees WHERE company_id = $1 AND department = $2 AND active = $3 AND (LOWER(full_name) LIKE $4 OR LOWER(email) LIKE $4) ORDER BY hire_date DESC LIMIT 20 OFFSET 0")).
		WithArgs("co-1", "Operations", true, "%maria%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM employees WHERE company_id = $1")).
		WithArgs("co-1", "Operations", true, "%maria%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	employees, total, err := repo.List(context.Background(), models.EmployeeFilter{
		CompanyID: "co-1", Department: "Operations", Active: &active, Search: "Maria", SortBy: "hire_date", SortOrder: "desc",
	})
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryListRejectsUnknownSort(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY full_name ASC LIMIT 20 OFFSET 0")).
		WithArgs("co-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("co-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.EmployeeFilter{CompanyID: "co-1", SortBy: "password; DROP TABLE"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryExistsByEmailExcludesSelf(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM employees WHERE company_id = $1 AND LOWER(email) = LOWER($2) AND id <> $3 LIMIT 1")).
		WithArgs("co-1", "maria@acme.com", "emp-1").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByEmail(context.Background(), "co-1", "maria@acme.com", "emp-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEmployeeRepositoryCountActive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM employees WHERE company_id = $1 AND active = TRUE")).
		WithArgs("co-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	total, err := repo.CountActive(context.Background(), "co-1")
	require.NoError(t, err)
	assert.Equal(t, 42, total)
}

func TestPageBounds(t *testing.T) {
	page, size := pageBounds(0, 500)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)
	page, size = pageBounds(3, 50)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)
}
