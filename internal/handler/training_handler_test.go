package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/internal/service"
)

type fakeTrainingService struct {
	hit        bool
	lastFilter models.EmployeeTrainingFilter
	enrolledBy string
	enrollReq  service.EnrollTrainingRequest
	updateReq  service.UpdateTrainingRequest
}

func (f *fakeTrainingService) Enroll(_ context.Context, companyID, employeeID, createdBy string, req service.EnrollTrainingRequest) (*models.EmployeeTrainingDetail, error) {
	f.enrolledBy = createdBy
	f.enrollReq = req
	detail := &models.EmployeeTrainingDetail{Status: models.TrainingStatusPlanned}
	detail.CompanyID = companyID
	detail.EmployeeID = employeeID
	detail.ProgramID = req.ProgramID
	return detail, nil
}

func (f *fakeTrainingService) Get(context.Context, string, string) (*models.EmployeeTrainingDetail, error) {
	return &models.EmployeeTrainingDetail{}, nil
}

func (f *fakeTrainingService) ListByEmployee(_ context.Context, _ string, employeeID string) ([]models.EmployeeTrainingDetail, bool, error) {
	detail := models.EmployeeTrainingDetail{Status: models.TrainingStatusCompleted}
	detail.EmployeeID = employeeID
	return []models.EmployeeTrainingDetail{detail}, f.hit, nil
}

func (f *fakeTrainingService) List(_ context.Context, filter models.EmployeeTrainingFilter) ([]models.EmployeeTrainingDetail, *models.Pagination, error) {
	f.lastFilter = filter
	return nil, models.NewPagination(1, 20, 0), nil
}

func (f *fakeTrainingService) Update(_ context.Context, _ string, _ string, req service.UpdateTrainingRequest) (*models.EmployeeTrainingDetail, error) {
	f.updateReq = req
	return &models.EmployeeTrainingDetail{}, nil
}

func (f *fakeTrainingService) Delete(context.Context, string, string) error { return nil }

func (f *fakeTrainingService) ExportCSV(_ context.Context, filter models.EmployeeTrainingFilter) ([]byte, error) {
	f.lastFilter = filter
	return []byte("colaborador,programa\nAna,NR-35\n"), nil
}

func TestTrainingHandlerListByEmployeeReportsCacheHit(t *testing.T) {
	handler := NewTrainingHandler(&fakeTrainingService{hit: true})
	c, w := newGinContext(http.MethodGet, "/employees/emp-1/trainings", nil)
	c.Params = gin.Params{ginParam("id", "emp-1")}
	asManager(c)

	handler.ListByEmployee(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, env.Meta, "processing_time_ms")
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Concluído", items[0]["status"])
}

func TestTrainingHandlerEnrollRecordsActor(t *testing.T) {
	svc := &fakeTrainingService{}
	handler := NewTrainingHandler(svc)
	c, w := newGinContext(http.MethodPost, "/employees/emp-1/trainings", mustJSON(t, map[string]interface{}{
		"program_id": "prog-1",
		"score":      87.5,
	}))
	c.Params = gin.Params{ginParam("id", "emp-1")}
	asManager(c)

	handler.Enroll(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", svc.enrolledBy)
	assert.Equal(t, "prog-1", svc.enrollReq.ProgramID)
	require.NotNil(t, svc.enrollReq.Score)
	assert.InDelta(t, 87.5, *svc.enrollReq.Score, 0.001)
}

func TestTrainingHandlerEnrollAcceptsDateOnlyValues(t *testing.T) {
	svc := &fakeTrainingService{}
	handler := NewTrainingHandler(svc)
	c, w := newGinContext(http.MethodPost, "/employees/emp-1/trainings", []byte(`{"program_id":"prog-1","completion_date":"2024-01-15"}`))
	c.Params = gin.Params{ginParam("id", "emp-1")}
	asManager(c)

	handler.Enroll(c)

	require.Equal(t, http.StatusCreated, w.Code)
	completed := svc.enrollReq.CompletionDate.Ptr()
	require.NotNil(t, completed)
	assert.Equal(t, "2024-01-15", completed.Format(models.DateLayout))

	c, w = newGinContext(http.MethodPost, "/employees/emp-1/trainings", []byte(`{"program_id":"prog-1","completion_date":"15/01/2024"}`))
	c.Params = gin.Params{ginParam("id", "emp-1")}
	asManager(c)
	handler.Enroll(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrainingHandlerUpdateKeepsAbsentFieldsNil(t *testing.T) {
	svc := &fakeTrainingService{}
	handler := NewTrainingHandler(svc)
	c, w := newGinContext(http.MethodPut, "/trainings/tr-1", []byte(`{"is_cancelled":true}`))
	c.Params = gin.Params{ginParam("id", "tr-1")}
	asManager(c)

	handler.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.updateReq.IsCancelled)
	assert.True(t, *svc.updateReq.IsCancelled)
	assert.Nil(t, svc.updateReq.Score)
	assert.Nil(t, svc.updateReq.Notes)
}

func TestTrainingHandlerListByProgram(t *testing.T) {
	svc := &fakeTrainingService{}
	handler := NewTrainingHandler(svc)
	c, w := newGinContext(http.MethodGet, "/training-programs/prog-1/trainings", nil)
	c.Params = gin.Params{ginParam("id", "prog-1")}
	asManager(c)

	handler.ListByProgram(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "prog-1", svc.lastFilter.ProgramID)
	assert.Equal(t, "co-1", svc.lastFilter.CompanyID)
}

func TestTrainingHandlerExportCSV(t *testing.T) {
	svc := &fakeTrainingService{}
	handler := NewTrainingHandler(svc)
	c, w := newGinContext(http.MethodGet, "/trainings/export.csv?department=RH", nil)
	asManager(c)

	handler.ExportCSV(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "treinamentos_")
	assert.Equal(t, "RH", svc.lastFilter.Department)
	assert.Contains(t, w.Body.String(), "NR-35")
}
