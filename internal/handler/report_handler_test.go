package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/esg-report-api/internal/dto"
	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/internal/service"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
)

type reportServiceMock struct {
	createdBy  string
	createReq  dto.CreateReportRequest
	createErr  error
	hit        bool
	step       models.WizardStep
	fields     models.SectionData
	nextErr    error
	goToReq    dto.GoToStepRequest
	lastFilter models.ReportFilter
}

func (m *reportServiceMock) response(step models.WizardStep) *dto.ReportResponse {
	return &dto.ReportResponse{
		Report: models.SustainabilityReport{ID: "rep-1", CompanyID: "co-1", CurrentStep: step},
		Steps:  service.WizardSteps,
	}
}

func (m *reportServiceMock) Create(_ context.Context, _ string, createdBy string, req dto.CreateReportRequest) (*dto.ReportResponse, error) {
	m.createdBy = createdBy
	m.createReq = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.response(models.WizardStepOrganization), nil
}

func (m *reportServiceMock) Get(context.Context, string, string) (*dto.ReportResponse, bool, error) {
	return m.response(models.WizardStepSocial), m.hit, nil
}

func (m *reportServiceMock) List(_ context.Context, filter models.ReportFilter) ([]models.SustainabilityReport, *models.Pagination, error) {
	m.lastFilter = filter
	return []models.SustainabilityReport{}, models.NewPagination(1, 20, 0), nil
}

func (m *reportServiceMock) UpdateSection(_ context.Context, _ string, _ string, step models.WizardStep, req dto.UpdateSectionRequest) (*dto.SectionUpdateResponse, error) {
	m.step = step
	m.fields = req.Fields
	return &dto.SectionUpdateResponse{ReportResponse: *m.response(step), UnknownIndicators: []string{"custom-1"}}, nil
}

func (m *reportServiceMock) Next(context.Context, string, string) (*dto.ReportResponse, error) {
	if m.nextErr != nil {
		return nil, m.nextErr
	}
	return m.response(models.WizardStepEnvironmental), nil
}

func (m *reportServiceMock) Previous(context.Context, string, string) (*dto.ReportResponse, error) {
	return nil, appErrors.ErrWizardBoundary
}

func (m *reportServiceMock) GoTo(_ context.Context, _ string, _ string, req dto.GoToStepRequest) (*dto.ReportResponse, error) {
	m.goToReq = req
	return m.response(req.Step), nil
}

func (m *reportServiceMock) Delete(context.Context, string, string) error { return nil }

func TestReportHandlerCreate(t *testing.T) {
	svc := &reportServiceMock{}
	handler := NewReportHandler(svc)
	c, w := newGinContext(http.MethodPost, "/reports", mustJSON(t, dto.CreateReportRequest{Year: 2024, Title: "Relatório 2024"}))
	asManager(c)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", svc.createdBy)
	assert.Equal(t, 2024, svc.createReq.Year)
}

func TestReportHandlerCreateDuplicateYear(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{createErr: appErrors.Clone(appErrors.ErrConflict, "report already exists for year")})
	c, w := newGinContext(http.MethodPost, "/reports", mustJSON(t, dto.CreateReportRequest{Year: 2024, Title: "x"}))
	asManager(c)

	handler.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReportHandlerGetSetsCacheMeta(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{hit: true})
	c, w := newGinContext(http.MethodGet, "/reports/rep-1", nil)
	c.Params = gin.Params{ginParam("id", "rep-1")}
	asManager(c)

	handler.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
}

func TestReportHandlerUpdateSectionPassesStep(t *testing.T) {
	svc := &reportServiceMock{}
	handler := NewReportHandler(svc)
	body := []byte(`{"fields":{"GRI 305-1":120.5,"custom-1":"x"}}`)
	c, w := newGinContext(http.MethodPut, "/reports/rep-1/sections/environmental", body)
	c.Params = gin.Params{ginParam("id", "rep-1"), ginParam("step", "environmental")}
	asManager(c)

	handler.UpdateSection(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.WizardStepEnvironmental, svc.step)
	assert.Contains(t, svc.fields, "GRI 305-1")
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &data))
	assert.Equal(t, []interface{}{"custom-1"}, data["unknown_indicators"])
}

func TestReportHandlerWizardNavigation(t *testing.T) {
	svc := &reportServiceMock{}
	handler := NewReportHandler(svc)

	c, w := newGinContext(http.MethodPost, "/reports/rep-1/wizard/next", nil)
	c.Params = gin.Params{ginParam("id", "rep-1")}
	asManager(c)
	handler.Next(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newGinContext(http.MethodPost, "/reports/rep-1/wizard/previous", nil)
	c.Params = gin.Params{ginParam("id", "rep-1")}
	asManager(c)
	handler.Previous(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "WIZARD_BOUNDARY", decodeEnvelope(t, w).Error["code"])

	c, w = newGinContext(http.MethodPost, "/reports/rep-1/wizard/goto", []byte(`{"step":"governance"}`))
	c.Params = gin.Params{ginParam("id", "rep-1")}
	asManager(c)
	handler.GoTo(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.WizardStepGovernance, svc.goToReq.Step)
}

func TestReportHandlerListFiltersByYear(t *testing.T) {
	svc := &reportServiceMock{}
	handler := NewReportHandler(svc)
	c, w := newGinContext(http.MethodGet, "/reports?year=2023", nil)
	asManager(c)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2023, svc.lastFilter.Year)
	assert.Equal(t, "co-1", svc.lastFilter.CompanyID)
}
