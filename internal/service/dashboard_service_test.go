package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/esg-report-api/internal/models"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
)

func newDashboardFixture(metrics *fakeMetricRepo, cacheRepo *memoryCache) *DashboardService {
	employees := newFakeEmployeeRepo(activeEmployee("emp-1", "co-1"), activeEmployee("emp-2", "co-1"))
	programs := newFakeProgramRepo()
	return NewDashboardService(DashboardServiceParams{
		Trainings: newFakeTrainingRepo(employees, programs),
		Benefits:  newFakeBenefitRepo(),
		Employees: employees,
		Metrics:   metrics,
		Resolver:  fixedResolver(StatusSourceLive, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		Cache:     NewCacheService(cacheRepo, nil, time.Minute, nil, true),
	})
}

func TestDashboardServiceEconomicCachesResult(t *testing.T) {
	metrics := &fakeMetricRepo{economic: []models.EconomicValueItem{
		{CompanyID: "co-1", Year: 2024, Kind: models.EconomicValueGenerated, Amount: 1000},
		{CompanyID: "co-1", Year: 2024, Kind: models.EconomicValueDistributed, Group: "Empregados", Amount: 400},
		{CompanyID: "co-1", Year: 2023, Kind: models.EconomicValueGenerated, Amount: 999},
	}}
	cacheRepo := newMemoryCache()
	svc := newDashboardFixture(metrics, cacheRepo)

	first, hit, err := svc.Economic(context.Background(), "co-1", 2024)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1000.0, first.Generated)
	assert.Equal(t, 600.0, first.Retained)
	require.Len(t, first.Distribution, 1)
	assert.Equal(t, 40.0, first.Distribution[0].Percentage)

	second, hit, err := svc.Economic(context.Background(), "co-1", 2024)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.Retained, second.Retained)
	assert.Equal(t, 1, metrics.listCalls)
}

func TestDashboardServiceDefaultsYearAndRejectsOutOfRange(t *testing.T) {
	svc := newDashboardFixture(&fakeMetricRepo{}, newMemoryCache())

	dash, _, err := svc.Stakeholders(context.Background(), "co-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 2024, dash.Year)

	_, _, err = svc.Stakeholders(context.Background(), "co-1", 1800)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestDashboardServiceEnvironmentalUsesHeadcount(t *testing.T) {
	metrics := &fakeMetricRepo{
		emissions: []models.EmissionRecord{{CompanyID: "co-1", Year: 2024, Scope: 1, TCO2e: 30}, {CompanyID: "co-1", Year: 2024, Scope: 2, TCO2e: 10}},
		resources: []models.ResourceRecord{{CompanyID: "co-1", Year: 2024, WaterM3: 100, WasteTonnes: 10, RecycledTonnes: 5}},
	}
	svc := newDashboardFixture(metrics, newMemoryCache())

	dash, _, err := svc.Environmental(context.Background(), "co-1", 2024)
	require.NoError(t, err)
	assert.Equal(t, 40.0, dash.TotalTCO2e)
	assert.Equal(t, 2, dash.Headcount)
	assert.Equal(t, 50.0, dash.WaterPerEmployee)
	assert.Equal(t, 50.0, dash.RecyclingPct)
}

func TestDashboardServiceErrorsAreNotCached(t *testing.T) {
	metrics := &fakeMetricRepo{failList: errors.New("db down")}
	cacheRepo := newMemoryCache()
	svc := newDashboardFixture(metrics, cacheRepo)

	_, _, err := svc.Economic(context.Background(), "co-1", 2024)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	assert.Empty(t, cacheRepo.data)
}

func TestDashboardServiceTrainingWithoutRecords(t *testing.T) {
	svc := newDashboardFixture(&fakeMetricRepo{}, newMemoryCache())
	dash, hit, err := svc.Training(context.Background(), "co-1", 2024)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 0, dash.TotalRecords)
	assert.Equal(t, 0.0, dash.MandatoryCompletionPct)
}

func TestDashboardServiceTrainingCacheExpiresAtMidnight(t *testing.T) {
	cacheRepo := newMemoryCache()
	employees := newFakeEmployeeRepo(activeEmployee("emp-1", "co-1"))
	svc := NewDashboardService(DashboardServiceParams{
		Trainings: newFakeTrainingRepo(employees, newFakeProgramRepo()),
		Employees: employees,
		Resolver:  fixedResolver(StatusSourceLive, time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)),
		Cache:     NewCacheService(cacheRepo, nil, time.Hour, nil, true),
		Config:    DashboardServiceConfig{CacheTTL: time.Hour},
	})

	_, _, err := svc.Training(context.Background(), "co-1", 2024)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cacheRepo.ttls[DashboardKey("co-1", DashboardTraining, 2024)])
}
