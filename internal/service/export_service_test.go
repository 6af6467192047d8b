package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/pkg/gri"
	"github.com/noah-isme/esg-report-api/pkg/storage"
)

func sampleReport() models.SustainabilityReport {
	report := reportAt(models.WizardStepReview)
	report.Sections = models.ReportSections{
		models.WizardStepEnvironmental: models.SectionData{"GRI 305-1": 12.5, "custom": "x"},
	}
	return report
}

func newExportServiceForTest(t *testing.T, reports *fakeReportRepo, dashboards dashboardSource) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	catalog, err := gri.Default()
	require.NoError(t, err)
	svc := NewExportService(ExportServiceParams{
		Reports:    reports,
		Dashboards: dashboards,
		Catalog:    catalog,
		Storage:    store,
		Signer:     storage.NewSignedURLSigner("secret", time.Hour),
		Config:     ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour},
	})
	return svc, store
}

func TestExportServiceBuildDocumentLabelsIndicators(t *testing.T) {
	svc, _ := newExportServiceForTest(t, newFakeReportRepo(), nil)
	report := sampleReport()

	doc, err := svc.BuildDocument(context.Background(), &report, models.ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Relatório 2024", doc.Title)
	require.Len(t, doc.Sections, 1)
	section := doc.Sections[0]
	assert.Equal(t, "Desempenho Ambiental", section.Heading)
	require.NotNil(t, section.Table)
	require.Len(t, section.Table.Rows, 2)
	assert.Equal(t, "GRI 305-1", section.Table.Rows[0]["code"])
	assert.Equal(t, "Emissões diretas (Escopo 1) de gases de efeito estufa", section.Table.Rows[0]["indicator"])
	assert.Equal(t, "12.5", section.Table.Rows[0]["value"])
	assert.Equal(t, "(não catalogado)", section.Table.Rows[1]["indicator"])

	doc, err = svc.BuildDocument(context.Background(), &report, models.ExportOptions{IncludeEmptySections: true})
	require.NoError(t, err)
	assert.Len(t, doc.Sections, 6)
}

func TestExportServiceBuildDocumentAppendsDashboards(t *testing.T) {
	dashboards := newDashboardFixture(&fakeMetricRepo{economic: []models.EconomicValueItem{
		{CompanyID: "co-1", Year: 2024, Kind: models.EconomicValueGenerated, Amount: 500},
	}}, newMemoryCache())
	svc, _ := newExportServiceForTest(t, newFakeReportRepo(), dashboards)
	report := sampleReport()

	doc, err := svc.BuildDocument(context.Background(), &report, models.ExportOptions{IncludeDashboards: true})
	require.NoError(t, err)
	last := doc.Sections[len(doc.Sections)-1]
	assert.Equal(t, "Indicadores Consolidados", last.Heading)
	require.NotNil(t, last.Table)
	assert.Contains(t, last.Table.Rows, map[string]string{"metric": "Valor econômico gerado", "value": "500.00"})
}

func TestExportServiceGenerateStoresFileAndSignsURL(t *testing.T) {
	svc, _ := newExportServiceForTest(t, newFakeReportRepo(sampleReport()), nil)

	result, err := svc.Generate(context.Background(), &models.ReportExport{ID: "exp-1", ReportID: "rep-1", Format: models.ExportFormatDOCX})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/exports/download/"))
	assert.True(t, strings.HasPrefix(result.RelativePath, "reports/co-1/2024_"))
	assert.True(t, strings.HasSuffix(result.RelativePath, ".docx"))

	jobID, relPath, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "exp-1", jobID)

	file, err := svc.Open(relPath)
	require.NoError(t, err)
	defer file.Close()
	header := make([]byte, 2)
	_, err = io.ReadFull(file, header)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(header))
}

func TestExportServiceGenerateRejectsUnknownFormatAndReport(t *testing.T) {
	svc, _ := newExportServiceForTest(t, newFakeReportRepo(), nil)

	_, err := svc.Generate(context.Background(), &models.ReportExport{ID: "exp-1", ReportID: "rep-1", Format: "odt"})
	assert.Error(t, err)
	_, err = svc.Generate(context.Background(), &models.ReportExport{ID: "exp-1", ReportID: "missing", Format: models.ExportFormatPDF})
	assert.Error(t, err)
	assert.False(t, svc.Supports("odt"))
	assert.Equal(t, "application/pdf", svc.ContentType(models.ExportFormatPDF))
}

func TestFormatSectionValue(t *testing.T) {
	assert.Equal(t, "", formatSectionValue(nil))
	assert.Equal(t, "3", formatSectionValue(float64(3)))
	assert.Equal(t, "Sim", formatSectionValue(true))
	assert.Equal(t, `["a","b"]`, formatSectionValue([]interface{}{"a", "b"}))
}
