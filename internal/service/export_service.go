package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/esg-report-api/internal/dto"
	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/pkg/export"
	"github.com/noah-isme/esg-report-api/pkg/gri"
	"github.com/noah-isme/esg-report-api/pkg/storage"
)

type reportFinder interface {
	FindByID(ctx context.Context, id string) (*models.SustainabilityReport, error)
}

type dashboardSource interface {
	Training(ctx context.Context, companyID string, year int) (*dto.TrainingDashboard, bool, error)
	Environmental(ctx context.Context, companyID string, year int) (*dto.EnvironmentalDashboard, bool, error)
	Economic(ctx context.Context, companyID string, year int) (*dto.EconomicDashboard, bool, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Reports    reportFinder
	Dashboards dashboardSource
	Catalog    *gri.Catalog
	Storage    fileStorage
	Signer     *storage.SignedURLSigner
	Renderers  map[models.ExportFormat]export.Renderer
	Logger     *zap.Logger
	Config     ExportConfig
}

// ExportService renders sustainability reports and persists the files.
type ExportService struct {
	reports    reportFinder
	dashboards dashboardSource
	catalog    *gri.Catalog
	storage    fileStorage
	signer     *storage.SignedURLSigner
	renderers  map[models.ExportFormat]export.Renderer
	logger     *zap.Logger
	cfg        ExportConfig
	now        func() time.Time
}

var stepHeadings = map[models.WizardStep]string{
	models.WizardStepOrganization:  "Perfil da Organização",
	models.WizardStepEnvironmental: "Desempenho Ambiental",
	models.WizardStepSocial:        "Desempenho Social",
	models.WizardStepEconomic:      "Desempenho Econômico",
	models.WizardStepGovernance:    "Governança",
	models.WizardStepStakeholders:  "Engajamento de Stakeholders",
}

// NewExportService constructs an ExportService with PDF and DOCX renderers by default.
func NewExportService(params ExportServiceParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := params.Config
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	renderers := params.Renderers
	if renderers == nil {
		renderers = map[models.ExportFormat]export.Renderer{
			models.ExportFormatPDF:  export.NewPDFExporter(),
			models.ExportFormatDOCX: export.NewDOCXExporter(),
		}
	}
	return &ExportService{
		reports:    params.Reports,
		dashboards: params.Dashboards,
		catalog:    params.Catalog,
		storage:    params.Storage,
		signer:     params.Signer,
		renderers:  renderers,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Supports reports whether a renderer is registered for format.
func (s *ExportService) Supports(format models.ExportFormat) bool {
	_, ok := s.renderers[format]
	return ok
}

// ContentType returns the MIME type produced for format.
func (s *ExportService) ContentType(format models.ExportFormat) string {
	if r, ok := s.renderers[format]; ok {
		return r.ContentType()
	}
	return "application/octet-stream"
}

// Generate renders the job's report and stores the resulting file.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportExport) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	renderer, ok := s.renderers[job.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %s", job.Format)
	}
	report, err := s.reports.FindByID(ctx, job.ReportID)
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", job.ReportID, err)
	}
	doc, err := s.BuildDocument(ctx, report, job.Options)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.RenderDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", job.Format, err)
	}

	relPath, err := s.storage.Save(s.buildFilename(report, renderer.Extension()), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// BuildDocument lays out one section per wizard step with a GRI indicator table.
func (s *ExportService) BuildDocument(ctx context.Context, report *models.SustainabilityReport, opts models.ExportOptions) (export.Document, error) {
	doc := export.Document{
		Title:       report.Title,
		Subtitle:    fmt.Sprintf("Relatório de Sustentabilidade %d", report.Year),
		GeneratedAt: s.now().UTC(),
	}
	for _, step := range WizardSteps {
		if step == models.WizardStepReview {
			continue
		}
		fields := report.Sections[step]
		if len(fields) == 0 {
			if opts.IncludeEmptySections {
				doc.Sections = append(doc.Sections, export.Section{
					Heading:    stepHeadings[step],
					Paragraphs: []string{"Nenhuma informação registrada."},
				})
			}
			continue
		}
		table := s.indicatorTable(fields)
		doc.Sections = append(doc.Sections, export.Section{
			Heading:    stepHeadings[step],
			Paragraphs: []string{fmt.Sprintf("Indicadores reportados: %d", len(fields))},
			Table:      &table,
		})
	}
	if opts.IncludeDashboards && s.dashboards != nil {
		section, err := s.dashboardSection(ctx, report)
		if err != nil {
			return export.Document{}, err
		}
		doc.Sections = append(doc.Sections, section)
	}
	return doc, nil
}

func (s *ExportService) indicatorTable(fields models.SectionData) export.Dataset {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	table := export.Dataset{Columns: []export.Column{
		{Key: "code", Label: "Código GRI"},
		{Key: "indicator", Label: "Indicador"},
		{Key: "value", Label: "Valor"},
	}}
	for _, k := range keys {
		row := map[string]string{"code": k, "indicator": "(não catalogado)", "value": formatSectionValue(fields[k])}
		if s.catalog != nil {
			if ind, ok := s.catalog.Lookup(k); ok {
				row["code"] = ind.Code
				row["indicator"] = ind.Title
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func (s *ExportService) dashboardSection(ctx context.Context, report *models.SustainabilityReport) (export.Section, error) {
	training, _, err := s.dashboards.Training(ctx, report.CompanyID, report.Year)
	if err != nil {
		return export.Section{}, err
	}
	environmental, _, err := s.dashboards.Environmental(ctx, report.CompanyID, report.Year)
	if err != nil {
		return export.Section{}, err
	}
	economic, _, err := s.dashboards.Economic(ctx, report.CompanyID, report.Year)
	if err != nil {
		return export.Section{}, err
	}
	metric := func(label string, value float64) map[string]string {
		return map[string]string{"metric": label, "value": strconv.FormatFloat(value, 'f', 2, 64)}
	}
	table := export.Dataset{
		Columns: []export.Column{{Key: "metric", Label: "Indicador"}, {Key: "value", Label: "Valor"}},
		Rows: []map[string]string{
			metric("Horas de treinamento", training.TotalHours),
			metric("Nota média de treinamento", training.AverageScore),
			metric("Conclusão de treinamentos obrigatórios (%)", training.MandatoryCompletionPct),
			metric("Emissões totais (tCO2e)", environmental.TotalTCO2e),
			metric("Reciclagem (%)", environmental.RecyclingPct),
			metric("Valor econômico gerado", economic.Generated),
			metric("Valor econômico distribuído", economic.Distributed),
			metric("Valor econômico retido", economic.Retained),
		},
	}
	return export.Section{Heading: "Indicadores Consolidados", Table: &table}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(report *models.SustainabilityReport, ext string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("reports/%s/%d_%s_%s.%s", sanitizeFilename(report.CompanyID), report.Year, sanitizeFilename(report.Title), timestamp, ext)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func formatSectionValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "Sim"
		}
		return "Não"
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}
