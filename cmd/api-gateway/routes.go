package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/esg-report-api/internal/handler"
	"github.com/noah-isme/esg-report-api/internal/middleware"
	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/internal/service"
	"github.com/noah-isme/esg-report-api/pkg/config"
	"github.com/noah-isme/esg-report-api/pkg/logger"
	"github.com/noah-isme/esg-report-api/pkg/middleware/cors"
	"github.com/noah-isme/esg-report-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	auth       *handler.AuthHandler
	users      *handler.UserHandler
	employees  *handler.EmployeeHandler
	trainings  *handler.TrainingHandler
	programs   *handler.TrainingProgramHandler
	benefits   *handler.BenefitHandler
	esgMetrics *handler.ESGMetricHandler
	dashboards *handler.DashboardHandler
	reports    *handler.ReportHandler
	exports    *handler.ExportHandler
	documents  *handler.DocumentHandler
	gri        *handler.GRIHandler
	system     *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, audit service.AuditWriter, tokens middleware.TokenValidator, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(cors.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.system.Health)
	r.GET("/ready", h.system.Ready)
	r.GET("/metrics", h.system.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
		})
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	audited := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(audit, logr, action, resource)
	}

	// Signed tokens authorize these downloads, so they sit outside the JWT group.
	api.POST("/auth/login", h.auth.Login)
	api.GET("/exports/download/:token", h.exports.Download)
	api.GET("/documents/download/:token", h.documents.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))
	secured.GET("/auth/me", h.auth.Me)
	secured.GET("/company", h.users.Company)

	admin := secured.Group("/users")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.GET("", h.users.List)
	admin.GET("/:id", h.users.Get)
	admin.POST("", h.users.Create)
	admin.PUT("/:id", h.users.Update)
	admin.DELETE("/:id", h.users.Delete)

	secured.GET("/employees", h.employees.List)
	secured.GET("/employees/:id", h.employees.Get)
	secured.GET("/employees/:id/trainings", h.trainings.ListByEmployee)
	secured.GET("/employees/:id/benefits", h.benefits.List)
	secured.GET("/employees/:id/documents", h.documents.List)

	secured.GET("/training-programs", h.programs.List)
	secured.GET("/training-programs/:id", h.programs.Get)
	secured.GET("/training-programs/:id/trainings", h.trainings.ListByProgram)
	secured.GET("/trainings/export.csv", h.trainings.ExportCSV)
	secured.GET("/trainings/:id", h.trainings.Get)

	dashboards := secured.Group("/dashboards")
	dashboards.GET("/training", h.dashboards.Training)
	dashboards.GET("/benefits", h.dashboards.Benefits)
	dashboards.GET("/environmental", h.dashboards.Environmental)
	dashboards.GET("/stakeholders", h.dashboards.Stakeholders)
	dashboards.GET("/economic", h.dashboards.Economic)

	secured.GET("/reports", h.reports.List)
	secured.GET("/reports/:id", h.reports.Get)
	secured.GET("/reports/:id/exports", h.exports.ListByReport)
	secured.GET("/exports/:id", h.exports.Status)
	secured.GET("/documents/:id/download", h.documents.Link)
	secured.GET("/gri/indicators", h.gri.List)

	writes := secured.Group("")
	writes.Use(middleware.RequireWrite())

	writes.POST("/employees", audited(models.AuditActionCreate, "employee"), h.employees.Create)
	writes.PUT("/employees/:id", audited(models.AuditActionUpdate, "employee"), h.employees.Update)
	writes.DELETE("/employees/:id", audited(models.AuditActionDelete, "employee"), h.employees.Delete)
	writes.POST("/employees/:id/trainings", audited(models.AuditActionCreate, "employee_training"), h.trainings.Enroll)
	writes.POST("/employees/:id/benefits", audited(models.AuditActionCreate, "benefit"), h.benefits.Create)
	writes.POST("/employees/:id/documents", h.documents.Upload)

	writes.POST("/training-programs", audited(models.AuditActionCreate, "training_program"), h.programs.Create)
	writes.PUT("/training-programs/:id", audited(models.AuditActionUpdate, "training_program"), h.programs.Update)
	writes.DELETE("/training-programs/:id", audited(models.AuditActionDelete, "training_program"), h.programs.Delete)
	writes.PUT("/trainings/:id", audited(models.AuditActionUpdate, "employee_training"), h.trainings.Update)
	writes.DELETE("/trainings/:id", audited(models.AuditActionDelete, "employee_training"), h.trainings.Delete)
	writes.DELETE("/benefits/:id", audited(models.AuditActionDelete, "benefit"), h.benefits.Delete)
	writes.DELETE("/documents/:id", h.documents.Delete)

	writes.POST("/metrics/emissions", audited(models.AuditActionCreate, "emission"), h.esgMetrics.Emission)
	writes.POST("/metrics/resources", audited(models.AuditActionCreate, "resource_usage"), h.esgMetrics.Resource)
	writes.POST("/metrics/stakeholders", audited(models.AuditActionCreate, "stakeholder_engagement"), h.esgMetrics.Stakeholder)
	writes.POST("/metrics/economic-values", audited(models.AuditActionCreate, "economic_value"), h.esgMetrics.EconomicValue)

	writes.POST("/reports", audited(models.AuditActionCreate, "report"), h.reports.Create)
	writes.PUT("/reports/:id/sections/:step", audited(models.AuditActionUpdate, "report"), h.reports.UpdateSection)
	writes.POST("/reports/:id/wizard/next", h.reports.Next)
	writes.POST("/reports/:id/wizard/previous", h.reports.Previous)
	writes.POST("/reports/:id/wizard/goto", h.reports.GoTo)
	writes.DELETE("/reports/:id", middleware.RequireRoles(models.RoleAdmin), audited(models.AuditActionDelete, "report"), h.reports.Delete)
	writes.POST("/reports/:id/exports", h.exports.Request)

	return r
}
