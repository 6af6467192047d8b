package service

import "fmt"

const cacheNamespace = "esg"

// Dashboard kinds used in cache keys and routes.
const (
	DashboardTraining      = "training"
	DashboardBenefits      = "benefits"
	DashboardEnvironmental = "environmental"
	DashboardStakeholders  = "stakeholders"
	DashboardEconomic      = "economic"
)

// EmployeeTrainingsKey caches the resolved training list of one employee.
func EmployeeTrainingsKey(employeeID string) string {
	return fmt.Sprintf("%s:employee:%s:trainings", cacheNamespace, employeeID)
}

// EmployeeScope matches every cached entry of one employee.
func EmployeeScope(employeeID string) string {
	return fmt.Sprintf("%s:employee:%s:*", cacheNamespace, employeeID)
}

// ProgramKey caches a single training program.
func ProgramKey(programID string) string {
	return fmt.Sprintf("%s:program:%s", cacheNamespace, programID)
}

// ProgramScope matches the program and anything derived from it.
func ProgramScope(programID string) string {
	return ProgramKey(programID) + "*"
}

// ReportKey caches a sustainability report.
func ReportKey(reportID string) string {
	return fmt.Sprintf("%s:report:%s", cacheNamespace, reportID)
}

// ReportScope matches the report and anything derived from it.
func ReportScope(reportID string) string {
	return ReportKey(reportID) + "*"
}

// DashboardKey caches one dashboard payload.
func DashboardKey(companyID, kind string, year int) string {
	return fmt.Sprintf("%s:dash:%s:%s:%d", cacheNamespace, companyID, kind, year)
}

// DashboardScope matches every dashboard of a company, optionally narrowed to one kind.
func DashboardScope(companyID, kind string) string {
	if kind == "" {
		kind = "*"
	}
	return fmt.Sprintf("%s:dash:%s:%s:*", cacheNamespace, companyID, kind)
}
