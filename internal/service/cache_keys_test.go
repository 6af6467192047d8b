package service

import (
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "esg:employee:e1:trainings", EmployeeTrainingsKey("e1"))
	assert.Equal(t, "esg:program:p1", ProgramKey("p1"))
	assert.Equal(t, "esg:report:r1", ReportKey("r1"))
	assert.Equal(t, "esg:dash:c1:training:2024", DashboardKey("c1", DashboardTraining, 2024))
}

func TestCacheScopesMatchTheirKeys(t *testing.T) {
	cases := []struct {
		pattern string
		key     string
		match   bool
	}{
		{EmployeeScope("e1"), EmployeeTrainingsKey("e1"), true},
		{EmployeeScope("e1"), EmployeeTrainingsKey("e10"), false},
		{ProgramScope("p1"), ProgramKey("p1"), true},
		{ReportScope("r1"), ReportKey("r1"), true},
		{DashboardScope("c1", ""), DashboardKey("c1", DashboardEconomic, 2023), true},
		{DashboardScope("c1", DashboardTraining), DashboardKey("c1", DashboardTraining, 2024), true},
		{DashboardScope("c1", DashboardTraining), DashboardKey("c1", DashboardBenefits, 2024), false},
		{DashboardScope("c1", ""), DashboardKey("c2", DashboardTraining, 2024), false},
	}
	for _, tc := range cases {
		// Redis glob and path.Match agree for '*' without separators.
		ok, err := path.Match(tc.pattern, tc.key)
		assert.NoError(t, err)
		assert.Equal(t, tc.match, ok, "%s vs %s", tc.pattern, tc.key)
	}
}
