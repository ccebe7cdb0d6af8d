package lintreport

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	moduleOne := NewModuleReport("any.module")
	moduleOne.AddWarning(Warning{Message: "warning 1", LineNumber: 1})
	moduleOne.AddWarning(Warning{Message: "warning 2", LineNumber: 2})

	moduleTwo := NewModuleReport("any.other.module")
	moduleTwo.AddWarning(Warning{Message: "warning 1", LineNumber: 3})
	moduleTwo.AddWarning(Warning{Message: "warning 2", LineNumber: 4})

	report := &Report{}
	report.AddModuleReport(moduleOne)
	report.AddModuleReport(moduleTwo)
	return report
}

func TestReportMarshalJSONProducesCanonicalShape(t *testing.T) {
	encoded, err := json.Marshal(sampleReport())
	require.NoError(t, err)
	require.Equal(t,
		`{"modules":[{"name":"any.module","warnings":[{"message":"warning 1","line_number":1},{"message":"warning 2","line_number":2}]},{"name":"any.other.module","warnings":[{"message":"warning 1","line_number":3},{"message":"warning 2","line_number":4}]}]}`,
		string(encoded),
	)
}

func TestReportToMap(t *testing.T) {
	require.Equal(t, map[string]any{"message": "any message", "line_number": 17}, Warning{Message: "any message", LineNumber: 17}.ToMap())

	expected := map[string]any{
		"modules": []map[string]any{
			{
				"name": "any.module",
				"warnings": []map[string]any{
					{"message": "warning 1", "line_number": 1},
					{"message": "warning 2", "line_number": 2},
				},
			},
			{
				"name": "any.other.module",
				"warnings": []map[string]any{
					{"message": "warning 1", "line_number": 3},
					{"message": "warning 2", "line_number": 4},
				},
			},
		},
	}
	require.Equal(t, expected, sampleReport().ToMap())
}

func TestEmptyReportsMarshalWithEmptyLists(t *testing.T) {
	encoded, err := json.Marshal(&Report{})
	require.NoError(t, err)
	require.Equal(t, `{"modules":[]}`, string(encoded))

	report := &Report{}
	report.AddModuleReport(&ModuleReport{Name: "quiet"})
	encoded, err = json.Marshal(report)
	require.NoError(t, err)
	require.Equal(t, `{"modules":[{"name":"quiet","warnings":[]}]}`, string(encoded))
}

func TestParseOutputGroupsWarningsByModule(t *testing.T) {
	basePath := filepath.FromSlash("/path/to")
	lines := []string{
		filepath.FromSlash("/path/to/package/module_one") + ":2: Sample warning",
		filepath.FromSlash("/path/to/package/module_one") + ":4: Another sample warning",
		"",
		filepath.FromSlash("/path/to/package/module_two") + ":33: Another sample warning",
		filepath.FromSlash("/path/to/package/module_two") + ":332: Yet another sample warning",
	}

	report := ParseOutput(basePath, lines)
	require.Len(t, report.Modules, 2)

	require.Equal(t, "package.module_one", report.Modules[0].Name)
	require.Equal(t, []Warning{
		{Message: "Sample warning", LineNumber: 2},
		{Message: "Another sample warning", LineNumber: 4},
	}, report.Modules[0].Warnings)

	require.Equal(t, "package.module_two", report.Modules[1].Name)
	require.Equal(t, []Warning{
		{Message: "Another sample warning", LineNumber: 33},
		{Message: "Yet another sample warning", LineNumber: 332},
	}, report.Modules[1].Warnings)
}

func TestParseOutputSkipsNoise(t *testing.T) {
	report := ParseOutput("/src", []string{
		"Processing module checks...",
		"/src/app/main.py:10: unused import",
		"   ",
		"/src/app/main.py:notanumber: broken",
	})
	require.Len(t, report.Modules, 1)
	require.Equal(t, "app.main", report.Modules[0].Name)
	require.Equal(t, 1, report.WarningCount())
}

func TestModuleName(t *testing.T) {
	testCases := []struct {
		name       string
		basePath   string
		sourcePath string
		expected   string
	}{
		{name: "relative to base", basePath: "/src", sourcePath: "/src/pkg/mod.py", expected: "pkg.mod"},
		{name: "no base", basePath: "", sourcePath: "pkg/mod", expected: "pkg.mod"},
		{name: "outside base", basePath: "/src", sourcePath: "/other/mod.py", expected: "other.mod"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, ModuleName(filepath.FromSlash(testCase.basePath), filepath.FromSlash(testCase.sourcePath)))
		})
	}
}
