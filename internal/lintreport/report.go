// Package lintreport models lint findings grouped per module and carries them through the
// reactor run-context.
package lintreport

import (
	"encoding/json"
)

const (
	modulesKeyConstant    = "modules"
	nameKeyConstant       = "name"
	warningsKeyConstant   = "warnings"
	messageKeyConstant    = "message"
	lineNumberKeyConstant = "line_number"
)

// Warning is a single finding at a line of a module.
type Warning struct {
	Message    string `json:"message"`
	LineNumber int    `json:"line_number"`
}

// ToMap returns the canonical nested form of the warning.
func (warning Warning) ToMap() map[string]any {
	return map[string]any{
		messageKeyConstant:    warning.Message,
		lineNumberKeyConstant: warning.LineNumber,
	}
}

// ModuleReport groups warnings of one module in insertion order.
type ModuleReport struct {
	Name     string    `json:"name"`
	Warnings []Warning `json:"warnings"`
}

// NewModuleReport creates an empty module report.
func NewModuleReport(name string) *ModuleReport {
	return &ModuleReport{Name: name, Warnings: []Warning{}}
}

// AddWarning appends a warning.
func (moduleReport *ModuleReport) AddWarning(warning Warning) {
	moduleReport.Warnings = append(moduleReport.Warnings, warning)
}

// ToMap returns the canonical nested form of the module report.
func (moduleReport ModuleReport) ToMap() map[string]any {
	warnings := make([]map[string]any, 0, len(moduleReport.Warnings))
	for _, warning := range moduleReport.Warnings {
		warnings = append(warnings, warning.ToMap())
	}
	return map[string]any{
		nameKeyConstant:     moduleReport.Name,
		warningsKeyConstant: warnings,
	}
}

// Report is the ordered collection of module reports.
type Report struct {
	Modules []*ModuleReport
}

// AddModuleReport appends a module report.
func (report *Report) AddModuleReport(moduleReport *ModuleReport) {
	report.Modules = append(report.Modules, moduleReport)
}

// Module returns the module report named name, if any.
func (report *Report) Module(name string) (*ModuleReport, bool) {
	for _, moduleReport := range report.Modules {
		if moduleReport.Name == name {
			return moduleReport, true
		}
	}
	return nil, false
}

// WarningCount returns the total number of warnings across modules.
func (report *Report) WarningCount() int {
	count := 0
	for _, moduleReport := range report.Modules {
		count += len(moduleReport.Warnings)
	}
	return count
}

// ToMap returns the canonical nested form of the report.
func (report *Report) ToMap() map[string]any {
	modules := make([]map[string]any, 0, len(report.Modules))
	for _, moduleReport := range report.Modules {
		modules = append(modules, moduleReport.ToMap())
	}
	return map[string]any{modulesKeyConstant: modules}
}

type canonicalModule struct {
	Name     string    `json:"name"`
	Warnings []Warning `json:"warnings"`
}

type canonicalReport struct {
	Modules []canonicalModule `json:"modules"`
}

// MarshalJSON renders the canonical JSON, keeping module and warning order and the key order
// name, warnings, message, line_number.
func (report *Report) MarshalJSON() ([]byte, error) {
	canonical := canonicalReport{Modules: make([]canonicalModule, 0, len(report.Modules))}
	for _, moduleReport := range report.Modules {
		warnings := moduleReport.Warnings
		if warnings == nil {
			warnings = []Warning{}
		}
		canonical.Modules = append(canonical.Modules, canonicalModule{Name: moduleReport.Name, Warnings: warnings})
	}
	return json.Marshal(canonical)
}
