package lintreport

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const pythonSourceSuffixConstant = ".py"

var warningLinePattern = regexp.MustCompile(`^(.+?):(\d+): ?(.*)$`)

// ParseOutput turns "<path>:<line>: <message>" lines into a report. Blank and unparsable lines
// are skipped. Module names are paths relative to basePath with separators replaced by dots.
func ParseOutput(basePath string, lines []string) *Report {
	report := &Report{}
	for _, rawLine := range lines {
		line := strings.TrimRight(rawLine, "\r")
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		matches := warningLinePattern.FindStringSubmatch(line)
		if matches == nil {
			continue
		}
		lineNumber, conversionError := strconv.Atoi(matches[2])
		if conversionError != nil {
			continue
		}

		moduleName := ModuleName(basePath, matches[1])
		moduleReport, exists := report.Module(moduleName)
		if !exists {
			moduleReport = NewModuleReport(moduleName)
			report.AddModuleReport(moduleReport)
		}
		moduleReport.AddWarning(Warning{Message: strings.TrimSpace(matches[3]), LineNumber: lineNumber})
	}
	return report
}

// ModuleName converts a source path into a dotted module name relative to basePath.
func ModuleName(basePath string, sourcePath string) string {
	relativePath := filepath.Clean(sourcePath)
	if len(basePath) > 0 {
		if candidate, relativeError := filepath.Rel(filepath.Clean(basePath), relativePath); relativeError == nil && !strings.HasPrefix(candidate, "..") {
			relativePath = candidate
		}
	}
	relativePath = strings.TrimSuffix(filepath.ToSlash(relativePath), pythonSourceSuffixConstant)
	return strings.Trim(strings.ReplaceAll(relativePath, "/", "."), ".")
}

// SplitLines splits command output into lines.
func SplitLines(output string) []string {
	if len(output) == 0 {
		return nil
	}
	return strings.Split(output, "\n")
}
