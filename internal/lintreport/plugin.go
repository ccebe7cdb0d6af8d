package lintreport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/reactor/internal/execshell"
	"github.com/tyemirov/reactor/internal/reactor"
)

// Task and property names contributed by the plugin.
const (
	AnalyzeTaskName             = "analyze"
	PublishTaskName             = "publish_lint_report"
	ReportPropertyName          = "lint_report"
	CommandPropertyName         = "lint_command"
	SourceDirectoryPropertyName = "lint_source_dir"
	BreakBuildPropertyName      = "lint_break_build"
	DistDirectoryPropertyName   = "dist_dir"

	defaultSourceDirectoryConstant     = "."
	defaultDistDirectoryConstant       = "target/dist"
	reportsDirectoryNameConstant       = "reports"
	reportFileNameConstant             = "lint.json"
	reportFilePermissionsConstant      = 0o644
	reportDirectoryPermissionsConstant = 0o755

	analyzeDescriptionConstant         = "Run the configured checker and collect warnings per module"
	publishDescriptionConstant         = "Write the lint report as JSON under the distribution directory"
	missingCommandMessageConstant      = "lint command is not configured"
	missingReportTemplateConstant      = "lint report property %q does not hold a report"
	checkerFailedTemplateConstant      = "lint checker failed: %w"
	warningsBreakBuildTemplateConstant = "lint found %d warning(s)"
	reportWriteTemplateConstant        = "write lint report: %w"
	logMessageAnalysisCompleted        = "lint analysis completed"
	logMessageReportPublished          = "lint report published"
	logFieldModules                    = "modules"
	logFieldWarnings                   = "warnings"
	logFieldPath                       = "path"
)

// ErrCommandNotConfigured indicates that neither the plugin nor the run-context supplied a checker command.
var ErrCommandNotConfigured = errors.New(missingCommandMessageConstant)

// Plugin registers the lint tasks with a reactor registry.
type Plugin struct {
	Executor *execshell.ShellExecutor
	Command  []string
	Logger   *zap.Logger
}

// Register adds the analyze and publish tasks.
func (plugin Plugin) Register(registry *reactor.Registry) error {
	if registrationError := registry.Register(reactor.TaskDefinition{
		Name:        AnalyzeTaskName,
		Description: analyzeDescriptionConstant,
		Body:        plugin.analyze,
	}); registrationError != nil {
		return registrationError
	}
	return registry.Register(reactor.TaskDefinition{
		Name:        PublishTaskName,
		Description: publishDescriptionConstant,
		Depends:     []string{AnalyzeTaskName},
		Body:        plugin.publish,
	})
}

func (plugin Plugin) logger() *zap.Logger {
	if plugin.Logger == nil {
		return zap.NewNop()
	}
	return plugin.Logger
}

func (plugin Plugin) analyze(ctx context.Context, project *reactor.Project) error {
	command := plugin.Command
	if value, lookupError := project.Get(CommandPropertyName); lookupError == nil {
		if configured, isList := value.AsStrings(); isList {
			command = configured
		} else if configured, isText := value.AsString(); isText && len(configured) > 0 {
			command = strings.Fields(configured)
		}
	}
	if len(command) == 0 {
		return ErrCommandNotConfigured
	}
	if plugin.Executor == nil {
		return execshell.ErrCommandRunnerNotConfigured
	}

	sourceDirectory := stringProperty(project, SourceDirectoryPropertyName, defaultSourceDirectoryConstant)
	basePath := project.ExpandPath(sourceDirectory)

	result, executionError := plugin.Executor.ExecuteArgv(ctx, command, execshell.CommandDetails{WorkingDirectory: project.BasePath})
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if !errors.As(executionError, &failedError) {
			return fmt.Errorf(checkerFailedTemplateConstant, executionError)
		}
		// checkers exit non-zero when they find warnings
		result = failedError.Result
	}

	report := ParseOutput(basePath, SplitLines(result.StandardOutput))
	plugin.logger().Info(logMessageAnalysisCompleted,
		zap.Int(logFieldModules, len(report.Modules)),
		zap.Int(logFieldWarnings, report.WarningCount()),
	)
	if setError := project.Set(ReportPropertyName, reactor.ObjectValue(report)); setError != nil {
		return setError
	}

	if breakBuild, flagError := project.GetBool(BreakBuildPropertyName); flagError == nil && breakBuild && report.WarningCount() > 0 {
		return fmt.Errorf(warningsBreakBuildTemplateConstant, report.WarningCount())
	}
	return nil
}

func (plugin Plugin) publish(_ context.Context, project *reactor.Project) error {
	report, reportError := ReportFromProject(project)
	if reportError != nil {
		return reportError
	}

	reportPath := project.ExpandPath(stringProperty(project, DistDirectoryPropertyName, defaultDistDirectoryConstant), reportsDirectoryNameConstant, reportFileNameConstant)
	if writeError := WriteReport(reportPath, report); writeError != nil {
		return writeError
	}
	plugin.logger().Info(logMessageReportPublished, zap.String(logFieldPath, reportPath))
	return nil
}

// ReportFromProject extracts the report stored by the analyze task.
func ReportFromProject(project *reactor.Project) (*Report, error) {
	value, lookupError := project.Get(ReportPropertyName)
	if lookupError != nil {
		return nil, lookupError
	}
	object, isObject := value.AsObject()
	report, isReport := object.(*Report)
	if !isObject || !isReport {
		return nil, fmt.Errorf(missingReportTemplateConstant, ReportPropertyName)
	}
	return report, nil
}

// WriteReport stores the canonical JSON at reportPath, creating parent directories.
func WriteReport(reportPath string, report *Report) error {
	encoded, encodeError := report.MarshalJSON()
	if encodeError != nil {
		return fmt.Errorf(reportWriteTemplateConstant, encodeError)
	}
	if mkdirError := os.MkdirAll(filepath.Dir(reportPath), reportDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(reportWriteTemplateConstant, mkdirError)
	}
	if writeError := os.WriteFile(reportPath, encoded, reportFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(reportWriteTemplateConstant, writeError)
	}
	return nil
}

func stringProperty(project *reactor.Project, name string, fallback string) string {
	if value, lookupError := project.GetString(name); lookupError == nil && len(value) > 0 {
		return value
	}
	return fallback
}
