package reactor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildRegistry(t *testing.T, definitions ...TaskDefinition) *Registry {
	t.Helper()
	registry := NewRegistry()
	for _, definition := range definitions {
		if definition.Body == nil {
			definition.Body = noopBody
		}
		require.NoError(t, registry.Register(definition))
	}
	return registry
}

func pipelineRegistry(t *testing.T) *Registry {
	return buildRegistry(t,
		TaskDefinition{Name: "clean"},
		TaskDefinition{Name: "compile", Depends: []string{"clean"}},
		TaskDefinition{Name: "test", Depends: []string{"compile"}},
		TaskDefinition{Name: "package", Depends: []string{"test"}},
		TaskDefinition{Name: "lint", Depends: []string{"clean"}},
		TaskDefinition{Name: "docs", Dependents: []string{"package"}},
	)
}

func TestPlanOrdersTasks(t *testing.T) {
	testCases := []struct {
		name          string
		goals         []string
		expectedTasks []string
	}{
		{
			name:          "single goal pulls prerequisites",
			goals:         []string{"package"},
			expectedTasks: []string{"clean", "compile", "test", "package"},
		},
		{
			name:          "goal order breaks ties",
			goals:         []string{"package", "lint"},
			expectedTasks: []string{"clean", "compile", "test", "package", "lint"},
		},
		{
			name:          "earlier goal wins shared prerequisites",
			goals:         []string{"lint", "package"},
			expectedTasks: []string{"clean", "lint", "compile", "test", "package"},
		},
		{
			name:          "duplicate goals collapse",
			goals:         []string{"lint", "lint", "compile"},
			expectedTasks: []string{"clean", "lint", "compile"},
		},
		{
			name:          "dependents attach only when reachable",
			goals:         []string{"package", "docs"},
			expectedTasks: []string{"clean", "compile", "test", "docs", "package"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			plan, err := Plan(pipelineRegistry(t), testCase.goals)
			require.NoError(t, err)
			require.Equal(t, testCase.expectedTasks, plan.Tasks)
		})
	}
}

func TestPlanDependentsNeverDragTasksIn(t *testing.T) {
	plan, err := Plan(pipelineRegistry(t), []string{"package"})
	require.NoError(t, err)
	require.NotContains(t, plan.Tasks, "docs")
	require.NotContains(t, plan.Tasks, "lint")
}

func TestPlanHonorsBeforeAndAfterHints(t *testing.T) {
	beforeRegistry := buildRegistry(t,
		TaskDefinition{Name: "first"},
		TaskDefinition{Name: "second", Before: "first"},
		TaskDefinition{Name: "unrelated", Before: "missing-from-plan-but-registered"},
		TaskDefinition{Name: "missing-from-plan-but-registered"},
	)
	plan, err := Plan(beforeRegistry, []string{"first", "second"})
	require.NoError(t, err)
	require.Equal(t, []string{"second", "first"}, plan.Tasks)

	afterRegistry := buildRegistry(t,
		TaskDefinition{Name: "report", After: "verify"},
		TaskDefinition{Name: "verify"},
	)
	plan, err = Plan(afterRegistry, []string{"report", "verify"})
	require.NoError(t, err)
	require.Equal(t, []string{"verify", "report"}, plan.Tasks)

	plan, err = Plan(afterRegistry, []string{"report"})
	require.NoError(t, err)
	require.Equal(t, []string{"report"}, plan.Tasks)
}

func TestPlanIsIdempotent(t *testing.T) {
	registry := pipelineRegistry(t)
	goals := []string{"lint", "docs", "package"}

	firstPlan, err := Plan(registry, goals)
	require.NoError(t, err)
	secondPlan, err := Plan(registry, goals)
	require.NoError(t, err)
	require.Equal(t, firstPlan.Tasks, secondPlan.Tasks)
}

func TestPlanRespectsEveryEdge(t *testing.T) {
	registry := pipelineRegistry(t)
	goals := []string{"docs", "lint", "package"}

	graph, err := BuildGraph(registry, goals)
	require.NoError(t, err)
	plan, err := Plan(registry, goals)
	require.NoError(t, err)
	require.ElementsMatch(t, graph.Nodes(), plan.Tasks)

	positions := make(map[string]int, len(plan.Tasks))
	for taskIndex, taskName := range plan.Tasks {
		positions[taskName] = taskIndex
	}
	for _, edge := range graph.Edges() {
		require.Less(t, positions[edge.From], positions[edge.To], "%s must precede %s", edge.From, edge.To)
	}
	require.Equal(t, []string{"test", "docs"}, plan.Prerequisites("package"))
}

func TestPlanReportsMissingTasks(t *testing.T) {
	testCases := []struct {
		name             string
		definitions      []TaskDefinition
		goals            []string
		expectedName     string
		expectedReferrer string
		expectedRelation Relation
	}{
		{
			name:             "goal",
			definitions:      []TaskDefinition{{Name: "compile"}},
			goals:            []string{"compile", "deploy"},
			expectedName:     "deploy",
			expectedRelation: RelationGoal,
		},
		{
			name:             "depends",
			definitions:      []TaskDefinition{{Name: "compile", Depends: []string{"generate"}}},
			goals:            []string{"compile"},
			expectedName:     "generate",
			expectedReferrer: "compile",
			expectedRelation: RelationDepends,
		},
		{
			name:             "dependents",
			definitions:      []TaskDefinition{{Name: "compile", Dependents: []string{"ship"}}},
			goals:            []string{"compile"},
			expectedName:     "ship",
			expectedReferrer: "compile",
			expectedRelation: RelationDependents,
		},
		{
			name:             "before",
			definitions:      []TaskDefinition{{Name: "compile", Before: "publish"}},
			goals:            []string{"compile"},
			expectedName:     "publish",
			expectedReferrer: "compile",
			expectedRelation: RelationBefore,
		},
		{
			name:             "after",
			definitions:      []TaskDefinition{{Name: "compile", After: "fetch"}},
			goals:            []string{"compile"},
			expectedName:     "fetch",
			expectedReferrer: "compile",
			expectedRelation: RelationAfter,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := Plan(buildRegistry(t, testCase.definitions...), testCase.goals)
			require.ErrorIs(t, err, ErrMissingTask)

			var missingError MissingTaskError
			require.ErrorAs(t, err, &missingError)
			require.Equal(t, testCase.expectedName, missingError.Name)
			require.Equal(t, testCase.expectedReferrer, missingError.Referrer)
			require.Equal(t, testCase.expectedRelation, missingError.Relation)
		})
	}
}

func TestPlanRequiresGoals(t *testing.T) {
	_, err := Plan(pipelineRegistry(t), []string{" ", ""})
	require.ErrorIs(t, err, ErrNoGoals)
}

func TestPlanReportsCycles(t *testing.T) {
	testCases := []struct {
		name         string
		definitions  []TaskDefinition
		goals        []string
		expectedPath []string
	}{
		{
			name: "three task cycle",
			definitions: []TaskDefinition{
				{Name: "task_a", Depends: []string{"task_c"}},
				{Name: "task_b", Depends: []string{"task_a"}},
				{Name: "task_c", Depends: []string{"task_a", "task_b"}},
			},
			goals:        []string{"task_c", "task_a", "task_b"},
			expectedPath: []string{"task_c", "task_a", "task_b", "task_c"},
		},
		{
			name:         "self dependency",
			definitions:  []TaskDefinition{{Name: "loop", Depends: []string{"loop"}}},
			goals:        []string{"loop"},
			expectedPath: []string{"loop", "loop"},
		},
		{
			name: "hint closes a cycle",
			definitions: []TaskDefinition{
				{Name: "assemble", Depends: []string{"verify"}, Before: "verify"},
				{Name: "verify"},
			},
			goals:        []string{"assemble"},
			expectedPath: []string{"assemble", "verify", "assemble"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			for attempt := 0; attempt < 3; attempt++ {
				_, err := Plan(buildRegistry(t, testCase.definitions...), testCase.goals)
				require.ErrorIs(t, err, ErrCircularDependency)

				var cycleError CircularDependencyError
				require.ErrorAs(t, err, &cycleError)
				require.Equal(t, testCase.expectedPath, cycleError.Path)
			}
		})
	}
}
