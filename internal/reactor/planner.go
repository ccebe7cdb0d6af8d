package reactor

// ExecutionPlan is the deterministic linear task order computed for one run.
type ExecutionPlan struct {
	Goals         []string
	Tasks         []string
	prerequisites map[string][]string
}

// Prerequisites returns the tasks that must complete before name, in edge order.
func (plan ExecutionPlan) Prerequisites(name string) []string {
	return append([]string(nil), plan.prerequisites[name]...)
}

// Len returns the number of planned tasks.
func (plan ExecutionPlan) Len() int {
	return len(plan.Tasks)
}

// Plan resolves goals against the registry and orders the reachable tasks. Structural
// failures (missing tasks, cycles) are returned before any plan is produced.
func Plan(registry *Registry, goals []string) (ExecutionPlan, error) {
	graph, graphError := BuildGraph(registry, goals)
	if graphError != nil {
		return ExecutionPlan{}, graphError
	}
	if cycleError := DetectCycle(graph); cycleError != nil {
		return ExecutionPlan{}, cycleError
	}
	return orderGraph(registry, graph), nil
}

func orderGraph(registry *Registry, graph *Graph) ExecutionPlan {
	remaining := make(map[string]int, len(graph.nodes))
	for _, name := range graph.nodes {
		remaining[name] = len(graph.predecessors[name])
	}

	eligible := make([]string, 0, len(graph.nodes))
	for _, name := range graph.nodes {
		if remaining[name] == 0 {
			eligible = append(eligible, name)
		}
	}

	ordered := make([]string, 0, len(graph.nodes))
	for len(eligible) > 0 {
		selectedIndex := 0
		for candidateIndex := 1; candidateIndex < len(eligible); candidateIndex++ {
			if planPrecedes(registry, graph, eligible[candidateIndex], eligible[selectedIndex]) {
				selectedIndex = candidateIndex
			}
		}
		selected := eligible[selectedIndex]
		eligible = append(eligible[:selectedIndex], eligible[selectedIndex+1:]...)
		ordered = append(ordered, selected)

		for _, successor := range graph.successors[selected] {
			remaining[successor]--
			if remaining[successor] == 0 {
				eligible = append(eligible, successor)
			}
		}
	}

	prerequisites := make(map[string][]string, len(graph.nodes))
	for _, name := range graph.nodes {
		if predecessors := graph.predecessors[name]; len(predecessors) > 0 {
			prerequisites[name] = append([]string(nil), predecessors...)
		}
	}

	return ExecutionPlan{
		Goals:         graph.Goals(),
		Tasks:         ordered,
		prerequisites: prerequisites,
	}
}

// planPrecedes orders eligible tasks by the goal that first reached them, then by registration.
func planPrecedes(registry *Registry, graph *Graph, candidate string, current string) bool {
	candidateRank, currentRank := graph.goalRank[candidate], graph.goalRank[current]
	if candidateRank != currentRank {
		return candidateRank < currentRank
	}
	return registry.registrationIndex(candidate) < registry.registrationIndex(current)
}
