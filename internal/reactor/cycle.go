package reactor

type visitState int

const (
	visitStateUnvisited visitState = iota
	visitStateOnStack
	visitStateDone
)

// DetectCycle walks the graph depth first, starting from the goals in request order and then
// from the remaining nodes in registration order. The first cycle found is returned as a
// CircularDependencyError whose path starts and ends with the same task.
func DetectCycle(graph *Graph) error {
	detector := cycleDetector{
		graph:  graph,
		states: make(map[string]visitState, len(graph.nodes)),
	}

	roots := make([]string, 0, len(graph.goals)+len(graph.nodes))
	roots = append(roots, graph.goals...)
	roots = append(roots, graph.nodes...)

	for _, root := range roots {
		if detector.states[root] != visitStateUnvisited {
			continue
		}
		if path := detector.visit(root); path != nil {
			return CircularDependencyError{Path: path}
		}
	}
	return nil
}

type cycleDetector struct {
	graph  *Graph
	states map[string]visitState
	stack  []string
}

func (detector *cycleDetector) visit(name string) []string {
	detector.states[name] = visitStateOnStack
	detector.stack = append(detector.stack, name)

	for _, successor := range detector.graph.successors[name] {
		switch detector.states[successor] {
		case visitStateOnStack:
			return detector.cycleFrom(successor)
		case visitStateUnvisited:
			if path := detector.visit(successor); path != nil {
				return path
			}
		}
	}

	detector.stack = detector.stack[:len(detector.stack)-1]
	detector.states[name] = visitStateDone
	return nil
}

func (detector *cycleDetector) cycleFrom(name string) []string {
	for stackIndex, stacked := range detector.stack {
		if stacked != name {
			continue
		}
		path := make([]string, 0, len(detector.stack)-stackIndex+1)
		path = append(path, detector.stack[stackIndex:]...)
		return append(path, name)
	}
	return []string{name, name}
}
