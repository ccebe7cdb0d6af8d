package reactor

import (
	"strings"
)

// Edge records that From must complete before To.
type Edge struct {
	From     string
	To       string
	Relation Relation
}

// Graph is the task graph restricted to what the requested goals need.
type Graph struct {
	goals        []string
	nodes        []string
	reachable    map[string]struct{}
	goalRank     map[string]int
	order        map[string]int
	edges        []Edge
	successors   map[string][]string
	predecessors map[string][]string
}

// BuildGraph computes the nodes reachable from goals through depends declarations and
// attaches every ordering edge whose two ends are both reachable.
func BuildGraph(registry *Registry, goals []string) (*Graph, error) {
	normalizedGoals, goalError := normalizeGoals(registry, goals)
	if goalError != nil {
		return nil, goalError
	}

	graph := &Graph{
		goals:        normalizedGoals,
		reachable:    make(map[string]struct{}),
		goalRank:     make(map[string]int),
		order:        make(map[string]int),
		successors:   make(map[string][]string),
		predecessors: make(map[string][]string),
	}

	for goalIndex, goal := range normalizedGoals {
		if closureError := graph.collectClosure(registry, goal, goalIndex); closureError != nil {
			return nil, closureError
		}
	}

	for _, name := range registry.order {
		if _, isReachable := graph.reachable[name]; isReachable {
			graph.order[name] = len(graph.nodes)
			graph.nodes = append(graph.nodes, name)
		}
	}

	if referenceError := graph.validateHintReferences(registry); referenceError != nil {
		return nil, referenceError
	}

	seenEdges := make(map[[2]string]struct{})
	for _, name := range graph.nodes {
		definition, _ := registry.definition(name)
		for _, dependency := range definition.Depends {
			graph.addEdge(seenEdges, Edge{From: dependency, To: name, Relation: RelationDepends})
		}
		for _, dependent := range definition.Dependents {
			graph.addEdge(seenEdges, Edge{From: name, To: dependent, Relation: RelationDependents})
		}
		if len(definition.Before) > 0 {
			graph.addEdge(seenEdges, Edge{From: name, To: definition.Before, Relation: RelationBefore})
		}
		if len(definition.After) > 0 {
			graph.addEdge(seenEdges, Edge{From: definition.After, To: name, Relation: RelationAfter})
		}
	}

	return graph, nil
}

// Goals returns the normalized goals in request order.
func (graph *Graph) Goals() []string {
	return append([]string(nil), graph.goals...)
}

// Nodes returns reachable task names in registration order.
func (graph *Graph) Nodes() []string {
	return append([]string(nil), graph.nodes...)
}

// Edges returns every recorded edge in declaration order.
func (graph *Graph) Edges() []Edge {
	return append([]Edge(nil), graph.edges...)
}

// Contains reports whether name is part of the graph.
func (graph *Graph) Contains(name string) bool {
	_, exists := graph.reachable[name]
	return exists
}

// Successors returns the tasks that must wait for name, in edge order.
func (graph *Graph) Successors(name string) []string {
	return append([]string(nil), graph.successors[name]...)
}

// Predecessors returns the tasks name waits for, in edge order.
func (graph *Graph) Predecessors(name string) []string {
	return append([]string(nil), graph.predecessors[name]...)
}

func (graph *Graph) collectClosure(registry *Registry, goal string, goalIndex int) error {
	stack := []string{goal}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, visited := graph.reachable[current]; visited {
			continue
		}
		graph.reachable[current] = struct{}{}
		graph.goalRank[current] = goalIndex

		definition, _ := registry.definition(current)
		for dependencyIndex := len(definition.Depends) - 1; dependencyIndex >= 0; dependencyIndex-- {
			dependency := definition.Depends[dependencyIndex]
			if !registry.Has(dependency) {
				return MissingTaskError{Name: dependency, Referrer: current, Relation: RelationDepends}
			}
			if _, visited := graph.reachable[dependency]; !visited {
				stack = append(stack, dependency)
			}
		}
	}
	return nil
}

func (graph *Graph) validateHintReferences(registry *Registry) error {
	for _, name := range graph.nodes {
		definition, _ := registry.definition(name)
		for _, dependent := range definition.Dependents {
			if !registry.Has(dependent) {
				return MissingTaskError{Name: dependent, Referrer: name, Relation: RelationDependents}
			}
		}
		if len(definition.Before) > 0 && !registry.Has(definition.Before) {
			return MissingTaskError{Name: definition.Before, Referrer: name, Relation: RelationBefore}
		}
		if len(definition.After) > 0 && !registry.Has(definition.After) {
			return MissingTaskError{Name: definition.After, Referrer: name, Relation: RelationAfter}
		}
	}
	return nil
}

func (graph *Graph) addEdge(seen map[[2]string]struct{}, edge Edge) {
	if !graph.Contains(edge.From) || !graph.Contains(edge.To) {
		return
	}
	key := [2]string{edge.From, edge.To}
	if _, duplicate := seen[key]; duplicate {
		return
	}
	seen[key] = struct{}{}
	graph.edges = append(graph.edges, edge)
	graph.successors[edge.From] = append(graph.successors[edge.From], edge.To)
	graph.predecessors[edge.To] = append(graph.predecessors[edge.To], edge.From)
}

func normalizeGoals(registry *Registry, goals []string) ([]string, error) {
	normalized := make([]string, 0, len(goals))
	seen := make(map[string]struct{}, len(goals))
	for _, rawGoal := range goals {
		goal := strings.TrimSpace(rawGoal)
		if len(goal) == 0 {
			continue
		}
		if _, duplicate := seen[goal]; duplicate {
			continue
		}
		if !registry.Has(goal) {
			return nil, MissingTaskError{Name: goal, Relation: RelationGoal}
		}
		seen[goal] = struct{}{}
		normalized = append(normalized, goal)
	}
	if len(normalized) == 0 {
		return nil, ErrNoGoals
	}
	return normalized, nil
}
