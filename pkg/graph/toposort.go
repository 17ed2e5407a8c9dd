package graph

import (
	"github.com/google/uuid"

	"github.com/flowmesh/flowmesh/pkg/models"
)

// TopoSort produces a topological order of the workflow graph using
// Kahn's algorithm. Ties between ready nodes are broken
// deterministically: the ready set is kept sorted by node ID, so two
// runs over the same graph always produce the same order. Returns a
// CycleError when the graph contains a cycle.
func TopoSort(nodes []*models.Node, edges []*models.Edge) ([]uuid.UUID, error) {
	adj := BuildAdjacency(nodes, edges)

	inDegree := make(map[uuid.UUID]int, len(nodes))
	for nodeID, parents := range adj.Reverse {
		inDegree[nodeID] = len(parents)
	}

	var ready []uuid.UUID
	for nodeID, degree := range inDegree {
		if degree == 0 {
			ready = insertSorted(ready, nodeID)
		}
	}

	order := make([]uuid.UUID, 0, len(nodes))
	for len(ready) > 0 {
		current := ready[0]
		ready = ready[1:]
		order = append(order, current)

		for _, next := range adj.Forward[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = insertSorted(ready, next)
			}
		}
	}

	if len(order) < len(nodes) {
		return nil, &CycleError{}
	}

	return order, nil
}

// DetectCycle reports whether the graph contains a cycle, using DFS
// with a recursion stack. Used when the topological order itself is
// not needed.
func DetectCycle(nodes []*models.Node, edges []*models.Edge) bool {
	adj := BuildAdjacency(nodes, edges)

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[uuid.UUID]int, len(nodes))

	var visit func(id uuid.UUID) bool
	visit = func(id uuid.UUID) bool {
		state[id] = inStack
		for _, next := range adj.Forward[id] {
			switch state[next] {
			case inStack:
				return true
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}
		state[id] = done
		return false
	}

	for _, node := range nodes {
		if state[node.ID] == unvisited {
			if visit(node.ID) {
				return true
			}
		}
	}

	return false
}
