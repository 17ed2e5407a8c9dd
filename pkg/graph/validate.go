package graph

import (
	"github.com/google/uuid"

	"github.com/flowmesh/flowmesh/pkg/models"
)

// ValidationReport is the verdict for a workflow graph that passed
// validation. Order is a legal, deterministic execution order.
// Unreached is non-empty only when disconnected graphs are allowed.
type ValidationReport struct {
	Order     []uuid.UUID
	Sources   []uuid.UUID
	Unreached []uuid.UUID
}

// Validate classifies a workflow graph. Checks run in order: at least
// one source, acyclicity (via topological sort), reachability of every
// node from some source. When allowDisconnected is true unreachable
// nodes are reported instead of rejected.
func Validate(nodes []*models.Node, edges []*models.Edge, allowDisconnected bool) (*ValidationReport, error) {
	adj := BuildAdjacency(nodes, edges)

	sources := Sources(adj)
	if len(sources) == 0 {
		return nil, &NoSourceError{}
	}

	order, err := TopoSort(nodes, edges)
	if err != nil {
		return nil, err
	}

	reached := Reachable(sources, adj)
	var unreached []uuid.UUID
	for _, node := range nodes {
		if !reached[node.ID] {
			unreached = insertSorted(unreached, node.ID)
		}
	}

	if len(unreached) > 0 && !allowDisconnected {
		return nil, &DisconnectedGraphError{Cause: &UnreachableNodesError{NodeIDs: unreached}}
	}

	return &ValidationReport{
		Order:     order,
		Sources:   sources,
		Unreached: unreached,
	}, nil
}
