// Package graph provides the pure graph primitives the execution
// engine validates and orders workflows with: adjacency construction,
// source discovery, reachability, cycle detection and topological
// ordering. All operations are pure functions of their inputs.
// Traversals are O(V+E); the successor, predecessor and ready lists are
// kept sorted with a linear-time insert each, so the worst case is
// quadratic in the node count.
package graph

import (
	"github.com/google/uuid"

	"github.com/flowmesh/flowmesh/pkg/models"
)

// Adjacency holds the forward and reverse adjacency of a workflow
// graph. Every node appears as a key in both maps, isolated nodes
// included.
type Adjacency struct {
	Forward map[uuid.UUID][]uuid.UUID
	Reverse map[uuid.UUID][]uuid.UUID
}

// BuildAdjacency builds forward and reverse adjacency maps from the
// nodes and edges of one workflow. The result is invariant under
// reordering of the inputs: successor and predecessor lists are kept
// sorted by node ID.
func BuildAdjacency(nodes []*models.Node, edges []*models.Edge) *Adjacency {
	adj := &Adjacency{
		Forward: make(map[uuid.UUID][]uuid.UUID, len(nodes)),
		Reverse: make(map[uuid.UUID][]uuid.UUID, len(nodes)),
	}

	for _, node := range nodes {
		adj.Forward[node.ID] = []uuid.UUID{}
		adj.Reverse[node.ID] = []uuid.UUID{}
	}

	for _, edge := range edges {
		adj.Forward[edge.SourceNodeID] = insertSorted(adj.Forward[edge.SourceNodeID], edge.TargetNodeID)
		adj.Reverse[edge.TargetNodeID] = insertSorted(adj.Reverse[edge.TargetNodeID], edge.SourceNodeID)
	}

	return adj
}

// Sources returns the nodes with zero incoming edges, sorted by node ID.
func Sources(adj *Adjacency) []uuid.UUID {
	var sources []uuid.UUID
	for nodeID, parents := range adj.Reverse {
		if len(parents) == 0 {
			sources = insertSorted(sources, nodeID)
		}
	}
	return sources
}

// Reachable returns the set of nodes reachable from the given sources
// by BFS over the forward adjacency. The sources themselves are
// included.
func Reachable(sources []uuid.UUID, adj *Adjacency) map[uuid.UUID]bool {
	reached := make(map[uuid.UUID]bool, len(adj.Forward))
	queue := make([]uuid.UUID, 0, len(sources))

	for _, src := range sources {
		if _, ok := adj.Forward[src]; !ok {
			continue
		}
		if !reached[src] {
			reached[src] = true
			queue = append(queue, src)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range adj.Forward[current] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}

	return reached
}

// insertSorted inserts id into a slice kept sorted by the string form
// of the UUID, skipping duplicates. The sorted order is what makes
// traversal and tie-breaking deterministic for a given input.
func insertSorted(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	key := id.String()
	lo, hi := 0, len(ids)
	for lo < hi {
		mid := (lo + hi) / 2
		if ids[mid].String() < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(ids) && ids[lo] == id {
		return ids
	}
	ids = append(ids, uuid.Nil)
	copy(ids[lo+1:], ids[lo:])
	ids[lo] = id
	return ids
}
