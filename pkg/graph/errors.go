package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ErrGraphValidation is the root of the graph validation error
// taxonomy. All concrete graph errors match it via errors.Is.
var ErrGraphValidation = errors.New("graph validation failed")

// CycleError indicates the graph contains at least one cycle.
type CycleError struct{}

func (e *CycleError) Error() string { return "cycle detected in workflow graph" }

func (e *CycleError) Unwrap() error { return ErrGraphValidation }

// NoSourceError indicates no node has zero incoming edges.
type NoSourceError struct{}

func (e *NoSourceError) Error() string { return "workflow graph has no source node" }

func (e *NoSourceError) Unwrap() error { return ErrGraphValidation }

// UnreachableNodesError enumerates nodes not reachable from any source.
type UnreachableNodesError struct {
	NodeIDs []uuid.UUID
}

func (e *UnreachableNodesError) Error() string {
	ids := make([]string, len(e.NodeIDs))
	for i, id := range e.NodeIDs {
		ids[i] = id.String()
	}
	sort.Strings(ids)
	return fmt.Sprintf("unreachable nodes: %s", strings.Join(ids, ", "))
}

func (e *UnreachableNodesError) Unwrap() error { return ErrGraphValidation }

// DisconnectedGraphError indicates the graph has nodes outside the
// component(s) reachable from the sources and disconnected graphs are
// not allowed. It wraps the UnreachableNodesError enumerating them.
type DisconnectedGraphError struct {
	Cause *UnreachableNodesError
}

func (e *DisconnectedGraphError) Error() string {
	return fmt.Sprintf("workflow graph is disconnected: %s", e.Cause.Error())
}

func (e *DisconnectedGraphError) Unwrap() error { return e.Cause }
