package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Workflow represents a user-owned workflow definition with its DAG structure.
type Workflow struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Nodes       []*Node   `json:"nodes"`
	Edges       []*Edge   `json:"edges"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NodeType identifies the handler bound to a node.
type NodeType string

const (
	NodeTypeLLMCall     NodeType = "llm_call"
	NodeTypeHTTPRequest NodeType = "http_request"
	NodeTypeFAISSSearch NodeType = "faiss_search"
	NodeTypeDBWrite     NodeType = "db_write"
)

// ValidNodeTypes is the closed set of node types the platform executes.
var ValidNodeTypes = map[NodeType]bool{
	NodeTypeLLMCall:     true,
	NodeTypeHTTPRequest: true,
	NodeTypeFAISSSearch: true,
	NodeTypeDBWrite:     true,
}

// Node represents a single node in the workflow DAG.
// Name is unique within the workflow and is the key other nodes use
// to reference this node's output in templates.
type Node struct {
	ID         uuid.UUID              `json:"id"`
	WorkflowID uuid.UUID              `json:"workflow_id"`
	Name       string                 `json:"name"`
	Type       NodeType               `json:"type"`
	Config     map[string]interface{} `json:"config"`
	Position   Position               `json:"position"`
}

// Position represents the visual position of a node in the editor.
// Not used during execution.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge represents a directed edge between two nodes of the same workflow.
type Edge struct {
	ID           uuid.UUID `json:"id"`
	WorkflowID   uuid.UUID `json:"workflow_id"`
	SourceNodeID uuid.UUID `json:"source_node_id"`
	TargetNodeID uuid.UUID `json:"target_node_id"`
}

// Validate validates the workflow structure against the model invariants:
// unique node IDs and names, unique (source,target) edge pairs, edges
// referencing existing nodes, no self-loops.
func (w *Workflow) Validate() error {
	if w.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}

	nodeIDs := make(map[uuid.UUID]bool, len(w.Nodes))
	nodeNames := make(map[string]bool, len(w.Nodes))
	for _, node := range w.Nodes {
		if err := node.Validate(); err != nil {
			return err
		}
		if nodeIDs[node.ID] {
			return &ValidationError{Field: "nodes", Message: fmt.Sprintf("duplicate node ID: %s", node.ID)}
		}
		nodeIDs[node.ID] = true

		if nodeNames[node.Name] {
			return &ValidationError{Field: "nodes", Message: fmt.Sprintf("duplicate node name: %s", node.Name)}
		}
		nodeNames[node.Name] = true
	}

	edgePairs := make(map[[2]uuid.UUID]bool, len(w.Edges))
	for _, edge := range w.Edges {
		if err := edge.Validate(); err != nil {
			return err
		}
		if !nodeIDs[edge.SourceNodeID] {
			return &ValidationError{Field: "edges", Message: fmt.Sprintf("edge references non-existent source node: %s", edge.SourceNodeID)}
		}
		if !nodeIDs[edge.TargetNodeID] {
			return &ValidationError{Field: "edges", Message: fmt.Sprintf("edge references non-existent target node: %s", edge.TargetNodeID)}
		}

		pair := [2]uuid.UUID{edge.SourceNodeID, edge.TargetNodeID}
		if edgePairs[pair] {
			return &ValidationError{Field: "edges", Message: fmt.Sprintf("duplicate edge: %s -> %s", edge.SourceNodeID, edge.TargetNodeID)}
		}
		edgePairs[pair] = true
	}

	return nil
}

// Validate validates the node structure.
func (n *Node) Validate() error {
	if n.ID == uuid.Nil {
		return &ValidationError{Field: "id", Message: "node ID is required"}
	}
	if n.Name == "" {
		return &ValidationError{Field: "name", Message: "node name is required"}
	}
	if !ValidNodeTypes[n.Type] {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown node type: %s", n.Type)}
	}
	return nil
}

// Validate validates the edge structure.
func (e *Edge) Validate() error {
	if e.ID == uuid.Nil {
		return &ValidationError{Field: "id", Message: "edge ID is required"}
	}
	if e.SourceNodeID == uuid.Nil {
		return &ValidationError{Field: "source_node_id", Message: "edge source is required"}
	}
	if e.TargetNodeID == uuid.Nil {
		return &ValidationError{Field: "target_node_id", Message: "edge target is required"}
	}
	if e.SourceNodeID == e.TargetNodeID {
		return &ValidationError{Field: "edge", Message: "self-loop edges are not allowed"}
	}
	return nil
}

// GetNode returns a node by ID.
func (w *Workflow) GetNode(nodeID uuid.UUID) (*Node, error) {
	for _, node := range w.Nodes {
		if node.ID == nodeID {
			return node, nil
		}
	}
	return nil, ErrNodeNotFound
}

// GetNodeByName returns a node by its workflow-unique name.
func (w *Workflow) GetNodeByName(name string) (*Node, error) {
	for _, node := range w.Nodes {
		if node.Name == name {
			return node, nil
		}
	}
	return nil, ErrNodeNotFound
}
