package models

import (
	"github.com/flowmesh/flowmesh/pkg/models"
)

// ToDomainWorkflow converts a storage workflow to the domain model.
func ToDomainWorkflow(m *WorkflowModel) *models.Workflow {
	workflow := &models.Workflow{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for _, node := range m.Nodes {
		workflow.Nodes = append(workflow.Nodes, ToDomainNode(node))
	}
	for _, edge := range m.Edges {
		workflow.Edges = append(workflow.Edges, ToDomainEdge(edge))
	}
	return workflow
}

// ToDomainNode converts a storage node to the domain model.
func ToDomainNode(m *NodeModel) *models.Node {
	return &models.Node{
		ID:         m.ID,
		WorkflowID: m.WorkflowID,
		Name:       m.Name,
		Type:       models.NodeType(m.Type),
		Config:     map[string]interface{}(m.Config),
		Position:   models.Position{X: m.PositionX, Y: m.PositionY},
	}
}

// ToDomainEdge converts a storage edge to the domain model.
func ToDomainEdge(m *EdgeModel) *models.Edge {
	return &models.Edge{
		ID:           m.ID,
		WorkflowID:   m.WorkflowID,
		SourceNodeID: m.SourceNodeID,
		TargetNodeID: m.TargetNodeID,
	}
}

// ToDomainRun converts a storage run to the domain model.
func ToDomainRun(m *WorkflowRunModel) *models.WorkflowRun {
	return &models.WorkflowRun{
		ID:           m.ID,
		WorkflowID:   m.WorkflowID,
		UserID:       m.UserID,
		Status:       models.RunStatus(m.Status),
		InputData:    map[string]interface{}(m.InputData),
		OutputData:   map[string]interface{}(m.OutputData),
		ErrorMessage: m.ErrorMessage,
		StartedAt:    m.StartedAt,
		CompletedAt:  m.CompletedAt,
	}
}

// ToDomainNodeExecution converts a storage node execution to the domain model.
func ToDomainNodeExecution(m *NodeExecutionModel) *models.NodeExecution {
	return &models.NodeExecution{
		ID:             m.ID,
		RunID:          m.RunID,
		NodeID:         m.NodeID,
		Status:         models.RunStatus(m.Status),
		ExecutionOrder: m.ExecutionOrder,
		OutputData:     map[string]interface{}(m.OutputData),
		ErrorMessage:   m.ErrorMessage,
		StartedAt:      m.StartedAt,
		CompletedAt:    m.CompletedAt,
	}
}

// ToDomainCollection converts a storage collection to the domain model.
func ToDomainCollection(m *VectorCollectionModel) *models.VectorCollection {
	return &models.VectorCollection{
		ID:            m.ID,
		UserID:        m.UserID,
		Name:          m.Name,
		Dimension:     m.Dimension,
		IndexPath:     m.IndexPath,
		DocumentCount: m.DocumentCount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
