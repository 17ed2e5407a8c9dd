package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/flowmesh/flowmesh/pkg/models"
)

func TestJSONBMap_RoundTrip(t *testing.T) {
	original := JSONBMap{
		"text":   "hello",
		"count":  float64(3),
		"nested": map[string]interface{}{"ok": true},
	}

	value, err := original.Value()
	require.NoError(t, err)

	var decoded JSONBMap
	require.NoError(t, decoded.Scan([]byte(value.(string))))
	assert.Equal(t, original, decoded)
}

func TestJSONBMap_ScanNil(t *testing.T) {
	var decoded JSONBMap
	require.NoError(t, decoded.Scan(nil))
	assert.NotNil(t, decoded)
	assert.Empty(t, decoded)
}

func TestToDomainWorkflow(t *testing.T) {
	workflowID := uuid.New()
	nodeID := uuid.New()
	targetID := uuid.New()

	model := &WorkflowModel{
		ID:     workflowID,
		UserID: uuid.New(),
		Name:   "pipeline",
		Nodes: []*NodeModel{
			{
				ID:         nodeID,
				WorkflowID: workflowID,
				Name:       "fetch",
				Type:       "http_request",
				Config:     JSONBMap{"url": "https://example.com"},
				PositionX:  10,
				PositionY:  20,
			},
			{ID: targetID, WorkflowID: workflowID, Name: "write", Type: "db_write"},
		},
		Edges: []*EdgeModel{
			{ID: uuid.New(), WorkflowID: workflowID, SourceNodeID: nodeID, TargetNodeID: targetID},
		},
	}

	workflow := ToDomainWorkflow(model)

	assert.Equal(t, "pipeline", workflow.Name)
	require.Len(t, workflow.Nodes, 2)
	assert.Equal(t, domain.NodeTypeHTTPRequest, workflow.Nodes[0].Type)
	assert.Equal(t, "https://example.com", workflow.Nodes[0].Config["url"])
	assert.Equal(t, 10.0, workflow.Nodes[0].Position.X)
	require.Len(t, workflow.Edges, 1)
	assert.Equal(t, nodeID, workflow.Edges[0].SourceNodeID)
}

func TestRunModel_TerminalMarks(t *testing.T) {
	run := &WorkflowRunModel{Status: "running", StartedAt: time.Now()}

	run.MarkCompleted(JSONBMap{"response": "done"})
	assert.Equal(t, "completed", run.Status)
	require.NotNil(t, run.CompletedAt)

	failed := &WorkflowRunModel{Status: "running", StartedAt: time.Now()}
	failed.MarkFailed("boom")
	assert.Equal(t, "failed", failed.Status)
	assert.Equal(t, "boom", failed.ErrorMessage)
	require.NotNil(t, failed.CompletedAt)
}

func TestEdgeModel_RejectsSelfLoop(t *testing.T) {
	id := uuid.New()
	edge := &EdgeModel{WorkflowID: uuid.New(), SourceNodeID: id, TargetNodeID: id}

	assert.ErrorIs(t, edge.BeforeInsert(nil), ErrSelfReferenceEdge)
}
