package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmesh/flowmesh/pkg/executor"
	"github.com/flowmesh/flowmesh/pkg/graph"
	"github.com/flowmesh/flowmesh/pkg/models"
)

// --- fakes ---

type fakeLoader struct {
	workflow *models.Workflow
	err      error
}

func (f *fakeLoader) LoadWorkflowForExecution(ctx context.Context, workflowID, userID uuid.UUID) (*models.Workflow, []*models.Node, []*models.Edge, error) {
	if f.err != nil {
		return nil, nil, nil, f.err
	}
	return f.workflow, f.workflow.Nodes, f.workflow.Edges, nil
}

type runRecord struct {
	ID           uuid.UUID
	Status       models.RunStatus
	Output       map[string]interface{}
	ErrorMessage string
	Finalized    int
}

type nodeExecRecord struct {
	ID           uuid.UUID
	RunID        uuid.UUID
	NodeID       uuid.UUID
	Order        int
	Status       models.RunStatus
	Output       map[string]interface{}
	ErrorMessage string
}

// recordingRunRepo keeps run and node execution records in memory in
// creation order.
type recordingRunRepo struct {
	runs      []*runRecord
	nodeExecs []*nodeExecRecord
}

func (r *recordingRunRepo) CreateRun(ctx context.Context, workflowID, userID uuid.UUID, input map[string]interface{}) (uuid.UUID, error) {
	record := &runRecord{ID: uuid.New(), Status: models.RunStatusRunning}
	r.runs = append(r.runs, record)
	return record.ID, nil
}

func (r *recordingRunRepo) FinalizeRun(ctx context.Context, runID uuid.UUID, status models.RunStatus, output map[string]interface{}, errMsg string) error {
	for _, record := range r.runs {
		if record.ID == runID {
			record.Status = status
			record.Output = output
			record.ErrorMessage = errMsg
			record.Finalized++
			return nil
		}
	}
	return models.ErrRunNotFound
}

func (r *recordingRunRepo) CreateNodeExecution(ctx context.Context, runID, nodeID uuid.UUID, order int) (uuid.UUID, error) {
	record := &nodeExecRecord{ID: uuid.New(), RunID: runID, NodeID: nodeID, Order: order, Status: models.RunStatusRunning}
	r.nodeExecs = append(r.nodeExecs, record)
	return record.ID, nil
}

func (r *recordingRunRepo) FinalizeNodeExecution(ctx context.Context, nodeExecID uuid.UUID, status models.RunStatus, output map[string]interface{}, errMsg string) error {
	for _, record := range r.nodeExecs {
		if record.ID == nodeExecID {
			record.Status = status
			record.Output = output
			record.ErrorMessage = errMsg
			return nil
		}
	}
	return fmt.Errorf("node execution not found")
}

// captureExecutor echoes its rendered config and records every call.
type captureExecutor struct {
	*executor.BaseExecutor
	calls   []capturedCall
	failFor string // node name that should fail
	cancel  context.CancelFunc
}

type capturedCall struct {
	NodeName string
	Config   map[string]interface{}
	Input    map[string]interface{}
}

func (c *captureExecutor) Validate(config map[string]interface{}) error {
	if bad, ok := config["invalid"].(bool); ok && bad {
		return fmt.Errorf("%w: marked invalid", models.ErrInvalidConfig)
	}
	return nil
}

func (c *captureExecutor) Execute(ctx context.Context, config map[string]interface{}, input map[string]interface{}) (map[string]interface{}, error) {
	info, _ := executor.FromContext(ctx)
	c.calls = append(c.calls, capturedCall{NodeName: info.NodeName, Config: config, Input: input})

	if c.cancel != nil {
		c.cancel()
	}
	if c.failFor != "" && info.NodeName == c.failFor {
		return nil, errors.New("handler exploded")
	}

	return map[string]interface{}{
		"response": "output of " + info.NodeName,
		"status":   "success",
	}, nil
}

// --- helpers ---

func nid(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012x", n))
}

func wfNode(n int, name string, nodeType models.NodeType, config map[string]interface{}) *models.Node {
	if config == nil {
		config = map[string]interface{}{}
	}
	return &models.Node{ID: nid(n), Name: name, Type: nodeType, Config: config}
}

func wfEdge(from, to int) *models.Edge {
	return &models.Edge{ID: uuid.New(), SourceNodeID: nid(from), TargetNodeID: nid(to)}
}

func testWorkflow(nodes []*models.Node, edges []*models.Edge) *models.Workflow {
	return &models.Workflow{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Name:   "test",
		Nodes:  nodes,
		Edges:  edges,
	}
}

type testHarness struct {
	engine  *Engine
	repo    *recordingRunRepo
	capture *captureExecutor
}

func newHarness(t *testing.T, workflow *models.Workflow, opts Options) *testHarness {
	t.Helper()

	capture := &captureExecutor{BaseExecutor: executor.NewBaseExecutor(models.NodeTypeLLMCall)}
	registry := executor.NewRegistry()
	for _, nodeType := range []models.NodeType{models.NodeTypeLLMCall, models.NodeTypeHTTPRequest, models.NodeTypeDBWrite} {
		require.NoError(t, registry.Register(nodeType, capture))
	}

	repo := &recordingRunRepo{}
	eng := New(&fakeLoader{workflow: workflow}, repo, registry, nil, opts, zerolog.Nop())

	return &testHarness{engine: eng, repo: repo, capture: capture}
}

// --- tests ---

func TestExecute_LinearChain(t *testing.T) {
	workflow := testWorkflow(
		[]*models.Node{
			wfNode(1, "A", models.NodeTypeLLMCall, map[string]interface{}{"prompt_template": "{topic}"}),
			wfNode(2, "B", models.NodeTypeHTTPRequest, map[string]interface{}{"url": "https://example.com/{A.response}"}),
		},
		[]*models.Edge{wfEdge(1, 2)},
	)
	h := newHarness(t, workflow, Options{})

	result, err := h.engine.Execute(context.Background(), workflow.ID, workflow.UserID, map[string]interface{}{"topic": "cats"})
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusCompleted, result.Status)
	require.Len(t, h.repo.nodeExecs, 2)
	assert.Equal(t, 0, h.repo.nodeExecs[0].Order)
	assert.Equal(t, 1, h.repo.nodeExecs[1].Order)
	assert.Equal(t, models.RunStatusCompleted, h.repo.nodeExecs[0].Status)
	assert.Equal(t, models.RunStatusCompleted, h.repo.nodeExecs[1].Status)

	// A's template rendered from workflow input.
	require.Len(t, h.capture.calls, 2)
	assert.Equal(t, "cats", h.capture.calls[0].Config["prompt_template"])

	// B's url rendered from A's output, with no unresolved placeholders.
	url := h.capture.calls[1].Config["url"].(string)
	assert.Equal(t, "https://example.com/output of A", url)
	assert.NotContains(t, url, "{")

	// node_outputs carries both nodes, keyed by name.
	assert.NotEmpty(t, result.NodeOutputs["A"]["response"])
	assert.NotEmpty(t, result.NodeOutputs["B"]["response"])

	// Run output is the last node's output.
	assert.Equal(t, result.NodeOutputs["B"], result.Output)
}

func TestExecute_SingleNode(t *testing.T) {
	workflow := testWorkflow(
		[]*models.Node{wfNode(1, "only", models.NodeTypeLLMCall, nil)},
		nil,
	)
	h := newHarness(t, workflow, Options{})

	result, err := h.engine.Execute(context.Background(), workflow.ID, workflow.UserID, nil)
	require.NoError(t, err)

	require.Len(t, h.repo.nodeExecs, 1)
	assert.Equal(t, models.RunStatusCompleted, result.Status)
	assert.Equal(t, result.NodeOutputs["only"], result.Output)
}

func TestExecute_DiamondDeterministicOrder(t *testing.T) {
	build := func() *models.Workflow {
		return testWorkflow(
			[]*models.Node{
				wfNode(4, "D", models.NodeTypeLLMCall, nil),
				wfNode(2, "B", models.NodeTypeLLMCall, nil),
				wfNode(3, "C", models.NodeTypeLLMCall, nil),
				wfNode(1, "A", models.NodeTypeLLMCall, nil),
			},
			[]*models.Edge{wfEdge(1, 2), wfEdge(1, 3), wfEdge(2, 4), wfEdge(3, 4)},
		)
	}

	var sequences [][]string
	for i := 0; i < 2; i++ {
		workflow := build()
		h := newHarness(t, workflow, Options{})

		result, err := h.engine.Execute(context.Background(), workflow.ID, workflow.UserID, nil)
		require.NoError(t, err)
		assert.Equal(t, models.RunStatusCompleted, result.Status)
		require.Len(t, h.repo.nodeExecs, 4)

		var sequence []string
		for _, call := range h.capture.calls {
			sequence = append(sequence, call.NodeName)
		}
		sequences = append(sequences, sequence)
	}

	// A first, D last, B/C by node ID ascending; identical across runs.
	assert.Equal(t, []string{"A", "B", "C", "D"}, sequences[0])
	assert.Equal(t, sequences[0], sequences[1])
}

func TestExecute_FailingMiddleNode(t *testing.T) {
	workflow := testWorkflow(
		[]*models.Node{
			wfNode(1, "A", models.NodeTypeLLMCall, nil),
			wfNode(2, "B", models.NodeTypeLLMCall, nil),
			wfNode(3, "C", models.NodeTypeLLMCall, nil),
		},
		[]*models.Edge{wfEdge(1, 2), wfEdge(2, 3)},
	)
	h := newHarness(t, workflow, Options{})
	h.capture.failFor = "B"

	_, err := h.engine.Execute(context.Background(), workflow.ID, workflow.UserID, nil)
	require.Error(t, err)

	var execErr *models.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "B", execErr.NodeName)

	// A completed, B failed, C absent.
	require.Len(t, h.repo.nodeExecs, 2)
	assert.Equal(t, models.RunStatusCompleted, h.repo.nodeExecs[0].Status)
	assert.Equal(t, models.RunStatusFailed, h.repo.nodeExecs[1].Status)
	assert.Contains(t, h.repo.nodeExecs[1].ErrorMessage, "handler exploded")

	require.Len(t, h.repo.runs, 1)
	run := h.repo.runs[0]
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.Contains(t, run.ErrorMessage, "handler exploded")
	assert.Equal(t, 1, run.Finalized)
}

func TestExecute_CycleRejectedBeforeAnyRecord(t *testing.T) {
	workflow := testWorkflow(
		[]*models.Node{
			wfNode(1, "A", models.NodeTypeLLMCall, nil),
			wfNode(2, "B", models.NodeTypeLLMCall, nil),
			wfNode(3, "C", models.NodeTypeLLMCall, nil),
		},
		[]*models.Edge{wfEdge(1, 2), wfEdge(2, 3), wfEdge(3, 1)},
	)
	h := newHarness(t, workflow, Options{})

	_, err := h.engine.Execute(context.Background(), workflow.ID, workflow.UserID, nil)
	require.Error(t, err)

	assert.ErrorIs(t, err, models.ErrInvalidWorkflow)
	assert.ErrorIs(t, err, graph.ErrGraphValidation)

	assert.Empty(t, h.repo.runs, "no run record may be written for an invalid workflow")
	assert.Empty(t, h.repo.nodeExecs)
}

func TestExecute_EmptyWorkflow(t *testing.T) {
	workflow := testWorkflow(nil, nil)
	h := newHarness(t, workflow, Options{})

	_, err := h.engine.Execute(context.Background(), workflow.ID, workflow.UserID, nil)
	require.Error(t, err)

	assert.ErrorIs(t, err, models.ErrInvalidWorkflow)
	assert.ErrorIs(t, err, models.ErrEmptyWorkflow)
	assert.Empty(t, h.repo.runs)
}

func TestExecute_NotAuthorized(t *testing.T) {
	registry := executor.NewRegistry()
	repo := &recordingRunRepo{}
	eng := New(&fakeLoader{err: models.ErrNotAuthorized}, repo, registry, nil, Options{}, zerolog.Nop())

	_, err := eng.Execute(context.Background(), uuid.New(), uuid.New(), nil)
	assert.ErrorIs(t, err, models.ErrNotAuthorized)
	assert.Empty(t, repo.runs)
}

func TestExecute_UnknownNodeType(t *testing.T) {
	workflow := testWorkflow(
		[]*models.Node{wfNode(1, "A", models.NodeTypeFAISSSearch, nil)},
		nil,
	)
	// The harness registry has no faiss_search executor.
	h := newHarness(t, workflow, Options{})

	_, err := h.engine.Execute(context.Background(), workflow.ID, workflow.UserID, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrExecutorNotFound)

	// The node and the run both reached failed terminal states.
	require.Len(t, h.repo.nodeExecs, 1)
	assert.Equal(t, models.RunStatusFailed, h.repo.nodeExecs[0].Status)
	require.Len(t, h.repo.runs, 1)
	assert.Equal(t, models.RunStatusFailed, h.repo.runs[0].Status)
}

func TestExecute_InvalidHandlerConfig(t *testing.T) {
	workflow := testWorkflow(
		[]*models.Node{wfNode(1, "A", models.NodeTypeLLMCall, map[string]interface{}{"invalid": true})},
		nil,
	)
	h := newHarness(t, workflow, Options{})

	_, err := h.engine.Execute(context.Background(), workflow.ID, workflow.UserID, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)

	require.Len(t, h.repo.runs, 1)
	assert.Equal(t, models.RunStatusFailed, h.repo.runs[0].Status)
}

func TestExecute_HandlerInputMergesPriorOutputs(t *testing.T) {
	workflow := testWorkflow(
		[]*models.Node{
			wfNode(1, "A", models.NodeTypeLLMCall, nil),
			wfNode(2, "B", models.NodeTypeLLMCall, nil),
		},
		[]*models.Edge{wfEdge(1, 2)},
	)
	h := newHarness(t, workflow, Options{})

	_, err := h.engine.Execute(context.Background(), workflow.ID, workflow.UserID, map[string]interface{}{"topic": "cats"})
	require.NoError(t, err)

	require.Len(t, h.capture.calls, 2)
	input := h.capture.calls[1].Input
	assert.Equal(t, "cats", input["topic"])
	assert.Equal(t, "output of A", input["A"].(map[string]interface{})["response"])
}

func TestExecute_ConfigLocalVariablesWinOverInput(t *testing.T) {
	workflow := testWorkflow(
		[]*models.Node{
			wfNode(1, "A", models.NodeTypeLLMCall, map[string]interface{}{
				"prompt_template": "{topic}",
				"variables":       map[string]interface{}{"topic": "dogs"},
			}),
		},
		nil,
	)
	h := newHarness(t, workflow, Options{})

	_, err := h.engine.Execute(context.Background(), workflow.ID, workflow.UserID, map[string]interface{}{"topic": "cats"})
	require.NoError(t, err)

	assert.Equal(t, "dogs", h.capture.calls[0].Config["prompt_template"])
}

func TestExecute_UnresolvedPlaceholderStaysLiteral(t *testing.T) {
	workflow := testWorkflow(
		[]*models.Node{
			wfNode(1, "A", models.NodeTypeLLMCall, map[string]interface{}{
				"prompt_template": "answer using {missing.results}",
			}),
		},
		nil,
	)
	h := newHarness(t, workflow, Options{})

	_, err := h.engine.Execute(context.Background(), workflow.ID, workflow.UserID, nil)
	require.NoError(t, err)

	assert.Equal(t, "answer using {missing.results}", h.capture.calls[0].Config["prompt_template"])
}

func TestExecute_Cancellation(t *testing.T) {
	workflow := testWorkflow(
		[]*models.Node{
			wfNode(1, "A", models.NodeTypeLLMCall, nil),
			wfNode(2, "B", models.NodeTypeLLMCall, nil),
		},
		[]*models.Edge{wfEdge(1, 2)},
	)
	h := newHarness(t, workflow, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	h.capture.cancel = cancel // first handler call cancels the run

	_, err := h.engine.Execute(ctx, workflow.ID, workflow.UserID, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrRunCancelled)

	// B's execution failed with the cancellation; the run is failed.
	require.Len(t, h.repo.nodeExecs, 2)
	assert.Equal(t, models.RunStatusFailed, h.repo.nodeExecs[1].Status)
	assert.Equal(t, models.RunStatusFailed, h.repo.runs[0].Status)
}

func TestExecute_CompletedRunCounts(t *testing.T) {
	workflow := testWorkflow(
		[]*models.Node{
			wfNode(1, "A", models.NodeTypeLLMCall, nil),
			wfNode(2, "B", models.NodeTypeLLMCall, nil),
			wfNode(3, "C", models.NodeTypeLLMCall, nil),
		},
		[]*models.Edge{wfEdge(1, 2), wfEdge(1, 3)},
	)
	h := newHarness(t, workflow, Options{})

	result, err := h.engine.Execute(context.Background(), workflow.ID, workflow.UserID, nil)
	require.NoError(t, err)

	// Completed run: completed node executions equal the node count,
	// and the run terminal state was written exactly once.
	completed := 0
	for _, record := range h.repo.nodeExecs {
		if record.Status == models.RunStatusCompleted {
			completed++
		}
	}
	assert.Equal(t, len(workflow.Nodes), completed)
	assert.Equal(t, 1, h.repo.runs[0].Finalized)
	assert.Equal(t, models.RunStatusCompleted, result.Status)
}
