// Package engine orchestrates workflow runs: it validates the graph,
// creates the run record, drives each node through the executor
// registry in topological order while passing outputs forward, and
// commits exactly one terminal state per run.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flowmesh/flowmesh/internal/application/template"
	"github.com/flowmesh/flowmesh/pkg/executor"
	"github.com/flowmesh/flowmesh/pkg/graph"
	"github.com/flowmesh/flowmesh/pkg/models"
)

// Options tunes engine behavior.
type Options struct {
	// AllowDisconnected makes the validator report disconnected
	// components instead of rejecting them.
	AllowDisconnected bool
}

// Engine executes workflows. It holds no per-run state and is safe to
// drive from concurrent runs; each run owns its context privately.
type Engine struct {
	loader   WorkflowLoader
	runs     RunRepository
	registry *executor.Registry
	metrics  Metrics
	opts     Options
	logger   zerolog.Logger
}

// New creates an execution engine.
func New(loader WorkflowLoader, runs RunRepository, registry *executor.Registry, metrics Metrics, opts Options, logger zerolog.Logger) *Engine {
	return &Engine{
		loader:   loader,
		runs:     runs,
		registry: registry,
		metrics:  metrics,
		opts:     opts,
		logger:   logger.With().Str("component", "engine").Logger(),
	}
}

// Execute runs the workflow with the given input on behalf of userID.
// Validation failures surface before any run record is written; once a
// run record exists it always reaches exactly one terminal state.
func (e *Engine) Execute(ctx context.Context, workflowID, userID uuid.UUID, input map[string]interface{}) (*models.RunResult, error) {
	workflow, nodes, edges, err := e.loader.LoadWorkflowForExecution(ctx, workflowID, userID)
	if err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidWorkflow, models.ErrEmptyWorkflow)
	}

	report, err := graph.Validate(nodes, edges, e.opts.AllowDisconnected)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidWorkflow, err)
	}

	runID, err := e.runs.CreateRun(ctx, workflowID, userID, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	logger := e.logger.With().
		Str("run_id", runID.String()).
		Str("workflow_id", workflowID.String()).
		Logger()
	logger.Info().Int("nodes", len(nodes)).Msg("run started")

	if e.metrics != nil {
		e.metrics.RunStarted(workflowID)
	}

	runStart := time.Now()
	state := &runState{
		engine:   e,
		runID:    runID,
		workflow: workflow,
		input:    input,
		nodes:    indexNodes(nodes),
		outputs:  make(map[string]map[string]interface{}, len(nodes)),
		logger:   logger,
	}

	var lastOutput map[string]interface{}
	for order, nodeID := range report.Order {
		node := state.nodes[nodeID]

		output, err := state.executeNode(ctx, node, order)
		if err != nil {
			e.finalizeRun(ctx, runID, workflowID, models.RunStatusFailed, nil, err.Error(), runStart, logger)
			return nil, err
		}
		lastOutput = output
	}

	e.finalizeRun(ctx, runID, workflowID, models.RunStatusCompleted, lastOutput, "", runStart, logger)

	return &models.RunResult{
		RunID:       runID,
		Status:      models.RunStatusCompleted,
		Output:      lastOutput,
		NodeOutputs: state.outputs,
	}, nil
}

func (e *Engine) finalizeRun(ctx context.Context, runID, workflowID uuid.UUID, status models.RunStatus, output map[string]interface{}, errMsg string, start time.Time, logger zerolog.Logger) {
	if err := e.runs.FinalizeRun(ctx, runID, status, output, errMsg); err != nil {
		logger.Error().Err(err).Str("status", string(status)).Msg("failed to finalize run")
	}
	if e.metrics != nil {
		e.metrics.RunFinished(workflowID, status, time.Since(start).Seconds())
	}
	logger.Info().Str("status", string(status)).Int64("duration_ms", time.Since(start).Milliseconds()).Msg("run finished")
}

// runState is the in-memory context of one run: the outputs of
// completed nodes keyed by node name. It is owned exclusively by the
// executing goroutine and discarded when the run finishes.
type runState struct {
	engine   *Engine
	runID    uuid.UUID
	workflow *models.Workflow
	input    map[string]interface{}
	nodes    map[uuid.UUID]*models.Node
	outputs  map[string]map[string]interface{}
	logger   zerolog.Logger
}

// executeNode runs one node: creates its execution record, renders the
// config, dispatches the handler, and finalizes the record. Any error
// it returns is terminal for the run.
func (s *runState) executeNode(ctx context.Context, node *models.Node, order int) (map[string]interface{}, error) {
	nodeExecID, err := s.engine.runs.CreateNodeExecution(ctx, s.runID, node.ID, order)
	if err != nil {
		return nil, fmt.Errorf("failed to create node execution: %w", err)
	}

	nodeStart := time.Now()
	output, execErr := s.dispatch(ctx, node)

	status := models.RunStatusCompleted
	errMsg := ""
	if execErr != nil {
		status = models.RunStatusFailed
		errMsg = execErr.Error()
	}

	if err := s.engine.runs.FinalizeNodeExecution(ctx, nodeExecID, status, output, errMsg); err != nil {
		s.logger.Error().Err(err).Str("node", node.Name).Msg("failed to finalize node execution")
	}
	if s.engine.metrics != nil {
		s.engine.metrics.NodeFinished(node.Type, status, time.Since(nodeStart).Seconds())
	}

	if execErr != nil {
		s.logger.Error().Err(execErr).Str("node", node.Name).Int("order", order).Msg("node failed")
		return nil, &models.ExecutionError{
			RunID:    s.runID.String(),
			NodeName: node.Name,
			NodeType: string(node.Type),
			Err:      execErr,
		}
	}

	s.outputs[node.Name] = output
	s.logger.Debug().Str("node", node.Name).Int("order", order).
		Int64("duration_ms", time.Since(nodeStart).Milliseconds()).Msg("node completed")

	return output, nil
}

// dispatch looks up the handler, renders the config and invokes it.
func (s *runState) dispatch(ctx context.Context, node *models.Node) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRunCancelled, err)
	}

	exec, err := s.engine.registry.Get(node.Type)
	if err != nil {
		return nil, err
	}

	rendered := s.renderConfig(node)

	if err := exec.Validate(rendered); err != nil {
		return nil, err
	}

	handlerInput := s.buildNodeInput()
	execCtx := executor.NewContext(ctx, executor.ExecutionInfo{
		RunID:      s.runID,
		WorkflowID: s.workflow.ID,
		UserID:     s.workflow.UserID,
		NodeID:     node.ID,
		NodeName:   node.Name,
	})

	output, err := exec.Execute(execCtx, rendered, handlerInput)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrRunCancelled, ctx.Err())
		}
		return nil, err
	}

	return output, nil
}

// renderConfig interpolates the node config against the handler-local
// variables table, the workflow input and prior node outputs.
func (s *runState) renderConfig(node *models.Node) map[string]interface{} {
	tmplCtx := &template.Context{
		Input:   s.input,
		Outputs: s.outputs,
	}
	if vars, ok := node.Config["variables"].(map[string]interface{}); ok {
		tmplCtx.Variables = vars
	}
	return template.NewEngine(tmplCtx).RenderConfig(node.Config)
}

// buildNodeInput merges the workflow input with the outputs of
// completed nodes, keyed by the producing node's name.
func (s *runState) buildNodeInput() map[string]interface{} {
	merged := make(map[string]interface{}, len(s.input)+len(s.outputs))
	for k, v := range s.input {
		merged[k] = v
	}
	for name, output := range s.outputs {
		merged[name] = output
	}
	return merged
}

func indexNodes(nodes []*models.Node) map[uuid.UUID]*models.Node {
	index := make(map[uuid.UUID]*models.Node, len(nodes))
	for _, node := range nodes {
		index[node.ID] = node
	}
	return index
}
