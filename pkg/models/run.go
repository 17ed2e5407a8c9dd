package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowRun represents a single execution of a workflow with a
// specific input document.
type WorkflowRun struct {
	ID           uuid.UUID              `json:"id"`
	WorkflowID   uuid.UUID              `json:"workflow_id"`
	UserID       uuid.UUID              `json:"user_id"`
	Status       RunStatus              `json:"status"`
	InputData    map[string]interface{} `json:"input_data,omitempty"`
	OutputData   map[string]interface{} `json:"output_data,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	StartedAt    time.Time              `json:"started_at"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
}

// RunStatus represents the status of a workflow run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// IsTerminal returns true if the run status is terminal.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// NodeExecution represents one record of one node's execution within a run.
type NodeExecution struct {
	ID             uuid.UUID              `json:"id"`
	RunID          uuid.UUID              `json:"run_id"`
	NodeID         uuid.UUID              `json:"node_id"`
	Status         RunStatus              `json:"status"`
	ExecutionOrder int                    `json:"execution_order"`
	OutputData     map[string]interface{} `json:"output_data,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	StartedAt      time.Time              `json:"started_at"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
}

// Duration returns the run duration in milliseconds. For a run that is
// still in flight it measures against the current time.
func (r *WorkflowRun) Duration() int64 {
	if r.CompletedAt == nil {
		return time.Since(r.StartedAt).Milliseconds()
	}
	return r.CompletedAt.Sub(r.StartedAt).Milliseconds()
}

// Duration returns the node execution duration in milliseconds.
func (ne *NodeExecution) Duration() int64 {
	if ne.CompletedAt == nil {
		return time.Since(ne.StartedAt).Milliseconds()
	}
	return ne.CompletedAt.Sub(ne.StartedAt).Milliseconds()
}

// RunResult is what the engine returns to the caller after a completed run.
type RunResult struct {
	RunID       uuid.UUID                         `json:"run_id"`
	Status      RunStatus                         `json:"status"`
	Output      map[string]interface{}            `json:"output,omitempty"`
	NodeOutputs map[string]map[string]interface{} `json:"node_outputs,omitempty"`
}
