package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmesh/flowmesh/pkg/models"
)

type stubExecutor struct {
	*BaseExecutor
}

func (s *stubExecutor) Execute(ctx context.Context, config map[string]interface{}, input map[string]interface{}) (map[string]interface{}, error) {
	return map[string]interface{}{"status": "success"}, nil
}

func (s *stubExecutor) Validate(config map[string]interface{}) error { return nil }

func newStub(nodeType models.NodeType) *stubExecutor {
	return &stubExecutor{BaseExecutor: NewBaseExecutor(nodeType)}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(models.NodeTypeLLMCall, newStub(models.NodeTypeLLMCall)))

	exec, err := registry.Get(models.NodeTypeLLMCall)
	require.NoError(t, err)
	assert.Equal(t, models.NodeTypeLLMCall, exec.Type())

	assert.True(t, registry.Has(models.NodeTypeLLMCall))
	assert.False(t, registry.Has(models.NodeTypeDBWrite))
}

func TestRegistry_GetUnknownType(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get(models.NodeTypeFAISSSearch)
	assert.ErrorIs(t, err, models.ErrExecutorNotFound)
}

func TestRegistry_RejectsEmptyTypeAndNil(t *testing.T) {
	registry := NewRegistry()

	assert.Error(t, registry.Register("", newStub("")))
	assert.Error(t, registry.Register(models.NodeTypeLLMCall, nil))
}

func TestRegistry_List(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(models.NodeTypeLLMCall, newStub(models.NodeTypeLLMCall)))
	require.NoError(t, registry.Register(models.NodeTypeDBWrite, newStub(models.NodeTypeDBWrite)))

	assert.ElementsMatch(t, []models.NodeType{models.NodeTypeLLMCall, models.NodeTypeDBWrite}, registry.List())
}

func TestExecutionInfo_ContextRoundTrip(t *testing.T) {
	info := ExecutionInfo{NodeName: "step1"}
	ctx := NewContext(context.Background(), info)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "step1", got.NodeName)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
