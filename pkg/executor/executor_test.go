package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmesh/flowmesh/pkg/models"
)

func TestBaseExecutor_ValidateRequired(t *testing.T) {
	base := NewBaseExecutor(models.NodeTypeHTTPRequest)

	config := map[string]interface{}{"url": "https://example.com"}

	assert.NoError(t, base.ValidateRequired(config, "url"))

	err := base.ValidateRequired(config, "url", "method")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
}

func TestBaseExecutor_GetString(t *testing.T) {
	base := NewBaseExecutor(models.NodeTypeHTTPRequest)
	config := map[string]interface{}{"url": "https://example.com", "count": float64(2)}

	value, err := base.GetString(config, "url")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", value)

	_, err = base.GetString(config, "count")
	assert.ErrorIs(t, err, models.ErrInvalidConfig)

	assert.Equal(t, "GET", base.GetStringDefault(config, "method", "GET"))
}

func TestBaseExecutor_GetInt_HandlesJSONNumbers(t *testing.T) {
	base := NewBaseExecutor(models.NodeTypeLLMCall)
	config := map[string]interface{}{"max_tokens": float64(512), "native": 7}

	value, err := base.GetInt(config, "max_tokens")
	require.NoError(t, err)
	assert.Equal(t, 512, value)

	value, err = base.GetInt(config, "native")
	require.NoError(t, err)
	assert.Equal(t, 7, value)

	assert.Equal(t, 256, base.GetIntDefault(config, "missing", 256))
}

func TestBaseExecutor_GetFloat(t *testing.T) {
	base := NewBaseExecutor(models.NodeTypeLLMCall)
	config := map[string]interface{}{"temperature": 0.2, "top_k": 40}

	value, err := base.GetFloat(config, "temperature")
	require.NoError(t, err)
	assert.Equal(t, 0.2, value)

	value, err = base.GetFloat(config, "top_k")
	require.NoError(t, err)
	assert.Equal(t, 40.0, value)

	assert.Equal(t, 0.7, base.GetFloatDefault(config, "missing", 0.7))
}

func TestBaseExecutor_GetBoolDefault(t *testing.T) {
	base := NewBaseExecutor(models.NodeTypeHTTPRequest)
	config := map[string]interface{}{"verify_ssl": false}

	assert.False(t, base.GetBoolDefault(config, "verify_ssl", true))
	assert.True(t, base.GetBoolDefault(config, "follow_redirects", true))
}

func TestBaseExecutor_GetStringMap(t *testing.T) {
	base := NewBaseExecutor(models.NodeTypeHTTPRequest)
	config := map[string]interface{}{
		"headers": map[string]interface{}{
			"Accept":    "application/json",
			"X-Retries": float64(3),
		},
	}

	headers, err := base.GetStringMap(config, "headers")
	require.NoError(t, err)
	assert.Equal(t, "application/json", headers["Accept"])
	assert.Equal(t, "3", headers["X-Retries"])
}
