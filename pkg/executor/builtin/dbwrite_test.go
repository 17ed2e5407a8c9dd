package builtin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmesh/flowmesh/pkg/clients"
	"github.com/flowmesh/flowmesh/pkg/models"
)

func TestDBWriteExecutor_Validate(t *testing.T) {
	exec := NewDBWriteExecutor(&fakeSQL{})

	tests := []struct {
		name    string
		config  map[string]interface{}
		wantErr bool
	}{
		{"structured insert", map[string]interface{}{"operation": "INSERT", "table": "events"}, false},
		{"lowercase operation", map[string]interface{}{"operation": "insert", "table": "events"}, false},
		{"raw sql", map[string]interface{}{"raw_sql": "UPDATE events SET done = true WHERE id = :id"}, false},
		{"neither form", map[string]interface{}{}, true},
		{"both forms", map[string]interface{}{"operation": "INSERT", "table": "t", "raw_sql": "SELECT 1"}, true},
		{"unknown operation", map[string]interface{}{"operation": "MERGE", "table": "t"}, true},
		{"missing table", map[string]interface{}{"operation": "INSERT"}, true},
		{"blank raw sql", map[string]interface{}{"raw_sql": "   "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exec.Validate(tt.config)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDBWriteExecutor_StructuredInsert(t *testing.T) {
	sql := &fakeSQL{result: &clients.SQLResult{
		RowsAffected: 1,
		Returned:     map[string]interface{}{"id": "42"},
	}}
	exec := NewDBWriteExecutor(sql)

	output, err := exec.Execute(context.Background(), map[string]interface{}{
		"operation": "insert",
		"table":     "events",
		"values":    map[string]interface{}{"kind": "signup"},
		"returning": []interface{}{"id"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "INSERT", output["operation"])
	assert.Equal(t, "events", output["table"])
	assert.Equal(t, int64(1), output["rows_affected"])
	assert.Equal(t, map[string]interface{}{"id": "42"}, output["returned"])
	assert.Equal(t, "success", output["status"])

	require.NotNil(t, sql.lastStructured)
	assert.Equal(t, clients.SQLInsert, sql.lastStructured.Operation)
	assert.Equal(t, []string{"id"}, sql.lastStructured.Returning)
}

func TestDBWriteExecutor_StructuredUpdateWithWhere(t *testing.T) {
	sql := &fakeSQL{result: &clients.SQLResult{RowsAffected: 3}}
	exec := NewDBWriteExecutor(sql)

	output, err := exec.Execute(context.Background(), map[string]interface{}{
		"operation": "UPDATE",
		"table":     "events",
		"values":    map[string]interface{}{"done": true},
		"where":     map[string]interface{}{"kind": "signup"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(3), output["rows_affected"])
	assert.Equal(t, map[string]interface{}{"kind": "signup"}, sql.lastStructured.Where)
}

func TestDBWriteExecutor_Raw(t *testing.T) {
	sql := &fakeSQL{result: &clients.SQLResult{
		RowsAffected: 2,
		Rows: []map[string]interface{}{
			{"id": "1"}, {"id": "2"},
		},
	}}
	exec := NewDBWriteExecutor(sql)

	output, err := exec.Execute(context.Background(), map[string]interface{}{
		"raw_sql": "SELECT id FROM events WHERE kind = :kind",
		"params":  map[string]interface{}{"kind": "signup"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "raw", output["operation"])
	assert.Equal(t, int64(2), output["rows_affected"])
	assert.Len(t, output["rows"], 2)

	assert.Equal(t, "SELECT id FROM events WHERE kind = :kind", sql.lastRaw)
	assert.Equal(t, map[string]interface{}{"kind": "signup"}, sql.lastParams)
}

func TestDBWriteExecutor_SQLError(t *testing.T) {
	sql := &fakeSQL{err: errors.New("duplicate key")}
	exec := NewDBWriteExecutor(sql)

	_, err := exec.Execute(context.Background(), map[string]interface{}{
		"operation": "INSERT",
		"table":     "events",
		"values":    map[string]interface{}{"kind": "signup"},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key")
}
