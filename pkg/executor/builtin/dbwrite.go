package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowmesh/flowmesh/pkg/clients"
	"github.com/flowmesh/flowmesh/pkg/executor"
	"github.com/flowmesh/flowmesh/pkg/models"
)

var validSQLOperations = map[clients.SQLOperation]bool{
	clients.SQLInsert: true,
	clients.SQLUpdate: true,
	clients.SQLDelete: true,
	clients.SQLSelect: true,
}

// DBWriteExecutor executes db_write nodes against the injected SQL
// executor. A node is configured either structurally (operation,
// table, values, where, returning) or with raw_sql plus named params;
// the two forms are mutually exclusive.
type DBWriteExecutor struct {
	*executor.BaseExecutor
	sql clients.SQLExecutor
}

// NewDBWriteExecutor creates a new DB write executor.
func NewDBWriteExecutor(sql clients.SQLExecutor) *DBWriteExecutor {
	return &DBWriteExecutor{
		BaseExecutor: executor.NewBaseExecutor(models.NodeTypeDBWrite),
		sql:          sql,
	}
}

// Validate validates the db_write node configuration.
func (e *DBWriteExecutor) Validate(config map[string]interface{}) error {
	_, hasRaw := config["raw_sql"]
	_, hasOp := config["operation"]

	switch {
	case hasRaw && hasOp:
		return fmt.Errorf("%w: raw_sql and operation are mutually exclusive", models.ErrInvalidConfig)
	case hasRaw:
		rawSQL, err := e.GetString(config, "raw_sql")
		if err != nil {
			return err
		}
		if strings.TrimSpace(rawSQL) == "" {
			return fmt.Errorf("%w: raw_sql cannot be empty", models.ErrInvalidConfig)
		}
	case hasOp:
		op, err := e.GetString(config, "operation")
		if err != nil {
			return err
		}
		if !validSQLOperations[clients.SQLOperation(strings.ToUpper(op))] {
			return fmt.Errorf("%w: invalid operation: %s", models.ErrInvalidConfig, op)
		}
		if err := e.ValidateRequired(config, "table"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: either operation or raw_sql is required", models.ErrInvalidConfig)
	}

	return nil
}

// Execute performs one SQL call in its own transaction. The executor
// rolls back before returning a failure.
func (e *DBWriteExecutor) Execute(ctx context.Context, config map[string]interface{}, input map[string]interface{}) (map[string]interface{}, error) {
	if _, hasRaw := config["raw_sql"]; hasRaw {
		return e.executeRaw(ctx, config)
	}
	return e.executeStructured(ctx, config)
}

func (e *DBWriteExecutor) executeStructured(ctx context.Context, config map[string]interface{}) (map[string]interface{}, error) {
	op, err := e.GetString(config, "operation")
	if err != nil {
		return nil, err
	}
	table, err := e.GetString(config, "table")
	if err != nil {
		return nil, err
	}

	stmt := clients.StructuredStatement{
		Operation: clients.SQLOperation(strings.ToUpper(op)),
		Table:     table,
	}
	if values, err := e.GetMap(config, "values"); err == nil {
		stmt.Values = values
	}
	if where, err := e.GetMap(config, "where"); err == nil {
		stmt.Where = where
	}
	if returning, ok := config["returning"].([]interface{}); ok {
		for _, col := range returning {
			if s, ok := col.(string); ok {
				stmt.Returning = append(stmt.Returning, s)
			}
		}
	}

	result, err := e.sql.ExecuteStructured(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("sql execution failed: %w", err)
	}

	output := map[string]interface{}{
		"operation":     string(stmt.Operation),
		"table":         table,
		"rows_affected": result.RowsAffected,
		"status":        "success",
	}
	if result.Returned != nil {
		output["returned"] = result.Returned
	}
	if result.Rows != nil {
		output["rows"] = result.Rows
	}

	return output, nil
}

func (e *DBWriteExecutor) executeRaw(ctx context.Context, config map[string]interface{}) (map[string]interface{}, error) {
	rawSQL, err := e.GetString(config, "raw_sql")
	if err != nil {
		return nil, err
	}

	var params map[string]interface{}
	if p, err := e.GetMap(config, "params"); err == nil {
		params = p
	}

	result, err := e.sql.ExecuteRaw(ctx, rawSQL, params)
	if err != nil {
		return nil, fmt.Errorf("sql execution failed: %w", err)
	}

	output := map[string]interface{}{
		"operation":     "raw",
		"rows_affected": result.RowsAffected,
		"status":        "success",
	}
	if result.Rows != nil {
		output["rows"] = result.Rows
	}

	return output, nil
}
