// Package template interpolates {name} placeholders in node
// configuration values before a handler runs. Names resolve against
// the handler-local variables table, then the workflow input, then
// prior node outputs addressed as {node.field.sub} with dot
// separators. An unresolved placeholder is preserved literally; this
// behavior is uniform across all handlers.
package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches {name} and {node.field.sub} references.
// Brace pairs whose content does not look like a reference (JSON
// fragments, format strings) are left untouched.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_-]*(?:\.[A-Za-z0-9_-]+)*)\}`)

// Engine renders templates against one resolution context.
type Engine struct {
	resolver *Resolver
}

// NewEngine creates a template engine for the given context.
func NewEngine(ctx *Context) *Engine {
	return &Engine{resolver: NewResolver(ctx)}
}

// Render resolves all placeholders in the input value, walking maps
// and slices recursively. The shape of the result matches the shape of
// the input; only strings change.
func (e *Engine) Render(data interface{}) interface{} {
	switch v := data.(type) {
	case string:
		return e.RenderString(v)
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			result[key] = e.Render(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, value := range v {
			result[i] = e.Render(value)
		}
		return result
	default:
		return data
	}
}

// RenderString resolves placeholders in a single string. Resolved
// values are always string-typed: non-string values serialize to their
// canonical text form. Unresolved placeholders stay literal.
func (e *Engine) RenderString(s string) string {
	if s == "" || !strings.Contains(s, "{") {
		return s
	}

	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[1 : len(match)-1]
		value, found := e.resolver.Lookup(name)
		if !found {
			return match
		}
		return valueToString(value)
	})
}

// RenderConfig is a convenience wrapper for node configurations.
func (e *Engine) RenderConfig(config map[string]interface{}) map[string]interface{} {
	rendered, _ := e.Render(config).(map[string]interface{})
	return rendered
}

// HasPlaceholders reports whether s contains any placeholder reference.
func HasPlaceholders(s string) bool {
	return placeholderPattern.MatchString(s)
}

// valueToString converts a resolved value to its canonical text form.
// Composites are JSON-encoded.
func valueToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return fmt.Sprintf("%t", v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%v", v)
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}
