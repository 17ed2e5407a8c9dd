package template

import (
	"strconv"
	"strings"
)

// Resolver resolves placeholder names against a Context.
type Resolver struct {
	ctx *Context
}

// NewResolver creates a resolver for the given context.
func NewResolver(ctx *Context) *Resolver {
	if ctx == nil {
		ctx = NewContext()
	}
	return &Resolver{ctx: ctx}
}

// Lookup resolves a placeholder name. A bare name checks, in order,
// the variables table, the workflow input, then a whole node output.
// A dotted name roots at the same scopes and traverses the remaining
// segments into nested maps (numeric segments index into lists).
func (r *Resolver) Lookup(name string) (interface{}, bool) {
	segments := strings.Split(name, ".")
	root, found := r.lookupRoot(segments[0])
	if !found {
		return nil, false
	}
	if len(segments) == 1 {
		return root, true
	}
	return traverse(root, segments[1:])
}

func (r *Resolver) lookupRoot(name string) (interface{}, bool) {
	if r.ctx.Variables != nil {
		if value, ok := r.ctx.Variables[name]; ok {
			return value, true
		}
	}
	if r.ctx.Input != nil {
		if value, ok := r.ctx.Input[name]; ok {
			return value, true
		}
	}
	if r.ctx.Outputs != nil {
		if output, ok := r.ctx.Outputs[name]; ok {
			return output, true
		}
	}
	return nil, false
}

// traverse walks nested path segments through maps and slices.
func traverse(value interface{}, segments []string) (interface{}, bool) {
	current := value
	for _, segment := range segments {
		switch v := current.(type) {
		case map[string]interface{}:
			next, ok := v[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []interface{}:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			current = v[idx]
		default:
			return nil, false
		}
	}
	return current, true
}
