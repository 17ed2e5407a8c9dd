package template

// Context carries the three resolution scopes for template rendering,
// consulted in order: handler-local variables, workflow input keys,
// prior node outputs addressed by node name.
type Context struct {
	// Variables is the config-local variables table, when the handler
	// supports one.
	Variables map[string]interface{}

	// Input is the workflow input document.
	Input map[string]interface{}

	// Outputs maps node name -> output document for nodes that already
	// completed in the current run.
	Outputs map[string]map[string]interface{}
}

// NewContext returns an empty resolution context.
func NewContext() *Context {
	return &Context{
		Variables: map[string]interface{}{},
		Input:     map[string]interface{}{},
		Outputs:   map[string]map[string]interface{}{},
	}
}
