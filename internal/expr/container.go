// Package expr provides a container for collecting and analyzing HCL
// expressions, and the evaluation context pipeline templates run in.
package expr

import (
	"sync"

	"github.com/hashicorp/hcl/v2"
)

// Container is a thread-safe helper that gathers HCL expressions and provides
// analysis results, such as variable references and function calls.
type Container struct {
	// analyzeOnce ensures the extraction logic runs exactly once.
	analyzeOnce sync.Once

	mu          sync.RWMutex
	expressions []hcl.Expression

	// Cached analysis result
	used usage
}

// NewContainer creates a new, empty expression container.
func NewContainer(exprs ...hcl.Expression) *Container {
	c := &Container{}
	c.Add(exprs...)
	return c
}

// Add adds one or more expressions to the container for analysis.
// It safely ignores any nil expressions.
func (c *Container) Add(exprs ...hcl.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Adding new expressions requires resetting the sync.Once so analysis can run again.
	// NOTE: This is safe as long as Add is not called concurrently with the getters.
	// All Adds happen while a pipeline file is being decoded, which is single-threaded.
	c.analyzeOnce = sync.Once{}

	for _, expr := range exprs {
		if expr != nil {
			c.expressions = append(c.expressions, expr)
		}
	}
}

// analyze performs the dependency extraction. It's guaranteed to run only once
// for a given set of expressions due to sync.Once.
func (c *Container) analyze() {
	c.analyzeOnce.Do(func() {
		c.mu.RLock()
		u := scan(c.expressions)
		c.mu.RUnlock()

		c.mu.Lock()
		c.used = u
		c.mu.Unlock()
	})
}

// References returns all unique variable traversals found in the expressions.
func (c *Container) References() []hcl.Traversal {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.used.refs
}

// CalledFunctions returns all unique function calls found in the expressions.
func (c *Container) CalledFunctions() []string {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.used.calls))
	for i, fc := range c.used.calls {
		names[i] = fc.name
	}
	return names
}

// CheckScope reports every reference whose root is not one of the allowed
// variable names and every call to a function the evaluation context does
// not provide.
func (c *Container) CheckScope(allowed []string) hcl.Diagnostics {
	c.analyze()
	c.mu.RLock()
	u := c.used
	c.mu.RUnlock()

	var diags hcl.Diagnostics
	for _, ref := range u.outOfScope(allowed) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Variable not in scope",
			Detail:   "There is no variable named \"" + ref.RootName() + "\" in this context.",
			Subject:  ref.SourceRange().Ptr(),
		})
	}
	for _, fc := range u.unknownCalls(Functions()) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Call to unknown function",
			Detail:   "There is no function named \"" + fc.name + "\".",
			Subject:  fc.where.Ptr(),
		})
	}
	return diags
}
