package expr_test

import (
	"sync"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/lsst-dm/Daxgen/internal/expr"
	"github.com/lsst-dm/Daxgen/internal/hclutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseExpr is a test helper to quickly get an hcl.Expression from a string.
func parseExpr(t *testing.T, exprStr string) hcl.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(exprStr), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), "Expression parsing failed: %s", diags.Error())
	return e
}

// parseTemplate parses a string template as it would appear inside quotes.
func parseTemplate(t *testing.T, tmpl string) hcl.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseTemplate([]byte(tmpl), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), "Template parsing failed: %s", diags.Error())
	return e
}

func TestContainer_AddAndExtract(t *testing.T) {
	c := expr.NewContainer()
	c.Add(
		parseExpr(t, `upper("hello")`),
		parseTemplate(t, `visit=${visit}`),
		parseExpr(t, `lower(task.stage)`),
		parseExpr(t, `visit`), // Duplicate reference
	)

	// --- Assert on Functions (sorted, unique) ---
	require.Equal(t, []string{"lower", "upper"}, c.CalledFunctions())

	// --- Assert on References (sorted, unique) ---
	refs := c.References()
	require.Len(t, refs, 2)
	refStrings := []string{
		hclutil.TraversalKey(refs[0]),
		hclutil.TraversalKey(refs[1]),
	}
	require.Equal(t, []string{"task.stage", "visit"}, refStrings)
}

func TestContainer_AddAfterExtract(t *testing.T) {
	c := expr.NewContainer(parseExpr(t, `ccd`))

	require.Len(t, c.References(), 1)
	require.Equal(t, "ccd", hclutil.TraversalKey(c.References()[0]))

	c.Add(parseExpr(t, `visit`), parseExpr(t, `format("%03d", ccd)`))

	require.Equal(t, []string{"format"}, c.CalledFunctions())
	require.Len(t, c.References(), 2)
}

func TestContainer_ConcurrentAccess(t *testing.T) {
	c := expr.NewContainer(
		parseExpr(t, `visit`),
		parseExpr(t, `ccd`),
		parseExpr(t, `upper(filter)`),
	)

	var wg sync.WaitGroup
	numGoroutines := 50
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				assert.Len(t, c.References(), 3)
			} else {
				assert.Len(t, c.CalledFunctions(), 1)
			}
		}()
	}

	wg.Wait()
}

func TestContainer_CheckScope(t *testing.T) {
	t.Run("all references in scope", func(t *testing.T) {
		c := expr.NewContainer(parseTemplate(t, `${visit}-${ccd}`), parseExpr(t, `task.id`))
		diags := c.CheckScope([]string{"visit", "ccd", "task"})
		assert.False(t, diags.HasErrors())
	})

	t.Run("reference outside scope", func(t *testing.T) {
		c := expr.NewContainer(parseTemplate(t, `${visit}-${tract}`))
		diags := c.CheckScope([]string{"visit"})
		require.True(t, diags.HasErrors())
		assert.Contains(t, diags.Error(), `"tract"`)
	})

	t.Run("unknown function", func(t *testing.T) {
		c := expr.NewContainer(parseExpr(t, `frobnicate(visit)`))
		diags := c.CheckScope([]string{"visit"})
		require.True(t, diags.HasErrors())
		assert.Contains(t, diags.Error(), `"frobnicate"`)
	})

	t.Run("unknown function is located", func(t *testing.T) {
		// --- Arrange ---
		c := expr.NewContainer(parseTemplate(t, `ccd=${upper(frobnicate(visit).tag)}`))

		// --- Act ---
		diags := c.CheckScope([]string{"visit"})

		// --- Assert ---
		require.Len(t, diags, 1)
		require.NotNil(t, diags[0].Subject)
		assert.Equal(t, 1, diags[0].Subject.Start.Line)
		assert.Equal(t, 13, diags[0].Subject.Start.Column)
		assert.Equal(t, []string{"frobnicate", "upper"}, c.CalledFunctions())
	})

	t.Run("calls nested in for expressions and splats", func(t *testing.T) {
		// --- Arrange ---
		c := expr.NewContainer(
			parseExpr(t, `[for v in split(",", ccd) : shout(v)]`),
			parseExpr(t, `whisper(visit)[*].id`),
		)

		// --- Act ---
		diags := c.CheckScope([]string{"ccd", "visit"})

		// --- Assert ---
		require.Len(t, diags, 2)
		assert.Contains(t, diags.Error(), `"shout"`)
		assert.Contains(t, diags.Error(), `"whisper"`)
		assert.NotContains(t, diags.Error(), `"split"`)
	})

	t.Run("for expression locals are not references", func(t *testing.T) {
		c := expr.NewContainer(parseExpr(t, `[for v in [1, 2] : v + ccd]`))
		assert.False(t, c.CheckScope([]string{"ccd"}).HasErrors())
	})
}

func TestContainer_EdgeCases(t *testing.T) {
	t.Run("Empty Container", func(t *testing.T) {
		c := expr.NewContainer()
		require.Empty(t, c.References())
		require.Empty(t, c.CalledFunctions())
	})

	t.Run("Adding Nil Expressions", func(t *testing.T) {
		c := expr.NewContainer()
		c.Add(nil, parseExpr(t, `visit`), nil)
		require.Len(t, c.References(), 1)
	})
}
