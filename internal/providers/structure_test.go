package providers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeStructure(t *testing.T) {
	code := `# helper module
def add(a, b):
    return a + b

def classify(value, low, high):
    if value < low:
        return "low"
    if value > high:
        return "high"
    return "mid"`

	p := NewHeuristicStructureProvider()
	metrics, err := p.AnalyzeStructure(code)
	require.NoError(t, err)

	assert.Equal(t, 2.0, metrics["function_count"])
	// two if statements on top of the base complexity of 1
	assert.Equal(t, 3.0, metrics["cyclomatic_complexity"])
	assert.Equal(t, 3.0, metrics["max_argument_count"])
	assert.Equal(t, 2.0, metrics["max_nesting_depth"])
	assert.Greater(t, metrics["comment_density"], 0.0)
	assert.Greater(t, metrics["avg_function_length"], 0.0)
}

func TestAnalyzeStructureNestedCode(t *testing.T) {
	code := `def deep(items):
    for group in items:
        for item in group:
            if item.valid:
                if item.active:
                    item.process()`

	p := NewHeuristicStructureProvider()
	metrics, err := p.AnalyzeStructure(code)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, metrics["max_nesting_depth"], 4.0)
	assert.GreaterOrEqual(t, metrics["cyclomatic_complexity"], 5.0)
}

func TestAnalyzeStructureParseErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{name: "empty input", code: ""},
		{name: "whitespace only", code: "   \n\t  "},
		{name: "NUL byte", code: "def f():\x00 pass"},
		{name: "invalid utf8", code: "def f():\xff pass"},
	}

	p := NewHeuristicStructureProvider()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.AnalyzeStructure(tt.code)
			require.Error(t, err)

			var parseErr *ParseError
			assert.True(t, errors.As(err, &parseErr))
		})
	}
}

func TestAnalyzeStructureNoFunctions(t *testing.T) {
	p := NewHeuristicStructureProvider()
	metrics, err := p.AnalyzeStructure("x = 1\ny = x * 2")
	require.NoError(t, err)

	assert.Equal(t, 0.0, metrics["function_count"])
	assert.Equal(t, 0.0, metrics["avg_function_length"])
	assert.Equal(t, 0.0, metrics["max_argument_count"])
}

func TestCountArguments(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"def f():", 0},
		{"def f(a):", 1},
		{"def f(a, b, c):", 3},
		{"func handle(w http.ResponseWriter, r *http.Request) {", 2},
		{"no parens here", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, countArguments(tt.line), tt.line)
	}
}

func TestIndentDepth(t *testing.T) {
	assert.Equal(t, 0, indentDepth("x = 1"))
	assert.Equal(t, 1, indentDepth("    x = 1"))
	assert.Equal(t, 2, indentDepth("\t\tx = 1"))
	assert.Equal(t, 3, indentDepth("\t        x = 1"))
}
