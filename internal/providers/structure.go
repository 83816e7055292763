package providers

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// HeuristicStructureProvider extracts structural metrics from opaque source
// text without a language-specific parser: function boundaries, nesting,
// decision-point density, argument pressure, and comment density.
type HeuristicStructureProvider struct{}

// NewHeuristicStructureProvider creates the reference structure provider
func NewHeuristicStructureProvider() *HeuristicStructureProvider {
	return &HeuristicStructureProvider{}
}

var functionMarkers = []string{"def ", "func ", "function ", "fn "}

var decisionMarkers = []string{
	"if ", "if(", "elif ", "else if", "for ", "for(", "while ", "while(",
	"case ", "catch ", "catch(", "except ", "&&", "||", "?",
}

// AnalyzeStructure computes the structural metric map. Returns a *ParseError
// for input that is empty or not plausibly source text.
func (p *HeuristicStructureProvider) AnalyzeStructure(code string) (map[string]float64, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &ParseError{Reason: "empty input"}
	}
	if !utf8.ValidString(code) || strings.ContainsRune(code, 0) {
		return nil, &ParseError{Reason: "input is not valid source text"}
	}

	lines := strings.Split(code, "\n")

	var (
		functionLines []int
		currentFn     int
		inFunction    bool
		commentLines  int
		codeLines     int
		decisions     int
		maxNesting    int
		maxArgs       int
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		codeLines++

		if isCommentLine(trimmed) {
			commentLines++
			continue
		}

		lower := strings.ToLower(trimmed)

		if startsFunction(lower) {
			if inFunction {
				functionLines = append(functionLines, currentFn)
			}
			inFunction = true
			currentFn = 0
			if args := countArguments(trimmed); args > maxArgs {
				maxArgs = args
			}
		} else if inFunction {
			currentFn++
		}

		for _, marker := range decisionMarkers {
			decisions += strings.Count(lower, marker)
		}

		if depth := indentDepth(line); depth > maxNesting {
			maxNesting = depth
		}
	}
	if inFunction {
		functionLines = append(functionLines, currentFn)
	}

	avgFnLength := 0.0
	if len(functionLines) > 0 {
		total := 0
		for _, n := range functionLines {
			total += n
		}
		avgFnLength = float64(total) / float64(len(functionLines))
	}

	commentDensity := 0.0
	if codeLines > 0 {
		commentDensity = float64(commentLines) / float64(codeLines)
	}

	return map[string]float64{
		"function_count":        float64(len(functionLines)),
		"cyclomatic_complexity": float64(1 + decisions),
		"max_nesting_depth":     float64(maxNesting),
		"avg_function_length":   avgFnLength,
		"max_argument_count":    float64(maxArgs),
		"comment_density":       commentDensity,
	}, nil
}

func isCommentLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*") ||
		strings.HasPrefix(trimmed, "--")
}

func startsFunction(lower string) bool {
	for _, marker := range functionMarkers {
		if strings.HasPrefix(lower, marker) {
			return true
		}
	}
	return false
}

// countArguments counts comma-separated parameters in the first paren group
func countArguments(line string) int {
	open := strings.Index(line, "(")
	if open < 0 {
		return 0
	}
	close := strings.Index(line[open:], ")")
	if close < 0 {
		close = len(line) - open
	}
	inner := strings.TrimSpace(line[open+1 : open+close])
	if inner == "" {
		return 0
	}
	return strings.Count(inner, ",") + 1
}

// indentDepth approximates nesting from leading whitespace, one level per
// four spaces or one tab
func indentDepth(line string) int {
	spaces := 0
	tabs := 0
	for _, r := range line {
		if r == ' ' {
			spaces++
		} else if r == '\t' {
			tabs++
		} else if unicode.IsSpace(r) {
			spaces++
		} else {
			break
		}
	}
	return tabs + spaces/4
}
