// Package validator reuses the lexer and parser to check a pipeline
// without generating SQL, reporting a structural summary, a complexity
// score, and semantic warnings.
package validator

import (
	"sort"

	"github.com/freeeve/dplyrsql/ast"
	"github.com/freeeve/dplyrsql/parser"
	"github.com/freeeve/dplyrsql/visitor"
)

// Options configures validation thresholds.
type Options struct {
	MaxComplexity int // 0 means no limit
}

// DefaultOptions applies no complexity limit.
var DefaultOptions = Options{MaxComplexity: 0}

// Summary describes a structurally valid pipeline.
type Summary struct {
	OperationCount  int
	Operations      []string
	Columns         []string
	ColumnCount     int
	HasAggregation  bool
	HasGrouping     bool
	ComplexityScore int
	Warnings        []string
}

// ErrorType classifies why validation failed.
type ErrorType string

const (
	ErrorSyntax     ErrorType = "syntax"
	ErrorComplexity ErrorType = "complexity"
	ErrorSemantic   ErrorType = "semantic"
)

// ValidationError describes why a pipeline is invalid.
type ValidationError struct {
	Type    ErrorType
	Message string
	Context string
}

// Result is the outcome of Validate: either Summary is populated (Valid
// is true) or Err describes the failure.
type Result struct {
	Valid       bool
	Summary     Summary
	Err         *ValidationError
	Suggestions []string
}

// operationWeight assigns each verb's fixed contribution to the
// complexity score (spec §4.5).
var operationWeight = map[string]int{
	"select":    1,
	"filter":    2,
	"mutate":    2,
	"rename":    1,
	"arrange":   1,
	"group_by":  2,
	"summarise": 3,
	"join":      4,
}

// columnCountThreshold is the number of referenced columns beyond which
// each additional column adds one point to the complexity score.
const columnCountThreshold = 8

// Validate parses source and reports a structural summary or a
// validation error, without ever producing SQL.
func Validate(source string, opts Options) Result {
	p := parser.New(source)
	pipe, err := p.Parse()
	if err != nil {
		return Result{
			Err: &ValidationError{
				Type:    ErrorSyntax,
				Message: err.Error(),
			},
			Suggestions: suggestFor(err),
		}
	}

	summary := Summary{}
	columns := map[string]bool{}
	grouped := false

	for _, op := range pipe.Operations {
		name, cols, aggregates, groups, warning, err := describe(op)
		if err != nil {
			return Result{Err: err}
		}
		summary.Operations = append(summary.Operations, name)
		summary.ComplexityScore += operationWeight[name]
		for _, c := range cols {
			columns[c] = true
		}
		if aggregates {
			summary.HasAggregation = true
		}
		if groups {
			summary.HasGrouping = true
			grouped = true
		}
		if name == "summarise" && !grouped {
			summary.Warnings = append(summary.Warnings, "summarise without a preceding group_by aggregates the whole table")
		}
		if warning != "" {
			summary.Warnings = append(summary.Warnings, warning)
		}
	}

	summary.OperationCount = len(pipe.Operations)
	summary.ColumnCount = len(columns)
	summary.Columns = sortedKeys(columns)
	if summary.ColumnCount > columnCountThreshold {
		summary.ComplexityScore += summary.ColumnCount - columnCountThreshold
	}

	if opts.MaxComplexity > 0 && summary.ComplexityScore > opts.MaxComplexity {
		return Result{
			Err: &ValidationError{
				Type:    ErrorComplexity,
				Message: "pipeline exceeds the configured complexity budget",
			},
		}
	}

	return Result{Valid: true, Summary: summary}
}

// describe extracts the per-operation facts Validate folds into the
// summary: its verb name, the columns it references, whether it is an
// aggregation or grouping step, and any semantic warning it raises.
func describe(op ast.Operation) (name string, columns []string, aggregates, groups bool, warning string, err *ValidationError) {
	switch n := op.(type) {
	case *ast.Select:
		if len(n.Columns) == 0 {
			return "", nil, false, false, "", emptyArgsError("select")
		}
		for _, c := range n.Columns {
			columns = append(columns, visitor.Identifiers(c.Expr)...)
		}
		return "select", columns, false, false, "", nil
	case *ast.Filter:
		if n.Condition == nil {
			return "", nil, false, false, "", emptyArgsError("filter")
		}
		columns = visitor.Identifiers(n.Condition)
		return "filter", columns, false, false, "", nil
	case *ast.Mutate:
		if len(n.Assignments) == 0 {
			return "", nil, false, false, "", emptyArgsError("mutate")
		}
		var warn string
		for _, a := range n.Assignments {
			columns = append(columns, visitor.Identifiers(a.Expr)...)
			for _, fn := range visitor.FunctionCalls(a.Expr) {
				if isAggregateName(fn) {
					warn = "mutate references an aggregate function; consider summarise instead"
				}
			}
		}
		return "mutate", columns, false, false, warn, nil
	case *ast.Rename:
		if len(n.Renames) == 0 {
			return "", nil, false, false, "", emptyArgsError("rename")
		}
		for _, r := range n.Renames {
			columns = append(columns, r.OldName)
		}
		return "rename", columns, false, false, "", nil
	case *ast.Arrange:
		if len(n.Columns) == 0 {
			return "", nil, false, false, "", emptyArgsError("arrange")
		}
		for _, c := range n.Columns {
			columns = append(columns, c.Column)
		}
		return "arrange", columns, false, false, "", nil
	case *ast.GroupBy:
		if len(n.Columns) == 0 {
			return "", nil, false, false, "", emptyArgsError("group_by")
		}
		return "group_by", append([]string(nil), n.Columns...), false, true, "", nil
	case *ast.Summarise:
		if len(n.Aggregations) == 0 {
			return "", nil, false, false, "", emptyArgsError("summarise")
		}
		for _, a := range n.Aggregations {
			if a.Column != "" {
				columns = append(columns, a.Column)
			}
		}
		return "summarise", columns, true, false, "", nil
	case *ast.Join:
		if n.Spec.Table == "" {
			return "", nil, false, false, "", emptyArgsError("join")
		}
		if n.Spec.On != nil {
			columns = visitor.Identifiers(n.Spec.On)
		}
		return "join", columns, false, false, "", nil
	default:
		return "", nil, false, false, "", &ValidationError{Type: ErrorSemantic, Message: "unrecognized operation"}
	}
}

var aggregateNames = map[string]bool{
	"mean": true, "avg": true, "sum": true, "count": true,
	"min": true, "max": true, "n": true, "median": true, "mode": true,
}

func isAggregateName(name string) bool { return aggregateNames[name] }

func emptyArgsError(verb string) *ValidationError {
	return &ValidationError{Type: ErrorSemantic, Message: verb + "() has no arguments", Context: verb}
}

func suggestFor(err error) []string {
	if perr, ok := err.(*parser.ParseError); ok && perr.Kind == parser.UnknownVerb {
		return []string{"did you mean select, filter, mutate, rename, arrange, group_by, or summarise?"}
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
