package dialect

import (
	"fmt"
	"strings"
)

type duckdb struct{}

func (duckdb) Name() Name                         { return DuckDB }
func (duckdb) QuoteIdentifier(name string) string { return identQuote(name, `"`) }
func (duckdb) QuoteString(value string) string    { return quoteString(value) }
func (duckdb) LimitClause(n int) string           { return limitClause(n) }
func (duckdb) StringConcat(a, b string) string    { return fmt.Sprintf("%s || %s", a, b) }
func (duckdb) IsCaseSensitive() bool              { return false }

// AggregateFunction extends the base table with DuckDB's median/mode,
// per spec §4.4.
func (duckdb) AggregateFunction(name string) string {
	switch strings.ToLower(name) {
	case "median":
		return "MEDIAN"
	case "mode":
		return "MODE"
	}
	if fn, ok := baseAggregate(name); ok {
		return fn
	}
	return upperFallback(name)
}

func (d duckdb) TranslateFunction(name string, args []string) (string, bool) {
	switch lowerName(name) {
	case "paste", "paste0", "concat":
		return concatChain(d, args), true
	}
	return commonTranslate(name, args)
}

// SelectStarExclude is DuckDB-only syntax sugar for projecting every
// column except the named ones (spec §4.4).
func (d duckdb) SelectStarExclude(exclusions []string) (string, bool) {
	if len(exclusions) == 0 {
		return "", false
	}
	quoted := make([]string, len(exclusions))
	for i, name := range exclusions {
		quoted[i] = d.QuoteIdentifier(name)
	}
	return fmt.Sprintf("* EXCLUDE (%s)", strings.Join(quoted, ", ")), true
}
