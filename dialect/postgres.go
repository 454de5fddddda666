package dialect

import "fmt"

type postgres struct{}

func (postgres) Name() Name                         { return PostgreSQL }
func (postgres) QuoteIdentifier(name string) string { return identQuote(name, `"`) }
func (postgres) QuoteString(value string) string    { return quoteString(value) }
func (postgres) LimitClause(n int) string           { return limitClause(n) }
func (postgres) StringConcat(a, b string) string    { return fmt.Sprintf("%s || %s", a, b) }
func (postgres) IsCaseSensitive() bool              { return false }

func (postgres) AggregateFunction(name string) string {
	if fn, ok := baseAggregate(name); ok {
		return fn
	}
	return upperFallback(name)
}

func (d postgres) TranslateFunction(name string, args []string) (string, bool) {
	switch lowerName(name) {
	case "paste", "paste0", "concat":
		return concatChain(d, args), true
	}
	return commonTranslate(name, args)
}

func (postgres) SelectStarExclude(exclusions []string) (string, bool) {
	return "", false
}
