package dialect

import "fmt"

type sqlite struct{}

func (sqlite) Name() Name                         { return SQLite }
func (sqlite) QuoteIdentifier(name string) string { return identQuote(name, `"`) }
func (sqlite) QuoteString(value string) string    { return quoteString(value) }
func (sqlite) LimitClause(n int) string           { return limitClause(n) }
func (sqlite) StringConcat(a, b string) string    { return fmt.Sprintf("%s || %s", a, b) }
func (sqlite) IsCaseSensitive() bool              { return false }

func (sqlite) AggregateFunction(name string) string {
	if fn, ok := baseAggregate(name); ok {
		return fn
	}
	return upperFallback(name)
}

func (d sqlite) TranslateFunction(name string, args []string) (string, bool) {
	switch lowerName(name) {
	case "paste", "paste0", "concat":
		return concatChain(d, args), true
	}
	return commonTranslate(name, args)
}

func (sqlite) SelectStarExclude(exclusions []string) (string, bool) {
	return "", false
}
