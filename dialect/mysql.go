package dialect

import (
	"fmt"
	"strings"
)

type mysql struct{}

func (mysql) Name() Name                         { return MySQL }
func (mysql) QuoteIdentifier(name string) string { return identQuote(name, "`") }
func (mysql) QuoteString(value string) string    { return quoteString(value) }
func (mysql) LimitClause(n int) string           { return limitClause(n) }
func (mysql) StringConcat(a, b string) string    { return fmt.Sprintf("CONCAT(%s, %s)", a, b) }
func (mysql) IsCaseSensitive() bool              { return true }

func (mysql) AggregateFunction(name string) string {
	if fn, ok := baseAggregate(name); ok {
		return fn
	}
	return upperFallback(name)
}

func (d mysql) TranslateFunction(name string, args []string) (string, bool) {
	switch lowerName(name) {
	case "paste", "paste0", "concat":
		return fmt.Sprintf("CONCAT(%s)", strings.Join(args, ", ")), true
	}
	return commonTranslate(name, args)
}

func (mysql) SelectStarExclude(exclusions []string) (string, bool) {
	return "", false
}
