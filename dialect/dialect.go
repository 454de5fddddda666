// Package dialect defines the per-database capability contract the
// generator consults for quoting, string concatenation, and R-to-SQL
// function translation. Each concrete dialect is an empty struct type
// whose methods pick a quote character and delegate to the shared
// switch-based helpers below (baseAggregate, commonTranslate), overriding
// only the cases where the dialects differ.
package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// Name is a dialect selector tag, as listed in spec §6.
type Name string

const (
	PostgreSQL Name = "postgresql"
	MySQL      Name = "mysql"
	SQLite     Name = "sqlite"
	DuckDB     Name = "duckdb"
)

// Dialect is the polymorphic contract the generator depends on (spec §4.4).
// There is no shared mutable state between implementations: each is an
// immutable value built once by New and passed to the generator.
type Dialect interface {
	Name() Name
	QuoteIdentifier(name string) string
	QuoteString(value string) string
	LimitClause(n int) string
	StringConcat(a, b string) string
	AggregateFunction(name string) string
	IsCaseSensitive() bool
	TranslateFunction(name string, args []string) (string, bool)
	SelectStarExclude(exclusions []string) (string, bool)
}

// New resolves a dialect selector tag to its implementation.
func New(name Name) (Dialect, error) {
	switch name {
	case PostgreSQL:
		return postgres{}, nil
	case MySQL:
		return mysql{}, nil
	case SQLite:
		return sqlite{}, nil
	case DuckDB:
		return duckdb{}, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
}

// identQuote renders a double- or backtick-quoted identifier, doubling
// any embedded quote character per the chosen delimiter.
func identQuote(name, quote string) string {
	escaped := strings.ReplaceAll(name, quote, quote+quote)
	return quote + escaped + quote
}

// quoteString renders a single-quoted SQL string literal, doubling
// embedded single quotes (spec §4.4: "'v' with ' doubled").
func quoteString(value string) string {
	escaped := strings.ReplaceAll(value, "'", "''")
	return "'" + escaped + "'"
}

func limitClause(n int) string {
	return "LIMIT " + strconv.Itoa(n)
}

// baseAggregate maps the aggregation names common to every dialect;
// dialect-specific extensions (e.g. DuckDB's median/mode) are layered
// on top by each dialect's AggregateFunction.
func baseAggregate(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "mean", "avg":
		return "AVG", true
	case "sum":
		return "SUM", true
	case "count":
		return "COUNT", true
	case "min":
		return "MIN", true
	case "max":
		return "MAX", true
	case "n":
		return "COUNT(*)", true
	}
	return "", false
}

// commonTranslate maps R function names shared across all four dialects
// to SQL fragments. It returns ok=false for names a specific dialect
// must override (e.g. string concatenation helpers).
func commonTranslate(name string, args []string) (string, bool) {
	switch strings.ToLower(name) {
	case "abs", "floor", "ceiling", "ceil", "sign", "exp", "sqrt":
		fn := strings.ToUpper(name)
		if fn == "CEIL" {
			fn = "CEILING"
		}
		return fmt.Sprintf("%s(%s)", fn, argOrEmpty(args)), true
	case "round":
		return fmt.Sprintf("ROUND(%s)", strings.Join(args, ", ")), true
	case "log":
		if len(args) == 1 {
			return fmt.Sprintf("LN(%s)", args[0]), true
		}
		if len(args) == 2 {
			return fmt.Sprintf("LOG(%s, %s)", args[1], args[0]), true
		}
		return "", false
	case "log10":
		return fmt.Sprintf("LOG10(%s)", argOrEmpty(args)), true
	case "mod":
		if len(args) == 2 {
			return fmt.Sprintf("MOD(%s, %s)", args[0], args[1]), true
		}
		return "", false
	case "sin", "cos", "tan", "asin", "acos", "atan":
		return fmt.Sprintf("%s(%s)", strings.ToUpper(name), argOrEmpty(args)), true
	case "tolower":
		return fmt.Sprintf("LOWER(%s)", argOrEmpty(args)), true
	case "toupper":
		return fmt.Sprintf("UPPER(%s)", argOrEmpty(args)), true
	case "substr", "substring":
		return fmt.Sprintf("SUBSTRING(%s)", strings.Join(args, ", ")), true
	case "nchar":
		return fmt.Sprintf("LENGTH(%s)", argOrEmpty(args)), true
	case "trimws", "trim":
		return fmt.Sprintf("TRIM(%s)", argOrEmpty(args)), true
	case "ifelse":
		if len(args) == 3 {
			return fmt.Sprintf("CASE WHEN %s THEN %s ELSE %s END", args[0], args[1], args[2]), true
		}
		return "", false
	case "is.na":
		return fmt.Sprintf("%s IS NULL", argOrEmpty(args)), true
	case "coalesce":
		return fmt.Sprintf("COALESCE(%s)", strings.Join(args, ", ")), true
	case "replace_na":
		if len(args) == 2 {
			return fmt.Sprintf("COALESCE(%s, %s)", args[0], args[1]), true
		}
		return "", false
	case "row_number":
		return "ROW_NUMBER() OVER ()", true
	case "rank":
		return "RANK() OVER ()", true
	case "dense_rank":
		return "DENSE_RANK() OVER ()", true
	case "ntile":
		return fmt.Sprintf("NTILE(%s) OVER ()", argOrEmpty(args)), true
	case "lag":
		return windowedCall("LAG", args), true
	case "lead":
		return windowedCall("LEAD", args), true
	case "first":
		return windowedCall("FIRST_VALUE", args), true
	case "last":
		return windowedCall("LAST_VALUE", args), true
	case "nth_value":
		return windowedCall("NTH_VALUE", args), true
	}
	return "", false
}

// windowedCall renders a best-effort placeholder OVER () window clause
// for window-function-like R calls that have no ordering information
// to build a real window spec from. Spec §9 documents this as a known
// limitation: downstream execution of the emitted SQL may reject it.
func windowedCall(fn string, args []string) string {
	return fmt.Sprintf("%s(%s) OVER ()", fn, strings.Join(args, ", "))
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func lowerName(name string) string { return strings.ToLower(name) }

// upperFallback is each dialect's fallback for an unknown aggregate name:
// uppercase the name verbatim. It is not applied to other function names;
// a call with no translation is rejected by the generator as unsupported.
func upperFallback(name string) string { return strings.ToUpper(name) }

// concatChain folds a variadic paste()/paste0()/concat() call into a
// left-associative chain of the dialect's two-argument StringConcat.
func concatChain(d Dialect, args []string) string {
	if len(args) == 0 {
		return d.QuoteString("")
	}
	result := args[0]
	for _, arg := range args[1:] {
		result = d.StringConcat(result, arg)
	}
	return result
}
