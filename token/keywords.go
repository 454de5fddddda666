package token

import "strings"

// keywords maps lowercase verb/sort-helper names to token types. Boolean
// and null literals are matched case-insensitively in LookupIdent below,
// mirroring R's TRUE/FALSE/NULL convention rather than a fixed case.
var keywords = map[string]Token{
	"select":     SELECT,
	"filter":     FILTER,
	"mutate":     MUTATE,
	"rename":     RENAME,
	"arrange":    ARRANGE,
	"group_by":   GROUP_BY,
	"summarise":  SUMMARISE,
	"summarize":  SUMMARISE,
	"inner_join": INNER_JOIN,
	"left_join":  LEFT_JOIN,
	"right_join": RIGHT_JOIN,
	"full_join":  FULL_JOIN,
	"semi_join":  SEMI_JOIN,
	"anti_join":  ANTI_JOIN,
	"desc":       DESC,
	"asc":        ASC,
}

// LookupIdent classifies an identifier as a verb keyword, a boolean/null
// literal, or a plain IDENT.
func LookupIdent(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	switch strings.ToUpper(ident) {
	case "TRUE":
		return TRUE
	case "FALSE":
		return FALSE
	case "NULL":
		return NULL
	}
	return IDENT
}

// IsKeyword reports whether ident lexes as a verb, sort helper, or
// boolean/null literal rather than a plain identifier.
func IsKeyword(ident string) bool {
	return LookupIdent(ident) != IDENT
}
