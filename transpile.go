// Package dplyrsql compiles dplyr-style R pipelines into SQL for
// PostgreSQL, MySQL, SQLite, and DuckDB.
//
// Basic usage:
//
//	t, err := dplyrsql.New("postgresql")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sql, err := t.Transpile("orders %>% filter(total > 100) %>% select(id, total)")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(sql)
package dplyrsql

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/freeeve/dplyrsql/ast"
	"github.com/freeeve/dplyrsql/cache"
	"github.com/freeeve/dplyrsql/dialect"
	"github.com/freeeve/dplyrsql/generator"
	"github.com/freeeve/dplyrsql/parser"
)

// ErrorCode is the language-neutral error taxonomy surfaced across the
// façade boundary (spec §6).
type ErrorCode string

const (
	ESyntax        ErrorCode = "E-SYNTAX"
	EUnsupported   ErrorCode = "E-UNSUPPORTED"
	EInternal      ErrorCode = "E-INTERNAL"
	EInputTooLarge ErrorCode = "E-INPUT-TOO-LARGE"
)

// TranspileError is the single error shape Transpile ever returns,
// unifying lex, parse, and generation failures behind one envelope.
type TranspileError struct {
	Code       ErrorCode
	Message    string
	Position   *TokenPosition
	Suggestion string
}

// TokenPosition locates a failure in the source pipeline.
type TokenPosition struct {
	Offset int
	Line   int
	Column int
}

func (e *TranspileError) Error() string {
	switch {
	case e.Position == nil:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Position.Line == 0:
		return fmt.Sprintf("%s: position %d: %s", e.Code, e.Position.Offset, e.Message)
	default:
		return fmt.Sprintf("%s: line %d, column %d: %s", e.Code, e.Position.Line, e.Position.Column, e.Message)
	}
}

// Options configures a Transpiler's limits and cache fingerprint
// (spec §6). Two Options with the same observable effect must produce
// identical fingerprints.
type Options struct {
	StrictMode       bool
	PreserveComments bool
	MaxInputLength   int // bytes; 0 means DefaultMaxInputLength
	MaxProcessingOps int // 0 means DefaultMaxProcessingOps
	CacheCapacity    int // 0 disables the transpile cache
}

// DefaultMaxInputLength bounds a single pipeline's source size.
const DefaultMaxInputLength = 1 << 20 // 1 MiB

// DefaultMaxProcessingOps bounds the number of verb operations accepted
// per pipeline, standing in for a wall-clock budget the core itself has
// no way to measure (spec §5 delegates timeouts to the FFI boundary;
// this is the in-process analogue for a pure Go caller).
const DefaultMaxProcessingOps = 256

// DefaultOptions matches the reference limits.
var DefaultOptions = Options{
	MaxInputLength:   DefaultMaxInputLength,
	MaxProcessingOps: DefaultMaxProcessingOps,
	CacheCapacity:    256,
}

// fingerprint computes the stable cache-key component derived from o,
// per spec §6 ("dialect name, strict-mode flag, preserve-comments flag,
// max input length, max processing time").
func (o Options) fingerprint(dialectName string) string {
	maxLen, maxOps := o.MaxInputLength, o.MaxProcessingOps
	if maxLen == 0 {
		maxLen = DefaultMaxInputLength
	}
	if maxOps == 0 {
		maxOps = DefaultMaxProcessingOps
	}
	raw := fmt.Sprintf("%s|%t|%t|%d|%d", dialectName, o.StrictMode, o.PreserveComments, maxLen, maxOps)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Transpiler binds one dialect (and an optional cache) and offers the
// three library entry points named in spec §6: transpile, parse, and
// generate.
type Transpiler struct {
	dialectName string
	dialect     dialect.Dialect
	opts        Options
	cache       *cache.Cache
}

// New binds a Transpiler to the named dialect ("postgresql", "mysql",
// "sqlite", or "duckdb") using DefaultOptions.
func New(dialectName string) (*Transpiler, error) {
	return NewWithOptions(dialectName, DefaultOptions)
}

// NewWithOptions is New with explicit limits and cache sizing.
func NewWithOptions(dialectName string, opts Options) (*Transpiler, error) {
	d, err := dialect.New(dialect.Name(dialectName))
	if err != nil {
		return nil, &TranspileError{Code: EUnsupported, Message: err.Error()}
	}
	t := &Transpiler{dialectName: dialectName, dialect: d, opts: opts}
	if opts.CacheCapacity > 0 {
		c, err := cache.New(opts.CacheCapacity)
		if err != nil {
			return nil, &TranspileError{Code: EInternal, Message: err.Error()}
		}
		t.cache = c
	}
	return t, nil
}

// Transpile compiles source into a single SQL statement end to end,
// consulting and populating the cache when one is configured.
func (t *Transpiler) Transpile(source string) (string, error) {
	maxLen := t.opts.MaxInputLength
	if maxLen == 0 {
		maxLen = DefaultMaxInputLength
	}
	if len(source) > maxLen {
		return "", &TranspileError{Code: EInputTooLarge, Message: fmt.Sprintf("input of %d bytes exceeds the %d byte limit", len(source), maxLen)}
	}

	var key cache.Key
	if t.cache != nil {
		key = cache.Key{Input: source, Fingerprint: t.opts.fingerprint(t.dialectName), Dialect: t.dialectName}
		if entry, ok := t.cache.Get(key); ok {
			if entry.IsError {
				return "", &TranspileError{Code: ErrorCode(entry.ErrCode), Message: entry.ErrMsg}
			}
			return entry.SQL, nil
		}
	}

	sql, terr := t.transpileUncached(source)
	if t.cache != nil {
		if terr != nil {
			if te, ok := terr.(*TranspileError); ok {
				t.cache.Put(key, cache.Entry{IsError: true, ErrCode: string(te.Code), ErrMsg: te.Message})
			}
		} else {
			t.cache.Put(key, cache.Entry{SQL: sql})
		}
	}
	return sql, terr
}

func (t *Transpiler) transpileUncached(source string) (string, error) {
	pipe, err := t.Parse(source)
	if err != nil {
		return "", err
	}
	return t.Generate(pipe)
}

// Parse lexes and parses source into an AST, for tools that want the
// pipeline's structure without compiling it to SQL.
func (t *Transpiler) Parse(source string) (*ast.Pipeline, error) {
	maxOps := t.opts.MaxProcessingOps
	if maxOps == 0 {
		maxOps = DefaultMaxProcessingOps
	}
	p := parser.New(source)
	pipe, err := p.Parse()
	if err != nil {
		return nil, wrapParseError(err)
	}
	if len(pipe.Operations) > maxOps {
		return nil, &TranspileError{Code: EInputTooLarge, Message: fmt.Sprintf("pipeline has %d operations, exceeding the %d operation limit", len(pipe.Operations), maxOps)}
	}
	return pipe, nil
}

// Generate compiles an already-parsed pipeline into SQL for t's dialect.
func (t *Transpiler) Generate(pipe *ast.Pipeline) (string, error) {
	sql, err := generator.New(t.dialect).Generate(pipe)
	if err != nil {
		return "", wrapGenerationError(err)
	}
	return sql, nil
}

func wrapParseError(err error) error {
	perr, ok := err.(*parser.ParseError)
	if !ok {
		return &TranspileError{Code: ESyntax, Message: err.Error()}
	}
	if perr.Kind == parser.InvalidPipeline && perr.Found == "empty input" {
		return &TranspileError{Code: ESyntax, Message: "Empty input", Position: &TokenPosition{Offset: 0}}
	}
	te := &TranspileError{
		Code:     ESyntax,
		Message:  perr.Error(),
		Position: &TokenPosition{Offset: perr.Pos.Offset, Line: perr.Pos.Line, Column: perr.Pos.Column},
	}
	if perr.Kind == parser.UnknownVerb {
		te.Suggestion = "supported verbs: select, filter, mutate, rename, arrange, group_by, summarise, inner_join, left_join, right_join, full_join, semi_join, anti_join"
	}
	return te
}

func wrapGenerationError(err error) error {
	gerr, ok := err.(*generator.GenerationError)
	if !ok {
		return &TranspileError{Code: EInternal, Message: err.Error()}
	}
	code := EInternal
	if gerr.Kind == generator.UnsupportedOperation || gerr.Kind == generator.UnknownAggregate {
		code = EUnsupported
	}
	return &TranspileError{Code: code, Message: gerr.Error()}
}
