// Package analyzer runs the scan/parse pipeline for service callers and
// caches the serializable results.
package analyzer

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/lemonberrylabs/loxparse/pkg/expr"
)

// DefaultCacheSize is the number of results kept when Options.CacheSize is 0.
const DefaultCacheSize = 512

// DefaultMaxSourceSize is the source size limit when Options.MaxSourceSize is 0.
const DefaultMaxSourceSize = 128 * 1024

// Phases reported in ErrorView.
const (
	PhaseInput = "input"
	PhaseScan  = "scan"
	PhaseParse = "parse"
)

// Options configures an Analyzer.
type Options struct {
	Strict        bool // reject unknown characters
	CacheSize     int
	MaxSourceSize int
}

// TokenView is the serializable form of a token.
type TokenView struct {
	Kind    expr.TokenKind `json:"kind" yaml:"kind"`
	Lexeme  string         `json:"lexeme" yaml:"lexeme"`
	Literal any            `json:"literal,omitempty" yaml:"literal,omitempty"`
	Line    int            `json:"line" yaml:"line"`
	Column  int            `json:"column" yaml:"column"`
}

// ErrorView is the serializable form of a scan or parse failure.
type ErrorView struct {
	Phase   string `json:"phase" yaml:"phase"`
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
}

func (e *ErrorView) Error() string {
	return fmt.Sprintf("%s error at %d:%d: %s", e.Phase, e.Line, e.Column, e.Message)
}

// Result is the outcome of analysing one source text. Results are shared
// between callers through the cache and must not be modified.
type Result struct {
	Tokens  []TokenView `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Printed string      `json:"printed,omitempty" yaml:"printed,omitempty"`
	AST     *expr.Tree  `json:"ast,omitempty" yaml:"ast,omitempty"`
	Error   *ErrorView  `json:"error,omitempty" yaml:"error,omitempty"`

	// Root is the parsed expression, nil on failure.
	Root expr.Expr `json:"-" yaml:"-"`
}

// Err returns the failure as an error, or nil.
func (r *Result) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// Analyzer scans and parses sources, memoizing results by content hash. It is
// safe for concurrent use.
type Analyzer struct {
	opts  Options
	cache *lru.Cache
}

// New creates an Analyzer.
func New(opts Options) (*Analyzer, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.MaxSourceSize <= 0 {
		opts.MaxSourceSize = DefaultMaxSourceSize
	}
	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating analysis cache: %w", err)
	}
	return &Analyzer{opts: opts, cache: cache}, nil
}

// Strict reports whether the analyzer rejects unknown characters.
func (a *Analyzer) Strict() bool {
	return a.opts.Strict
}

// CacheLen returns the number of cached results.
func (a *Analyzer) CacheLen() int {
	return a.cache.Len()
}

// Analyze scans and parses source. Failures are reported in Result.Error.
func (a *Analyzer) Analyze(source string) *Result {
	key := xxhash.Sum64String(source)
	if v, ok := a.cache.Get(key); ok {
		if r := v.(*cached); r.source == source {
			return r.result
		}
	}

	result := a.analyze(source)
	a.cache.Add(key, &cached{source: source, result: result})
	return result
}

// cached keeps the source next to the result so a hash collision is a miss.
type cached struct {
	source string
	result *Result
}

func (a *Analyzer) analyze(source string) *Result {
	if len(source) > a.opts.MaxSourceSize {
		return &Result{Error: &ErrorView{
			Phase:   PhaseInput,
			Kind:    "SourceTooLarge",
			Message: fmt.Sprintf("source size %d exceeds maximum %d bytes", len(source), a.opts.MaxSourceSize),
			Line:    1,
		}}
	}

	var opts []expr.ScanOption
	if a.opts.Strict {
		opts = append(opts, expr.WithStrict())
	}

	tokens, err := expr.Scan(source, opts...)
	if err != nil {
		return &Result{Error: errorView(err)}
	}

	result := &Result{Tokens: TokenViews(tokens)}
	root, err := expr.Parse(tokens)
	if err != nil {
		result.Error = errorView(err)
		return result
	}
	result.Root = root
	result.Printed = expr.PrintExpr(root)
	result.AST = expr.BuildTree(root)
	return result
}

// TokenViews converts tokens to their serializable form.
func TokenViews(tokens []expr.Token) []TokenView {
	views := make([]TokenView, len(tokens))
	for i, tok := range tokens {
		views[i] = TokenView{
			Kind:   tok.Kind,
			Lexeme: tok.Lexeme,
			Line:   tok.Line,
			Column: tok.Column,
		}
		switch lit := tok.Literal.(type) {
		case expr.NumberLiteral:
			views[i].Literal = float64(lit)
		case expr.StringLiteral:
			views[i].Literal = string(lit)
		case expr.IdentifierLiteral:
			views[i].Literal = string(lit)
		}
	}
	return views
}

func errorView(err error) *ErrorView {
	var lexErr *expr.LexicalError
	if errors.As(err, &lexErr) {
		return &ErrorView{
			Phase:   PhaseScan,
			Kind:    lexErr.Kind.String(),
			Message: lexErr.Message,
			Line:    lexErr.Line,
			Column:  lexErr.Column,
		}
	}
	var synErr *expr.SyntaxError
	if errors.As(err, &synErr) {
		return &ErrorView{
			Phase:   PhaseParse,
			Kind:    synErr.Kind.String(),
			Message: synErr.Message,
			Line:    synErr.Token.Line,
			Column:  synErr.Token.Column,
		}
	}
	return &ErrorView{Phase: PhaseParse, Kind: "Unknown", Message: err.Error()}
}
