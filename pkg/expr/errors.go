package expr

import "fmt"

// LexicalErrorKind classifies scanner failures.
type LexicalErrorKind int

const (
	UnterminatedString LexicalErrorKind = iota
	UnterminatedOrMultilineNumber
	// UnexpectedCharacter is only reported by a strict scanner.
	UnexpectedCharacter
)

func (k LexicalErrorKind) String() string {
	switch k {
	case UnterminatedString:
		return "UnterminatedString"
	case UnterminatedOrMultilineNumber:
		return "UnterminatedOrMultilineNumber"
	case UnexpectedCharacter:
		return "UnexpectedCharacter"
	default:
		return fmt.Sprintf("LexicalErrorKind(%d)", int(k))
	}
}

// SyntaxErrorKind classifies parser failures.
type SyntaxErrorKind int

const (
	ExpectedExpression SyntaxErrorKind = iota
	ExpectedRightParen
	UnexpectedToken
)

func (k SyntaxErrorKind) String() string {
	switch k {
	case ExpectedExpression:
		return "ExpectedExpression"
	case ExpectedRightParen:
		return "ExpectedRightParen"
	case UnexpectedToken:
		return "UnexpectedToken"
	default:
		return fmt.Sprintf("SyntaxErrorKind(%d)", int(k))
	}
}

// LexicalError is returned by the scanner. It aborts the scan.
type LexicalError struct {
	Kind    LexicalErrorKind
	Message string
	Line    int
	Column  int
}

// Error implements the error interface.
func (e *LexicalError) Error() string {
	return fmt.Sprintf("lexical error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// Is reports whether target is a LexicalError of the same kind, so that the
// Err* sentinels work with errors.Is.
func (e *LexicalError) Is(target error) bool {
	t, ok := target.(*LexicalError)
	return ok && t.Kind == e.Kind
}

// SyntaxError is returned by the parser. It aborts the parse.
type SyntaxError struct {
	Kind    SyntaxErrorKind
	Message string
	Token   Token // offending token
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	where := "end of input"
	if e.Token.Kind != EOF {
		where = fmt.Sprintf("%q", e.Token.Lexeme)
	}
	return fmt.Sprintf("syntax error at %d:%d near %s: %s", e.Token.Line, e.Token.Column, where, e.Message)
}

// Is reports whether target is a SyntaxError of the same kind.
func (e *SyntaxError) Is(target error) bool {
	t, ok := target.(*SyntaxError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUnterminatedString  = &LexicalError{Kind: UnterminatedString}
	ErrUnterminatedNumber  = &LexicalError{Kind: UnterminatedOrMultilineNumber}
	ErrUnexpectedCharacter = &LexicalError{Kind: UnexpectedCharacter}
	ErrExpectedExpression  = &SyntaxError{Kind: ExpectedExpression}
	ErrExpectedRightParen  = &SyntaxError{Kind: ExpectedRightParen}
	ErrUnexpectedToken     = &SyntaxError{Kind: UnexpectedToken}
)

func newLexicalError(kind LexicalErrorKind, line, col int, format string, args ...any) *LexicalError {
	return &LexicalError{Kind: kind, Message: fmt.Sprintf(format, args...), Line: line, Column: col}
}

func newSyntaxError(kind SyntaxErrorKind, tok Token, msg string) *SyntaxError {
	return &SyntaxError{Kind: kind, Message: msg, Token: tok}
}
