package expr

import (
	"errors"
	"strconv"
	"unicode"
)

// ScanOption configures a Scanner.
type ScanOption func(*Scanner)

// WithStrict makes the scanner reject characters that start no token instead
// of silently skipping them.
func WithStrict() ScanOption {
	return func(s *Scanner) { s.strict = true }
}

// Scanner tokenizes Lox source text. A Scanner is not safe for concurrent
// use, but independent Scanners share no state.
type Scanner struct {
	src    []rune
	strict bool

	start int // first rune of the lexeme being scanned
	cur   int // next rune to read
	line  int // 1-based line of cur
	col   int // 0-based column of cur

	startLine int
	startCol  int

	tokens []Token
}

// NewScanner creates a scanner for the given source.
func NewScanner(source string, opts ...ScanOption) *Scanner {
	s := &Scanner{src: []rune(source), line: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan tokenizes source in one call.
func Scan(source string, opts ...ScanOption) ([]Token, error) {
	return NewScanner(source, opts...).ScanTokens()
}

// ScanTokens scans the entire input and returns all tokens, terminated by a
// single EOF token. Scanning stops at the first lexical error.
func (s *Scanner) ScanTokens() ([]Token, error) {
	s.start, s.cur, s.line, s.col = 0, 0, 1, 0
	s.tokens = nil

	for !s.isAtEnd() {
		s.start = s.cur
		s.startLine, s.startCol = s.line, s.col
		if err := s.scanToken(); err != nil {
			return nil, err
		}
	}

	s.tokens = append(s.tokens, Token{Kind: EOF, Line: s.line, Column: s.col})
	return s.tokens, nil
}

// Line returns the scanner's current line counter.
func (s *Scanner) Line() int {
	return s.line
}

func (s *Scanner) scanToken() error {
	r := s.advance()
	switch r {
	case '(':
		s.addToken(LeftParen, nil)
	case ')':
		s.addToken(RightParen, nil)
	case '{':
		s.addToken(LeftBrace, nil)
	case '}':
		s.addToken(RightBrace, nil)
	case ',':
		s.addToken(Comma, nil)
	case '.':
		s.addToken(Dot, nil)
	case '-':
		s.addToken(Minus, nil)
	case '+':
		s.addToken(Plus, nil)
	case ';':
		s.addToken(Semicolon, nil)
	case '*':
		s.addToken(Star, nil)
	case '!':
		s.addTwoCharToken('=', BangEqual, Bang)
	case '=':
		s.addTwoCharToken('=', EqualEqual, Equal)
	case '<':
		s.addTwoCharToken('=', LessEqual, Less)
	case '>':
		s.addTwoCharToken('=', GreaterEqual, Greater)
	case '/':
		if s.match('/') {
			// Line comment runs to the end of the line.
			for !s.isAtEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			s.addToken(Slash, nil)
		}
	case ' ', '\r', '\t', '\n':
		// advance already tracked the newline
	case '"':
		return s.readString()
	default:
		switch {
		case isDigit(r):
			return s.readNumber()
		case unicode.IsLetter(r):
			s.readIdentifier()
		case s.strict:
			return newLexicalError(UnexpectedCharacter, s.startLine, s.startCol, "unexpected character %q", r)
		}
	}
	return nil
}

// readString reads a double-quoted string literal. The opening quote has
// already been consumed.
func (s *Scanner) readString() error {
	for !s.isAtEnd() && s.peek() != '"' {
		s.advance()
	}
	if s.isAtEnd() {
		return newLexicalError(UnterminatedString, s.startLine, s.startCol, "unterminated string")
	}
	s.advance() // closing quote

	value := string(s.src[s.start+1 : s.cur-1])
	s.addToken(String, StringLiteral(value))
	return nil
}

// readNumber reads a run of decimal digits. The first digit has already been
// consumed.
func (s *Scanner) readNumber() error {
	for isDigit(s.peek()) {
		s.advance()
	}
	nl := 0
	if s.peek() == '\r' {
		nl = 1
	}
	if s.peekAt(nl) == '\n' && isDigit(s.peekAt(nl+1)) {
		return newLexicalError(UnterminatedOrMultilineNumber, s.line, s.col, "multiline numeric literal not permitted")
	}

	// Digit runs beyond float64 range scan as +Inf.
	raw := string(s.src[s.start:s.cur])
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return newLexicalError(UnterminatedOrMultilineNumber, s.startLine, s.startCol, "invalid numeric literal %q", raw)
	}
	s.addToken(Number, NumberLiteral(f))
	return nil
}

// readIdentifier reads an identifier or keyword. The first letter has already
// been consumed.
func (s *Scanner) readIdentifier() {
	for isIdentPart(s.peek()) {
		s.advance()
	}

	word := string(s.src[s.start:s.cur])
	kind := LookupKeyword(word)
	if kind == Identifier {
		s.addToken(Identifier, IdentifierLiteral(word))
		return
	}
	s.addToken(kind, nil)
}

func (s *Scanner) addTwoCharToken(next rune, two, one TokenKind) {
	if s.match(next) {
		s.addToken(two, nil)
		return
	}
	s.addToken(one, nil)
}

func (s *Scanner) addToken(kind TokenKind, lit Literal) {
	s.tokens = append(s.tokens, Token{
		Kind:    kind,
		Lexeme:  string(s.src[s.start:s.cur]),
		Literal: lit,
		Line:    s.startLine,
		Column:  s.startCol,
	})
}

func (s *Scanner) isAtEnd() bool {
	return s.cur >= len(s.src)
}

func (s *Scanner) advance() rune {
	r := s.src[s.cur]
	s.cur++
	if r == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}
	return r
}

// match consumes the next rune if it equals expected.
func (s *Scanner) match(expected rune) bool {
	if s.isAtEnd() || s.src[s.cur] != expected {
		return false
	}
	s.advance()
	return true
}

// peek returns the next rune without consuming it, or 0 at end of input.
func (s *Scanner) peek() rune {
	if s.isAtEnd() {
		return 0
	}
	return s.src[s.cur]
}

// peekAt returns the rune n positions past the cursor, or 0 past the end.
func (s *Scanner) peekAt(n int) rune {
	if s.cur+n >= len(s.src) {
		return 0
	}
	return s.src[s.cur+n]
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
