// Package repl implements the interactive scan/parse session.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/loxparse/pkg/analyzer"
)

const (
	banner   = "Entering interactive mode. Type '#quit' to exit."
	farewell = "Exiting interactive mode."
)

// Mode selects what the session prints for each line.
type Mode string

const (
	ModeAST    Mode = "ast"
	ModeTokens Mode = "tokens"
	ModeTree   Mode = "tree"
)

// LineReader reads one line of input at a time. Readline returns
// readline.ErrInterrupt on Ctrl-C and io.EOF on Ctrl-D.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// NewReadline returns a LineReader backed by a terminal with line editing and
// history in ~/.lox_history.
func NewReadline() (LineReader, error) {
	var historyFile string
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".lox_history")
	}
	return readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "#quit",
	})
}

// Session is one interactive session.
type Session struct {
	ID       string
	reader   LineReader
	out      io.Writer
	analyzer *analyzer.Analyzer
	logger   *slog.Logger
	mode     Mode
	errColor *color.Color
}

// NewSession creates a session reading from r and writing to out.
func NewSession(r LineReader, out io.Writer, a *analyzer.Analyzer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ID:       uuid.NewString(),
		reader:   r,
		out:      out,
		analyzer: a,
		logger:   logger,
		mode:     ModeAST,
		errColor: color.New(color.FgRed),
	}
}

// Mode returns the current output mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// Run reads lines until #quit, end of input or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("repl session started", "session", s.ID)
	defer s.logger.Info("repl session ended", "session", s.ID)

	fmt.Fprintln(s.out, banner)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.reader.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(s.out, farewell)
			return nil
		case err != nil:
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if quit := s.command(line); quit {
				fmt.Fprintln(s.out, farewell)
				return nil
			}
			continue
		}
		s.eval(line)
	}
}

// command handles a #-prefixed line and reports whether the session ends.
func (s *Session) command(line string) bool {
	switch line {
	case "#quit":
		return true
	case "#ast":
		s.mode = ModeAST
	case "#tokens":
		s.mode = ModeTokens
	case "#tree":
		s.mode = ModeTree
	case "#help":
		fmt.Fprintln(s.out, "Commands:")
		fmt.Fprintln(s.out, "  #ast     print the parenthesized AST (default)")
		fmt.Fprintln(s.out, "  #tokens  print the token list")
		fmt.Fprintln(s.out, "  #tree    print the AST as YAML")
		fmt.Fprintln(s.out, "  #quit    leave interactive mode")
		return false
	default:
		s.errColor.Fprintf(s.out, "unknown command %s (try #help)\n", line)
		return false
	}
	fmt.Fprintf(s.out, "output mode: %s\n", s.mode)
	return false
}

func (s *Session) eval(line string) {
	res := s.analyzer.Analyze(line)

	if s.mode == ModeTokens && res.Tokens != nil {
		for _, tok := range res.Tokens {
			fmt.Fprintf(s.out, "%d:%d %s %q\n", tok.Line, tok.Column, tok.Kind, tok.Lexeme)
		}
	}

	if res.Error != nil {
		s.logger.Debug("repl input rejected", "session", s.ID, "phase", res.Error.Phase, "kind", res.Error.Kind)
		s.errColor.Fprintln(s.out, res.Error.Error())
		return
	}

	switch s.mode {
	case ModeAST:
		fmt.Fprintln(s.out, res.Printed)
	case ModeTree:
		data, err := yaml.Marshal(res.AST)
		if err != nil {
			s.errColor.Fprintf(s.out, "encoding tree: %v\n", err)
			return
		}
		fmt.Fprint(s.out, string(data))
	}
}
