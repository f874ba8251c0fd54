package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/loxparse/pkg/analyzer"
)

func newScanCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "scan FILE|-",
		Short: "Print the tokens of a Lox source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.scan(cmd, args[0], format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or yaml")
	return cmd
}

func newParseCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "parse FILE|-",
		Short: "Print the AST of a Lox expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.parse(cmd, args[0], format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "sexpr", "Output format: sexpr, json or yaml")
	return cmd
}

func (c *cli) analyze(cmd *cobra.Command, name string) (*analyzer.Result, error) {
	source, err := readSource(cmd, name)
	if err != nil {
		return nil, err
	}
	a, err := c.newAnalyzer()
	if err != nil {
		return nil, err
	}
	res := a.Analyze(source)
	c.logger.Debug("analyzed source", "file", name, "bytes", len(source), "tokens", len(res.Tokens))
	return res, nil
}

func (c *cli) scan(cmd *cobra.Command, name, format string) error {
	res, err := c.analyze(cmd, name)
	if err != nil {
		return err
	}
	if res.Error != nil && res.Error.Phase != analyzer.PhaseParse {
		return res.Error
	}

	out := cmd.OutOrStdout()
	switch format {
	case "text":
		for _, tok := range res.Tokens {
			if tok.Literal != nil {
				fmt.Fprintf(out, "%d:%d\t%s\t%q\t%v\n", tok.Line, tok.Column, tok.Kind, tok.Lexeme, tok.Literal)
			} else {
				fmt.Fprintf(out, "%d:%d\t%s\t%q\n", tok.Line, tok.Column, tok.Kind, tok.Lexeme)
			}
		}
		return nil
	default:
		return encode(out, format, res.Tokens)
	}
}

func (c *cli) parse(cmd *cobra.Command, name, format string) error {
	res, err := c.analyze(cmd, name)
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "sexpr":
		_, err := fmt.Fprintln(out, res.Printed)
		return err
	default:
		return encode(out, format, res.AST)
	}
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
