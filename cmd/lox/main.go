// Package main is the entry point for the lox command line tool.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/loxparse/pkg/analyzer"
	"github.com/lemonberrylabs/loxparse/pkg/config"
	"github.com/lemonberrylabs/loxparse/pkg/logging"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// cli holds state shared by all subcommands.
type cli struct {
	configFile string
	envFile    string
	logLevel   string
	strict     bool

	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	var file string

	root := &cobra.Command{
		Use:           "lox",
		Short:         "Scan and parse Lox expressions",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.closer != nil {
				return c.closer.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return cmd.Help()
			}
			return c.parse(cmd, file, "sexpr")
		},
	}

	root.Version = version + " (commit=" + commit + ", built=" + date + ")"
	root.SetVersionTemplate("lox version {{.Version}}\n")

	root.Flags().StringVarP(&file, "file", "f", "", "Lox source file to parse")

	pf := root.PersistentFlags()
	pf.StringVar(&c.configFile, "config", "", "YAML config file")
	pf.StringVar(&c.envFile, "env-file", "", ".env file with LOX_* variables")
	pf.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error (env LOX_LOG_LEVEL)")
	pf.BoolVar(&c.strict, "strict", false, "Reject characters that start no token (env LOX_STRICT)")

	root.AddCommand(
		newScanCmd(c),
		newParseCmd(c),
		newReplCmd(c),
		newServeCmd(c),
	)
	return root
}

// setup loads configuration, applies global flags and builds the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configFile, c.envFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if cmd.Flags().Changed("strict") {
		cfg.Scanner.Strict = c.strict
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := cfg.LoggingOptions()
	opts.Writer = cmd.ErrOrStderr()
	logger, closer, err := logging.New(opts)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	c.cfg, c.logger, c.closer = cfg, logger, closer
	return nil
}

func (c *cli) newAnalyzer() (*analyzer.Analyzer, error) {
	return analyzer.New(c.cfg.AnalyzerOptions())
}

// readSource reads a file, or standard input when name is "-".
func readSource(cmd *cobra.Command, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return string(data), nil
}
