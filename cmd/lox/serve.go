package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/loxparse/pkg/api"
	grpcapi "github.com/lemonberrylabs/loxparse/pkg/api/grpc"
	"github.com/lemonberrylabs/loxparse/pkg/store"
	"github.com/lemonberrylabs/loxparse/web"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, web UI and gRPC service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd)
		},
	}
	cmd.Flags().Int("port", 0, "HTTP server port (default 8787, env LOX_PORT)")
	cmd.Flags().Int("grpc-port", 0, "gRPC server port (default 8788, env LOX_GRPC_PORT)")
	cmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env LOX_HOST)")
	cmd.Flags().String("scripts-dir", "", "Directory of .lox files to load (env LOX_SCRIPTS_DIR)")
	return cmd
}

func (c *cli) serve(cmd *cobra.Command) error {
	cfg := c.cfg
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		cfg.Server.Port = v
	}
	if v, _ := cmd.Flags().GetInt("grpc-port"); v != 0 {
		cfg.Server.GRPCPort = v
	}
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		cfg.Server.Host = v
	}
	if v, _ := cmd.Flags().GetString("scripts-dir"); v != "" {
		cfg.ScriptsDir = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := c.newAnalyzer()
	if err != nil {
		return err
	}
	s := store.New()
	server := api.New(s, a, api.WithLogger(c.logger))

	if cfg.ScriptsDir != "" {
		if _, err := server.LoadDir(cfg.ScriptsDir); err != nil {
			c.logger.Warn("some scripts were not loaded", "dir", cfg.ScriptsDir, "error", err)
		}
	}

	web.New(s, a).Register(server.App())

	grpcServer := grpcapi.New(s, a, grpcapi.WithLogger(c.logger))
	go func() {
		c.logger.Info("gRPC server listening", "addr", cfg.GRPCAddr())
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			c.logger.Error("gRPC server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		c.logger.Info("shutting down")
		grpcServer.GracefulStop()
		if err := server.Shutdown(); err != nil {
			c.logger.Error("error during shutdown", "error", err)
		}
	}()

	c.logger.Info("lox server listening", "addr", cfg.Addr(), "strict", cfg.Scanner.Strict, "scripts", s.Len())
	return server.Listen(cfg.Addr())
}
