// Package grpcapi exposes the Lox scanner and parser over gRPC. Messages are
// google.protobuf.Struct values so the service needs no generated code.
package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lemonberrylabs/loxparse/pkg/analyzer"
	"github.com/lemonberrylabs/loxparse/pkg/store"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "lox.v1.Parser"

// ParserServer is the server API for the lox.v1.Parser service.
type ParserServer interface {
	Scan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Parse(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetScript(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListScripts(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server implements ParserServer on top of an analyzer and a script store.
type Server struct {
	store    *store.Store
	analyzer *analyzer.Analyzer
	logger   *slog.Logger
	health   *health.Server
	grpc     *grpc.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by the request interceptor.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a new gRPC server wrapping the given store and analyzer.
func New(s *store.Store, a *analyzer.Analyzer, opts ...Option) *Server {
	srv := &Server{
		store:    s,
		analyzer: a,
		logger:   slog.Default(),
		health:   health.NewServer(),
	}
	for _, opt := range opts {
		opt(srv)
	}

	gs := grpc.NewServer(grpc.UnaryInterceptor(srv.logUnary))
	gs.RegisterService(&parserServiceDesc, srv)
	healthpb.RegisterHealthServer(gs, srv.health)
	srv.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	srv.grpc = gs

	return srv
}

// Serve starts listening on the given address and serves gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.grpc.Serve(lis)
}

// GracefulStop marks the service as not serving and stops the server.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	attrs := []slog.Attr{
		slog.String("method", info.FullMethod),
		slog.String("code", status.Code(err).String()),
		slog.Duration("latency", time.Since(start)),
	}
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "RPC_ERROR", append(attrs, slog.String("err", err.Error()))...)
	} else {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "RPC", attrs...)
	}
	return resp, err
}

// --- Parser Service ---

// Scan tokenizes {"source": ...} and returns {"tokens": [...]}.
func (s *Server) Scan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res := s.analyzer.Analyze(stringField(req, "source"))
	if res.Error != nil && res.Error.Phase != analyzer.PhaseParse {
		return nil, analysisStatus(res.Error)
	}
	return toStruct(map[string]any{"tokens": res.Tokens})
}

// Parse parses {"source": ...} and returns {"printed", "ast", "tokens"}.
func (s *Server) Parse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res := s.analyzer.Analyze(stringField(req, "source"))
	if res.Error != nil {
		return nil, analysisStatus(res.Error)
	}
	return toStruct(map[string]any{
		"printed": res.Printed,
		"ast":     res.AST,
		"tokens":  res.Tokens,
	})
}

// GetScript returns the stored script named by {"name": ...}.
func (s *Server) GetScript(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := stringField(req, "name")
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	sc, err := s.store.GetScript(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, status.Error(codes.NotFound, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return toStruct(sc)
}

// ListScripts returns {"scripts": [...]} sorted by name.
func (s *Server) ListScripts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(map[string]any{"scripts": s.store.ListScripts()})
}

// --- Helpers ---

func stringField(st *structpb.Struct, key string) string {
	return st.GetFields()[key].GetStringValue()
}

// toStruct converts any JSON-encodable value to a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return out, nil
}

// analysisStatus maps a scan or parse failure to InvalidArgument, carrying the
// error view as a Struct detail.
func analysisStatus(ev *analyzer.ErrorView) error {
	st := status.New(codes.InvalidArgument, ev.Error())
	details, err := toStruct(ev)
	if err != nil {
		return st.Err()
	}
	if withDetails, err := st.WithDetails(details); err == nil {
		return withDetails.Err()
	}
	return st.Err()
}
