package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

var parserServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ParserServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Scan", Handler: unaryHandler("Scan", ParserServer.Scan)},
		{MethodName: "Parse", Handler: unaryHandler("Parse", ParserServer.Parse)},
		{MethodName: "GetScript", Handler: unaryHandler("GetScript", ParserServer.GetScript)},
		{MethodName: "ListScripts", Handler: unaryHandler("ListScripts", ParserServer.ListScripts)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lox/v1/parser.proto",
}

type unaryMethod func(ParserServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ParserServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + name,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ParserServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client is a client for the lox.v1.Parser service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a Client over an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Scan tokenizes source on the server.
func (c *Client) Scan(ctx context.Context, source string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Scan", map[string]any{"source": source}, opts...)
}

// Parse parses source on the server.
func (c *Client) Parse(ctx context.Context, source string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Parse", map[string]any{"source": source}, opts...)
}

// GetScript fetches a stored script by name.
func (c *Client) GetScript(ctx context.Context, name string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetScript", map[string]any{"name": name}, opts...)
}

// ListScripts lists stored scripts.
func (c *Client) ListScripts(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListScripts", map[string]any{}, opts...)
}

func (c *Client) invoke(ctx context.Context, method string, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
