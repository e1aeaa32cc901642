package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "scl.v1.Frontend"

// Full method names.
const (
	TokenizeMethod = "/" + ServiceName + "/Tokenize"
	ParseMethod    = "/" + ServiceName + "/Parse"
)

// FrontendServer is the server API of the scl.v1.Frontend service.
//
// Requests carry {"source": string, "filename": string}. Responses carry
// "tokens" and "diagnostics" records; Parse adds "tree" and "symbols".
type FrontendServer interface {
	Tokenize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Parse(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterFrontendServer registers srv with s.
func RegisterFrontendServer(s grpc.ServiceRegistrar, srv FrontendServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the scl.v1.Frontend service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FrontendServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Tokenize", Handler: tokenizeHandler},
		{MethodName: "Parse", Handler: parseHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scl/v1/frontend.proto",
}

func tokenizeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FrontendServer).Tokenize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TokenizeMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FrontendServer).Tokenize(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func parseHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FrontendServer).Parse(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ParseMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FrontendServer).Parse(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
