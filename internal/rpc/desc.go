package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "enigma.v1.Enigma"

// Full method names.
const (
	MethodProcess   = "/" + ServiceName + "/Process"
	MethodCatalog   = "/" + ServiceName + "/Catalog"
	MethodRunRecipe = "/" + ServiceName + "/RunRecipe"
)

// EnigmaServer is the server API of enigma.v1.Enigma. Messages are
// google.protobuf.Struct values so clients need no generated code.
//
// Process takes {"settings": {...}, "text": "..."} and returns
// {"output": "...", "windows": "..."}. RunRecipe takes {"recipe": "...",
// "text": "..."} and returns {"output": "..."}.
type EnigmaServer interface {
	Process(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Catalog(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	RunRecipe(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterEnigmaServer registers srv on s.
func RegisterEnigmaServer(s grpc.ServiceRegistrar, srv EnigmaServer) {
	s.RegisterService(&enigmaServiceDesc, srv)
}

var enigmaServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EnigmaServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Process", Handler: processHandler},
		{MethodName: "Catalog", Handler: catalogHandler},
		{MethodName: "RunRecipe", Handler: runRecipeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "enigma/v1/enigma.proto",
}

func processHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EnigmaServer).Process(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodProcess}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EnigmaServer).Process(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func catalogHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EnigmaServer).Catalog(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodCatalog}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EnigmaServer).Catalog(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func runRecipeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EnigmaServer).RunRecipe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodRunRecipe}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EnigmaServer).RunRecipe(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
