package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// UnaryServerInterceptor instruments unary gRPC handlers with tracing spans.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		ctx = ContextWithIncomingMetadata(ctx)
		ctx, span := StartSpan(ctx, info.FullMethod,
			WithSpanKind(trace.SpanKindServer),
			WithAttributes(rpcAttributes(info.FullMethod)))
		resp, err := handler(ctx, req)
		Finish(span, err)
		return resp, err
	}
}

// UnaryClientInterceptor starts a client span and propagates it to the server.
func UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx, span := StartSpan(ctx, method,
			WithSpanKind(trace.SpanKindClient),
			WithAttributes(rpcAttributes(method)))
		err := invoker(OutgoingContext(ctx), method, req, reply, cc, opts...)
		Finish(span, err)
		return err
	}
}

func rpcAttributes(fullMethod string) map[string]any {
	attrs := map[string]any{"rpc.system": "grpc"}
	service, method := splitMethod(fullMethod)
	if service != "" {
		attrs["rpc.service"] = service
	}
	if method != "" {
		attrs["rpc.method"] = method
	}
	return attrs
}

func splitMethod(full string) (string, string) {
	full = strings.TrimPrefix(full, "/")
	parts := strings.Split(full, "/")
	if len(parts) != 2 {
		return full, ""
	}
	return parts[0], parts[1]
}
