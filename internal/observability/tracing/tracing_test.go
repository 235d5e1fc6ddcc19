package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prevProvider := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevProp)
	})
	return rec
}

func attr(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

func TestStartSpanAndFinish(t *testing.T) {
	rec := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "enigma.process", WithAttributes(map[string]any{
		"enigma.rotors":  "I,II,III",
		"enigma.letters": 10,
	}))
	if TraceIDFromContext(ctx) == "" {
		t.Fatal("expected trace id on context")
	}
	Finish(span, errors.New("boom"))

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Status().Code != codes.Error {
		t.Fatalf("expected error status, got %v", ended[0].Status())
	}
	if got, _ := attr(ended[0], "enigma.letters"); got != "10" {
		t.Fatalf("unexpected letters attribute %q", got)
	}
	if ended[0].SpanKind() != trace.SpanKindInternal {
		t.Fatalf("expected internal span, got %v", ended[0].SpanKind())
	}
}

func TestTraceIDWithoutSpan(t *testing.T) {
	if id := TraceIDFromContext(context.Background()); id != "" {
		t.Fatalf("expected empty trace id, got %q", id)
	}
}

func TestHTTPMiddlewareNamesRouteAndContinuesTrace(t *testing.T) {
	rec := installRecorder(t)

	router := mux.NewRouter()
	router.Use(HTTPMiddleware)
	router.HandleFunc("/api/v1/recipes/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	parentCtx, parent := StartSpan(context.Background(), "client")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes/daily", nil)
	otel.GetTextMapPropagator().Inject(parentCtx, propagation.HeaderCarrier(req.Header))
	parent.End()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var server sdktrace.ReadOnlySpan
	for _, s := range rec.Ended() {
		if s.SpanKind() == trace.SpanKindServer {
			server = s
		}
	}
	if server == nil {
		t.Fatal("expected a server span")
	}
	if server.Name() != "GET /api/v1/recipes/{name}" {
		t.Fatalf("unexpected span name %q", server.Name())
	}
	if server.Parent().TraceID() != parent.SpanContext().TraceID() {
		t.Fatal("server span should continue the incoming trace")
	}
	if got, _ := attr(server, "http.response.status_code"); got != "404" {
		t.Fatalf("unexpected status attribute %q", got)
	}
}

func TestUnaryInterceptorsPropagate(t *testing.T) {
	rec := installRecorder(t)

	// The client interceptor writes outgoing metadata; hand it to the server
	// side as incoming metadata.
	var serverCtx context.Context
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		incoming := metadata.NewIncomingContext(context.Background(), md)
		_, err := UnaryServerInterceptor()(incoming, req, &grpc.UnaryServerInfo{FullMethod: method},
			func(ctx context.Context, req interface{}) (interface{}, error) {
				serverCtx = ctx
				return nil, nil
			})
		return err
	}

	err := UnaryClientInterceptor()(context.Background(), "/enigma.v1.Enigma/Process", nil, nil, nil, invoker)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if serverCtx == nil {
		t.Fatal("handler was not called")
	}

	ended := rec.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected client and server spans, got %d", len(ended))
	}
	server, client := ended[0], ended[1]
	if server.SpanKind() != trace.SpanKindServer || client.SpanKind() != trace.SpanKindClient {
		t.Fatalf("unexpected span kinds %v, %v", server.SpanKind(), client.SpanKind())
	}
	if server.Parent().SpanID() != client.SpanContext().SpanID() {
		t.Fatal("server span should be a child of the client span")
	}
	if got, _ := attr(server, "rpc.method"); got != "Process" {
		t.Fatalf("unexpected rpc.method %q", got)
	}
	if got, _ := attr(server, "rpc.service"); got != "enigma.v1.Enigma" {
		t.Fatalf("unexpected rpc.service %q", got)
	}
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{SampleRatio: 0})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
