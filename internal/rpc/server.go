// Package rpc exposes the machine over gRPC as enigma.v1.Enigma.
package rpc

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/enigma/internal/cipher"
	"github.com/RowanDark/enigma/internal/enigma"
	"github.com/RowanDark/enigma/internal/logging"
	"github.com/RowanDark/enigma/internal/observability/metrics"
	"github.com/RowanDark/enigma/internal/observability/tracing"
	"github.com/RowanDark/enigma/internal/service"
)

// RequestIDKey is the metadata key carrying a caller supplied request id.
const RequestIDKey = "x-request-id"

// Options configures the gRPC front-end.
type Options struct {
	Service *service.Service
	// Defaults stand in for an empty settings struct in Process.
	Defaults enigma.SettingsInput
	Logger   *logging.AuditLogger
}

// Server implements EnigmaServer on top of a service.Service.
type Server struct {
	svc      *service.Service
	defaults enigma.SettingsInput
	logger   *logging.AuditLogger
}

var _ EnigmaServer = (*Server)(nil)

// NewServer validates opts and returns the service implementation.
func NewServer(opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, errors.New("service is required")
	}
	if _, err := enigma.ParseSettings(opts.Defaults); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{svc: opts.Service, defaults: opts.Defaults, logger: logger}, nil
}

// NewGRPCServer returns a grpc.Server with srv registered and the tracing,
// metrics and audit interceptors installed.
func NewGRPCServer(srv *Server, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		tracing.UnaryServerInterceptor(),
		srv.observeInterceptor,
	))
	gs := grpc.NewServer(opts...)
	RegisterEnigmaServer(gs, srv)
	return gs
}

// Serve runs gs on lis until ctx is cancelled. A graceful stop that takes
// longer than two seconds is forced.
func Serve(ctx context.Context, gs *grpc.Server, lis net.Listener) error {
	go func() {
		<-ctx.Done()

		done := make(chan struct{})
		go func() {
			gs.GracefulStop()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			gs.Stop()
		}
	}()

	if err := gs.Serve(lis); err != nil {
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
	return nil
}

type requestIDCtxKey struct{}

func (s *Server) observeInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	id := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(RequestIDKey); len(vals) > 0 {
			id = strings.TrimSpace(vals[0])
		}
	}
	if _, err := uuid.Parse(id); err != nil {
		id = logging.NewRequestID()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, id))
	ctx = context.WithValue(ctx, requestIDCtxKey{}, id)

	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	metrics.RecordRPCRequest(info.FullMethod, code.String())
	meta := map[string]any{
		"method":      info.FullMethod,
		"code":        code.String(),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		s.logger.Reject(logging.EventRPCCall, id, err, meta)
	} else {
		s.logger.Record(logging.EventRPCCall, id, meta)
	}
	return resp, err
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

// Process runs text through a machine built from the settings struct.
func (s *Server) Process(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.AsMap()
	text, err := stringField(fields, "text")
	if err != nil {
		return nil, err
	}

	in := s.defaults
	if raw, ok := fields["settings"]; ok && raw != nil {
		params, ok := raw.(map[string]interface{})
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "settings must be a struct, got %T", raw)
		}
		if len(params) > 0 {
			if in, err = cipher.SettingsFromParams(params); err != nil {
				return nil, toStatus(err)
			}
		}
	}

	res, err := s.svc.Process(ctx, service.SurfaceGRPC, requestIDFrom(ctx), in, text)
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"output":  res.Output,
		"windows": res.Windows,
	})
}

// Catalog lists the rotors and reflectors.
func (s *Server) Catalog(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	catalog := s.svc.Catalog()

	rotors := make([]interface{}, 0, len(catalog.Rotors))
	for _, r := range catalog.Rotors {
		rotors = append(rotors, map[string]interface{}{"id": r.ID, "wiring": r.Wiring, "notch": r.Notch})
	}
	reflectors := make([]interface{}, 0, len(catalog.Reflectors))
	for _, r := range catalog.Reflectors {
		reflectors = append(reflectors, map[string]interface{}{"id": r.ID, "wiring": r.Wiring})
	}
	return structpb.NewStruct(map[string]interface{}{
		"rotors":     rotors,
		"reflectors": reflectors,
	})
}

// RunRecipe runs text through a stored recipe.
func (s *Server) RunRecipe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.AsMap()
	name, err := stringField(fields, "recipe")
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "recipe is required")
	}
	text, err := stringField(fields, "text")
	if err != nil {
		return nil, err
	}

	res, err := s.svc.RunRecipe(ctx, service.SurfaceGRPC, requestIDFrom(ctx), name, text)
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{"output": res.Output})
}

func stringField(fields map[string]interface{}, name string) (string, error) {
	raw, ok := fields[name]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string, got %T", name, raw)
	}
	return s, nil
}

// toStatus maps service errors onto gRPC status codes. Configuration errors
// carry their reason label in the message.
func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, enigma.ErrInvalidConfig):
		return status.Errorf(codes.InvalidArgument, "%v (reason=%s)", err, enigma.ReasonOf(err))
	case errors.Is(err, cipher.ErrInvalidRecipe), errors.Is(err, enigma.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, cipher.ErrRecipeNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
