package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/RowanDark/enigma/internal/api"
	"github.com/RowanDark/enigma/internal/cipher"
	"github.com/RowanDark/enigma/internal/config"
	"github.com/RowanDark/enigma/internal/enigma"
	"github.com/RowanDark/enigma/internal/logging"
	"github.com/RowanDark/enigma/internal/observability/tracing"
	"github.com/RowanDark/enigma/internal/rpc"
	"github.com/RowanDark/enigma/internal/service"
)

var version = "dev"

func main() {
	httpAddr := flag.String("http-addr", "", "address for the HTML form and JSON API (overrides config)")
	grpcAddr := flag.String("grpc-addr", "", "address for the gRPC server (overrides config)")
	recipeDir := flag.String("recipe-dir", "", "directory holding saved recipes (overrides config)")
	auditLog := flag.String("audit-log", "", "path to append audit events to (overrides config)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "http-addr":
			cfg.HTTPAddr = strings.TrimSpace(*httpAddr)
		case "grpc-addr":
			cfg.GRPCAddr = strings.TrimSpace(*grpcAddr)
		case "recipe-dir":
			cfg.RecipeDir = strings.TrimSpace(*recipeDir)
		case "audit-log":
			cfg.AuditLog = strings.TrimSpace(*auditLog)
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAuditLogger(cfg config.Config) (*logging.AuditLogger, error) {
	var opts []logging.Option
	if cfg.AuditLog != "" {
		opts = append(opts, logging.WithFile(cfg.AuditLog))
	}
	if !cfg.AuditStdout {
		opts = append(opts, logging.WithoutStdout())
	}
	return logging.NewAuditLogger("enigmad", opts...)
}

func run(ctx context.Context, cfg config.Config) error {
	logger, err := newAuditLogger(cfg)
	if err != nil {
		return fmt.Errorf("configure audit logger: %w", err)
	}
	defer logger.Close()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName: "enigmad",
		SampleRatio: cfg.Tracing.SampleRatio,
		FilePath:    cfg.Tracing.File,
	})
	if err != nil {
		return fmt.Errorf("configure tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Reject(logging.EventServerLifecycle, "", err, map[string]any{"phase": "tracing_shutdown"})
		}
	}()

	recipes := cipher.NewRecipeManager(cfg.RecipeDir)
	if err := recipes.LoadRecipes(); err != nil {
		return fmt.Errorf("load recipes: %w", err)
	}

	var httpLn, grpcLn net.Listener
	if cfg.HTTPAddr != "" {
		if httpLn, err = net.Listen("tcp", cfg.HTTPAddr); err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.HTTPAddr, err)
		}
	}
	if cfg.GRPCAddr != "" {
		if grpcLn, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
			if httpLn != nil {
				_ = httpLn.Close()
			}
			return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
		}
	}

	svc := service.New(service.Options{Recipes: recipes, Logger: logger.WithComponent("service")})
	return serve(ctx, svc, cfg.Defaults.Input(), logger, httpLn, grpcLn)
}

// serve runs the HTTP and gRPC front-ends on the given listeners until ctx is
// cancelled or one of them fails. Either listener may be nil.
func serve(ctx context.Context, svc *service.Service, defaults enigma.SettingsInput, logger *logging.AuditLogger, httpLn, grpcLn net.Listener) error {
	if httpLn == nil && grpcLn == nil {
		return errors.New("no listeners configured")
	}
	closeAll := func() {
		for _, ln := range []net.Listener{httpLn, grpcLn} {
			if ln != nil {
				_ = ln.Close()
			}
		}
	}

	var (
		httpSrv *api.Server
		grpcSrv *rpc.Server
		err     error
	)
	if httpLn != nil {
		httpSrv, err = api.NewServer(api.Config{
			Addr:     httpLn.Addr().String(),
			Defaults: defaults,
			Service:  svc,
			Logger:   logger.WithComponent("http"),
		})
		if err != nil {
			closeAll()
			return fmt.Errorf("configure http server: %w", err)
		}
	}
	rpcLogger := logger.WithComponent("grpc")
	if grpcLn != nil {
		grpcSrv, err = rpc.NewServer(rpc.Options{Service: svc, Defaults: defaults, Logger: rpcLogger})
		if err != nil {
			closeAll()
			return fmt.Errorf("configure grpc server: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	running := 0
	if httpSrv != nil {
		running++
		go func() { errCh <- httpSrv.Serve(ctx, httpLn) }()
	}
	if grpcSrv != nil {
		running++
		gs := rpc.NewGRPCServer(grpcSrv)
		go func() {
			rpcLogger.Record(logging.EventServerLifecycle, "", map[string]any{"state": "listening", "addr": grpcLn.Addr().String()})
			err := rpc.Serve(ctx, gs, grpcLn)
			rpcLogger.Record(logging.EventServerLifecycle, "", map[string]any{"state": "stopped"})
			errCh <- err
		}()
	}

	var firstErr error
	for i := 0; i < running; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	return firstErr
}
