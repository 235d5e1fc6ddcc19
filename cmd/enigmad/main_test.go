package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/RowanDark/enigma/internal/cipher"
	"github.com/RowanDark/enigma/internal/config"
	"github.com/RowanDark/enigma/internal/enigma"
	"github.com/RowanDark/enigma/internal/logging"
	"github.com/RowanDark/enigma/internal/rpc"
	"github.com/RowanDark/enigma/internal/service"
)

func TestServeBootsAndShutsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	grpcLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	logger, err := logging.NewAuditLogger("enigmad_test", logging.WithoutStdout(), logging.WithWriter(io.Discard))
	if err != nil {
		t.Fatalf("NewAuditLogger: %v", err)
	}
	svc := service.New(service.Options{Recipes: cipher.NewRecipeManager(t.TempDir()), Logger: logger})

	errCh := make(chan error, 1)
	go func() {
		errCh <- serve(ctx, svc, enigma.DefaultSettings().Input(), logger, httpLn, grpcLn)
	}()

	resp, err := http.Post("http://"+httpLn.Addr().String()+"/api/v1/enigma/process", "application/json", strings.NewReader(`{"text":"aaaaa"}`))
	if err != nil {
		t.Fatalf("http request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "bdzgo") {
		t.Fatalf("unexpected http response %d %s", resp.StatusCode, body)
	}

	client, err := rpc.Dial(grpcLn.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	callCtx, callCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer callCancel()
	res, err := client.Process(callCtx, enigma.SettingsInput{}, "aaaaa")
	if err != nil {
		t.Fatalf("grpc process: %v", err)
	}
	if res.Output != "bdzgo" {
		t.Fatalf("expected bdzgo over grpc, got %q", res.Output)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close client: %v", err)
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after context cancellation")
	}
}

func TestServeRequiresListener(t *testing.T) {
	svc := service.New(service.Options{})
	if err := serve(context.Background(), svc, enigma.DefaultSettings().Input(), logging.Discard(), nil, nil); err == nil {
		t.Fatal("expected error without listeners")
	}
}

func TestNewAuditLoggerWritesFile(t *testing.T) {
	path := t.TempDir() + "/audit.log"
	cfg := config.Default()
	cfg.AuditLog = path
	cfg.AuditStdout = false

	logger, err := newAuditLogger(cfg)
	if err != nil {
		t.Fatalf("newAuditLogger: %v", err)
	}
	logger.Record(logging.EventServerLifecycle, "", map[string]any{"state": "listening"})
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	if !strings.Contains(string(data), `"event_type":"server_lifecycle"`) {
		t.Fatalf("audit log missing event: %s", data)
	}
}
