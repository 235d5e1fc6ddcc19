package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RowanDark/enigma/internal/cipher"
	"github.com/RowanDark/enigma/internal/enigma"
	"github.com/RowanDark/enigma/internal/rpc"
	"github.com/RowanDark/enigma/internal/service"
	"google.golang.org/grpc"
)

// isolate points HOME and the working directory at a fresh temp directory so
// config.Load sees no files.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestProcess(t *testing.T) {
	isolate(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"defaults", "", []string{"process", "--text", "Hello, World!"}, "ilbda, amtaz!\n"},
		{"plugboard", "", []string{"process", "--plugboard", "AB CD", "-t", "HELLO WORLD"}, "ilacb bmtbe\n"},
		{"positions", "", []string{"process", "--positions", "abc", "--text", "enigma"}, "xyzauj\n"},
		{"rings", "", []string{"process", "--rings", "bbb", "--text", "aaaaa"}, "ewtyx\n"},
		{
			"full key",
			"",
			[]string{"process", "--rotors", "III,I,II", "--positions", "xqf", "--rings", "czm", "--reflector", "C", "--plugboard", "az qm", "--text", "theenigmamachine"},
			"jkzyrhitkvjfsldy\n",
		},
		{"stdin", "attack at dawn\n", []string{"process"}, "bzhgno cr rtcm\n"},
		{"grouped", "", []string{"process", "--group", "--text", "attack at dawn"}, "bzhgn ocrrt cm\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.stdin, tt.args...)
			if code != 0 {
				t.Fatalf("exit %d: %s", code, stderr)
			}
			if stdout != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, stdout)
			}
		})
	}
}

func TestProcessFileAndWindows(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "message.txt")
	if err := os.WriteFile(path, []byte("helloworld\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	code, stdout, stderr := runCLI(t, "", "process", "--file", path, "--windows")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if stdout != "ilbdaamtaz\n" {
		t.Fatalf("unexpected output %q", stdout)
	}
	if stderr != "windows: aak\n" {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}

func TestProcessUsesConfiguredDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("ENIGMA_DEFAULT_POSITIONS", "abc")

	code, stdout, stderr := runCLI(t, "", "process", "--text", "enigma")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if stdout != "xyzauj\n" {
		t.Fatalf("expected configured positions to apply, got %q", stdout)
	}
}

func TestProcessErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"unknown rotor", []string{"process", "--rotors", "I,II,IX", "--text", "abc"}, 1, "unknown rotor"},
		{"duplicate plug", []string{"process", "--plugboard", "ab bc", "--text", "abc"}, 1, "more than one plugboard pair"},
		{"short positions", []string{"process", "--positions", "ab", "--text", "abc"}, 1, "positions"},
		{"text and file", []string{"process", "--text", "abc", "--file", "x.txt"}, 2, "mutually exclusive"},
		{"no input", []string{"process"}, 2, "no input text"},
		{"unknown flag", []string{"process", "--speed", "11"}, 2, "unknown flag"},
		{"stray argument", []string{"process", "extra"}, 2, "unknown command"},
		{"unknown command", []string{"transmit"}, 2, "unknown command"},
		{"recipe with key", []string{"process", "--recipe", "x", "--rotors", "I,II,III", "--text", "abc"}, 2, "cannot be combined"},
		{"missing recipe", []string{"process", "--recipe", "ghost", "--text", "abc"}, 1, "recipe not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, "", tt.args...)
			if code != tt.wantCode {
				t.Fatalf("expected exit %d, got %d (%s)", tt.wantCode, code, stderr)
			}
			if !strings.HasPrefix(stderr, "error: ") || !strings.Contains(stderr, tt.wantErr) {
				t.Fatalf("expected error containing %q, got %q", tt.wantErr, stderr)
			}
		})
	}
}

func TestRecipeCommands(t *testing.T) {
	home := isolate(t)

	code, stdout, stderr := runCLI(t, "", "recipe", "save", "dawn-patrol",
		"--rotors", "III,I,II", "--positions", "xqf", "--rings", "czm", "--reflector", "C", "--plugboard", "az qm",
		"--description", "morning traffic", "--tags", "navy")
	if code != 0 {
		t.Fatalf("save exit %d: %s", code, stderr)
	}
	if stdout != "saved recipe dawn-patrol\n" {
		t.Fatalf("unexpected save output %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(home, ".enigma", "recipes", "dawn-patrol.json")); err != nil {
		t.Fatalf("recipe file not written: %v", err)
	}

	code, stdout, _ = runCLI(t, "", "recipe", "list")
	if code != 0 || !strings.Contains(stdout, "dawn-patrol") || !strings.Contains(stdout, "letters_only,enigma,group5") {
		t.Fatalf("unexpected list output (%d) %q", code, stdout)
	}
	code, stdout, _ = runCLI(t, "", "recipe", "list", "-q", "army")
	if code != 0 || strings.Contains(stdout, "dawn-patrol") {
		t.Fatalf("query should filter, got %q", stdout)
	}

	code, stdout, _ = runCLI(t, "", "recipe", "show", "dawn-patrol")
	if code != 0 {
		t.Fatalf("show exit %d", code)
	}
	var recipe cipher.Recipe
	if err := json.Unmarshal([]byte(stdout), &recipe); err != nil {
		t.Fatalf("show output is not JSON: %v", err)
	}
	if recipe.Key.Positions != "xqf" || recipe.Key.Reflector != "C" {
		t.Fatalf("unexpected key %+v", recipe.Key)
	}

	code, stdout, stderr = runCLI(t, "", "process", "--recipe", "dawn-patrol", "--text", "The Enigma machine!")
	if code != 0 {
		t.Fatalf("process recipe exit %d: %s", code, stderr)
	}
	if stdout != "jkzyr hitkv jfsld y\n" {
		t.Fatalf("unexpected recipe output %q", stdout)
	}

	code, stdout, _ = runCLI(t, "", "recipe", "delete", "dawn-patrol")
	if code != 0 || stdout != "deleted recipe dawn-patrol\n" {
		t.Fatalf("delete: %d %q", code, stdout)
	}
	code, _, _ = runCLI(t, "", "recipe", "show", "dawn-patrol")
	if code != 1 {
		t.Fatalf("show after delete: expected exit 1, got %d", code)
	}
	code, _, _ = runCLI(t, "", "recipe", "show")
	if code != 2 {
		t.Fatalf("show without name: expected exit 2, got %d", code)
	}
}

func TestRecipeSaveRejectsBadKey(t *testing.T) {
	isolate(t)
	code, _, stderr := runCLI(t, "", "recipe", "save", "broken", "--reflector", "Z")
	if code != 1 || !strings.Contains(stderr, "unknown reflector") {
		t.Fatalf("expected unknown reflector error, got %d %q", code, stderr)
	}
}

func TestCatalog(t *testing.T) {
	isolate(t)
	code, stdout, _ := runCLI(t, "", "catalog")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	for _, want := range []string{"ROTOR", "ekmflgdqvzntowyhxuspaibrcj", "REFLECTOR", "yruhqsldpxngokmiebfzcwvjat"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("catalog output missing %q", want)
		}
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "version")
	if code != 0 || stdout != "enigmactl dev\n" {
		t.Fatalf("unexpected version output %d %q", code, stdout)
	}
}

func TestRemote(t *testing.T) {
	isolate(t)

	recipes := cipher.NewRecipeManager("")
	if err := recipes.SaveRecipe(&cipher.Recipe{
		Name: "plain",
		Key:  enigma.DefaultSettings().Input(),
	}); err != nil {
		t.Fatalf("save recipe: %v", err)
	}
	svc := service.New(service.Options{Recipes: recipes})
	srv, err := rpc.NewServer(rpc.Options{Service: svc, Defaults: enigma.DefaultSettings().Input()})
	if err != nil {
		t.Fatalf("rpc.NewServer: %v", err)
	}
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	gs := rpc.NewGRPCServer(srv)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rpc.Serve(ctx, gs, lis) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			t.Errorf("serve: %v", err)
		}
	})
	addr := lis.Addr().String()

	code, stdout, stderr := runCLI(t, "", "process", "--remote", addr, "--text", "Hello, World!")
	if code != 0 || stdout != "ilbda, amtaz!\n" {
		t.Fatalf("remote process: %d %q %s", code, stdout, stderr)
	}

	code, stdout, stderr = runCLI(t, "", "process", "--remote", addr, "--plugboard", "ab", "--text", "aardvark")
	if code != 0 || stdout != "bjxlkynz\n" {
		t.Fatalf("remote process with key: %d %q %s", code, stdout, stderr)
	}

	code, stdout, stderr = runCLI(t, "", "process", "--remote", addr, "--recipe", "plain", "--text", "aaaaa")
	if code != 0 || stdout != "bdzgo\n" {
		t.Fatalf("remote recipe: %d %q %s", code, stdout, stderr)
	}

	code, _, stderr = runCLI(t, "", "process", "--remote", addr, "--recipe", "ghost", "--text", "abc")
	if code != 1 || !strings.Contains(stderr, "NotFound") {
		t.Fatalf("remote missing recipe: %d %q", code, stderr)
	}

	code, stdout, _ = runCLI(t, "", "catalog", "--remote", addr)
	if code != 0 || !strings.Contains(stdout, "ekmflgdqvzntowyhxuspaibrcj") {
		t.Fatalf("remote catalog: %d %q", code, stdout)
	}
}
