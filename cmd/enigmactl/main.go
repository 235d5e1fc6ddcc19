package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RowanDark/enigma/internal/config"
	"github.com/RowanDark/enigma/internal/logging"
)

const productName = "enigmactl"

var version = "dev"

// app carries the streams and configuration loader shared by every command.
type app struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.Config, error)
}

// usageError marks errors caused by a malformed command line.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code: 0 on
// success, 2 for usage errors and 1 for everything else.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, loadConfig: config.Load}
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	var uerr usageError
	if errors.As(err, &uerr) || strings.HasPrefix(err.Error(), "unknown command") {
		return 2
	}
	return 1
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           productName,
		Short:         "Encipher and decipher text with a three-rotor Enigma",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	root.AddCommand(
		newProcessCmd(a),
		newCatalogCmd(a),
		newRecipeCmd(a),
		newVersionCmd(a),
	)
	return root
}

// auditLogger writes CLI events to the configured audit log. Without one,
// events are discarded; the CLI never writes audit lines to stdout.
func (a *app) auditLogger(cfg config.Config) (*logging.AuditLogger, error) {
	if cfg.AuditLog == "" {
		return logging.Discard(), nil
	}
	return logging.NewAuditLogger(productName, logging.WithFile(cfg.AuditLog), logging.WithoutStdout())
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "%s %s\n", productName, version)
			return nil
		},
	}
}
