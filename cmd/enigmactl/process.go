package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RowanDark/enigma/internal/cipher"
	"github.com/RowanDark/enigma/internal/config"
	"github.com/RowanDark/enigma/internal/enigma"
	"github.com/RowanDark/enigma/internal/logging"
	"github.com/RowanDark/enigma/internal/rpc"
	"github.com/RowanDark/enigma/internal/service"
)

const remoteTimeout = 10 * time.Second

// keyFlags are the machine key flags shared by process and recipe save.
type keyFlags struct {
	rotors    []string
	positions string
	rings     string
	reflector string
	plugboard string
}

func (k *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&k.rotors, "rotors", nil, "rotor order, left to right (e.g. I,II,III)")
	cmd.Flags().StringVar(&k.positions, "positions", "", "initial window letters (e.g. aaa)")
	cmd.Flags().StringVar(&k.rings, "rings", "", "ring settings (e.g. aaa)")
	cmd.Flags().StringVar(&k.reflector, "reflector", "", "reflector (A, B or C)")
	cmd.Flags().StringVar(&k.plugboard, "plugboard", "", `plugboard pairs (e.g. "ab cd ef")`)
}

var keyFlagNames = []string{"rotors", "positions", "rings", "reflector", "plugboard"}

// changed reports whether any key flag was given.
func (k *keyFlags) changed(cmd *cobra.Command) bool {
	for _, name := range keyFlagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// settings overlays the given flags onto base.
func (k *keyFlags) settings(cmd *cobra.Command, base enigma.SettingsInput) enigma.SettingsInput {
	in := base
	in.Rotors = append([]string(nil), base.Rotors...)
	if cmd.Flags().Changed("rotors") {
		in.Rotors = k.rotors
	}
	if cmd.Flags().Changed("positions") {
		in.Positions = k.positions
	}
	if cmd.Flags().Changed("rings") {
		in.Rings = k.rings
	}
	if cmd.Flags().Changed("reflector") {
		in.Reflector = k.reflector
	}
	if cmd.Flags().Changed("plugboard") {
		in.Plugboard = k.plugboard
	}
	return in
}

type processOptions struct {
	key     keyFlags
	text    string
	file    string
	group   bool
	windows bool
	recipe  string
	remote  string
}

func newProcessCmd(a *app) *cobra.Command {
	var opts processOptions
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run text through the machine",
		Long: `Run text through a machine built from the key flags. Flags that are not
given fall back to the configured defaults. Input comes from --text, --file or
standard input. Because the machine is reciprocal the same command deciphers.

  enigmactl process --rotors III,I,II --positions xqf --rings czm --reflector C --text "attack at dawn"
  echo "ilbda amtaz" | enigmactl process
  enigmactl process --recipe dawn-patrol --file message.txt`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runProcess(cmd, opts)
		},
	}
	opts.key.register(cmd)
	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "text to process")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "file to process")
	cmd.Flags().BoolVar(&opts.group, "group", false, "write the output as five-letter groups")
	cmd.Flags().BoolVar(&opts.windows, "windows", false, "print the final rotor windows to stderr")
	cmd.Flags().StringVar(&opts.recipe, "recipe", "", "run a saved recipe instead of a key")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "process on an enigmad gRPC server at this address")
	return cmd
}

func (a *app) runProcess(cmd *cobra.Command, opts processOptions) error {
	if opts.text != "" && opts.file != "" {
		return usageErrorf("--text and --file are mutually exclusive")
	}
	if opts.recipe != "" && opts.key.changed(cmd) {
		return usageErrorf("--recipe cannot be combined with key flags")
	}

	text, err := a.readInput(opts)
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var res service.Result
	if opts.remote != "" {
		res, err = a.processRemote(cmd, cfg, opts, text)
	} else {
		res, err = a.processLocal(cmd, cfg, opts, text)
	}
	if err != nil {
		return err
	}

	out := res.Output
	if opts.group {
		out, err = groupLetters(cmd.Context(), out)
		if err != nil {
			return err
		}
	}
	fmt.Fprintln(a.stdout, out)
	if opts.windows && res.Windows != "" {
		fmt.Fprintf(a.stderr, "windows: %s\n", res.Windows)
	}
	return nil
}

func (a *app) processLocal(cmd *cobra.Command, cfg config.Config, opts processOptions, text string) (service.Result, error) {
	logger, err := a.auditLogger(cfg)
	if err != nil {
		return service.Result{}, fmt.Errorf("configure audit logger: %w", err)
	}
	defer logger.Close()

	recipes := cipher.NewRecipeManager(cfg.RecipeDir)
	if opts.recipe != "" {
		if err := recipes.LoadRecipes(); err != nil {
			return service.Result{}, fmt.Errorf("load recipes: %w", err)
		}
	}
	svc := service.New(service.Options{Recipes: recipes, Logger: logger})

	ctx := cmd.Context()
	requestID := logging.NewRequestID()
	if opts.recipe != "" {
		return svc.RunRecipe(ctx, service.SurfaceCLI, requestID, opts.recipe, text)
	}
	return svc.Process(ctx, service.SurfaceCLI, requestID, opts.key.settings(cmd, cfg.Defaults.Input()), text)
}

func (a *app) processRemote(cmd *cobra.Command, cfg config.Config, opts processOptions, text string) (service.Result, error) {
	client, err := rpc.Dial(opts.remote)
	if err != nil {
		return service.Result{}, err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
	defer cancel()

	if opts.recipe != "" {
		out, err := client.RunRecipe(ctx, opts.recipe, text)
		return service.Result{Output: out}, err
	}
	// Without key flags the server applies its own defaults.
	var in enigma.SettingsInput
	if opts.key.changed(cmd) {
		in = opts.key.settings(cmd, cfg.Defaults.Input())
	}
	return client.Process(ctx, in, text)
}

func (a *app) readInput(opts processOptions) (string, error) {
	if opts.text != "" {
		return opts.text, nil
	}
	var data []byte
	var err error
	if opts.file != "" {
		data, err = os.ReadFile(opts.file)
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", opts.file, err)
		}
	} else {
		data, err = io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
	}
	text := strings.TrimRight(string(data), "\r\n")
	if text == "" {
		return "", usageErrorf("no input text provided; use --text, --file, or pipe to stdin")
	}
	return text, nil
}

func groupLetters(ctx context.Context, text string) (string, error) {
	op, ok := cipher.GetOperation("group5")
	if !ok {
		return "", fmt.Errorf("group5 operation is not registered")
	}
	out, err := op.Execute(ctx, []byte(text), nil)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
