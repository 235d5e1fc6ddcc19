package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RowanDark/enigma/internal/cipher"
	"github.com/RowanDark/enigma/internal/config"
	"github.com/RowanDark/enigma/internal/logging"
	"github.com/RowanDark/enigma/internal/service"
)

var defaultRecipeSteps = []string{"letters_only", cipher.EnigmaOperation, "group5"}

func newRecipeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Manage saved recipes in the local recipe directory",
		Args:  usageArgs(cobra.NoArgs),
	}
	cmd.AddCommand(
		newRecipeSaveCmd(a),
		newRecipeListCmd(a),
		newRecipeShowCmd(a),
		newRecipeDeleteCmd(a),
	)
	return cmd
}

// recipeService loads the local recipe directory behind a service.
// The returned func closes the audit log.
func (a *app) recipeService() (*service.Service, config.Config, func(), error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.RecipeDir == "" {
		return nil, cfg, nil, fmt.Errorf("no recipe directory configured; set ENIGMA_RECIPE_DIR")
	}
	recipes := cipher.NewRecipeManager(cfg.RecipeDir)
	if err := recipes.LoadRecipes(); err != nil {
		return nil, cfg, nil, fmt.Errorf("load recipes: %w", err)
	}
	logger, err := a.auditLogger(cfg)
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("configure audit logger: %w", err)
	}
	svc := service.New(service.Options{Recipes: recipes, Logger: logger})
	return svc, cfg, func() { _ = logger.Close() }, nil
}

func newRecipeSaveCmd(a *app) *cobra.Command {
	var (
		key         keyFlags
		description string
		tags        []string
		steps       []string
	)
	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Save a key and pipeline under NAME",
		Long: `Save a recipe. The key flags fall back to the configured defaults. Steps
name registered operations; enigma steps use the recipe key.

  enigmactl recipe save dawn-patrol --rotors III,I,II --positions xqf --plugboard "az qm"`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, done, err := a.recipeService()
			if err != nil {
				return err
			}
			defer done()

			recipe := &cipher.Recipe{
				Name:        args[0],
				Description: description,
				Tags:        tags,
				Key:         key.settings(cmd, cfg.Defaults.Input()),
			}
			for _, step := range steps {
				recipe.Pipeline.Operations = append(recipe.Pipeline.Operations, cipher.OperationConfig{Name: strings.TrimSpace(step)})
			}
			if err := svc.SaveRecipe(logging.NewRequestID(), recipe); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "saved recipe %s\n", recipe.Name)
			return nil
		},
	}
	key.register(cmd)
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "comma separated tags")
	cmd.Flags().StringSliceVar(&steps, "steps", defaultRecipeSteps, "pipeline steps in order")
	return cmd
}

func newRecipeListCmd(a *app) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved recipes",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, done, err := a.recipeService()
			if err != nil {
				return err
			}
			defer done()

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSTEPS\tDESCRIPTION")
			for _, r := range svc.Recipes(query) {
				names := make([]string, 0, len(r.Pipeline.Operations))
				for _, op := range r.Pipeline.Operations {
					names = append(names, op.Name)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, strings.Join(names, ","), r.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "only list recipes matching this text")
	return cmd
}

func newRecipeShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print a saved recipe as JSON",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, done, err := a.recipeService()
			if err != nil {
				return err
			}
			defer done()

			recipe, err := svc.Recipe(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(recipe)
		},
	}
}

func newRecipeDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a saved recipe",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, done, err := a.recipeService()
			if err != nil {
				return err
			}
			defer done()

			if err := svc.DeleteRecipe(logging.NewRequestID(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "deleted recipe %s\n", args[0])
			return nil
		},
	}
}
