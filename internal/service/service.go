// Package service is the one path every surface takes to the machine. It
// builds a fresh machine per request and records the span, metrics and audit
// events for it.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/RowanDark/enigma/internal/cipher"
	"github.com/RowanDark/enigma/internal/enigma"
	"github.com/RowanDark/enigma/internal/logging"
	"github.com/RowanDark/enigma/internal/observability/metrics"
	"github.com/RowanDark/enigma/internal/observability/tracing"
)

// Surface labels.
const (
	SurfaceForm   = "form"
	SurfaceJSON   = "json"
	SurfaceCipher = "cipher"
	SurfaceGRPC   = "grpc"
	SurfaceCLI    = "cli"
)

// Options configures a Service.
type Options struct {
	Recipes *cipher.RecipeManager
	Logger  *logging.AuditLogger
}

// Service processes messages and manages recipes on behalf of the HTTP,
// gRPC and command line front-ends.
type Service struct {
	recipes *cipher.RecipeManager
	logger  *logging.AuditLogger
}

// New returns a Service. A nil recipe manager is replaced by an in-memory
// one and a nil logger discards events.
func New(opts Options) *Service {
	s := &Service{recipes: opts.Recipes, logger: opts.Logger}
	if s.recipes == nil {
		s.recipes = cipher.NewRecipeManager("")
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	return s
}

// Result is the outcome of one processed message.
type Result struct {
	Output string
	// Windows holds the rotor letters after processing. Empty for recipes,
	// whose pipelines may build several machines.
	Windows string
	Letters int
}

// Process builds a machine from in and runs text through it.
func (s *Service) Process(ctx context.Context, surface, requestID string, in enigma.SettingsInput, text string) (Result, error) {
	ctx, span := tracing.StartSpan(ctx, "enigma.process", tracing.WithAttributes(map[string]any{
		"enigma.surface":   surface,
		"enigma.rotors":    strings.Join(in.Rotors, ","),
		"enigma.reflector": in.Reflector,
	}))
	start := time.Now()

	res, err := s.process(ctx, surface, requestID, in, text)
	s.observe(ctx, span, surface, requestID, start, res, err)
	return res, err
}

func (s *Service) process(ctx context.Context, surface, requestID string, in enigma.SettingsInput, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	settings, err := enigma.ParseSettings(in)
	if err != nil {
		return Result{}, err
	}
	m, err := enigma.New(settings)
	if err != nil {
		return Result{}, err
	}
	s.logger.Record(logging.EventMachineConfigured, requestID, map[string]any{
		"surface":   surface,
		"rotors":    strings.Join(in.Rotors, ","),
		"reflector": string(settings.Reflector),
		"positions": in.Positions,
		"rings":     in.Rings,
		"plugboard": in.Plugboard,
	})
	out := m.Process(text)
	return Result{Output: out, Windows: m.Windows(), Letters: CountLetters(text)}, nil
}

// RunRecipe runs text through the stored recipe name.
func (s *Service) RunRecipe(ctx context.Context, surface, requestID, name, text string) (Result, error) {
	ctx, span := tracing.StartSpan(ctx, "enigma.recipe", tracing.WithAttributes(map[string]any{
		"enigma.surface": surface,
		"enigma.recipe":  name,
	}))
	start := time.Now()

	var res Result
	recipe, ok := s.recipes.GetRecipe(name)
	err := fmt.Errorf("%w: %s", cipher.ErrRecipeNotFound, name)
	if ok {
		var out []byte
		out, err = recipe.Execute(ctx, []byte(text))
		if err == nil {
			res = Result{Output: string(out), Letters: CountLetters(text)}
		}
	}
	s.observe(ctx, span, surface, requestID, start, res, err)
	return res, err
}

func (s *Service) observe(ctx context.Context, span trace.Span, surface, requestID string, start time.Time, res Result, err error) {
	outcome := Outcome(err)
	metrics.ObserveMessage(ctx, surface, outcome, res.Letters, time.Since(start))
	if errors.Is(err, enigma.ErrInvalidConfig) {
		reason := enigma.ReasonOf(err)
		metrics.RecordConfigError(surface, reason)
		s.logger.Reject(logging.EventConfigRejected, requestID, auditError(err), map[string]any{
			"surface": surface,
			"reason":  reason,
		})
	} else {
		meta := map[string]any{
			"surface": surface,
			"outcome": outcome,
			"letters": res.Letters,
		}
		if err != nil {
			s.logger.Reject(logging.EventMessageProcessed, requestID, err, meta)
		} else {
			s.logger.Record(logging.EventMessageProcessed, requestID, meta)
		}
	}
	span.SetAttributes(attribute.Int("enigma.letters", res.Letters))
	tracing.Finish(span, err)
}

// auditError drops the offending value from configuration errors, since it
// may be part of a key.
func auditError(err error) error {
	var cfgErr *enigma.ConfigError
	if errors.As(err, &cfgErr) {
		return fmt.Errorf("%s: %s", cfgErr.Field, cfgErr.Reason())
	}
	return err
}

// SaveRecipe validates and stores recipe.
func (s *Service) SaveRecipe(requestID string, recipe *cipher.Recipe) error {
	if err := s.recipes.SaveRecipe(recipe); err != nil {
		s.logger.Reject(logging.EventRecipeSaved, requestID, auditError(err), nil)
		return err
	}
	s.logger.Record(logging.EventRecipeSaved, requestID, map[string]any{
		"recipe": recipe.Name,
		"steps":  len(recipe.Pipeline.Operations),
	})
	return nil
}

// DeleteRecipe removes the named recipe.
func (s *Service) DeleteRecipe(requestID, name string) error {
	if err := s.recipes.DeleteRecipe(name); err != nil {
		return err
	}
	s.logger.Record(logging.EventRecipeDeleted, requestID, map[string]any{"recipe": name})
	return nil
}

// Recipe returns the named recipe.
func (s *Service) Recipe(name string) (*cipher.Recipe, error) {
	recipe, ok := s.recipes.GetRecipe(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", cipher.ErrRecipeNotFound, name)
	}
	return recipe, nil
}

// Recipes lists stored recipes, filtered by query when it is not empty.
func (s *Service) Recipes(query string) []*cipher.Recipe {
	if strings.TrimSpace(query) == "" {
		return s.recipes.ListRecipes()
	}
	return s.recipes.SearchRecipes(query)
}

// Outcome classifies err for the enigma_messages_total outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, enigma.ErrInvalidConfig), errors.Is(err, cipher.ErrInvalidRecipe):
		return metrics.OutcomeConfigError
	case errors.Is(err, enigma.ErrInvalidInput), errors.Is(err, cipher.ErrRecipeNotFound):
		return metrics.OutcomeInputError
	default:
		return metrics.OutcomeInternalError
	}
}

// CountLetters returns the number of runes in text that step the rotors.
func CountLetters(text string) int {
	n := 0
	for _, r := range strings.ToLower(text) {
		if enigma.IsLetter(r) {
			n++
		}
	}
	return n
}
