package cipher

import (
	"context"
	"errors"
	"fmt"

	"github.com/RowanDark/enigma/internal/enigma"
)

// OperationType defines the category of an operation
type OperationType string

const (
	OperationTypeCipher OperationType = "cipher"
	OperationTypeFormat OperationType = "format"
	OperationTypeFilter OperationType = "filter"
)

// Operation is a single transformation that can be applied to text
type Operation interface {
	// Name returns the unique identifier for this operation
	Name() string

	// Type returns the category of this operation
	Type() OperationType

	// Description returns a human-readable description
	Description() string

	// Execute applies the operation to the input
	Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error)

	// Reverse returns the inverse operation if available
	Reverse() (Operation, bool)
}

// OperationConfig is one step of a pipeline
type OperationConfig struct {
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// Pipeline is a chain of operations applied in order
type Pipeline struct {
	Operations []OperationConfig `json:"operations"`
	Reversible bool              `json:"reversible"`
}

// Execute runs the pipeline on the input data
func (p *Pipeline) Execute(ctx context.Context, input []byte) ([]byte, error) {
	return p.execute(ctx, input, nil)
}

func (p *Pipeline) execute(ctx context.Context, input []byte, key *enigma.SettingsInput) ([]byte, error) {
	result := input
	var err error

	for i, opConfig := range p.Operations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		op, exists := GetOperation(opConfig.Name)
		if !exists {
			return nil, fmt.Errorf("unknown operation at step %d: %s", i, opConfig.Name)
		}

		params := opConfig.Parameters
		if key != nil && op.Type() == OperationTypeCipher {
			params = withKey(params, *key)
		}

		result, err = op.Execute(ctx, result, params)
		if err != nil {
			return nil, fmt.Errorf("operation %s failed at step %d: %w", opConfig.Name, i, err)
		}
	}

	return result, nil
}

// Reverse creates a reversed pipeline if all operations are reversible
func (p *Pipeline) Reverse() (*Pipeline, error) {
	if !p.Reversible {
		return nil, fmt.Errorf("pipeline is not reversible")
	}

	reversed := &Pipeline{
		Operations: make([]OperationConfig, len(p.Operations)),
		Reversible: true,
	}

	for i, opConfig := range p.Operations {
		op, exists := GetOperation(opConfig.Name)
		if !exists {
			return nil, fmt.Errorf("unknown operation: %s", opConfig.Name)
		}

		reverseOp, ok := op.Reverse()
		if !ok {
			return nil, fmt.Errorf("operation %s is not reversible", opConfig.Name)
		}

		reversed.Operations[len(p.Operations)-1-i] = OperationConfig{
			Name:       reverseOp.Name(),
			Parameters: opConfig.Parameters,
		}
	}

	return reversed, nil
}

// Recipe is a named pipeline together with the key its enigma steps use
// when a step carries no key of its own.
type Recipe struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Tags        []string             `json:"tags,omitempty"`
	Key         enigma.SettingsInput `json:"key"`
	Pipeline    Pipeline             `json:"pipeline"`
	CreatedAt   string               `json:"created_at"`
	UpdatedAt   string               `json:"updated_at"`
}

// ErrInvalidRecipe is returned for a recipe without a name or with a step
// naming an unregistered operation.
var ErrInvalidRecipe = errors.New("invalid recipe")

// Validate checks the recipe key and that every step names a known operation.
func (r *Recipe) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidRecipe)
	}
	if _, err := enigma.ParseSettings(r.Key); err != nil {
		return fmt.Errorf("recipe %s: %w", r.Name, err)
	}
	for i, step := range r.Pipeline.Operations {
		if _, ok := GetOperation(step.Name); !ok {
			return fmt.Errorf("%w %s: unknown operation at step %d: %s", ErrInvalidRecipe, r.Name, i, step.Name)
		}
	}
	return nil
}

// Execute runs the recipe pipeline. An empty pipeline runs the enigma
// operation alone.
func (r *Recipe) Execute(ctx context.Context, input []byte) ([]byte, error) {
	pipeline := r.Pipeline
	if len(pipeline.Operations) == 0 {
		pipeline.Operations = []OperationConfig{{Name: EnigmaOperation}}
	}
	return pipeline.execute(ctx, input, &r.Key)
}

// BaseOperation provides common functionality for operations
type BaseOperation struct {
	NameValue        string
	TypeValue        OperationType
	DescriptionValue string
	ReverseOp        Operation
}

func (b *BaseOperation) Name() string {
	return b.NameValue
}

func (b *BaseOperation) Type() OperationType {
	return b.TypeValue
}

func (b *BaseOperation) Description() string {
	return b.DescriptionValue
}

func (b *BaseOperation) Reverse() (Operation, bool) {
	if b.ReverseOp == nil {
		return nil, false
	}
	return b.ReverseOp, true
}
