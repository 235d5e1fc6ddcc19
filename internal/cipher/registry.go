package cipher

import (
	"fmt"
	"sort"
	"sync"
)

// Global operation registry
var (
	operationsRegistry = make(map[string]Operation)
	registryMu         sync.RWMutex
)

func init() {
	registerBuiltins()
}

// RegisterOperation adds an operation to the global registry
func RegisterOperation(op Operation) error {
	if op == nil {
		return fmt.Errorf("cannot register nil operation")
	}

	name := op.Name()
	if name == "" {
		return fmt.Errorf("operation name cannot be empty")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := operationsRegistry[name]; exists {
		return fmt.Errorf("operation %s is already registered", name)
	}

	operationsRegistry[name] = op
	return nil
}

// GetOperation retrieves an operation from the registry by name
func GetOperation(name string) (Operation, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	op, exists := operationsRegistry[name]
	return op, exists
}

// ListOperations returns all registered operations sorted by name
func ListOperations() []Operation {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ops := make([]Operation, 0, len(operationsRegistry))
	for _, op := range operationsRegistry {
		ops = append(ops, op)
	}

	sort.Slice(ops, func(i, j int) bool {
		return ops[i].Name() < ops[j].Name()
	})

	return ops
}

// ListOperationsByType returns operations of one category sorted by name
func ListOperationsByType(opType OperationType) []Operation {
	var ops []Operation
	for _, op := range ListOperations() {
		if op.Type() == opType {
			ops = append(ops, op)
		}
	}
	return ops
}

// UnregisterOperation removes an operation from the registry (mainly for testing)
func UnregisterOperation(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	delete(operationsRegistry, name)
}

// ClearRegistry removes all operations (mainly for testing)
func ClearRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()

	operationsRegistry = make(map[string]Operation)
}

// ResetRegistry restores the built-in operations and drops everything else.
func ResetRegistry() {
	ClearRegistry()
	registerBuiltins()
}

func registerBuiltins() {
	machine := &EnigmaOp{
		BaseOperation: BaseOperation{
			NameValue:        EnigmaOperation,
			TypeValue:        OperationTypeCipher,
			DescriptionValue: "Encipher or decipher with a three-rotor Enigma (self-inverse)",
		},
	}
	machine.ReverseOp = machine

	lettersOnly := &LettersOnlyOp{
		BaseOperation: BaseOperation{
			NameValue:        "letters_only",
			TypeValue:        OperationTypeFilter,
			DescriptionValue: "Drop every character except letters a-z",
		},
	}

	group := &Group5Op{
		BaseOperation: BaseOperation{
			NameValue:        "group5",
			TypeValue:        OperationTypeFormat,
			DescriptionValue: "Write letters in groups of five",
		},
	}
	ungroup := &UngroupOp{
		BaseOperation: BaseOperation{
			NameValue:        "ungroup",
			TypeValue:        OperationTypeFormat,
			DescriptionValue: "Remove whitespace between letter groups",
		},
	}
	group.ReverseOp = ungroup
	ungroup.ReverseOp = group

	for _, op := range []Operation{machine, lettersOnly, group, ungroup} {
		if err := RegisterOperation(op); err != nil {
			panic(err)
		}
	}
}
