package cipher

import (
	"context"
	"testing"
)

// mockOperation is a test implementation of Operation
type mockOperation struct {
	BaseOperation
}

func (m *mockOperation) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return input, nil
}

func newMock(name string, typ OperationType) *mockOperation {
	return &mockOperation{
		BaseOperation: BaseOperation{
			NameValue:        name,
			TypeValue:        typ,
			DescriptionValue: "Mock operation for testing",
		},
	}
}

func TestRegisterOperation(t *testing.T) {
	t.Cleanup(ResetRegistry)

	op := newMock("mock", OperationTypeFormat)
	if err := RegisterOperation(op); err != nil {
		t.Fatalf("failed to register operation: %v", err)
	}

	if err := RegisterOperation(op); err == nil {
		t.Fatal("expected error when registering duplicate operation")
	}
	if err := RegisterOperation(nil); err == nil {
		t.Fatal("expected error when registering nil operation")
	}
	if err := RegisterOperation(newMock("", OperationTypeFormat)); err == nil {
		t.Fatal("expected error when registering unnamed operation")
	}
}

func TestGetOperation(t *testing.T) {
	t.Cleanup(ResetRegistry)

	if err := RegisterOperation(newMock("test-op", OperationTypeFilter)); err != nil {
		t.Fatalf("register: %v", err)
	}

	retrieved, exists := GetOperation("test-op")
	if !exists {
		t.Fatal("operation should exist")
	}
	if retrieved.Name() != "test-op" {
		t.Errorf("expected name 'test-op', got '%s'", retrieved.Name())
	}

	if _, exists := GetOperation("non-existent"); exists {
		t.Fatal("non-existent operation should not exist")
	}
}

func TestBuiltinOperations(t *testing.T) {
	want := map[string]OperationType{
		EnigmaOperation: OperationTypeCipher,
		"letters_only":  OperationTypeFilter,
		"group5":        OperationTypeFormat,
		"ungroup":       OperationTypeFormat,
	}

	ops := ListOperations()
	if len(ops) != len(want) {
		t.Fatalf("expected %d builtin operations, got %d", len(want), len(ops))
	}
	for i := 1; i < len(ops); i++ {
		if ops[i-1].Name() >= ops[i].Name() {
			t.Fatalf("operations not sorted: %s before %s", ops[i-1].Name(), ops[i].Name())
		}
	}
	for _, op := range ops {
		typ, ok := want[op.Name()]
		if !ok {
			t.Errorf("unexpected builtin %s", op.Name())
			continue
		}
		if op.Type() != typ {
			t.Errorf("%s: expected type %s, got %s", op.Name(), typ, op.Type())
		}
		if op.Description() == "" {
			t.Errorf("%s: missing description", op.Name())
		}
	}
}

func TestListOperationsByType(t *testing.T) {
	t.Cleanup(ResetRegistry)

	if err := RegisterOperation(newMock("zz_filter", OperationTypeFilter)); err != nil {
		t.Fatalf("register: %v", err)
	}

	filters := ListOperationsByType(OperationTypeFilter)
	if len(filters) != 2 {
		t.Fatalf("expected 2 filter operations, got %d", len(filters))
	}
	if filters[0].Name() != "letters_only" || filters[1].Name() != "zz_filter" {
		t.Errorf("unexpected filters: %s, %s", filters[0].Name(), filters[1].Name())
	}

	ciphers := ListOperationsByType(OperationTypeCipher)
	if len(ciphers) != 1 || ciphers[0].Name() != EnigmaOperation {
		t.Errorf("expected only the enigma cipher operation, got %d", len(ciphers))
	}
}

func TestUnregisterAndReset(t *testing.T) {
	t.Cleanup(ResetRegistry)

	UnregisterOperation(EnigmaOperation)
	if _, ok := GetOperation(EnigmaOperation); ok {
		t.Fatal("enigma should be unregistered")
	}

	ClearRegistry()
	if n := len(ListOperations()); n != 0 {
		t.Fatalf("expected empty registry, got %d operations", n)
	}

	ResetRegistry()
	if _, ok := GetOperation(EnigmaOperation); !ok {
		t.Fatal("reset should restore enigma")
	}
}

func TestReverseOperations(t *testing.T) {
	tests := []struct {
		name    string
		reverse string
	}{
		{EnigmaOperation, EnigmaOperation},
		{"group5", "ungroup"},
		{"ungroup", "group5"},
		{"letters_only", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, ok := GetOperation(tt.name)
			if !ok {
				t.Fatalf("operation %s not registered", tt.name)
			}
			rev, ok := op.Reverse()
			if tt.reverse == "" {
				if ok {
					t.Fatalf("%s should not be reversible", tt.name)
				}
				return
			}
			if !ok {
				t.Fatalf("%s should be reversible", tt.name)
			}
			if rev.Name() != tt.reverse {
				t.Errorf("expected reverse %s, got %s", tt.reverse, rev.Name())
			}
		})
	}
}
