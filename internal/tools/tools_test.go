package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

// noopHandler is a handler that records the raw arguments it received.
func noopHandler(got *json.RawMessage) Handler {
	return func(_ context.Context, args json.RawMessage) ([]string, error) {
		if got != nil {
			*got = args
		}
		return []string{"ok"}, nil
	}
}

func TestRegistryRegisterRejectsEmptyName(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(Tool{Name: "", Handler: noopHandler(nil)}); err == nil {
		t.Fatal("registering a tool with an empty name succeeded, want error")
	}
}

func TestRegistryRegisterRejectsNilHandler(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(Tool{Name: "broken"}); err == nil {
		t.Fatal("registering a tool without a handler succeeded, want error")
	}
}

func TestRegistryRegisterRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(Tool{Name: "dup", Handler: noopHandler(nil)}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := r.Register(Tool{Name: "dup", Handler: noopHandler(nil)}); err == nil {
		t.Fatal("second registration of the same name succeeded, want error")
	}
}

func TestRegistryDescriptorsPreserveRegistrationOrder(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	names := []string{"charlie", "alpha", "bravo"}
	for _, name := range names {
		if err := r.Register(Tool{Name: name, Handler: noopHandler(nil)}); err != nil {
			t.Fatalf("register %q: %v", name, err)
		}
	}

	descs := r.Descriptors()
	if len(descs) != len(names) {
		t.Fatalf("got %d descriptors, want %d", len(descs), len(names))
	}
	for i, want := range names {
		if descs[i].Name != want {
			t.Errorf("descriptor %d is %q, want %q", i, descs[i].Name, want)
		}
	}
}

func TestRegistryInvokeUnknownTool(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.Invoke(context.Background(), "no-such-tool", nil)

	var unknownErr *UnknownToolError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("got error %v, want *UnknownToolError", err)
	}
	if unknownErr.Name != "no-such-tool" {
		t.Errorf("error names tool %q, want %q", unknownErr.Name, "no-such-tool")
	}
}

func TestRegistryInvokeNilArgsBecomeEmptyObject(t *testing.T) {
	t.Parallel()

	var got json.RawMessage
	r := NewRegistry()
	if err := r.Register(Tool{Name: "echo", Handler: noopHandler(&got)}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := r.Invoke(context.Background(), "echo", nil); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("handler received %q, want %q", got, "{}")
	}
}
