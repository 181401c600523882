package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestCommonErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrInvalidConfiguration", ErrInvalidConfiguration, "invalid configuration"},
		{"ErrShutdown", ErrShutdown, "queue is shut down"},
		{"ErrCycle", ErrCycle, "dependency cycle"},
		{"ErrAlreadyStarted", ErrAlreadyStarted, "operation already started"},
		{"ErrAlreadySubmitted", ErrAlreadySubmitted, "operation already submitted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatal("error should not be nil")
			}
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConstructionError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ConstructionError
		want string
	}{
		{
			name: "without hint",
			err: &ConstructionError{
				Module: "queue",
				Field:  "maxConcurrent",
				Value:  -2,
				Reason: "must be positive",
			},
			want: "queue: invalid maxConcurrent=-2 (must be positive)",
		},
		{
			name: "with hint",
			err: &ConstructionError{
				Module: "operation",
				Field:  "work",
				Value:  nil,
				Reason: "cannot be nil",
				Hint:   "provide a Work implementation",
			},
			want: "operation: invalid work=<nil> (cannot be nil) - provide a Work implementation",
		},
		{
			name: "string value",
			err: &ConstructionError{
				Module: "schedule",
				Field:  "cron",
				Value:  "",
				Reason: "cannot be empty",
			},
			want: "schedule: invalid cron= (cannot be empty)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConstructionError_Unwrap(t *testing.T) {
	cerr := NewConstructionError("test", "field", 0, "test")

	if unwrapped := cerr.Unwrap(); unwrapped != ErrInvalidConfiguration {
		t.Errorf("Unwrap() = %v, want ErrInvalidConfiguration", unwrapped)
	}

	if !errors.Is(cerr, ErrInvalidConfiguration) {
		t.Error("ConstructionError should wrap ErrInvalidConfiguration by default")
	}
}

func TestConstructionError_WithCause(t *testing.T) {
	cerr := NewConstructionError("operation", "dependency", "op-2", "would create a cycle").
		WithCause(ErrCycle)

	if !errors.Is(cerr, ErrCycle) {
		t.Error("ConstructionError should wrap the cause set via WithCause")
	}
	if errors.Is(cerr, ErrInvalidConfiguration) {
		t.Error("WithCause should replace the default sentinel")
	}
}

func TestConstructionError_WithHint(t *testing.T) {
	err := NewConstructionError("test", "field", 0, "invalid").
		WithHint("try using a positive value")

	if err.Hint != "try using a positive value" {
		t.Errorf("Hint = %q, want %q", err.Hint, "try using a positive value")
	}

	// Should return same instance for chaining
	result := err.WithHint("new hint")
	if result != err {
		t.Error("WithHint should return the same instance")
	}
}

func TestIsConstructionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"construction error", NewConstructionError("test", "field", 0, "test"), true},
		{"standard error", errors.New("test"), false},
		{"sentinel", ErrCycle, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConstructionError(tt.err); got != tt.want {
				t.Errorf("IsConstructionError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	err := NewConstructionError("mymodule", "myfield", 42, "must be less than 10").
		WithHint("use a value between 0 and 10")

	msg := err.Error()

	expectedParts := []string{"mymodule", "myfield", "42", "must be less than 10", "use a value between 0 and 10"}
	for _, part := range expectedParts {
		if !strings.Contains(msg, part) {
			t.Errorf("error message should contain %q, got %q", part, msg)
		}
	}
}
