package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeFeatureStore, cause, "failed to fetch")

	if err.Code != ErrCodeFeatureStore {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeFeatureStore)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeFeatureStore,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeFeatureStore, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeFeatureStore,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeTemplateNotFound, "test"),
			expected: ErrCodeTemplateNotFound,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFieldError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &FieldError{Field: "scoring.weights.crop", Reason: "must be finite"}
		expected := "scoring.weights.crop: must be finite"
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("without field", func(t *testing.T) {
		err := &FieldError{Reason: "catalog is empty"}
		if err.Error() != "catalog is empty" {
			t.Errorf("Error() = %v, want %v", err.Error(), "catalog is empty")
		}
	})

	t.Run("code method", func(t *testing.T) {
		err := &FieldError{}
		if err.Code() != ErrCodeConfiguration {
			t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeConfiguration)
		}
	})

	t.Run("invalid wraps field error", func(t *testing.T) {
		err := Invalid("variety.top_k", "must be >= 1, got %d", 0)
		if !Is(err, ErrCodeConfiguration) {
			t.Errorf("Is(err, CONFIGURATION) = false, want true")
		}
		var fe *FieldError
		if !errors.As(err, &fe) {
			t.Fatal("errors.As(err, *FieldError) = false, want true")
		}
		if fe.Field != "variety.top_k" {
			t.Errorf("Field = %q, want %q", fe.Field, "variety.top_k")
		}
	})
}

func TestFatal(t *testing.T) {
	if !Fatal(New(ErrCodeConfiguration, "empty catalog")) {
		t.Error("Fatal(CONFIGURATION) = false, want true")
	}
	if Fatal(New(ErrCodeDegenerateSolve, "n=0")) {
		t.Error("Fatal(DEGENERATE_SOLVE) = true, want false")
	}
	if Fatal(errors.New("plain")) {
		t.Error("Fatal(plain) = true, want false")
	}
}
