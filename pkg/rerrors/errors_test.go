package rerrors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(InputNotFound, "test message: %s", "value")

	if err.Code != InputNotFound {
		t.Errorf("Code = %v, want %v", err.Code, InputNotFound)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INPUT_NOT_FOUND: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ResourceError, cause, "failed to build")

	if err.Code != ResourceError {
		t.Errorf("Code = %v, want %v", err.Code, ResourceError)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

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
			err:      New(InputNotFound, "test"),
			code:     InputNotFound,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(InputNotFound, "test"),
			code:     ResourceError,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ResourceError, New(InputNotFound, "inner"), "outer"),
			code:     ResourceError,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     InputNotFound,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     InputNotFound,
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
			err:      New(ConfigError, "test"),
			expected: ConfigError,
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
			err:      New(InputNotFound, "friendly message"),
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

func TestErrorWithChainAndAlternatives(t *testing.T) {
	err := New(ResourceError, "failed to build theoryid").WithChain("plot_pdf", "theoryid")

	expected := "RESOURCE_ERROR: failed to build theoryid (required by: plot_pdf -> theoryid)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInputNotFoundRanksBySimilarity(t *testing.T) {
	err := NewInputNotFound("theoryid", []string{"theroyid", "pdf", "use_cuts"}, 2)

	if err.Code != InputNotFound {
		t.Fatalf("Code = %v, want %v", err.Code, InputNotFound)
	}
	if len(err.Alternatives) == 0 || err.Alternatives[0] != "theroyid" {
		t.Fatalf("expected closest match first, got %v", err.Alternatives)
	}
	if len(err.Alternatives) > 2 {
		t.Fatalf("expected at most 2 alternatives, got %d", len(err.Alternatives))
	}
}

func TestNewInputNotFoundNoCandidates(t *testing.T) {
	err := NewInputNotFound("theoryid", nil, 3)
	if len(err.Alternatives) != 0 {
		t.Fatalf("expected no alternatives, got %v", err.Alternatives)
	}
}
