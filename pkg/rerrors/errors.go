// Package rerrors provides the structured error type shared by the config
// resolver, the resource builder, the executor, and the CLI.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across every resolution and execution stage
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages, including required-by chains and
//     similarity-ranked alternatives for missing input keys
//   - Error wrapping with context preservation
//
// # Usage
//
//	err := rerrors.New(rerrors.InputNotFound, "key %q not found", name)
//	if rerrors.Is(err, rerrors.InputNotFound) {
//	    // Handle missing-input error
//	}
//
//	// Wrap existing errors
//	err := rerrors.Wrap(rerrors.ResourceError, origErr, "failed to build %s", name)
package rerrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the resolution and execution pipeline.
const (
	// BadInputType is returned when a value in the input document does not
	// match the type a handler declared for it.
	BadInputType Code = "BAD_INPUT_TYPE"

	// InputNotFound is returned when a key required, directly or
	// transitively, by a target is absent from the input document.
	InputNotFound Code = "INPUT_NOT_FOUND"

	// ConfigError is returned for malformed input document structure, such
	// as a bad actions_ tree or an unresolvable from_ reference.
	ConfigError Code = "CONFIG_ERROR"

	// ResourceError is a generic resolver failure carrying a required-by
	// chain back to the target that triggered it.
	ResourceError Code = "RESOURCE_ERROR"

	// ResourceNotUnderstood is returned when extra-args are supplied for a
	// key that does not name a registered provider.
	ResourceNotUnderstood Code = "RESOURCE_NOT_UNDERSTOOD"

	// CycleError is returned when an operation would make the dependency
	// graph cyclic.
	CycleError Code = "CYCLE_ERROR"

	// CheckError is returned when a provider's registered check rejects the
	// resolved arguments.
	CheckError Code = "CHECK_ERROR"

	// TemplateError is returned for template syntax failures, such as an
	// unbalanced with/endwith block or an unparsable tag.
	TemplateError Code = "TEMPLATE_ERROR"

	// Internal is used for unexpected, non-user-facing failures.
	Internal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and an optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)

	// RequiredBy is the chain of target/requirement names that led to this
	// error, outermost first. Populated by [ResourceError] and
	// [InputNotFound] failures as they propagate back up the call stack.
	RequiredBy []string

	// Alternatives holds similarity-ranked candidate names. Populated by
	// [NewInputNotFound] when the input document has keys resembling the one
	// that was missing.
	Alternatives []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if len(e.RequiredBy) > 0 {
		fmt.Fprintf(&b, " (required by: %s)", strings.Join(e.RequiredBy, " -> "))
	}
	if len(e.Alternatives) > 0 {
		fmt.Fprintf(&b, " (did you mean: %s?)", strings.Join(e.Alternatives, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// WithChain returns a copy of e with requiredBy prepended to any chain it
// already carries, so each frame on the way back up can record its own name
// without needing to know the full depth in advance.
func (e *Error) WithChain(requiredBy ...string) *Error {
	out := *e
	out.RequiredBy = append(append([]string{}, requiredBy...), out.RequiredBy...)
	return &out
}

// NewInputNotFound builds an InputNotFound error for name, ranking
// candidates (typically the input document's sibling keys) by edit distance
// and keeping up to maxAlternatives of the closest matches.
//
// Hand-rolled rather than imported: no example repo or common ecosystem
// package in the retrieval pack supplies string-similarity ranking for this
// narrow purpose (see DESIGN.md).
func NewInputNotFound(name string, candidates []string, maxAlternatives int) *Error {
	type scored struct {
		name string
		dist int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scored{c, levenshtein(name, c)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].dist != ranked[j].dist {
			return ranked[i].dist < ranked[j].dist
		}
		return ranked[i].name < ranked[j].name
	})

	var alts []string
	for _, c := range ranked {
		if len(alts) >= maxAlternatives {
			break
		}
		alts = append(alts, c.name)
	}

	return &Error{
		Code:         InputNotFound,
		Message:      fmt.Sprintf("%q is required but was not found in the input document", name),
		Alternatives: alts,
	}
}

// levenshtein computes the edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
