// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is an error with context for user-facing messages.
	//
	// Build one with ErrorContext:
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("load topology").
	//		WithResource("./pyleus_topology.yaml").
	//		WithSuggestion("Check the YAML indentation").
	//		Wrap(cause).
	//		BuildError()
	ActionableError struct {
		// Operation is what was being attempted, as a verb phrase.
		Operation string
		// Resource is the file, module or component involved (optional).
		Resource string
		// Suggestions are hints for fixing the problem (optional).
		Suggestions []string
		// Cause is the underlying error (optional).
		Cause error
	}

	// ErrorContext accumulates the fields of an ActionableError.
	ErrorContext struct {
		draft ActionableError
	}
)

// NewErrorContext creates a new ErrorContext builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WrapWithContext attaches an operation and resource to err without
// suggestions. It returns nil for a nil err.
func WrapWithContext(err error, operation, resource string) error {
	if err == nil {
		return nil
	}
	return NewErrorContext().WithOperation(operation).WithResource(resource).Wrap(err).BuildError()
}

// Error returns "failed to <operation>: <resource>: <cause>".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format returns the message followed by bulleted suggestions. In verbose
// mode the numbered cause chain is appended.
func (e *ActionableError) Format(verbose bool) string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n")
	}
	for _, s := range e.Suggestions {
		fmt.Fprintf(&sb, "\n  • %s", s)
	}

	if !verbose || e.Cause == nil {
		return sb.String()
	}
	sb.WriteString("\n\nError chain:")
	for i, err := range causeChain(e.Cause) {
		fmt.Fprintf(&sb, "\n  %d. %s", i+1, err)
	}
	return sb.String()
}

// causeChain follows single-error Unwrap links starting at err.
func causeChain(err error) []error {
	var chain []error
	for ; err != nil; err = errors.Unwrap(err) {
		chain = append(chain, err)
	}
	return chain
}

// FormatError formats any error for display, using Format for ActionableErrors.
func FormatError(err error, verbose bool) string {
	var ae *ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// WithOperation sets the operation being performed.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.draft.Operation = op
	return c
}

// WithResource sets the resource involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.draft.Resource = res
	return c
}

// WithSuggestion adds a suggestion. It can be called repeatedly.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.draft.Suggestions = append(c.draft.Suggestions, sug)
	return c
}

// Wrap sets the underlying cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.draft.Cause = err
	return c
}

// Build returns a copy of the accumulated error, or nil when no operation
// was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.draft.Operation == "" {
		return nil
	}
	ae := c.draft
	ae.Suggestions = append([]string(nil), c.draft.Suggestions...)
	return &ae
}

// BuildError is Build returned as an error interface, nil when Build is nil.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
