package style

import "fmt"

// Element kinds, as used in errors and mapping lookups.
const (
	KindNode = "node"
	KindLink = "link"
)

// ElementError reports an expression that failed while styling one element. Resolution
// stops at the first such error.
type ElementError struct {
	Kind       string
	ID         string
	Expression string
	Err        error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("failed to style %s %q: expression %q: %v", e.Kind, e.ID, e.Expression, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// RuleError reports an invalid expression found by Validate.
type RuleError struct {
	Rule       int
	TargetType string
	Expression string
	Err        error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("style %d (%s): expression %q: %v", e.Rule+1, e.TargetType, e.Expression, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}
