package dq

import (
	"errors"
	"fmt"
)

// RuleDefinitionError reports a malformed rule document at load time. A load
// that fails with this error leaves the catalog untouched; partial loads do
// not happen.
type RuleDefinitionError struct {
	Message string
	Cause   error
}

func (e *RuleDefinitionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rule definition error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("rule definition error: %s", e.Message)
}

func (e *RuleDefinitionError) Unwrap() error {
	return e.Cause
}

// NewRuleDefinitionError creates a RuleDefinitionError
func NewRuleDefinitionError(message string, cause error) *RuleDefinitionError {
	return &RuleDefinitionError{Message: message, Cause: cause}
}

// IsRuleDefinitionError reports whether err is (or wraps) a RuleDefinitionError
func IsRuleDefinitionError(err error) bool {
	var rde *RuleDefinitionError
	return errors.As(err, &rde)
}

// ValidatorFault reports that a validator could not interpret a rule's
// parameters at evaluation time. It aborts the whole validation run;
// data-shape conditions (absent columns, unparseable values, empty datasets)
// never produce it.
type ValidatorFault struct {
	RuleName string
	Message  string
}

func (e *ValidatorFault) Error() string {
	return fmt.Sprintf("validator fault in rule %q: %s", e.RuleName, e.Message)
}

// NewValidatorFault creates a ValidatorFault for the given rule
func NewValidatorFault(rule Rule, format string, args ...interface{}) *ValidatorFault {
	return &ValidatorFault{
		RuleName: rule.Name,
		Message:  fmt.Sprintf(format, args...),
	}
}

// IsValidatorFault reports whether err is (or wraps) a ValidatorFault
func IsValidatorFault(err error) bool {
	var vf *ValidatorFault
	return errors.As(err, &vf)
}
