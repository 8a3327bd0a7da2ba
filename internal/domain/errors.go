package domain

import (
	"errors"
	"fmt"
)

// RuleError reports a violated game rule. It always indicates a precondition
// failure of the attempted action: retrying without the player correcting
// their input cannot succeed.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string {
	return e.Reason
}

// NewRuleError builds a rule violation with a fixed reason.
func NewRuleError(reason string) error {
	return &RuleError{Reason: reason}
}

func ruleErrorf(format string, args ...any) error {
	return &RuleError{Reason: fmt.Sprintf(format, args...)}
}

// IsRuleError reports whether err is a game rule violation.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}
