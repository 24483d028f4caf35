package parser

import "fmt"

// ErrParseBudgetExceeded is the sentinel a caller can match against with
// errors.Is; ParseBudgetExceededError carries the file and count context.
var ErrParseBudgetExceeded = fmt.Errorf("parse error budget exceeded")

// ParseBudgetExceededError reports that a file's malformed-line count passed
// the caller-supplied max_errors budget.
type ParseBudgetExceededError struct {
	File      string
	MaxErrors int
}

func (e *ParseBudgetExceededError) Error() string {
	return fmt.Sprintf("exceeded maximum parsing errors (%d) in %s: aborting", e.MaxErrors, e.File)
}

func (e *ParseBudgetExceededError) Is(target error) bool {
	return target == ErrParseBudgetExceeded
}
