package services

import (
	"errors"
	"fmt"
)

// Rollback failures. All of these are terminal for the attempt: nothing is
// retried, the caller decides whether to try again.
var (
	ErrLogNotFound        = errors.New("log entry not found")
	ErrMissingTargetID    = errors.New("log entry carries no usable target id")
	ErrMissingRestoreData = errors.New("log entry carries no before state to restore")
	ErrBatchCommitFailed  = errors.New("atomic batch commit failed")
)

// NotReversibleError marks an action that must never be rolled back, either
// because it is itself a rollback or because its effect is open-ended.
type NotReversibleError struct {
	Tag    string
	Reason string
}

func (e *NotReversibleError) Error() string {
	return fmt.Sprintf("action %q is not reversible: %s", e.Tag, e.Reason)
}

// UnsupportedActionError marks a tag outside the known action taxonomy.
type UnsupportedActionError struct {
	Tag string
}

func (e *UnsupportedActionError) Error() string {
	return fmt.Sprintf("unsupported action %q", e.Tag)
}
