package worker

import (
	"errors"
	"fmt"
)

// PanicError indicates a task panicked during a run.
// The scheduler recovers it so the timer keeps firing.
type PanicError struct {
	Task       string
	Value      any
	StackTrace string
}

func (e PanicError) Error() string {
	return fmt.Sprintf("task %s panicked: %v", e.Task, e.Value)
}

// IsPanic returns true if the error indicates a panic occurred.
func IsPanic(err error) bool {
	var panicErr PanicError
	return errors.As(err, &panicErr)
}
