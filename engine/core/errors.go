package core

import (
	"errors"
	"fmt"
)

var (
	ErrShaderCompile  = errors.New("shader compilation failed")
	ErrResourceCreate = errors.New("gpu resource creation failed")
	ErrUnknownAsset   = errors.New("unknown asset")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrQueueFull      = errors.New("queue is full")
	ErrQueueEmpty     = errors.New("queue is empty")
)

// ContractError reports a broken caller contract: a missing required
// argument, a stale handle, a double activation and so on. Continuing after
// one would leave the renderer in an inconsistent state, so it is raised as a
// panic rather than returned.
type ContractError struct {
	Op     string
	Detail string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract violation in %s: %s", e.Op, e.Detail)
}

// Violation logs the broken contract and panics with a *ContractError.
func Violation(op string, format string, args ...interface{}) {
	err := &ContractError{Op: op, Detail: fmt.Sprintf(format, args...)}
	LogError(err.Error())
	panic(err)
}

// Errorf wraps sentinel with a formatted message so errors.Is keeps working.
func Errorf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}
