package executor

import (
	"errors"
	"fmt"
	"strings"

	"field-assembler/internal/common"
)

// ConversionPolicy decides what happens when a looked-up value cannot be
// converted into its target property.
type ConversionPolicy int

const (
	// ConversionAbort returns the first failure.
	ConversionAbort ConversionPolicy = iota
	// ConversionCollect merges everything it can and returns all failures together.
	ConversionCollect
	// ConversionIgnore logs failures and carries on.
	ConversionIgnore
)

// String returns the policy name.
func (p ConversionPolicy) String() string {
	switch p {
	case ConversionAbort:
		return "abort"
	case ConversionCollect:
		return "collect"
	case ConversionIgnore:
		return "ignore"
	default:
		return common.UnknownStr
	}
}

// ParseConversionPolicy parses a policy name; "" yields ConversionAbort.
func ParseConversionPolicy(name string) (ConversionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "abort":
		return ConversionAbort, nil
	case "collect":
		return ConversionCollect, nil
	case "ignore":
		return ConversionIgnore, nil
	default:
		return ConversionAbort, fmt.Errorf("unknown conversion policy %q", name)
	}
}

// ContainerError wraps a failed container call.
type ContainerError struct {
	Namespace string
	Err       error
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("container %q: %v", e.Namespace, e.Err)
}

func (e *ContainerError) Unwrap() error { return e.Err }

// MergeError wraps a failed merge of one operation into one target.
type MergeError struct {
	Operation string
	Target    string
	Err       error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge %s into %s: %v", e.Operation, e.Target, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

// ErrNoOperations is returned by the template when it cannot tell which
// operations govern the targets.
var ErrNoOperations = errors.New("no operations")
