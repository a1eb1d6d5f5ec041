// internal/app/settings/errors.go
package settings

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEnvironment is matched (via errors.Is) by every
// *UnknownEnvironmentError returned from Resolve.
var ErrUnknownEnvironment = errors.New("unknown environment")

// ErrInvalidSettings is matched by every *InvalidSettingsError.
var ErrInvalidSettings = errors.New("invalid settings")

// UnknownEnvironmentError names the environment that was asked for and the
// environments that exist.
type UnknownEnvironmentError struct {
	Name  string
	Known []string
}

func (e *UnknownEnvironmentError) Error() string {
	return fmt.Sprintf("unknown environment %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

func (e *UnknownEnvironmentError) Is(target error) bool {
	return target == ErrUnknownEnvironment
}

// InvalidSettingsError lists every problem Validate found.
type InvalidSettingsError struct {
	Problems []string
}

func (e *InvalidSettingsError) Error() string {
	return "invalid settings: " + strings.Join(e.Problems, "; ")
}

func (e *InvalidSettingsError) Is(target error) bool {
	return target == ErrInvalidSettings
}
