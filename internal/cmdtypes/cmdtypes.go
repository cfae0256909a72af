// Package cmdtypes provides shared types for the cmd package and its sub-packages.
// It is separate from internal/cmd to avoid import cycles between internal/cmd
// and its sub-packages (internal/cmd/config).
package cmdtypes

import (
	"github.com/cosbuild/composer/internal/config"
	oerrors "github.com/cosbuild/composer/internal/errors"
)

// GlobalConfig holds CLI-wide configuration resolved during PersistentPreRunE.
// It is populated once at startup and passed explicitly into every sub-command
// constructor.
type GlobalConfig struct {
	Config     *config.Config   // loaded config file, empty when absent
	ConfigPath string           // resolved --config path
	Resolved   *config.Resolved // flag > env > config > default
	Verbose    bool
}

// Exit codes, aliases of the internal/errors constants.
const (
	ExitSuccess         = oerrors.ExitSuccess
	ExitGeneralError    = oerrors.ExitGeneralError
	ExitValidationError = oerrors.ExitValidationError
	ExitNotFound        = oerrors.ExitNotFound
)

// ExitError is a type alias to internal/errors.ExitError.
type ExitError = oerrors.ExitError

// NewExitError wraps err with the exit code derived from it.
func NewExitError(err error) *ExitError {
	return &ExitError{Code: oerrors.ExitCodeFromError(err), Err: err}
}
