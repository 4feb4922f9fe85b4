/*package errs holds the error kinds shared by every gogrid package.

Call sites wrap one of the sentinels below with context, so callers should
test for a kind with errors.Is rather than comparing error strings.
*/
package errs

import (
	"github.com/pkg/errors"
)

var (
	// ErrValidation marks malformed or inconsistent input shapes.
	ErrValidation = errors.New("validation error")
	// ErrEmptyInput marks an operation that needs at least one valid sample.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidGrid marks a malformed grid specification.
	ErrInvalidGrid = errors.New("invalid grid")
)

// Validation returns an ErrValidation annotated with a formatted message.
func Validation(format string, args ...interface{}) error {
	return errors.Wrapf(ErrValidation, format, args...)
}

// EmptyInput returns an ErrEmptyInput annotated with a formatted message.
func EmptyInput(format string, args ...interface{}) error {
	return errors.Wrapf(ErrEmptyInput, format, args...)
}

// InvalidGrid returns an ErrInvalidGrid annotated with a formatted message.
func InvalidGrid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidGrid, format, args...)
}
