// Package hosterr wraps host-boundary failures: the ones that originate
// outside a running script (a file couldn't be read, a native library
// wouldn't load) rather than inside one. In-script failures — parse errors,
// undefined names, type errors tied to a line — stay on
// sentra/internal/errors.SentraError, which already carries the source
// position that these never have.
package hosterr

import "github.com/pkg/errors"

// Wrap attaches context to err without discarding it.
func Wrap(err error, context string) error {
	return errors.Wrap(err, context)
}

// Wrapf is Wrap with a formatted context string.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
