// Package complexity holds the error kinds shared by every layer of the
// document model.
package complexity

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrDocumentTooComplex indicates that a hard capacity limit (nesting
	// depth, arena planes, text segments, undo log size) was exceeded. The
	// conversion must be aborted; there is no recovery data.
	ErrDocumentTooComplex = errors.New("document too complex")

	// ErrStructure indicates an internal invariant violation such as closing
	// a container when none is open. Correct callers never see it.
	ErrStructure = errors.New("document structure misuse")
)

// Exceeded returns an ErrDocumentTooComplex naming the limit that tripped.
func Exceeded(limit string, value int) error {
	return pkgerrors.Wrapf(ErrDocumentTooComplex, "%s limit of %d exceeded", limit, value)
}

// Misuse returns an ErrStructure with a formatted description.
func Misuse(format string, args ...interface{}) error {
	return pkgerrors.Wrapf(ErrStructure, format, args...)
}

// IsTooComplex reports whether err is, or wraps, ErrDocumentTooComplex.
func IsTooComplex(err error) bool {
	return errors.Is(err, ErrDocumentTooComplex)
}
