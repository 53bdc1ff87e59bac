package lobby

import "github.com/cockroachdb/errors"

var (
	// ErrNotApplicable marks a command that refers to state that no longer
	// exists or does not allow it. It is expected during connect/close races
	// and is never reported to the client.
	ErrNotApplicable = errors.New("not applicable")

	// ErrMalformed marks an inbound frame that could not be decoded or
	// failed shape validation.
	ErrMalformed = errors.New("malformed frame")
)

func notApplicable(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNotApplicable, format, args...)
}

func malformed(err error, format string, args ...interface{}) error {
	if err == nil {
		return errors.Wrapf(ErrMalformed, format, args...)
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrMalformed)
}

// IsNotApplicable reports whether err is a benign no-op outcome.
func IsNotApplicable(err error) bool {
	return errors.Is(err, ErrNotApplicable)
}

// IsMalformed reports whether err came from an undecodable or invalid frame.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}
