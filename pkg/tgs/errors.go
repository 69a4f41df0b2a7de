package tgs

import (
	"errors"
	"fmt"
)

// Kind classifies the errors the core can raise (§7).
type Kind int

const (
	KindUnsupportedCrossRealm Kind = iota
	KindPreconditionViolation
	KindKdcRefused
	KindKdcError
	KindNoServiceCreds
	KindReferralLoop
	KindIo
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedCrossRealm:
		return "unsupported-cross-realm"
	case KindPreconditionViolation:
		return "precondition-violation"
	case KindKdcRefused:
		return "kdc-refused"
	case KindKdcError:
		return "kdc-error"
	case KindNoServiceCreds:
		return "no-service-creds"
	case KindReferralLoop:
		return "referral-loop"
	case KindIo:
		return "io"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is the single error type the core raises, per §7's taxonomy. It
// wraps an optional cause so callers can still unwrap to the underlying
// transport or decode error.
type Error struct {
	Kind   Kind
	Detail string
	Code   int32 // populated for KindKdcError: the KDC's error-code
	Cause  error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Cause }

// ErrorKind reports the Kind of err if it is, or wraps, a *Error.
func ErrorKind(err error) (Kind, bool) {
	var tErr *Error
	if errors.As(err, &tErr) {
		return tErr.Kind, true
	}
	return 0, false
}

func newErr(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func wrapErr(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}

// ErrNotReached is returned internally by the capath traverser to mean "no
// route found" — distinct from a real protocol/transport error, per the
// Design Notes' sum-type replacement for a sentinel null result.
var ErrNotReached = errors.New("tgs: no route to realm via configured capath")

// kdcErrorCode extracts the KDC error code from err if it is (or wraps) a
// *Error of KindKdcError.
func kdcErrorCode(err error) (int32, bool) {
	var tErr *Error
	if errors.As(err, &tErr) && tErr.Kind == KindKdcError {
		return tErr.Code, true
	}
	return 0, false
}

// isKdcError reports whether err is, or wraps, a KDC error reply.
func isKdcError(err error) bool {
	var tErr *Error
	return errors.As(err, &tErr) && tErr.Kind == KindKdcError
}
