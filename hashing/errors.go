package hashing

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by hashing operations.
//
// Every failure of [Engine.Hash], [Engine.Verify], [Engine.NeedsRehash] and
// [Engine.Info] is an [*Error] whose Kind selects exactly one of the
// sentinels below, so callers can branch with [errors.Is]:
//
//	ok, err := engine.Verify(pepper, password, stored)
//	switch {
//	case errors.Is(err, hashing.ErrInvalidHash):
//	    // stored value is corrupt
//	case err != nil:
//	    // configuration or primitive failure
//	case !ok:
//	    // wrong password
//	}
var (
	// ErrInvalidParams is returned when the cost parameters fall outside the
	// ranges Argon2id accepts. It is a deployment bug and not retryable.
	ErrInvalidParams = errors.New("hashing: invalid cost parameters")

	// ErrAlgorithm is returned when the keyed Argon2id instance cannot be
	// built from the pepper and parameters.
	ErrAlgorithm = errors.New("hashing: cannot construct argon2id instance")

	// ErrDerivation is returned when hashing fails after the instance was
	// built. A retry draws a fresh salt.
	ErrDerivation = errors.New("hashing: derivation failed")

	// ErrInvalidHash is returned when an encoded hash cannot be parsed
	// because it has an unrecognised format, missing fields, or invalid
	// encoding.
	ErrInvalidHash = errors.New("hashing: invalid or unrecognised hash string")

	// ErrMismatch is returned by the string-level [Verify] when the password
	// does not match. [Engine.Verify] reports a mismatch as (false, nil).
	ErrMismatch = errors.New("hashing: password does not match")
)

// Kind classifies an [Error].
type Kind uint8

const (
	KindConfig Kind = iota + 1
	KindAlgorithm
	KindDerivation
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindAlgorithm:
		return "algorithm"
	case KindDerivation:
		return "derivation"
	case KindParse:
		return "parse"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConfig:
		return ErrInvalidParams
	case KindAlgorithm:
		return ErrAlgorithm
	case KindDerivation:
		return ErrDerivation
	case KindParse:
		return ErrInvalidHash
	default:
		return nil
	}
}

// Error is the structured failure of a hashing operation. Its message names
// the operation, the kind and the cause; it never contains the password, the
// pepper or the encoded hash.
type Error struct {
	Op   string // "hash", "verify", "needs_rehash", "info", "params"
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "hashing: " + e.Op + ": " + e.Kind.String()
	}
	return "hashing: " + e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// newError builds an *Error for op. A cause that is itself an *Error is
// unwrapped one level so the message names the outer operation once.
func newError(op string, kind Kind, err error) *Error {
	var inner *Error
	if errors.As(err, &inner) && inner.Kind == kind {
		err = inner.Err
	}
	return &Error{Op: op, Kind: kind, Err: err}
}
