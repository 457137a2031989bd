package hashing

import (
	"fmt"

	"github.com/hasbyte1/go-argon2-pepper/internal/argon2"
)

// ──────────────────────────────────────────────────────────────────────────────
// Cost parameters
// ──────────────────────────────────────────────────────────────────────────────

// Default cost parameters.
//
// These are placeholders carried over from the first deployment and are NOT
// production values: 1 MiB and a single pass are far below the OWASP
// recommendation (m ≥ 19 MiB, t ≥ 2). Override them with [WithParams] or a
// [Provider] before hashing real credentials.
const (
	// DefaultMemoryKiB is the memory cost in KiB.
	DefaultMemoryKiB uint32 = 1 * 1024

	// DefaultIterations is the number of passes over memory.
	DefaultIterations uint32 = 1

	// DefaultParallelism is the number of lanes.
	DefaultParallelism uint32 = 1

	// DefaultKeyLen is the Argon2 standard digest length in bytes.
	DefaultKeyLen uint32 = 32

	// DefaultSaltLen is the length of the random salt in bytes.
	DefaultSaltLen uint32 = 16

	// Version is the Argon2 version encoded in every hash (0x13 = 19).
	Version = argon2.Version
)

// Params are the Argon2id cost parameters used to produce a hash.
//
// All fields except SaltLen are encoded into the output string, so changing
// them only affects new hashes; existing hashes keep verifying with the
// parameters they were made with.
type Params struct {
	// MemoryKiB is the memory cost. Minimum: 8 × Parallelism.
	MemoryKiB uint32

	// Iterations is the time cost. Minimum: 1.
	Iterations uint32

	// Parallelism is the number of lanes. Range: [1, 2^24-1].
	Parallelism uint32

	// KeyLen is the digest length in bytes. Minimum: 4.
	KeyLen uint32

	// SaltLen is the length of the random salt in bytes. Minimum: 8.
	SaltLen uint32
}

// DefaultParams returns Params with the package defaults.
func DefaultParams() Params {
	return Params{
		MemoryKiB:   DefaultMemoryKiB,
		Iterations:  DefaultIterations,
		Parallelism: DefaultParallelism,
		KeyLen:      DefaultKeyLen,
		SaltLen:     DefaultSaltLen,
	}
}

// Validate checks p against the ranges Argon2id accepts. The returned error
// matches [ErrInvalidParams].
func (p Params) Validate() error {
	if p.Iterations < 1 {
		return invalidParams("iterations must be ≥ 1, got %d", p.Iterations)
	}
	if p.Parallelism < 1 || p.Parallelism > argon2.MaxThreads {
		return invalidParams("parallelism must be in [1, %d], got %d", argon2.MaxThreads, p.Parallelism)
	}
	if uint64(p.MemoryKiB) < 8*uint64(p.Parallelism) {
		return invalidParams("memory (%d KiB) must be ≥ 8×parallelism (%d KiB)",
			p.MemoryKiB, 8*uint64(p.Parallelism))
	}
	if p.KeyLen < argon2.MinKeyLen {
		return invalidParams("key_len must be ≥ %d, got %d", argon2.MinKeyLen, p.KeyLen)
	}
	if p.SaltLen < argon2.MinSaltLen {
		return invalidParams("salt_len must be ≥ %d, got %d", argon2.MinSaltLen, p.SaltLen)
	}
	return nil
}

// MemoryFootprint returns the bytes of Argon2 block memory one Hash or Verify
// call with p allocates. Memory is shared by the lanes, so the footprint does
// not grow with Parallelism; it grows with the number of concurrent calls.
func (p Params) MemoryFootprint() uint64 {
	return uint64(p.kdf().Blocks()) * 1024
}

func (p Params) kdf() argon2.Params {
	return argon2.Params{
		Time:    p.Iterations,
		Memory:  p.MemoryKiB,
		Threads: p.Parallelism,
		KeyLen:  p.KeyLen,
	}
}

func invalidParams(format string, args ...any) error {
	return &Error{Op: "params", Kind: KindConfig, Err: fmt.Errorf(format, args...)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Parameter provider
// ──────────────────────────────────────────────────────────────────────────────

// Provider supplies the parameters for every Hash and Verify call.
//
// Implementations must be safe for concurrent use and should return an error
// matching [ErrInvalidParams] when their values are unusable.
type Provider interface {
	Parameters() (Params, error)
}

// StaticProvider serves a fixed Params value, validating it on every call.
type StaticProvider Params

// Parameters returns the wrapped Params after validation.
func (s StaticProvider) Parameters() (Params, error) {
	p := Params(s)
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// ProviderFunc adapts a function to [Provider].
type ProviderFunc func() (Params, error)

// Parameters calls f.
func (f ProviderFunc) Parameters() (Params, error) { return f() }
