package hashing

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/hasbyte1/go-argon2-pepper/internal/argon2"
)

// ──────────────────────────────────────────────────────────────────────────────
// Options
// ──────────────────────────────────────────────────────────────────────────────

// Limits bound the costs an encoded hash may ask for at verify time. An
// encoded hash is caller data; without a ceiling a forged
// "m=4294967295" would make Verify try to allocate 4 TiB.
//
// MaxMemoryKiB is also the worst-case allocation of a single Verify call:
// every forged hash that passes the check costs up to that much memory and
// MaxIterations passes over it. Size it from the largest MemoryKiB the
// deployment has ever hashed with, not from the default, and budget
// concurrent calls against it (see [Pool]).
//
// A zero field disables that bound.
type Limits struct {
	MaxMemoryKiB   uint32
	MaxIterations  uint32
	MaxParallelism uint32
}

// DefaultLimits returns bounds generous enough for any sane production
// parameter set: 4 GiB, 64 passes, 255 lanes. With these defaults one
// Verify call on a forged hash may allocate up to 4 GiB; deployments that
// know their own costs should pass tighter Limits with [WithLimits] or use
// [LimitsFor].
func DefaultLimits() Limits {
	return Limits{
		MaxMemoryKiB:   4 << 20,
		MaxIterations:  64,
		MaxParallelism: 255,
	}
}

// LimitsFor returns Limits that admit hashes made with p and with costs up to
// factor times higher, so a later cost increase keeps verifying old hashes
// while a forged hash can cost at most factor times a normal call. A factor
// below 1 is treated as 1.
func LimitsFor(p Params, factor uint32) Limits {
	factor = max(factor, 1)
	scale := func(v uint32) uint32 {
		return uint32(min(uint64(v)*uint64(factor), 1<<32-1))
	}
	return Limits{
		MaxMemoryKiB:   scale(p.MemoryKiB),
		MaxIterations:  scale(p.Iterations),
		MaxParallelism: scale(p.Parallelism),
	}
}

func (l Limits) check(p Params) error {
	if l.MaxMemoryKiB > 0 && p.MemoryKiB > l.MaxMemoryKiB {
		return fmt.Errorf("memory %d KiB exceeds limit %d KiB", p.MemoryKiB, l.MaxMemoryKiB)
	}
	if l.MaxIterations > 0 && p.Iterations > l.MaxIterations {
		return fmt.Errorf("iterations %d exceed limit %d", p.Iterations, l.MaxIterations)
	}
	if l.MaxParallelism > 0 && p.Parallelism > l.MaxParallelism {
		return fmt.Errorf("parallelism %d exceeds limit %d", p.Parallelism, l.MaxParallelism)
	}
	return nil
}

// Option configures an [Engine].
type Option func(*Engine)

// WithParams serves p on every call (see [StaticProvider]).
func WithParams(p Params) Option {
	return func(e *Engine) { e.provider = StaticProvider(p) }
}

// WithProvider sets the parameter source. A nil provider is ignored.
func WithProvider(p Provider) Option {
	return func(e *Engine) {
		if p != nil {
			e.provider = p
		}
	}
}

// WithLogger sets the logger for failure diagnostics. Only the operation and
// error kind are ever logged.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithLimits sets the verify-time cost ceilings.
func WithLimits(l Limits) Option {
	return func(e *Engine) { e.limits = l }
}

// ──────────────────────────────────────────────────────────────────────────────
// Engine
// ──────────────────────────────────────────────────────────────────────────────

// Hasher is the password-hashing surface of [Engine]. Depend on it rather
// than the concrete type.
type Hasher interface {
	// Hash derives a PHC-encoded Argon2id hash of password keyed with pepper.
	// A fresh salt is drawn for every call, so two calls with the same input
	// produce different strings.
	Hash(pepper, password []byte) (string, error)

	// Verify reports whether password, keyed with pepper, matches encoded.
	// Returns (true, nil) on match, (false, nil) on mismatch, or (false, err)
	// when encoded or the configuration is unusable.
	//
	// Comparison is performed in constant time.
	Verify(pepper, password []byte, encoded string) (bool, error)

	// NeedsRehash reports whether encoded was produced with parameters other
	// than the current ones.
	NeedsRehash(encoded string) (bool, error)

	// Info extracts metadata from encoded without verifying it.
	Info(encoded string) (HashInfo, error)
}

// HashInfo carries metadata parsed from an encoded hash.
type HashInfo struct {
	Algorithm string // "argon2id", "argon2i" or "argon2d"
	Version   uint32
	Params    Params // SaltLen and KeyLen are the decoded lengths
	KeyID     []byte // optional PHC keyid parameter
	HasData   bool   // whether associated data is bound into the hash
}

// Engine hashes and verifies passwords with Argon2id keyed by a pepper.
//
// The pepper and password are borrowed for the duration of a call and never
// retained or logged; zeroing them afterwards is the caller's job.
//
// # Thread safety
//
// Engine is immutable after construction and safe for concurrent use. Each
// call allocates [Params.MemoryFootprint] bytes; bound concurrency with a
// [Pool] when memory is scarce.
type Engine struct {
	provider Provider
	limits   Limits
	log      zerolog.Logger
	random   io.Reader
}

var _ Hasher = (*Engine)(nil)

// NewEngine builds an Engine. Without options it uses [DefaultParams],
// [DefaultLimits] and a no-op logger.
//
// The parameter source is checked once here so misconfiguration surfaces at
// startup; it is checked again on every call.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		provider: StaticProvider(DefaultParams()),
		limits:   DefaultLimits(),
		log:      zerolog.Nop(),
		random:   rand.Reader,
	}
	for _, opt := range opts {
		opt(e)
	}
	if _, err := e.provider.Parameters(); err != nil {
		return nil, newError("new", KindConfig, err)
	}
	return e, nil
}

// Parameters returns the parameters new hashes are produced with.
func (e *Engine) Parameters() (Params, error) {
	p, err := e.provider.Parameters()
	if err != nil {
		return Params{}, e.fail("params", KindConfig, err)
	}
	return p, nil
}

// Hash derives a PHC-encoded Argon2id hash of password keyed with pepper.
//
// An empty password is valid input; its hash verifies only against an empty
// password.
func (e *Engine) Hash(pepper, password []byte) (string, error) {
	const op = "hash"

	params, err := e.provider.Parameters()
	if err != nil {
		return "", e.fail(op, KindConfig, err)
	}

	salt, err := randomSalt(e.random, params.SaltLen)
	if err != nil {
		return "", e.fail(op, KindDerivation, err)
	}

	x, err := argon2.New(pepper, params.kdf())
	if err != nil {
		return "", e.fail(op, KindAlgorithm, err)
	}

	key, err := x.Key(password, salt)
	if err != nil {
		return "", e.fail(op, KindDerivation, err)
	}
	defer clear(key)

	return encodePHC(params, salt, key), nil
}

// Verify reports whether password, keyed with pepper, matches encoded.
//
// The variant, version, costs, salt and digest length come from encoded, so
// hashes made under older parameters keep verifying. Argon2i and Argon2d
// hashes and version 0x10 hashes are accepted alongside the Argon2id form
// that Hash produces. A mismatch is (false, nil); errors are
// reserved for unparseable input and structural failures.
func (e *Engine) Verify(pepper, password []byte, encoded string) (bool, error) {
	const op = "verify"

	h, err := decodePHC(encoded)
	if err != nil {
		return false, e.fail(op, KindParse, err)
	}

	if _, err := e.provider.Parameters(); err != nil {
		return false, e.fail(op, KindConfig, err)
	}

	embedded := h.params()
	if err := e.limits.check(embedded); err != nil {
		return false, e.fail(op, KindAlgorithm, err)
	}

	x, err := argon2.New(pepper, h.kdf())
	if err != nil {
		return false, e.fail(op, KindAlgorithm, err)
	}

	computed, err := x.KeyWithData(password, h.salt, h.data)
	if err != nil {
		return false, e.fail(op, KindAlgorithm, err)
	}
	defer clear(computed)

	if subtle.ConstantTimeCompare(computed, h.hash) != 1 {
		e.log.Debug().Str("op", op).Msg("password mismatch")
		return false, nil
	}
	return true, nil
}

// NeedsRehash returns true if encoded is not Argon2id version 0x13 or if any
// cost or the digest length stored in it differs from the engine's current
// parameters. Call it after a successful Verify and re-hash when it reports
// true.
func (e *Engine) NeedsRehash(encoded string) (bool, error) {
	const op = "needs_rehash"

	h, err := decodePHC(encoded)
	if err != nil {
		return false, e.fail(op, KindParse, err)
	}
	cur, err := e.provider.Parameters()
	if err != nil {
		return false, e.fail(op, KindConfig, err)
	}

	old := h.params()
	return h.variant != argon2.Argon2id ||
		h.version != Version ||
		old.MemoryKiB != cur.MemoryKiB ||
		old.Iterations != cur.Iterations ||
		old.Parallelism != cur.Parallelism ||
		old.KeyLen != cur.KeyLen, nil
}

// Info parses encoded and returns its metadata.
func (e *Engine) Info(encoded string) (HashInfo, error) {
	h, err := decodePHC(encoded)
	if err != nil {
		return HashInfo{}, e.fail("info", KindParse, err)
	}
	return HashInfo{
		Algorithm: h.variant.String(),
		Version:   h.version,
		Params:    h.params(),
		KeyID:     h.keyID,
		HasData:   len(h.data) > 0,
	}, nil
}

// fail wraps err and logs the operation and kind. The cause is not logged: a
// custom Provider's error text is outside this package's control.
func (e *Engine) fail(op string, kind Kind, err error) error {
	e.log.Debug().Str("op", op).Stringer("kind", kind).Msg("hashing operation failed")
	return newError(op, kind, err)
}

// randomSalt returns n bytes from r, which is the operating system's CSPRNG
// outside tests.
func randomSalt(r io.Reader, n uint32) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return b, nil
}
