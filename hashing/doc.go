// Package hashing provides peppered password hashing with Argon2id.
//
// # Architecture
//
// A [Provider] supplies the cost [Params] for every call. The [Engine] folds
// a caller-supplied pepper into Argon2id as its secret key, draws a fresh
// salt per hash, and emits a self-describing PHC string. Verification reads
// the costs and salt back from that string, so only the pepper has to be
// supplied out of band.
//
// # Quick start
//
//	e, err := hashing.NewEngine(hashing.WithParams(hashing.Params{
//	    MemoryKiB: 64 * 1024, Iterations: 3, Parallelism: 2, KeyLen: 32, SaltLen: 16,
//	}))
//	if err != nil { log.Fatal(err) }
//
//	hash, _ := e.Hash(pepper, []byte("my-secret-password"))
//	ok, _   := e.Verify(pepper, []byte("my-secret-password"), hash) // true
//
// [Hash] and [Verify] are string-level wrappers for host bindings that can
// only pass primitive values.
//
// # Defaults
//
// [DefaultParams] (m=1 MiB, t=1, p=1, 32-byte key, 16-byte salt) are
// placeholders, not production values.
//
// # Hash format
//
//	$argon2id$v=19$m=1024,t=1,p=1$<base64-salt>$<base64-hash>
//
// Verify also accepts the other standard Argon2 encodings: argon2i and
// argon2d, version 16, and strings without a version segment (read as
// v=19). [Engine.NeedsRehash] reports all of them as due for an upgrade.
//
// Hashes made with an empty pepper are plain Argon2id and interoperate with
// any PHC-compatible Argon2 library. With a pepper they verify only here,
// with the same pepper.
//
// # Errors
//
// Failures are [*Error] values classified by [Kind]: config, algorithm,
// derivation and parse. A wrong password is not an error: [Engine.Verify]
// returns (false, nil).
//
// # Resources
//
// Every call allocates [Params.MemoryFootprint] bytes for the duration of the
// derivation. The Engine does no admission control; use a [Pool] or an
// equivalent bound on concurrent calls.
//
// # What this package must NOT do
//
//   - Store peppers or hashes.
//   - Log passwords, peppers or hash strings.
//   - Retry: a failed call is returned to the caller as is.
package hashing
