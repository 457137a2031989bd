// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package argon2 implements the Argon2 key derivation function as described
// in RFC 9106, including the optional secret key and associated data inputs.
// All three variants (Argon2d, Argon2i, Argon2id) and both published versions
// (0x10 and 0x13) are supported; the zero [Params] select Argon2id 0x13.
//
// golang.org/x/crypto/argon2 derives the same function but does not accept a
// secret key, which is how a server-side pepper is folded into the hash. The
// block filling code follows that package.
//
// An [Instance] is built once from a secret and a parameter set and can then
// derive keys for any number of (password, salt) pairs:
//
//	x, err := argon2.New(pepper, argon2.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32})
//	key, err := x.Key(password, salt)
package argon2

import (
	"encoding/binary"
	"errors"
	"sync"

	"golang.org/x/crypto/blake2b"
)

const (
	// Version is the current Argon2 version (0x13 = 19), used when
	// Params.Version is zero.
	Version = 0x13

	// Version10 is the original Argon2 version (0x10 = 16). It overwrites
	// blocks on every pass instead of XORing into them.
	Version10 = 0x10

	// MinSaltLen is the shortest salt accepted by [Instance.Key].
	MinSaltLen = 8

	// MinKeyLen is the shortest derived key.
	MinKeyLen = 4

	// MaxThreads is the largest degree of parallelism (2^24 - 1).
	MaxThreads = 1<<24 - 1

	// maxInputLen bounds every length that is encoded as a 32-bit prefix.
	maxInputLen = 1<<32 - 1

	blockLength = 128 // 64-bit words per 1 KiB block
	syncPoints  = 4
)

// Variant selects the Argon2 addressing mode.
type Variant uint8

const (
	// Argon2id uses data-independent addressing for the first half of the
	// first pass and data-dependent addressing afterwards.
	Argon2id Variant = iota
	// Argon2i uses data-independent addressing throughout.
	Argon2i
	// Argon2d uses data-dependent addressing throughout.
	Argon2d
)

// String returns the PHC identifier of v.
func (v Variant) String() string {
	switch v {
	case Argon2id:
		return "argon2id"
	case Argon2i:
		return "argon2i"
	case Argon2d:
		return "argon2d"
	default:
		return "argon2(unknown)"
	}
}

// ParseVariant returns the Variant named by a PHC identifier.
func ParseVariant(s string) (Variant, bool) {
	for _, v := range []Variant{Argon2id, Argon2i, Argon2d} {
		if s == v.String() {
			return v, true
		}
	}
	return 0, false
}

// typeID is the type value y hashed into H0 (RFC 9106 §3.2).
func (v Variant) typeID() uint32 {
	switch v {
	case Argon2d:
		return 0
	case Argon2i:
		return 1
	default:
		return 2
	}
}

// independent reports whether the segment at (pass, slice) computes its
// reference indexes from the address generator rather than block contents.
func (v Variant) independent(pass, slice uint32) bool {
	switch v {
	case Argon2i:
		return true
	case Argon2id:
		return pass == 0 && slice < syncPoints/2
	default:
		return false
	}
}

var (
	// ErrSecretTooLong is returned by [New] when the secret key length does
	// not fit the 32-bit length prefix.
	ErrSecretTooLong = errors.New("argon2: secret too long")

	// ErrTimeCost is returned when Time is zero.
	ErrTimeCost = errors.New("argon2: time cost must be at least 1")

	// ErrThreads is returned when Threads is zero or above MaxThreads.
	ErrThreads = errors.New("argon2: parallelism out of range")

	// ErrMemoryCost is returned when Memory is below 8 KiB per thread.
	ErrMemoryCost = errors.New("argon2: memory cost below 8 KiB per thread")

	// ErrKeyLen is returned when KeyLen is below MinKeyLen.
	ErrKeyLen = errors.New("argon2: output length too short")

	// ErrVariant is returned for a Variant outside Argon2id, Argon2i and
	// Argon2d.
	ErrVariant = errors.New("argon2: unknown variant")

	// ErrVersion is returned for a Version other than 0, 0x10 or 0x13.
	ErrVersion = errors.New("argon2: unsupported version")

	ErrPasswordTooLong = errors.New("argon2: password too long")
	ErrSaltTooShort    = errors.New("argon2: salt too short")
	ErrSaltTooLong     = errors.New("argon2: salt too long")
	ErrDataTooLong     = errors.New("argon2: associated data too long")
)

// Params select the Argon2 variant, version and costs.
type Params struct {
	Time    uint32 // passes over memory
	Memory  uint32 // KiB
	Threads uint32 // lanes
	KeyLen  uint32 // bytes of output

	Variant Variant // zero is Argon2id
	Version uint32  // zero is Version
}

func (p Params) version() uint32 {
	if p.Version == 0 {
		return Version
	}
	return p.Version
}

// Validate reports whether p is inside the ranges defined by RFC 9106.
func (p Params) Validate() error {
	if p.Time < 1 {
		return ErrTimeCost
	}
	if p.Threads < 1 || p.Threads > MaxThreads {
		return ErrThreads
	}
	if uint64(p.Memory) < 2*syncPoints*uint64(p.Threads) {
		return ErrMemoryCost
	}
	if p.KeyLen < MinKeyLen {
		return ErrKeyLen
	}
	if p.Variant > Argon2d {
		return ErrVariant
	}
	if v := p.version(); v != Version && v != Version10 {
		return ErrVersion
	}
	return nil
}

// Blocks returns the number of 1 KiB blocks a derivation with p allocates.
func (p Params) Blocks() uint32 {
	if p.Threads == 0 {
		return 0
	}
	return p.Memory / (syncPoints * p.Threads) * (syncPoints * p.Threads)
}

// Instance is an Argon2 function keyed with a secret. It holds a reference
// to the secret, not a copy; the caller owns the secret's lifetime.
//
// Instance is immutable and safe for concurrent use.
type Instance struct {
	secret []byte
	params Params
}

// New returns an Argon2 instance keyed with secret. A nil or empty secret
// yields plain, unkeyed Argon2.
func New(secret []byte, p Params) (*Instance, error) {
	if !lengthOK(uint64(len(secret))) {
		return nil, ErrSecretTooLong
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Instance{secret: secret, params: p}, nil
}

// Params returns the parameters the instance was built with.
func (x *Instance) Params() Params { return x.params }

// Key derives KeyLen bytes from password and salt.
func (x *Instance) Key(password, salt []byte) ([]byte, error) {
	return x.KeyWithData(password, salt, nil)
}

// KeyWithData derives KeyLen bytes from password and salt, binding the
// result to the associated data.
func (x *Instance) KeyWithData(password, salt, data []byte) ([]byte, error) {
	switch {
	case !lengthOK(uint64(len(password))):
		return nil, ErrPasswordTooLong
	case len(salt) < MinSaltLen:
		return nil, ErrSaltTooShort
	case !lengthOK(uint64(len(salt))):
		return nil, ErrSaltTooLong
	case !lengthOK(uint64(len(data))):
		return nil, ErrDataTooLong
	}

	p := x.params
	h0 := initHash(password, salt, x.secret, data, p)
	memory := p.Blocks()
	B := initBlocks(&h0, memory, p.Threads)
	processBlocks(B, p, memory)
	key := extractKey(B, memory, p.Threads, p.KeyLen)
	clear(B)
	clear(h0[:])
	return key, nil
}

func lengthOK(n uint64) bool { return n <= maxInputLen }

type block [blockLength]uint64

func initHash(password, salt, secret, data []byte, p Params) [blake2b.Size + 8]byte {
	var (
		h0     [blake2b.Size + 8]byte
		params [24]byte
		tmp    [4]byte
	)

	b2, _ := blake2b.New512(nil)
	binary.LittleEndian.PutUint32(params[0:4], p.Threads)
	binary.LittleEndian.PutUint32(params[4:8], p.KeyLen)
	binary.LittleEndian.PutUint32(params[8:12], p.Memory)
	binary.LittleEndian.PutUint32(params[12:16], p.Time)
	binary.LittleEndian.PutUint32(params[16:20], p.version())
	binary.LittleEndian.PutUint32(params[20:24], p.Variant.typeID())
	b2.Write(params[:])
	for _, in := range [][]byte{password, salt, secret, data} {
		binary.LittleEndian.PutUint32(tmp[:], uint32(len(in)))
		b2.Write(tmp[:])
		b2.Write(in)
	}
	b2.Sum(h0[:0])
	return h0
}

func initBlocks(h0 *[blake2b.Size + 8]byte, memory, threads uint32) []block {
	var block0 [1024]byte
	B := make([]block, memory)
	for lane := uint32(0); lane < threads; lane++ {
		j := lane * (memory / threads)
		binary.LittleEndian.PutUint32(h0[blake2b.Size+4:], lane)

		binary.LittleEndian.PutUint32(h0[blake2b.Size:], 0)
		hashPrime(block0[:], h0[:])
		for i := range B[j+0] {
			B[j+0][i] = binary.LittleEndian.Uint64(block0[i*8:])
		}

		binary.LittleEndian.PutUint32(h0[blake2b.Size:], 1)
		hashPrime(block0[:], h0[:])
		for i := range B[j+1] {
			B[j+1][i] = binary.LittleEndian.Uint64(block0[i*8:])
		}
	}
	clear(block0[:])
	return B
}

// processBlocks fills memory pass by pass. Within a slice every lane is
// filled concurrently; slices are barriers.
func processBlocks(B []block, p Params, memory uint32) {
	time, threads := p.Time, p.Threads
	lanes := memory / threads
	segments := lanes / syncPoints
	xor := p.version() != Version10

	processSegment := func(n, slice, lane uint32, wg *sync.WaitGroup) {
		defer wg.Done()

		var addresses, in, zero block
		independent := p.Variant.independent(n, slice)
		if independent {
			in[0] = uint64(n)
			in[1] = uint64(lane)
			in[2] = uint64(slice)
			in[3] = uint64(memory)
			in[4] = uint64(time)
			in[5] = uint64(p.Variant.typeID())
		}

		index := uint32(0)
		if n == 0 && slice == 0 {
			index = 2 // the first two blocks of each lane come from H0
			if independent {
				in[6]++
				processBlock(&addresses, &in, &zero, false)
				processBlock(&addresses, &addresses, &zero, false)
			}
		}

		offset := lane*lanes + slice*segments + index
		var random uint64
		for index < segments {
			prev := offset - 1
			if index == 0 && slice == 0 {
				prev += lanes // last block of the lane
			}
			if independent {
				if index%blockLength == 0 {
					in[6]++
					processBlock(&addresses, &in, &zero, false)
					processBlock(&addresses, &addresses, &zero, false)
				}
				random = addresses[index%blockLength]
			} else {
				random = B[prev][0]
			}
			ref := indexAlpha(random, lanes, segments, threads, n, slice, lane, index)
			// The first pass writes into zeroed memory, so XOR and overwrite
			// agree there; version 0x10 overwrites on later passes too.
			processBlock(&B[offset], &B[prev], &B[ref], xor)
			index, offset = index+1, offset+1
		}
	}

	for n := uint32(0); n < time; n++ {
		for slice := uint32(0); slice < syncPoints; slice++ {
			var wg sync.WaitGroup
			for lane := uint32(0); lane < threads; lane++ {
				wg.Add(1)
				go processSegment(n, slice, lane, &wg)
			}
			wg.Wait()
		}
	}
}

func extractKey(B []block, memory, threads, keyLen uint32) []byte {
	lanes := memory / threads
	for lane := uint32(0); lane < threads-1; lane++ {
		for i, v := range B[(lane*lanes)+lanes-1] {
			B[memory-1][i] ^= v
		}
	}

	var final [1024]byte
	for i, v := range B[memory-1] {
		binary.LittleEndian.PutUint64(final[i*8:], v)
	}
	key := make([]byte, keyLen)
	hashPrime(key, final[:])
	clear(final[:])
	return key
}

// indexAlpha maps a pseudo-random value to the reference block for the
// block at (n, slice, lane, index).
func indexAlpha(rand uint64, lanes, segments, threads, n, slice, lane, index uint32) uint32 {
	refLane := uint32(rand>>32) % threads
	if n == 0 && slice == 0 {
		refLane = lane
	}
	m, s := 3*segments, ((slice+1)%syncPoints)*segments
	if lane == refLane {
		m += index
	}
	if n == 0 {
		m, s = slice*segments, 0
		if slice == 0 || lane == refLane {
			m += index
		}
	}
	if index == 0 || lane == refLane {
		m--
	}
	return phi(rand, uint64(m), uint64(s), refLane, lanes)
}

func phi(rand, m, s uint64, lane, lanes uint32) uint32 {
	p := rand & 0xFFFFFFFF
	p = (p * p) >> 32
	p = (p * m) >> 32
	return lane*lanes + uint32((s+m-(p+1))%uint64(lanes))
}
