// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argon2

import "math/bits"

// rowIndex and columnIndex address the sixteen words that one application
// of the permutation P operates on, viewing a block as an 8x8 matrix of
// 16-byte registers.
var rowIndex, columnIndex = buildIndexes()

func buildIndexes() (rows, cols [8][16]int) {
	for i := 0; i < 8; i++ {
		for j := 0; j < 16; j++ {
			rows[i][j] = 16*i + j
		}
		for j := 0; j < 8; j++ {
			cols[i][2*j] = 2*i + 16*j
			cols[i][2*j+1] = 2*i + 16*j + 1
		}
	}
	return rows, cols
}

// processBlock computes the compression function G(in1, in2) and stores it
// in out, or XORs it into out when xor is set (version 0x13 overwrite rule).
func processBlock(out, in1, in2 *block, xor bool) {
	var t block
	for i := range t {
		t[i] = in1[i] ^ in2[i]
	}
	for i := range rowIndex {
		permute(&t, &rowIndex[i])
	}
	for i := range columnIndex {
		permute(&t, &columnIndex[i])
	}
	if xor {
		for i := range t {
			out[i] ^= in1[i] ^ in2[i] ^ t[i]
		}
	} else {
		for i := range t {
			out[i] = in1[i] ^ in2[i] ^ t[i]
		}
	}
}

func permute(t *block, idx *[16]int) {
	var v [16]uint64
	for i, j := range idx {
		v[i] = t[j]
	}

	v[0], v[4], v[8], v[12] = mix(v[0], v[4], v[8], v[12])
	v[1], v[5], v[9], v[13] = mix(v[1], v[5], v[9], v[13])
	v[2], v[6], v[10], v[14] = mix(v[2], v[6], v[10], v[14])
	v[3], v[7], v[11], v[15] = mix(v[3], v[7], v[11], v[15])

	v[0], v[5], v[10], v[15] = mix(v[0], v[5], v[10], v[15])
	v[1], v[6], v[11], v[12] = mix(v[1], v[6], v[11], v[12])
	v[2], v[7], v[8], v[13] = mix(v[2], v[7], v[8], v[13])
	v[3], v[4], v[9], v[14] = mix(v[3], v[4], v[9], v[14])

	for i, j := range idx {
		t[j] = v[i]
	}
}

// mix is the BlaMka variant of the BLAKE2b G function.
func mix(a, b, c, d uint64) (uint64, uint64, uint64, uint64) {
	a = fBlaMka(a, b)
	d = bits.RotateLeft64(d^a, -32)
	c = fBlaMka(c, d)
	b = bits.RotateLeft64(b^c, -24)
	a = fBlaMka(a, b)
	d = bits.RotateLeft64(d^a, -16)
	c = fBlaMka(c, d)
	b = bits.RotateLeft64(b^c, -63)
	return a, b, c, d
}

func fBlaMka(x, y uint64) uint64 {
	return x + y + 2*uint64(uint32(x))*uint64(uint32(y))
}
