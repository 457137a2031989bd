package hashing_test

import (
	"context"
	"testing"

	"github.com/hasbyte1/go-argon2-pepper/hashing"
)

// ──────────────────────────────────────────────────────────────────────────────
// Engine benchmarks
// ──────────────────────────────────────────────────────────────────────────────
//
// Note: Argon2id is intentionally slow. BenchmarkEngine_Default_* measures the
// placeholder defaults; BenchmarkEngine_Fast_* measures framework overhead.

func BenchmarkEngine_Default_Hash(b *testing.B) {
	e, _ := hashing.NewEngine()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Hash(testPepper, []byte("bench-password"))
	}
}

func BenchmarkEngine_Default_Verify(b *testing.B) {
	e, _ := hashing.NewEngine()
	hash, _ := e.Hash(testPepper, []byte("bench-password"))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Verify(testPepper, []byte("bench-password"), hash)
	}
}

func BenchmarkEngine_Fast_Hash(b *testing.B) {
	e := newTestEngine(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Hash(testPepper, []byte("bench-password"))
	}
}

func BenchmarkEngine_OWASP_Hash(b *testing.B) {
	e, _ := hashing.NewEngine(hashing.WithParams(hashing.Params{
		MemoryKiB: 19 * 1024, Iterations: 2, Parallelism: 1, KeyLen: 32, SaltLen: 16,
	}))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Hash(testPepper, []byte("bench-password"))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Pool benchmarks
// ──────────────────────────────────────────────────────────────────────────────

func BenchmarkPool_ParallelVerify(b *testing.B) {
	e, _ := hashing.NewEngine()
	hash, _ := e.Hash(testPepper, []byte("bench-password"))
	p := hashing.NewPool(e, 4*int64(hashing.DefaultMemoryKiB))
	ctx := context.Background()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = p.Verify(ctx, testPepper, []byte("bench-password"), hash)
		}
	})
}
