package bitmap

import (
	"bytes"
	"math/rand"
	"testing"
)

func benchBitmap(seed int64, n int, spread uint32) *Bitmap {
	rng := rand.New(rand.NewSource(seed))
	bm := New()
	for i := 0; i < n; i++ {
		bm.Insert(rng.Uint32() % spread)
	}
	bm.Optimize()
	return bm
}

func BenchmarkInsert(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	bm := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bm.Insert(rng.Uint32())
	}
}

func BenchmarkContains(b *testing.B) {
	bm := benchBitmap(2, 100000, 1<<24)
	rng := rand.New(rand.NewSource(3))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bm.Contains(rng.Uint32() % (1 << 24))
	}
}

func BenchmarkContains_Parallel(b *testing.B) {
	// Read-only queries on a shared bitmap are safe from many goroutines.
	bm := benchBitmap(4, 100000, 1<<24)
	b.RunParallel(func(pb *testing.PB) {
		rng := rand.New(rand.NewSource(5))
		for pb.Next() {
			bm.Contains(rng.Uint32() % (1 << 24))
		}
	})
}

func BenchmarkRank1(b *testing.B) {
	bm := benchBitmap(6, 100000, 1<<24)
	rng := rand.New(rand.NewSource(7))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bm.Rank1(rng.Uint32() % (1 << 24))
	}
}

func BenchmarkSelect1(b *testing.B) {
	bm := benchBitmap(8, 100000, 1<<24)
	count := bm.Count1()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bm.Select1(uint64(i) % count)
	}
}

func BenchmarkAnd(b *testing.B) {
	lhs := benchBitmap(9, 100000, 1<<24)
	rhs := benchBitmap(10, 100000, 1<<24)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		And(lhs, rhs)
	}
}

func BenchmarkOr(b *testing.B) {
	lhs := benchBitmap(11, 100000, 1<<24)
	rhs := benchBitmap(12, 100000, 1<<24)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Or(lhs, rhs)
	}
}

func BenchmarkWriteTo(b *testing.B) {
	bm := benchBitmap(13, 100000, 1<<24)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		if _, err := bm.WriteTo(&buf); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReadFrom(b *testing.B) {
	bm := benchBitmap(14, 100000, 1<<24)
	var buf bytes.Buffer
	if _, err := bm.WriteTo(&buf); err != nil {
		b.Fatal(err)
	}
	data := buf.Bytes()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Read(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}
