package bitmap

import (
	"math/bits"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naiveSelect1 is the reference implementation: walk the bits one by one.
func naiveSelect1(w uint64, n uint32) (uint32, bool) {
	for i := uint32(0); i < 64; i++ {
		if w&(1<<i) != 0 {
			if n == 0 {
				return i, true
			}
			n--
		}
	}
	return 0, false
}

func TestWordRank1(t *testing.T) {
	tests := []struct {
		name string
		w    uint64
		i    uint32
		want uint32
	}{
		{name: "empty word", w: 0, i: 32, want: 0},
		{name: "rank zero", w: ^uint64(0), i: 0, want: 0},
		{name: "full word below 8", w: ^uint64(0), i: 8, want: 8},
		{name: "full word whole", w: ^uint64(0), i: 64, want: 64},
		{name: "clamped past word", w: ^uint64(0), i: 100, want: 64},
		{name: "single high bit excluded", w: 1 << 63, i: 63, want: 0},
		{name: "single high bit included", w: 1 << 63, i: 64, want: 1},
		{name: "alternating", w: 0x5555555555555555, i: 10, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wordRank1(tt.w, tt.i))
		})
	}
}

func TestWordSelect1Fixed(t *testing.T) {
	tests := []struct {
		name   string
		w      uint64
		n      uint32
		want   uint32
		wantOK bool
	}{
		{name: "lowest bit", w: 1, n: 0, want: 0, wantOK: true},
		{name: "highest bit", w: 1 << 63, n: 0, want: 63, wantOK: true},
		{name: "second of two", w: 1 | 1<<40, n: 1, want: 40, wantOK: true},
		{name: "full word middle", w: ^uint64(0), n: 31, want: 31, wantOK: true},
		{name: "full word last", w: ^uint64(0), n: 63, want: 63, wantOK: true},
		{name: "out of population", w: 0xF0, n: 4, wantOK: false},
		{name: "empty word", w: 0, n: 0, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := wordSelect1(tt.w, tt.n)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestWordSelect1MatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		w := rng.Uint64()
		if i%5 == 0 {
			w &= rng.Uint64() // sparser words too
		}
		pop := uint32(bits.OnesCount64(w))
		for n := uint32(0); n <= pop; n++ {
			want, wantOK := naiveSelect1(w, n)
			got, ok := wordSelect1(w, n)
			require.Equal(t, wantOK, ok, "w=%#x n=%d", w, n)
			require.Equal(t, want, got, "w=%#x n=%d", w, n)
		}
	}
}

func TestWordSelect0(t *testing.T) {
	got, ok := wordSelect0(^uint64(0)>>1, 0)
	require.True(t, ok)
	assert.Equal(t, uint32(63), got)

	got, ok = wordSelect0(0b101, 1)
	require.True(t, ok)
	assert.Equal(t, uint32(3), got)

	_, ok = wordSelect0(^uint64(0), 0)
	assert.False(t, ok)
}

func TestRankSelectInverseOnWord(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		w := rng.Uint64()
		pop := uint32(bits.OnesCount64(w))
		for n := uint32(0); n < pop; n++ {
			pos, ok := wordSelect1(w, n)
			require.True(t, ok)
			require.Equal(t, n+1, wordRank1(w, pos+1), "w=%#x n=%d", w, n)
		}
	}
}
