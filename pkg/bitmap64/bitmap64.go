// Package bitmap64 extends the 32-bit bitmap package to a 2^64 universe by
// keying a second ordered layer on the high 32 bits of each value. Every
// operation splits a uint64 into (hi32, lo32), dispatches the low half into
// the inner container selected by the high half, and composes rank/select
// as one more round of count-then-descend.
//
// Like the inner containers, a Bitmap is safe for concurrent readers and
// requires exclusive access for mutation.
package bitmap64

import (
	"sort"

	"github.com/xflash-panda/bitmap-engine/pkg/bitmap"
)

// innerBits is the universe size of one inner container.
const innerBits = 1 << 32

// Bitmap is a compressed set of uint64 values.
type Bitmap struct {
	keys  []uint32
	inner []*bitmap.Bitmap
}

// New builds a bitmap containing the given values.
func New(xs ...uint64) *Bitmap {
	bm := &Bitmap{}
	for _, x := range xs {
		bm.Insert(x)
	}
	return bm
}

func split(x uint64) (hi, lo uint32) {
	return uint32(x >> 32), uint32(x & 0xFFFFFFFF)
}

func (bm *Bitmap) findKey(hi uint32) (int, bool) {
	i := sort.Search(len(bm.keys), func(k int) bool { return bm.keys[k] >= hi })
	return i, i < len(bm.keys) && bm.keys[i] == hi
}

func (bm *Bitmap) insertInnerAt(i int, hi uint32, in *bitmap.Bitmap) {
	bm.keys = append(bm.keys, 0)
	copy(bm.keys[i+1:], bm.keys[i:])
	bm.keys[i] = hi
	bm.inner = append(bm.inner, nil)
	copy(bm.inner[i+1:], bm.inner[i:])
	bm.inner[i] = in
}

func (bm *Bitmap) dropInnerAt(i int) {
	bm.keys = append(bm.keys[:i], bm.keys[i+1:]...)
	bm.inner = append(bm.inner[:i], bm.inner[i+1:]...)
}

// Contains reports whether x is in the bitmap.
func (bm *Bitmap) Contains(x uint64) bool {
	hi, lo := split(x)
	i, ok := bm.findKey(hi)
	if !ok {
		return false
	}
	return bm.inner[i].Contains(lo)
}

// Insert adds x and reports whether it was previously absent.
func (bm *Bitmap) Insert(x uint64) bool {
	hi, lo := split(x)
	i, ok := bm.findKey(hi)
	if !ok {
		bm.insertInnerAt(i, hi, bitmap.New(lo))
		return true
	}
	return bm.inner[i].Insert(lo)
}

// Remove deletes x and reports whether it was previously present. An inner
// container emptied by the removal is dropped immediately.
func (bm *Bitmap) Remove(x uint64) bool {
	hi, lo := split(x)
	i, ok := bm.findKey(hi)
	if !ok || !bm.inner[i].Remove(lo) {
		return false
	}
	if bm.inner[i].IsEmpty() {
		bm.dropInnerAt(i)
	}
	return true
}

// Count1 returns the number of values in the bitmap.
func (bm *Bitmap) Count1() uint64 {
	var n uint64
	for _, in := range bm.inner {
		n += in.Count1()
	}
	return n
}

// IsEmpty reports whether the bitmap holds no values.
func (bm *Bitmap) IsEmpty() bool {
	return len(bm.keys) == 0
}

// Clone returns a deep copy.
func (bm *Bitmap) Clone() *Bitmap {
	dup := &Bitmap{
		keys:  append([]uint32(nil), bm.keys...),
		inner: make([]*bitmap.Bitmap, len(bm.inner)),
	}
	for i, in := range bm.inner {
		dup.inner[i] = in.Clone()
	}
	return dup
}

// Optimize re-encodes every inner container and drops empty ones.
func (bm *Bitmap) Optimize() {
	for i := len(bm.inner) - 1; i >= 0; i-- {
		bm.inner[i].Optimize()
		if bm.inner[i].IsEmpty() {
			bm.dropInnerAt(i)
		}
	}
}

// Rank1 counts the values strictly below x.
func (bm *Bitmap) Rank1(x uint64) uint64 {
	hi, lo := split(x)
	var n uint64
	for i, key := range bm.keys {
		if key < hi {
			n += bm.inner[i].Count1()
			continue
		}
		if key == hi {
			n += bm.inner[i].Rank1(lo)
		}
		break
	}
	return n
}

// Select1 returns the (n+1)-th value in ascending order. Reports false
// when the bitmap holds n or fewer values.
func (bm *Bitmap) Select1(n uint64) (uint64, bool) {
	for i, in := range bm.inner {
		c := in.Count1()
		if n < c {
			lo, _ := in.Select1(n)
			return uint64(bm.keys[i])<<32 | uint64(lo), true
		}
		n -= c
	}
	return 0, false
}

// Select0 returns the (n+1)-th absent value of the 2^64 universe in
// ascending order. High keys with no inner container contribute 2^32 zeros
// apiece.
func (bm *Bitmap) Select0(n uint64) (uint64, bool) {
	next := uint64(0) // first high key not yet accounted for
	for i, key := range bm.keys {
		gap := (uint64(key) - next) * innerBits
		if n < gap {
			return next*innerBits + n, true
		}
		n -= gap
		zeros := innerBits - bm.inner[i].Count1()
		if n < zeros {
			lo, _ := bm.inner[i].Select0(n)
			return uint64(key)<<32 | uint64(lo), true
		}
		n -= zeros
		next = uint64(key) + 1
	}
	// Past the last inner container everything is a zero. With no
	// containers at all the whole universe is, and any n is valid.
	if next > 0 && n >= (1<<32-next)*innerBits {
		return 0, false
	}
	return next*innerBits + n, true
}

// ToArray returns every value in ascending order.
func (bm *Bitmap) ToArray() []uint64 {
	out := make([]uint64, 0, bm.Count1())
	for i, in := range bm.inner {
		base := uint64(bm.keys[i]) << 32
		in.Range(func(lo uint32) bool {
			out = append(out, base|uint64(lo))
			return true
		})
	}
	return out
}

// Range calls fn on each value in ascending order until fn returns false.
func (bm *Bitmap) Range(fn func(x uint64) bool) {
	for i, in := range bm.inner {
		base := uint64(bm.keys[i]) << 32
		stop := false
		in.Range(func(lo uint32) bool {
			if !fn(base | uint64(lo)) {
				stop = true
				return false
			}
			return true
		})
		if stop {
			return
		}
	}
}

// Equal reports whether a and b hold the same set of values.
func (a *Bitmap) Equal(b *Bitmap) bool {
	if len(a.keys) != len(b.keys) {
		return false
	}
	for i, key := range a.keys {
		if key != b.keys[i] || !a.inner[i].Equal(b.inner[i]) {
			return false
		}
	}
	return true
}
