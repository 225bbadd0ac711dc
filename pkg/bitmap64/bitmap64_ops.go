package bitmap64

import "github.com/xflash-panda/bitmap-engine/pkg/bitmap"

// The 64-bit algebra is the same key merge the 32-bit container performs,
// one level up: co-keyed inner containers combine with the matching 32-bit
// operation, single-sided keys follow the operation's identity.

// And returns the intersection of a and b.
func And(a, b *Bitmap) *Bitmap {
	out := &Bitmap{}
	i, j := 0, 0
	for i < len(a.keys) && j < len(b.keys) {
		switch {
		case a.keys[i] < b.keys[j]:
			i++
		case a.keys[i] > b.keys[j]:
			j++
		default:
			if in := bitmap.And(a.inner[i], b.inner[j]); !in.IsEmpty() {
				out.keys = append(out.keys, a.keys[i])
				out.inner = append(out.inner, in)
			}
			i++
			j++
		}
	}
	return out
}

// Or returns the union of a and b.
func Or(a, b *Bitmap) *Bitmap {
	out := &Bitmap{}
	i, j := 0, 0
	for i < len(a.keys) && j < len(b.keys) {
		switch {
		case a.keys[i] < b.keys[j]:
			out.keys = append(out.keys, a.keys[i])
			out.inner = append(out.inner, a.inner[i].Clone())
			i++
		case a.keys[i] > b.keys[j]:
			out.keys = append(out.keys, b.keys[j])
			out.inner = append(out.inner, b.inner[j].Clone())
			j++
		default:
			out.keys = append(out.keys, a.keys[i])
			out.inner = append(out.inner, bitmap.Or(a.inner[i], b.inner[j]))
			i++
			j++
		}
	}
	for ; i < len(a.keys); i++ {
		out.keys = append(out.keys, a.keys[i])
		out.inner = append(out.inner, a.inner[i].Clone())
	}
	for ; j < len(b.keys); j++ {
		out.keys = append(out.keys, b.keys[j])
		out.inner = append(out.inner, b.inner[j].Clone())
	}
	return out
}

// AndNot returns the difference a \ b.
func AndNot(a, b *Bitmap) *Bitmap {
	out := &Bitmap{}
	i, j := 0, 0
	for i < len(a.keys) && j < len(b.keys) {
		switch {
		case a.keys[i] < b.keys[j]:
			out.keys = append(out.keys, a.keys[i])
			out.inner = append(out.inner, a.inner[i].Clone())
			i++
		case a.keys[i] > b.keys[j]:
			j++
		default:
			if in := bitmap.AndNot(a.inner[i], b.inner[j]); !in.IsEmpty() {
				out.keys = append(out.keys, a.keys[i])
				out.inner = append(out.inner, in)
			}
			i++
			j++
		}
	}
	for ; i < len(a.keys); i++ {
		out.keys = append(out.keys, a.keys[i])
		out.inner = append(out.inner, a.inner[i].Clone())
	}
	return out
}

// Xor returns the symmetric difference of a and b.
func Xor(a, b *Bitmap) *Bitmap {
	out := &Bitmap{}
	i, j := 0, 0
	for i < len(a.keys) && j < len(b.keys) {
		switch {
		case a.keys[i] < b.keys[j]:
			out.keys = append(out.keys, a.keys[i])
			out.inner = append(out.inner, a.inner[i].Clone())
			i++
		case a.keys[i] > b.keys[j]:
			out.keys = append(out.keys, b.keys[j])
			out.inner = append(out.inner, b.inner[j].Clone())
			j++
		default:
			if in := bitmap.Xor(a.inner[i], b.inner[j]); !in.IsEmpty() {
				out.keys = append(out.keys, a.keys[i])
				out.inner = append(out.inner, in)
			}
			i++
			j++
		}
	}
	for ; i < len(a.keys); i++ {
		out.keys = append(out.keys, a.keys[i])
		out.inner = append(out.inner, a.inner[i].Clone())
	}
	for ; j < len(b.keys); j++ {
		out.keys = append(out.keys, b.keys[j])
		out.inner = append(out.inner, b.inner[j].Clone())
	}
	return out
}

// And replaces bm with the intersection of bm and other.
func (bm *Bitmap) And(other *Bitmap) { *bm = *And(bm, other) }

// Or replaces bm with the union of bm and other.
func (bm *Bitmap) Or(other *Bitmap) { *bm = *Or(bm, other) }

// AndNot replaces bm with the difference bm \ other.
func (bm *Bitmap) AndNot(other *Bitmap) { *bm = *AndNot(bm, other) }

// Xor replaces bm with the symmetric difference of bm and other.
func (bm *Bitmap) Xor(other *Bitmap) { *bm = *Xor(bm, other) }
