// Package bitmap implements a compressed bitmap over the 32-bit integer
// universe, in the style of Roaring Bitmaps.
//
// A Bitmap splits each value into a 16-bit key (the high half) and a 16-bit
// offset (the low half). Keys select fixed-capacity blocks of 2^16 bits;
// each block stores its contents in whichever of three encodings is most
// compact for its density: a sorted array of offsets, a packed 1024-word
// bitmap, or a list of inclusive runs.
//
// Bitmaps support membership tests, set algebra (And, Or, AndNot, Xor),
// succinct rank/select queries, and serialization to the interoperable
// Roaring binary format.
//
// A Bitmap is safe for concurrent readers. Mutating operations require
// exclusive access; there is no internal locking.
package bitmap
