package bitmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"
)

// Roaring wire-format markers.
const (
	serialCookie      = 12347 // u16: run blocks possible, marker bitmap follows
	serialNoRun       = 12346 // u32: no run blocks, offset table always present
	noOffsetThreshold = 4     // minimum block count for an offset table with serialCookie
)

var (
	// ErrInvalidCookie is returned when a stream does not start with a
	// known Roaring cookie.
	ErrInvalidCookie = errors.New("bitmap: invalid serialization cookie")
	// ErrCorruptStream is returned when a stream's header or payloads are
	// internally inconsistent.
	ErrCorruptStream = errors.New("bitmap: corrupt serialized stream")
)

// serializedKind returns the encoding a block is written with. Run blocks
// keep their runs; everything else is written as an array or a packed
// bitmap purely by population, so that a reader can reconstruct the
// encoding from the descriptive header alone.
func serializedKind(bl *block) uint8 {
	if bl.kind == typeRuns {
		return typeRuns
	}
	if bl.card <= ArrayThreshold {
		return typeArray
	}
	return typePacked
}

func payloadSize(bl *block) int {
	switch serializedKind(bl) {
	case typeRuns:
		return 2 + 4*len(bl.runs)
	case typeArray:
		return 2 * bl.card
	default:
		return 8 * PackedWords
	}
}

// serializedSize returns the exact byte length WriteTo produces.
func (bm *Bitmap) serializedSize() int {
	n := len(bm.blocks)
	hasRun := false
	for _, bl := range bm.blocks {
		if serializedKind(bl) == typeRuns {
			hasRun = true
			break
		}
	}

	var size int
	if hasRun {
		size = 4 + (n+7)/8 + 4*n
		if n >= noOffsetThreshold {
			size += 4 * n
		}
	} else {
		size = 8 + 4*n + 4*n
	}
	for _, bl := range bm.blocks {
		size += payloadSize(bl)
	}
	return size
}

// WriteTo serializes the bitmap in the Roaring format: cookie, optional
// run-marker bitmap, per-block (key, population-1) header, optional offset
// table, then payloads in key order. Offsets are measured from the first
// cookie byte.
func (bm *Bitmap) WriteTo(w io.Writer) (int64, error) {
	n := len(bm.blocks)
	hasRun := false
	for _, bl := range bm.blocks {
		if serializedKind(bl) == typeRuns {
			hasRun = true
			break
		}
	}

	buf := bytes.NewBuffer(make([]byte, 0, bm.serializedSize()))

	var withOffsets bool
	if hasRun {
		_ = binary.Write(buf, binary.LittleEndian, uint16(serialCookie))
		_ = binary.Write(buf, binary.LittleEndian, uint16(n-1)) // #nosec G115 -- n >= 1 when hasRun
		marker := make([]byte, (n+7)/8)
		for i, bl := range bm.blocks {
			if serializedKind(bl) == typeRuns {
				marker[i/8] |= 1 << (i % 8)
			}
		}
		buf.Write(marker)
		withOffsets = n >= noOffsetThreshold
	} else {
		_ = binary.Write(buf, binary.LittleEndian, uint32(serialNoRun))
		_ = binary.Write(buf, binary.LittleEndian, uint32(n)) // #nosec G115 -- at most 65536 blocks
		withOffsets = true
	}

	for i, bl := range bm.blocks {
		_ = binary.Write(buf, binary.LittleEndian, bm.keys[i])
		_ = binary.Write(buf, binary.LittleEndian, uint16(bl.card-1)) // #nosec G115 -- card in [1, 65536]
	}

	if withOffsets {
		off := buf.Len() + 4*n
		for _, bl := range bm.blocks {
			_ = binary.Write(buf, binary.LittleEndian, uint32(off)) // #nosec G115 -- streams stay under 2^32 bytes
			off += payloadSize(bl)
		}
	}

	for _, bl := range bm.blocks {
		switch serializedKind(bl) {
		case typeRuns:
			_ = binary.Write(buf, binary.LittleEndian, uint16(len(bl.runs))) // #nosec G115 -- at most 32768 runs
			for _, r := range bl.runs {
				_ = binary.Write(buf, binary.LittleEndian, r.start)
				_ = binary.Write(buf, binary.LittleEndian, r.end-r.start)
			}
		case typeArray:
			src := bl
			if src.kind != typeArray {
				src = bl.clone()
				src.toArrayKind()
			}
			_ = binary.Write(buf, binary.LittleEndian, src.array)
		default:
			_ = binary.Write(buf, binary.LittleEndian, asPacked(bl).words)
		}
	}

	written, err := w.Write(buf.Bytes())
	return int64(written), err
}

// countReader tracks how many bytes have been consumed from r.
type countReader struct {
	r io.Reader
	n int64
}

func (cr *countReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// ReadFrom replaces the bitmap's contents with a Roaring stream read from
// r. The stream's own header determines each block's encoding: the
// run-marker bit if present, otherwise the population threshold.
func (bm *Bitmap) ReadFrom(r io.Reader) (int64, error) {
	cr := &countReader{r: r}

	var cookie uint32
	if err := binary.Read(cr, binary.LittleEndian, &cookie); err != nil {
		return cr.n, fmt.Errorf("read cookie: %w", err)
	}

	var (
		n      int
		marker []byte
	)
	switch {
	case cookie == serialNoRun:
		var cnt uint32
		if err := binary.Read(cr, binary.LittleEndian, &cnt); err != nil {
			return cr.n, fmt.Errorf("read block count: %w", err)
		}
		if cnt > BlockBits {
			return cr.n, fmt.Errorf("%w: block count %d", ErrCorruptStream, cnt)
		}
		n = int(cnt)
	case cookie&0xFFFF == serialCookie:
		n = int(cookie>>16) + 1
		marker = make([]byte, (n+7)/8)
		if _, err := io.ReadFull(cr, marker); err != nil {
			return cr.n, fmt.Errorf("read run marker: %w", err)
		}
	default:
		return cr.n, fmt.Errorf("%w: %#x", ErrInvalidCookie, cookie)
	}

	keys := make([]uint16, n)
	cards := make([]int, n)
	for i := 0; i < n; i++ {
		var key, pop uint16
		if err := binary.Read(cr, binary.LittleEndian, &key); err != nil {
			return cr.n, fmt.Errorf("read block header: %w", err)
		}
		if err := binary.Read(cr, binary.LittleEndian, &pop); err != nil {
			return cr.n, fmt.Errorf("read block header: %w", err)
		}
		if i > 0 && key <= keys[i-1] {
			return cr.n, fmt.Errorf("%w: keys out of order", ErrCorruptStream)
		}
		keys[i] = key
		cards[i] = int(pop) + 1
	}

	withOffsets := marker == nil || n >= noOffsetThreshold
	if withOffsets && n > 0 {
		if _, err := io.CopyN(io.Discard, cr, int64(4*n)); err != nil {
			return cr.n, fmt.Errorf("read offset table: %w", err)
		}
	}

	blocks := make([]*block, n)
	for i := 0; i < n; i++ {
		bl, err := readBlockPayload(cr, cards[i], marker != nil && marker[i/8]&(1<<(i%8)) != 0)
		if err != nil {
			return cr.n, err
		}
		blocks[i] = bl
	}

	bm.keys = keys
	bm.blocks = blocks
	return cr.n, nil
}

// readBlockPayload reads one block, choosing the encoding from the run
// marker bit, else from the population threshold.
func readBlockPayload(r io.Reader, card int, isRun bool) (*block, error) {
	switch {
	case isRun:
		var cnt uint16
		if err := binary.Read(r, binary.LittleEndian, &cnt); err != nil {
			return nil, fmt.Errorf("read run count: %w", err)
		}
		runs := make([]interval, cnt)
		got := 0
		for k := range runs {
			var start, length uint16
			if err := binary.Read(r, binary.LittleEndian, &start); err != nil {
				return nil, fmt.Errorf("read run: %w", err)
			}
			if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
				return nil, fmt.Errorf("read run: %w", err)
			}
			if int(start)+int(length) > BlockBits-1 {
				return nil, fmt.Errorf("%w: run past block end", ErrCorruptStream)
			}
			if k > 0 && int(start) <= int(runs[k-1].end)+1 {
				return nil, fmt.Errorf("%w: runs out of order", ErrCorruptStream)
			}
			runs[k] = interval{start, start + length}
			got += int(length) + 1
		}
		if got != card {
			return nil, fmt.Errorf("%w: run population mismatch", ErrCorruptStream)
		}
		return &block{kind: typeRuns, card: card, runs: runs}, nil

	case card <= ArrayThreshold:
		array := make([]uint16, card)
		if err := binary.Read(r, binary.LittleEndian, array); err != nil {
			return nil, fmt.Errorf("read array block: %w", err)
		}
		for k := 1; k < len(array); k++ {
			if array[k] <= array[k-1] {
				return nil, fmt.Errorf("%w: array block out of order", ErrCorruptStream)
			}
		}
		return &block{kind: typeArray, card: card, array: array}, nil

	default:
		words := make([]uint64, PackedWords)
		if err := binary.Read(r, binary.LittleEndian, words); err != nil {
			return nil, fmt.Errorf("read packed block: %w", err)
		}
		got := 0
		for _, w := range words {
			got += bits.OnesCount64(w)
		}
		if got != card {
			return nil, fmt.Errorf("%w: packed population mismatch", ErrCorruptStream)
		}
		return &block{kind: typePacked, card: card, words: words}, nil
	}
}

// Read deserializes a bitmap from r.
func Read(r io.Reader) (*Bitmap, error) {
	bm := &Bitmap{}
	if _, err := bm.ReadFrom(r); err != nil {
		return nil, err
	}
	return bm, nil
}
