// Package bitmapcache loads serialized bitmaps from disk and keeps a
// bounded number of them resident behind an LRU cache, so hot sets can be
// queried repeatedly without re-reading their files.
package bitmapcache

import (
	"fmt"
	"os"

	"github.com/xflash-panda/bitmap-engine/pkg/bitmap"
)

// Open reads a Roaring-serialized bitmap from a file.
func Open(filename string) (*bitmap.Bitmap, error) {
	f, err := os.Open(filename) // #nosec G304 -- caller controls the path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	bm, err := bitmap.Read(f)
	if err != nil {
		return nil, fmt.Errorf("load bitmap %s: %w", filename, err)
	}
	return bm, nil
}

// Verify checks that a file holds a readable serialized bitmap.
func Verify(filename string) error {
	_, err := Open(filename)
	return err
}
