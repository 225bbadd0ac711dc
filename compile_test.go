package bitmapengine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xflash-panda/bitmap-engine/pkg/bitmap"
	"github.com/xflash-panda/bitmap-engine/pkg/bitmap64"
	"github.com/xflash-panda/bitmap-engine/pkg/bitmapcache"
)

// TestPublicAPI drives the exported surface of every package end to end:
// build a set, query it, run the algebra, serialize it, and load it back
// through the cached store.
func TestPublicAPI(t *testing.T) {
	bm := bitmap.New(0, 1, 1<<16, 1<<20, 1<<30)
	require.Equal(t, uint64(5), bm.Count1())
	require.True(t, bm.Contains(1<<16))
	require.Equal(t, uint64(3), bm.Rank1(1<<17))

	got, ok := bm.Select1(3)
	require.True(t, ok)
	require.Equal(t, uint32(1<<20), got)

	require.True(t, bm.Remove(1<<16))
	require.Equal(t, uint64(4), bm.Count1())

	other := bitmap.New(1, 2, 1<<30)
	union := bitmap.Or(bm, other)
	require.Equal(t, []uint32{0, 1, 2, 1 << 20, 1 << 30}, union.ToArray())
	require.True(t, bitmap.Xor(union, union).IsEmpty())

	union.Optimize()

	// Serialize to a file and load it back through the store.
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "union"+bitmapcache.DefaultExtension))
	require.NoError(t, err)
	_, err = union.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	store, err := bitmapcache.NewStore(dir)
	require.NoError(t, err)
	loaded, err := store.Get("union")
	require.NoError(t, err)
	assert.True(t, loaded.Equal(union))

	contains, err := store.Contains("union", 1<<20)
	require.NoError(t, err)
	assert.True(t, contains)

	// The 64-bit layer composes the same operations above 2^32.
	wide := bitmap64.New(1, 1<<40, 1<<63)
	require.True(t, wide.Contains(1<<40))
	require.Equal(t, uint64(2), wide.Rank1(1<<63))
	pos, ok := wide.Select1(2)
	require.True(t, ok)
	assert.Equal(t, uint64(1)<<63, pos)
}
