package stackgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/cozodb-core/internal/cozerr"
	"github.com/standardbeagle/cozodb-core/internal/types"
	"github.com/standardbeagle/cozodb-core/internal/wire"
)

func TestDecodeGraphRow(t *testing.T) {
	row, err := DecodeGraphRow(wire.Tuple{"a.py", 5, []byte("hello")})
	require.NoError(t, err)
	assert.Equal(t, types.FileID("a.py"), row.FileID)
	assert.Equal(t, uint32(5), row.Blob.UncompressedLen)
	assert.Equal(t, []byte("hello"), row.Blob.Data)
}

func TestDecodeGraphRowShortTuple(t *testing.T) {
	_, err := DecodeGraphRow(wire.Tuple{"a.py", 5})
	require.Error(t, err)
	var lenErr *cozerr.TupleLenError
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, 3, lenErr.Expected)
	assert.Equal(t, 2, lenErr.Got)
}

// TestDecodeGraphRowExtraColumnsTolerated: trailing columns past the
// minimum arity are ignored, so producers can grow their row schemas.
func TestDecodeGraphRowExtraColumnsTolerated(t *testing.T) {
	row, err := DecodeGraphRow(wire.Tuple{"a.py", 5, []byte("hello"), int64(2), "schema-tag"})
	require.NoError(t, err)
	assert.Equal(t, types.FileID("a.py"), row.FileID)
	assert.Equal(t, []byte("hello"), row.Blob.Data)
}

func TestDecodeGraphRowWrongColumnType(t *testing.T) {
	_, err := DecodeGraphRow(wire.Tuple{42, 5, []byte("hello")})
	require.Error(t, err)
	var typeErr *cozerr.TupleElemTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, 0, typeErr.Index)

	_, err = DecodeGraphRow(wire.Tuple{"a.py", 5, "not bytes"})
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, 2, typeErr.Index)
}

func TestDecodeNodePathRow(t *testing.T) {
	row, err := DecodeNodePathRow(wire.Tuple{"a.py", uint32(7), int64(3), 4, []byte("blob")})
	require.NoError(t, err)
	assert.Equal(t, types.FileID("a.py"), row.FileID)
	assert.Equal(t, uint32(7), row.StartLocalID)
	assert.Equal(t, int64(3), row.Discriminator)
	assert.Equal(t, uint32(4), row.Blob.UncompressedLen)

	_, err = DecodeNodePathRow(wire.Tuple{"a.py", uint32(7), int64(3), 4})
	var lenErr *cozerr.TupleLenError
	require.ErrorAs(t, err, &lenErr)

	// Extra trailing columns are ignored.
	row, err = DecodeNodePathRow(wire.Tuple{"a.py", uint32(7), int64(3), 4, []byte("blob"), "extra"})
	require.NoError(t, err)
	assert.Equal(t, uint32(7), row.StartLocalID)
}

func TestDecodeRootPathRow(t *testing.T) {
	row, err := DecodeRootPathRow(wire.Tuple{"b.py", "X␞foo", int64(0), 2, []byte("xy")})
	require.NoError(t, err)
	assert.Equal(t, types.FileID("b.py"), row.FileID)
	assert.Equal(t, "X␞foo", row.SymbolStack)

	_, err = DecodeRootPathRow(wire.Tuple{"b.py"})
	var lenErr *cozerr.TupleLenError
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, 5, lenErr.Expected)
}

func TestDecodeRootPathIndexRow(t *testing.T) {
	row, err := DecodeRootPathIndexRow(wire.Tuple{"X␞foo", "c.py"})
	require.NoError(t, err)
	assert.Equal(t, "X␞foo", row.SymbolStack)
	assert.Equal(t, types.FileID("c.py"), row.FileID)

	_, err = DecodeRootPathIndexRow(wire.Tuple{"X␞foo"})
	var lenErr *cozerr.TupleLenError
	require.ErrorAs(t, err, &lenErr)

	row, err = DecodeRootPathIndexRow(wire.Tuple{"X␞foo", "c.py", int64(9)})
	require.NoError(t, err)
	assert.Equal(t, types.FileID("c.py"), row.FileID)
}

// TestRowIntegerCoercions: the decode layer accepts whichever integer
// representation the evaluator hands over, as long as the value fits.
func TestRowIntegerCoercions(t *testing.T) {
	for _, v := range []any{int(7), int64(7), uint32(7), uint64(7)} {
		row, err := DecodeNodePathRow(wire.Tuple{"a.py", v, int64(0), v, []byte("b")})
		require.NoError(t, err, "uncompressed_len/local_id as %T", v)
		assert.Equal(t, uint32(7), row.StartLocalID)
		assert.Equal(t, uint32(7), row.Blob.UncompressedLen)
	}

	// Discriminator accepts int and int64.
	for _, v := range []any{int(-2), int64(-2)} {
		row, err := DecodeNodePathRow(wire.Tuple{"a.py", 1, v, 0, []byte{}})
		require.NoError(t, err, "discriminator as %T", v)
		assert.Equal(t, int64(-2), row.Discriminator)
	}

	// Out-of-range and negative values are rejected with the column index.
	var typeErr *cozerr.TupleElemTypeError
	_, err := DecodeNodePathRow(wire.Tuple{"a.py", int(-1), int64(0), 0, []byte{}})
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, 1, typeErr.Index)

	_, err = DecodeNodePathRow(wire.Tuple{"a.py", int64(1) << 40, int64(0), 0, []byte{}})
	require.ErrorAs(t, err, &typeErr)

	_, err = DecodeNodePathRow(wire.Tuple{"a.py", uint64(1) << 40, int64(0), 0, []byte{}})
	require.ErrorAs(t, err, &typeErr)

	_, err = DecodeNodePathRow(wire.Tuple{"a.py", 1, "not-an-int", 0, []byte{}})
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, 2, typeErr.Index)
}
