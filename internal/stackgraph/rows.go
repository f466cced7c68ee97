package stackgraph

import (
	"github.com/standardbeagle/cozodb-core/internal/types"
	"github.com/standardbeagle/cozodb-core/internal/wire"
)

// Minimal arities for the input relations. Extra trailing columns are
// tolerated (and ignored) rather than rejected, so producers can grow
// their row schemas without breaking older readers, but rows shorter than
// the minimum still fail the length check.
const (
	graphRowMinLen         = 3
	nodePathRowMinLen      = 5
	rootPathRowMinLen      = 5
	rootPathIndexRowMinLen = 2
)

func expectMinLen(t wire.Tuple, n int) error {
	if len(t) < n {
		return t.ExpectLen(n)
	}
	return nil
}

// DecodeGraphRow decodes one `graphs` row: (file_id, uncompressed_len, value).
func DecodeGraphRow(t wire.Tuple) (GraphRow, error) {
	if err := expectMinLen(t, graphRowMinLen); err != nil {
		return GraphRow{}, err
	}
	fileID, err := t.String(0)
	if err != nil {
		return GraphRow{}, err
	}
	length, err := t.Uint32(1)
	if err != nil {
		return GraphRow{}, err
	}
	data, err := t.Bytes(2)
	if err != nil {
		return GraphRow{}, err
	}
	return GraphRow{FileID: types.FileID(fileID), Blob: types.Blob{UncompressedLen: length, Data: data}}, nil
}

// DecodeNodePathRow decodes one `node_paths` row: (file_id,
// start_local_id, discriminator, uncompressed_len, value).
func DecodeNodePathRow(t wire.Tuple) (NodePathRow, error) {
	if err := expectMinLen(t, nodePathRowMinLen); err != nil {
		return NodePathRow{}, err
	}
	fileID, err := t.String(0)
	if err != nil {
		return NodePathRow{}, err
	}
	local, err := t.Uint32(1)
	if err != nil {
		return NodePathRow{}, err
	}
	disc, err := t.Int64(2)
	if err != nil {
		return NodePathRow{}, err
	}
	length, err := t.Uint32(3)
	if err != nil {
		return NodePathRow{}, err
	}
	data, err := t.Bytes(4)
	if err != nil {
		return NodePathRow{}, err
	}
	return NodePathRow{
		FileID:        types.FileID(fileID),
		StartLocalID:  local,
		Discriminator: disc,
		Blob:          types.Blob{UncompressedLen: length, Data: data},
	}, nil
}

// DecodeRootPathRow decodes one `root_paths` row: (file_id, symbol_stack,
// discriminator, uncompressed_len, value).
func DecodeRootPathRow(t wire.Tuple) (RootPathRow, error) {
	if err := expectMinLen(t, rootPathRowMinLen); err != nil {
		return RootPathRow{}, err
	}
	fileID, err := t.String(0)
	if err != nil {
		return RootPathRow{}, err
	}
	symbolStack, err := t.String(1)
	if err != nil {
		return RootPathRow{}, err
	}
	disc, err := t.Int64(2)
	if err != nil {
		return RootPathRow{}, err
	}
	length, err := t.Uint32(3)
	if err != nil {
		return RootPathRow{}, err
	}
	data, err := t.Bytes(4)
	if err != nil {
		return RootPathRow{}, err
	}
	return RootPathRow{
		FileID:        types.FileID(fileID),
		SymbolStack:   symbolStack,
		Discriminator: disc,
		Blob:          types.Blob{UncompressedLen: length, Data: data},
	}, nil
}

// DecodeRootPathIndexRow decodes one optional `root_paths_index` row:
// (symbol_stack, file_id).
func DecodeRootPathIndexRow(t wire.Tuple) (RootPathIndexRow, error) {
	if err := expectMinLen(t, rootPathIndexRowMinLen); err != nil {
		return RootPathIndexRow{}, err
	}
	symbolStack, err := t.String(0)
	if err != nil {
		return RootPathIndexRow{}, err
	}
	fileID, err := t.String(1)
	if err != nil {
		return RootPathIndexRow{}, err
	}
	return RootPathIndexRow{SymbolStack: symbolStack, FileID: types.FileID(fileID)}, nil
}
