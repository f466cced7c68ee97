// Package wire handles everything at the boundary between opaque bytes
// and the resolution core's in-memory types: blob decompression, input
// tuple decoding, and the compact binary encoding used for serialized
// graphs and partial paths.
package wire

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/standardbeagle/cozodb-core/internal/cozerr"
	"github.com/standardbeagle/cozodb-core/internal/types"
)

// Decompress returns b's payload ready for structural deserialization,
// decompressing it with Zstd if the magic-number sniff (types.Blob.
// IsCompressed) matches, otherwise returning Data verbatim. Failures are
// cozerr.DeserializeBlob at the decode stage; callers deserializing the
// result report their own at the load stage.
func Decompress(b types.Blob) ([]byte, error) {
	if !b.IsCompressed() {
		return b.Data, nil
	}

	dec, err := zstd.NewReader(bytes.NewReader(b.Data))
	if err != nil {
		return nil, cozerr.NewDeserializeBlob("blob", cozerr.BlobSourceDecode, fmt.Errorf("open zstd frame: %w", err))
	}
	defer dec.Close()

	out := make([]byte, 0, b.UncompressedLen)
	buf := bytes.NewBuffer(out)
	if _, err := buf.ReadFrom(dec); err != nil {
		return nil, cozerr.NewDeserializeBlob("blob", cozerr.BlobSourceDecode, fmt.Errorf("decompress zstd frame: %w", err))
	}
	if uint32(buf.Len()) != b.UncompressedLen {
		return nil, cozerr.NewDeserializeBlob("blob", cozerr.BlobSourceDecode,
			fmt.Errorf("decompressed to %d bytes, expected %d", buf.Len(), b.UncompressedLen))
	}
	return buf.Bytes(), nil
}

var zstdEncoder *zstd.Encoder

// Compress wraps data in a Zstd frame, for tests and the CLI
// demonstrator's ingestion path that builds synthetic blobs.
func Compress(data []byte) (types.Blob, error) {
	if zstdEncoder == nil {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return types.Blob{}, cozerr.NewDeserializeBlob("blob", cozerr.BlobSourceDecode, fmt.Errorf("open zstd writer: %w", err))
		}
		zstdEncoder = enc
	}
	compressed := zstdEncoder.EncodeAll(data, nil)
	return types.Blob{UncompressedLen: uint32(len(data)), Data: compressed}, nil
}
