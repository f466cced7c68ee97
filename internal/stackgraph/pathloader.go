package stackgraph

import (
	"fmt"

	"github.com/standardbeagle/cozodb-core/internal/cozerr"
	"github.com/standardbeagle/cozodb-core/internal/debug"
	"github.com/standardbeagle/cozodb-core/internal/types"
	"github.com/standardbeagle/cozodb-core/internal/wire"
)

// PathLoader decodes node-path and root-path blobs on demand and interns
// the partial paths they contain into one Database, resolving each
// record's (file, local id) endpoints against a GraphLoader so a path
// landing in a not-yet-loaded file pulls that file's graph in too.
type PathLoader struct {
	store  *BlobStore
	loader *GraphLoader
	db     *Database
	stats  *StitchStats
}

// NewPathLoader wires a BlobStore and Database to the GraphLoader feeding
// the same arena.
func NewPathLoader(store *BlobStore, loader *GraphLoader, db *Database, stats *StitchStats) *PathLoader {
	return &PathLoader{store: store, loader: loader, db: db, stats: stats}
}

// LoadNodePaths pulls every not-yet-loaded node-path blob for (file,
// local) and interns its contained paths, returning their Database
// indices. An empty result is normal — most nodes have no stored paths.
func (pl *PathLoader) LoadNodePaths(file types.FileID, local uint32) ([]int, error) {
	blobs := pl.store.TakeNodePaths(file, local)
	what := fmt.Sprintf("node paths for %s:%d", file, local)
	var indices []int
	for _, blob := range blobs {
		decoded, err := pl.decodeAndIntern(blob, what)
		if err != nil {
			return nil, err
		}
		indices = append(indices, decoded...)
	}
	return indices, nil
}

// LoadRootPathsMatching pulls every not-yet-loaded root-path blob
// reachable by any of patterns and interns its contained paths.
func (pl *PathLoader) LoadRootPathsMatching(patterns []string) ([]int, error) {
	matches := pl.store.TakeRootPathsMatching(patterns)
	var indices []int
	for _, m := range matches {
		decoded, err := pl.decodeAndIntern(m.Blob, fmt.Sprintf("root paths for %s", m.FileID))
		if err != nil {
			return nil, err
		}
		indices = append(indices, decoded...)
	}
	return indices, nil
}

// decodeAndIntern runs one blob through decompress, structural decode, and
// endpoint resolution. Every failure is a cozerr.DeserializeBlob with
// `what` naming the blob: decompress failures tag BlobSourceDecode,
// everything after the bytes are open tags BlobSourceLoad.
func (pl *PathLoader) decodeAndIntern(blob types.Blob, what string) ([]int, error) {
	raw, err := wire.Decompress(blob)
	if err != nil {
		return nil, cozerr.NewDeserializeBlob(what, cozerr.BlobSourceDecode, err)
	}
	records, err := wire.DecodePathList(raw)
	if err != nil {
		return nil, cozerr.NewDeserializeBlob(what, cozerr.BlobSourceLoad, err)
	}
	pl.stats.BytesLoaded += int64(len(raw))

	indices := make([]int, 0, len(records))
	for _, rec := range records {
		path, err := pl.resolveRecord(rec, what)
		if err != nil {
			return nil, err
		}
		indices = append(indices, pl.db.Intern(path))
	}
	debug.LogLoad("interned %d paths from one blob", len(records))
	return indices, nil
}

func (pl *PathLoader) resolveRecord(rec wire.PathRecord, what string) (PartialPath, error) {
	start, err := pl.resolveEndpoint(types.FileID(rec.StartFile), rec.StartLocal, rec.StartIsRoot)
	if err != nil {
		return PartialPath{}, cozerr.NewDeserializeBlob(what, cozerr.BlobSourceLoad, fmt.Errorf("resolve path start: %w", err))
	}
	end, err := pl.resolveEndpoint(types.FileID(rec.EndFile), rec.EndLocal, rec.EndIsRoot)
	if err != nil {
		return PartialPath{}, cozerr.NewDeserializeBlob(what, cozerr.BlobSourceLoad, fmt.Errorf("resolve path end: %w", err))
	}

	return PartialPath{
		Start:         start,
		End:           end,
		Precondition:  SymbolStack{Symbols: rec.PreSymbols, HasVariable: rec.PreHasVar},
		Postcondition: SymbolStack{Symbols: rec.PostSymbols, HasVariable: rec.PostHasVar},
		PreLinksPost:  rec.PreLinksPost,
		EdgeCount:     int(rec.EdgeCount),
	}, nil
}

func (pl *PathLoader) resolveEndpoint(file types.FileID, local uint32, isRoot bool) (Handle, error) {
	if isRoot {
		return pl.loader.Graph().Root(), nil
	}
	if _, err := pl.loader.EnsureGraphLoaded(file); err != nil {
		return NoHandle, err
	}
	h, ok := pl.loader.Graph().LocalHandle(file, local)
	if !ok {
		return NoHandle, fmt.Errorf("no node %s:%d in loaded graph", file, local)
	}
	return h, nil
}
