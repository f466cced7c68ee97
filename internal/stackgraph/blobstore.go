package stackgraph

import (
	"github.com/standardbeagle/cozodb-core/internal/cozerr"
	"github.com/standardbeagle/cozodb-core/internal/types"
	"github.com/standardbeagle/cozodb-core/internal/wire"
)

// loadState tracks a blob entry's lifecycle: once loaded, a blob is never
// reissued.
type loadState uint8

const (
	stateUnloaded loadState = iota
	stateLoaded
)

type graphEntry struct {
	blob  types.Blob
	state loadState
}

type nodePathEntry struct {
	blobs []types.Blob
	state loadState
}

type rootPathEntry struct {
	file  types.FileID
	blob  types.Blob
	state loadState
}

// BlobStore owns the three indexed maps of unloaded graph/node-path/
// root-path blobs and their load-state markers.
type BlobStore struct {
	graphs map[types.FileID]*graphEntry

	nodePaths map[nodePathKey]*nodePathEntry

	// rootPathsByKey maps a storage key to the entries of every blob
	// reachable under that key; one blob may be reachable
	// under several keys but is only ever loaded once (tracked on the
	// shared *rootPathEntry).
	rootPathsByKey map[string][]*rootPathEntry

	// symbolStackFiles is the optional symbol-stack-to-file index used
	// for missing-file detection during root-path loads.
	symbolStackFiles map[string][]types.FileID
	hasFileIndex     bool
}

type nodePathKey struct {
	file  types.FileID
	local uint32
}

// GraphRow, NodePathRow, RootPathRow, and RootPathIndexRow mirror the
// four input relations, already decoded from the wire tuple shape.
type GraphRow struct {
	FileID types.FileID
	Blob   types.Blob
}

type NodePathRow struct {
	FileID        types.FileID
	StartLocalID  uint32
	Discriminator int64
	Blob          types.Blob
}

type RootPathRow struct {
	FileID        types.FileID
	SymbolStack   string
	Discriminator int64
	Blob          types.Blob
}

type RootPathIndexRow struct {
	SymbolStack string
	FileID      types.FileID
}

// NewBlobStore consumes the four input relations and builds the store,
// requiring that every file a path row references has a graph row and
// that no file supplies two graph rows.
func NewBlobStore(graphRows []GraphRow, nodePathRows []NodePathRow, rootPathRows []RootPathRow, indexRows []RootPathIndexRow, hasIndex bool) (*BlobStore, error) {
	bs := &BlobStore{
		graphs:           make(map[types.FileID]*graphEntry, len(graphRows)),
		nodePaths:        make(map[nodePathKey]*nodePathEntry),
		rootPathsByKey:   make(map[string][]*rootPathEntry),
		symbolStackFiles: make(map[string][]types.FileID),
		hasFileIndex:     hasIndex,
	}

	for _, row := range graphRows {
		if row.FileID == "" {
			return nil, cozerr.NewMissingData("graph row with empty file id")
		}
		if _, dup := bs.graphs[row.FileID]; dup {
			return nil, cozerr.NewDuplicateGraph(row.FileID)
		}
		bs.graphs[row.FileID] = &graphEntry{blob: row.Blob}
	}

	for _, row := range nodePathRows {
		if _, ok := bs.graphs[row.FileID]; !ok {
			return nil, cozerr.NewUnknownFile(row.FileID)
		}
		key := nodePathKey{file: row.FileID, local: row.StartLocalID}
		entry, ok := bs.nodePaths[key]
		if !ok {
			entry = &nodePathEntry{}
			bs.nodePaths[key] = entry
		}
		entry.blobs = append(entry.blobs, row.Blob)
	}

	// Group root-path rows by the blob they belong to, so a blob that
	// happens to be stored once but addressed by several prefix patterns
	// is still loaded at most once.
	for _, row := range rootPathRows {
		if _, ok := bs.graphs[row.FileID]; !ok {
			return nil, cozerr.NewUnknownFile(row.FileID)
		}
		entry := &rootPathEntry{file: row.FileID, blob: row.Blob}
		for _, pattern := range PatternsFromStorageKey(row.SymbolStack) {
			bs.rootPathsByKey[pattern] = append(bs.rootPathsByKey[pattern], entry)
		}
		// The exact key itself is always a valid probe target even if
		// PatternsFromStorageKey's prefix expansion didn't parse it.
		bs.rootPathsByKey[row.SymbolStack] = append(bs.rootPathsByKey[row.SymbolStack], entry)
	}

	// The index is expanded by the same PatternsFromStorageKey logic as
	// root-path blobs, so a probe pattern derived from a real postcondition
	// during stitching (LookupPatternsFromStack) can hit an index entry
	// whose own key is a longer, more specific storage key.
	if hasIndex {
		for _, row := range indexRows {
			for _, pattern := range PatternsFromStorageKey(row.SymbolStack) {
				bs.symbolStackFiles[pattern] = appendUniqueFile(bs.symbolStackFiles[pattern], row.FileID)
			}
			bs.symbolStackFiles[row.SymbolStack] = appendUniqueFile(bs.symbolStackFiles[row.SymbolStack], row.FileID)
		}
	}

	return bs, nil
}

// TakeGraph returns the graph blob for file the first time; every later
// call returns (nil, nil).
// A wholly unknown file is MissingData.
func (bs *BlobStore) TakeGraph(file types.FileID) (*types.Blob, error) {
	entry, ok := bs.graphs[file]
	if !ok {
		return nil, cozerr.NewMissingData("no graph registered for file " + string(file))
	}
	if entry.state == stateLoaded {
		return nil, nil
	}
	entry.state = stateLoaded
	blob := entry.blob
	return &blob, nil
}

// TakeNodePaths returns the node-path blobs for (file, local) the first
// time; absence of any paths for a valid node is not an error — many
// nodes have none.
func (bs *BlobStore) TakeNodePaths(file types.FileID, local uint32) []types.Blob {
	entry, ok := bs.nodePaths[nodePathKey{file: file, local: local}]
	if !ok || entry.state == stateLoaded {
		return nil
	}
	entry.state = stateLoaded
	return entry.blobs
}

// RootPathMatch is one (file, blob) pair yielded by TakeRootPathsMatching.
type RootPathMatch struct {
	FileID types.FileID
	Blob   types.Blob
}

// TakeRootPathsMatching yields each root-path blob reachable by any of
// patterns exactly once across their union, then marks it loaded.
func (bs *BlobStore) TakeRootPathsMatching(patterns []string) []RootPathMatch {
	seen := make(map[*rootPathEntry]bool)
	var out []RootPathMatch
	for _, pattern := range patterns {
		for _, entry := range bs.rootPathsByKey[pattern] {
			if entry.state == stateLoaded || seen[entry] {
				continue
			}
			seen[entry] = true
			entry.state = stateLoaded
			out = append(out, RootPathMatch{FileID: entry.file, Blob: entry.blob})
		}
	}
	return out
}

// FilesForPattern returns the file IDs the optional symbol-stack-to-file
// index associates with pattern, for missing-file detection.
func (bs *BlobStore) FilesForPattern(pattern string) []types.FileID {
	if !bs.hasFileIndex {
		return nil
	}
	return bs.symbolStackFiles[pattern]
}

func appendUniqueFile(files []types.FileID, file types.FileID) []types.FileID {
	for _, f := range files {
		if f == file {
			return files
		}
	}
	return append(files, file)
}

// HasGraph reports whether file has a registered graph blob (loaded or not).
func (bs *BlobStore) HasGraph(file types.FileID) bool {
	_, ok := bs.graphs[file]
	return ok
}

// DecompressBlob sniffs and decompresses b, returning the raw bytes ready
// for structural deserialization.
func DecompressBlob(b types.Blob) ([]byte, error) {
	return wire.Decompress(b)
}
