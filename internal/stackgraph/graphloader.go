package stackgraph

import (
	"fmt"

	"github.com/standardbeagle/cozodb-core/internal/cozerr"
	"github.com/standardbeagle/cozodb-core/internal/debug"
	"github.com/standardbeagle/cozodb-core/internal/types"
	"github.com/standardbeagle/cozodb-core/internal/wire"
)

// GraphLoader owns the one BlobStore and StackGraph arena a resolution
// call assembles into: a file's graph fragment is decoded and merged into the arena at most
// once, the moment resolution first needs to walk an edge into it.
type GraphLoader struct {
	store *BlobStore
	graph *StackGraph
	stats *StitchStats
}

// NewGraphLoader wires a BlobStore to the arena it feeds.
func NewGraphLoader(store *BlobStore, graph *StackGraph, stats *StitchStats) *GraphLoader {
	return &GraphLoader{store: store, graph: graph, stats: stats}
}

// EnsureGraphLoaded loads file's graph fragment into the arena if it
// isn't already present, returning the File marker node's handle either
// way. A file with no registered graph row is cozerr.MissingData.
func (gl *GraphLoader) EnsureGraphLoaded(file types.FileID) (Handle, error) {
	if h, ok := gl.graph.FileHandle(file); ok {
		return h, nil
	}

	blob, err := gl.store.TakeGraph(file)
	if err != nil {
		// Already cozerr.MissingData, carrying the file ID.
		return NoHandle, err
	}
	if blob == nil {
		// Already taken by a concurrent or earlier caller without ever
		// landing in this arena — that should not happen for a single
		// resolution call's loader/arena pair, but report it plainly
		// rather than silently returning NoHandle.
		return NoHandle, cozerr.NewMissingData(fmt.Sprintf("graph for %s was already consumed by another loader", file))
	}

	raw, err := wire.Decompress(*blob)
	if err != nil {
		return NoHandle, cozerr.NewDeserializeBlob(fmt.Sprintf("graph for %s", file), cozerr.BlobSourceDecode, err)
	}
	payload, err := wire.DecodeGraphPayload(raw)
	if err != nil {
		return NoHandle, cozerr.NewDeserializeBlob(fmt.Sprintf("graph for %s", file), cozerr.BlobSourceLoad, err)
	}

	nodes := make([]Node, len(payload.Nodes))
	for i, rec := range payload.Nodes {
		nodes[i] = Node{
			Kind:    NodeKind(rec.Kind),
			Local:   rec.Local,
			HasSpan: rec.HasSpan,
			Symbol:  rec.Symbol,
		}
		if rec.HasSpan {
			nodes[i].Span = types.SourcePos{FileID: file, Start: rec.SpanStart, End: rec.SpanEnd}
		}
	}
	edges := make([][2]int, len(payload.Edges))
	for i, e := range payload.Edges {
		edges[i] = [2]int{int(e[0]), int(e[1])}
	}

	fileHandle, _ := gl.graph.AddFile(file, nodes, edges)
	gl.stats.GraphsLoaded++
	gl.stats.BytesLoaded += int64(len(raw))
	debug.LogLoad("loaded graph for %s: %d nodes, %d edges", file, len(nodes), len(edges))
	return fileHandle, nil
}

// Graph exposes the arena the loader feeds, for callers that need to walk
// it directly once files are loaded (the stitcher and driver).
func (gl *GraphLoader) Graph() *StackGraph { return gl.graph }
