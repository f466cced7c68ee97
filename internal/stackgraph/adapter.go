package stackgraph

import (
	"context"

	"github.com/standardbeagle/cozodb-core/internal/cozerr"
	"github.com/standardbeagle/cozodb-core/internal/debug"
	"github.com/standardbeagle/cozodb-core/internal/types"
)

// PartialPathHandle indexes one partial path interned in a Database.
type PartialPathHandle int

// ForwardCandidates is the single capability boundary the path stitcher
// consumes: it wraps the blob store, graph loader, path loader, StackGraph,
// and partial-path Database, holding unique mutable access to all of them
// for one query.
type ForwardCandidates interface {
	LoadForwardCandidates(ctx context.Context, p PartialPath) error
	GetForwardCandidates(p PartialPath, sink *[]PartialPathHandle)
	JoiningCandidateDegree(p PartialPath) int
}

var _ ForwardCandidates = (*Adapter)(nil)

// Adapter is the concrete, sole implementation of ForwardCandidates.
type Adapter struct {
	graphs *GraphLoader
	paths  *PathLoader
	db     *Database
	stats  *StitchStats

	// maxBytes is the advisory memory ceiling (0 = unbounded). Crossing
	// it is traced, not enforced: the query keeps its determinism and the
	// caller reads the overshoot from the stats.
	maxBytes     uint64
	ceilingNoted bool

	// missingFiles accumulates file IDs the optional symbol-stack-to-file
	// index names for a postcondition reached at root, but for which no
	// graph blob was ever registered. The driver drains and resets
	// this list once per reference.
	missingFiles    []types.FileID
	missingFilesSet map[types.FileID]bool
}

// NewAdapter wires the loaders and database that back one resolution call.
func NewAdapter(graphs *GraphLoader, paths *PathLoader, db *Database, stats *StitchStats, maxBytes uint64) *Adapter {
	return &Adapter{graphs: graphs, paths: paths, db: db, stats: stats, maxBytes: maxBytes, missingFilesSet: make(map[types.FileID]bool)}
}

// noteMemoryCeiling traces the first blob load that pushes the query past
// the advisory ceiling.
func (a *Adapter) noteMemoryCeiling() {
	if a.maxBytes == 0 || a.ceilingNoted || uint64(a.stats.BytesLoaded) <= a.maxBytes {
		return
	}
	a.ceilingNoted = true
	debug.LogLoad("advisory memory ceiling exceeded: %d bytes loaded, ceiling %d", a.stats.BytesLoaded, a.maxBytes)
}

// ResetMissingFiles clears the accumulated missing-file list, called once
// per reference before stitching, so each reference reports its own misses.
func (a *Adapter) ResetMissingFiles() {
	a.missingFiles = nil
	a.missingFilesSet = make(map[types.FileID]bool)
}

// DrainMissingFiles returns the file IDs accumulated since the last reset.
func (a *Adapter) DrainMissingFiles() []types.FileID {
	return a.missingFiles
}

// LoadForwardCandidates is the only suspension point at which new blobs
// are materialized: it decides whether p's end node is the root or
// a file node and dispatches to the matching Path Loader entry.
func (a *Adapter) LoadForwardCandidates(ctx context.Context, p PartialPath) error {
	if err := ctx.Err(); err != nil {
		return cozerr.NewCancelled("load_forward_candidates")
	}

	graph := a.graphs.Graph()
	if graph.IsRoot(p.End) {
		patterns := LookupPatternsFromStack(p.Postcondition)
		indices, err := a.paths.LoadRootPathsMatching(patterns)
		if err != nil {
			return err
		}
		a.stats.BlobsLoaded += len(indices)
		a.noteMemoryCeiling()

		for _, pattern := range patterns {
			for _, fileID := range a.paths.store.FilesForPattern(pattern) {
				if a.paths.store.HasGraph(fileID) || a.missingFilesSet[fileID] {
					continue
				}
				a.missingFilesSet[fileID] = true
				a.missingFiles = append(a.missingFiles, fileID)
			}
		}
		return nil
	}

	node := graph.Node(p.End)
	indices, err := a.paths.LoadNodePaths(node.File, node.Local)
	if err != nil {
		return err
	}
	a.stats.BlobsLoaded += len(indices)
	a.noteMemoryCeiling()
	return nil
}

// GetForwardCandidates appends the handles of every interned partial path
// whose start node matches p's end node.
func (a *Adapter) GetForwardCandidates(p PartialPath, sink *[]PartialPathHandle) {
	candidates := a.db.FromNode(p.End)
	for _, idx := range candidates {
		*sink = append(*sink, PartialPathHandle(idx))
	}
	a.stats.CandidatesConsidered += len(candidates)
}

// JoiningCandidateDegree returns the in-degree of p.end_node in the
// partial-path database, used by the stitcher to bound work.
func (a *Adapter) JoiningCandidateDegree(p PartialPath) int {
	return len(a.db.FromNode(p.End))
}

// Path resolves a handle back to its interned PartialPath.
func (a *Adapter) Path(h PartialPathHandle) PartialPath {
	return a.db.Get(int(h))
}

// Graph exposes the arena for the driver's span/definition lookups.
func (a *Adapter) Graph() *StackGraph { return a.graphs.Graph() }

// EnsureGraphLoaded exposes the Graph Loader for the driver's per-
// reference setup.
func (a *Adapter) EnsureGraphLoaded(file types.FileID) (Handle, error) {
	return a.graphs.EnsureGraphLoaded(file)
}
