package stackgraph

import (
	"context"
	"sort"

	"github.com/standardbeagle/cozodb-core/internal/cozerr"
	"github.com/standardbeagle/cozodb-core/internal/debug"
	"github.com/standardbeagle/cozodb-core/internal/types"
)

// checkCancelled surfaces ctx's cancellation as a cozerr.Cancelled tagged
// with the call-site label, at each of the driver's suspension points.
func checkCancelled(ctx context.Context, label string) error {
	if err := ctx.Err(); err != nil {
		return cozerr.NewCancelled(label)
	}
	return nil
}

// CompletePath is one complete partial path the stitcher found: it ends
// on a definition node, paired with the originating reference's starting
// handle for sort/output purposes.
type CompletePath struct {
	Path PartialPath
}

// Stitch runs forward stitching with shadow elimination from
// one reference's set of starting node handles, returning the *actual*
// complete paths in (reference_source_pos, definition_source_pos) order.
func Stitch(ctx context.Context, adapter *Adapter, starts []Handle) ([]CompletePath, error) {
	if err := checkCancelled(ctx, "stitch:start"); err != nil {
		return nil, err
	}

	graph := adapter.Graph()

	worklist := make([]PartialPath, 0, len(starts))
	for _, h := range starts {
		worklist = append(worklist, IdentityPath(h))
	}

	var allComplete []PartialPath
	seen := make(map[uint64]PartialPath)

	for len(worklist) > 0 {
		if err := checkCancelled(ctx, "stitch:blob-load"); err != nil {
			return nil, err
		}

		p := worklist[0]
		worklist = worklist[1:]

		if err := adapter.LoadForwardCandidates(ctx, p); err != nil {
			return nil, err
		}

		var candidateHandles []PartialPathHandle
		adapter.GetForwardCandidates(p, &candidateHandles)

		for _, ch := range candidateHandles {
			candidate := adapter.Path(ch)
			next, ok := Concatenate(p, candidate)
			if !ok {
				continue
			}

			if isSimilarToSeen(next, seen) {
				continue
			}
			seen[structuralHash(next)] = next

			if graph.IsDefinition(next.End) {
				allComplete = append(allComplete, next)
			} else {
				worklist = append(worklist, next)
			}
		}
	}

	actual, shadowed := actualPaths(ctx, allComplete)
	if err := checkCancelled(ctx, "stitch:shadow-check"); err != nil {
		return nil, err
	}
	adapter.stats.PathsShadowed += shadowed

	out := make([]CompletePath, len(actual))
	for i, p := range actual {
		out[i] = CompletePath{Path: p}
	}
	sortCompletePaths(out, graph)
	debug.LogStitch("stitched %d complete paths (%d actual after shadow elimination)", len(allComplete), len(actual))
	return out, nil
}

// isSimilarToSeen implements the always-on similar-path detection that
// bounds the worklist: a path already seen with the same endpoints and
// pre/postcondition (structural equivalence) is dropped.
func isSimilarToSeen(p PartialPath, seen map[uint64]PartialPath) bool {
	_, ok := seen[structuralHash(p)]
	return ok
}

// actualPaths computes `{p in all : no q in all shadows p}`,
// returning the survivors and a count of how many were shadowed out.
func actualPaths(ctx context.Context, all []PartialPath) ([]PartialPath, int) {
	var actual []PartialPath
	shadowedCount := 0
	for i, p := range all {
		if checkCancelled(ctx, "stitch:shadow-check") != nil {
			// Cancellation mid-scan: return what's decided so far: the
			// caller checks ctx again immediately after and unwinds.
			return actual, shadowedCount
		}
		isShadowed := false
		for j, q := range all {
			if i == j {
				continue
			}
			if shadows(q, p) {
				isShadowed = true
				break
			}
		}
		if isShadowed {
			shadowedCount++
			continue
		}
		actual = append(actual, p)
	}
	return actual, shadowedCount
}

// sortCompletePaths orders by (reference_source_pos, definition_source_pos),
// ties broken by file ID then start byte then end byte, so the driver's
// output is deterministic.
func sortCompletePaths(paths []CompletePath, graph *StackGraph) {
	pos := func(h Handle) types.SourcePos {
		n := graph.Node(h)
		return n.Span
	}
	sort.SliceStable(paths, func(i, j int) bool {
		a, b := paths[i].Path, paths[j].Path
		refA, refB := pos(a.Start), pos(b.Start)
		if refA.FileID != refB.FileID {
			return refA.FileID < refB.FileID
		}
		if refA.Start != refB.Start {
			return refA.Start < refB.Start
		}
		if refA.End != refB.End {
			return refA.End < refB.End
		}
		defA, defB := pos(a.End), pos(b.End)
		if defA.FileID != defB.FileID {
			return defA.FileID < defB.FileID
		}
		if defA.Start != defB.Start {
			return defA.Start < defB.Start
		}
		return defA.End < defB.End
	})
}
