package stackgraph

import (
	"context"
	"time"

	"github.com/standardbeagle/cozodb-core/internal/cozerr"
	"github.com/standardbeagle/cozodb-core/internal/types"
)

// ResultKind distinguishes the two non-null shapes an OutputRow may
// carry; exactly one of the definition and missing-file columns is
// non-null per row.
type ResultKind uint8

const (
	ResultDefinition ResultKind = iota
	ResultMissingFile
)

// OutputRow is one row of the arity-3 output relation: the printed
// reference, and exactly one of a definition position or a missing file
// ID.
type OutputRow struct {
	Reference     string
	Kind          ResultKind
	Definition    types.SourcePos
	MissingFileID types.FileID
}

// DriverInputs bundles the four input relations the resolution driver
// consumes, already decoded into their row types.
type DriverInputs struct {
	GraphRows     []GraphRow
	NodePathRows  []NodePathRow
	RootPathRows  []RootPathRow
	IndexRows     []RootPathIndexRow
	HasIndex      bool
}

// DriverOptions holds the query's named parameters.
type DriverOptions struct {
	References         []string
	OutputMissingFiles bool
	Timeout            time.Duration // 0 = no timeout
	MaxBytes           uint64        // 0 = unbounded, advisory only
}

// Driver owns one resolution call's BlobStore, StackGraph arena, Database,
// and Adapter, and runs the per-reference resolution loop.
type Driver struct {
	adapter *Adapter
	opts    DriverOptions
	stats   *StitchStats
}

// NewDriver assembles a Driver from DriverInputs; BlobStore construction
// validates the input relations' cross-references.
func NewDriver(inputs DriverInputs, opts DriverOptions) (*Driver, error) {
	store, err := NewBlobStore(inputs.GraphRows, inputs.NodePathRows, inputs.RootPathRows, inputs.IndexRows, inputs.HasIndex)
	if err != nil {
		return nil, err
	}

	graph := NewStackGraph()
	db := NewDatabase()
	stats := &StitchStats{}
	loader := NewGraphLoader(store, graph, stats)
	pathLoader := NewPathLoader(store, loader, db, stats)
	adapter := NewAdapter(loader, pathLoader, db, stats, opts.MaxBytes)

	// With the optional index present, missing-file output is always on:
	// OutputMissingFiles is forced to true here, and a caller's false is
	// not honoured. Without the index, OutputMissingFiles is used as given.
	if inputs.HasIndex {
		opts.OutputMissingFiles = true
	}

	return &Driver{adapter: adapter, opts: opts, stats: stats}, nil
}

// Run resolves every configured reference in order, converting the
// caller's timeout into ctx's deadline.
func (d *Driver) Run(ctx context.Context) ([]OutputRow, StitchStats, error) {
	if d.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()
	}

	// Reference parsing is validation: every position must parse before
	// any graph is loaded, so a bad reference never yields partial work.
	refs := make([]types.SourcePos, len(d.opts.References))
	for i, printed := range d.opts.References {
		ref, err := types.ParseSourcePos(printed)
		if err != nil {
			return nil, *d.stats, cozerr.NewInvalidReference(printed, "bad file:start:end", err)
		}
		refs[i] = ref
	}

	var out []OutputRow
	for i, ref := range refs {
		if err := checkCancelled(ctx, "driver:reference"); err != nil {
			return nil, *d.stats, err
		}

		rows, err := d.runOneReference(ctx, d.opts.References[i], ref)
		if err != nil {
			return nil, *d.stats, err
		}
		out = append(out, rows...)
	}
	return out, *d.stats, nil
}

func (d *Driver) runOneReference(ctx context.Context, printed string, ref types.SourcePos) ([]OutputRow, error) {
	if _, err := d.adapter.EnsureGraphLoaded(ref.FileID); err != nil {
		return nil, err
	}

	starts := d.adapter.Graph().NodesAt(ref.FileID, ref)
	if len(starts) == 0 {
		return nil, cozerr.NewUnresolvedReference(ref)
	}

	d.adapter.ResetMissingFiles()

	complete, err := Stitch(ctx, d.adapter, starts)
	if err != nil {
		return nil, err
	}
	missingFiles := d.adapter.DrainMissingFiles()

	var rows []OutputRow
	for _, cp := range complete {
		defNode := d.adapter.Graph().Node(cp.Path.End)
		if !defNode.HasSpan {
			continue
		}
		rows = append(rows, OutputRow{
			Reference:  printed,
			Kind:       ResultDefinition,
			Definition: defNode.Span,
		})
	}

	if d.opts.OutputMissingFiles {
		for _, fileID := range missingFiles {
			rows = append(rows, OutputRow{
				Reference:     printed,
				Kind:          ResultMissingFile,
				MissingFileID: fileID,
			})
		}
	}

	return rows, nil
}

