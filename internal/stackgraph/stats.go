package stackgraph

// StitchStats counts the work one resolution query did. It rides
// alongside the resolution driver's output rows, never inside the output
// relation itself. The driver shares a single record across all of a
// query's references, so the counters are query-wide totals.
type StitchStats struct {
	CandidatesConsidered int
	PathsShadowed        int
	BlobsLoaded          int
	GraphsLoaded         int
	// BytesLoaded is the total decompressed size of every blob
	// materialized so far, compared against the advisory memory ceiling.
	BytesLoaded int64
}
