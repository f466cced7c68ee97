package stackgraph

import "github.com/standardbeagle/cozodb-core/internal/types"

// Handle is a stable 32-bit index into a StackGraph arena. Handles never
// change once issued: nodes and edges reference each other by handle value,
// never by pointer, so the arena has no owning cycles.
type Handle uint32

// NoHandle is the zero value, used as a sentinel for "no node" (e.g. an
// edge's sink when building incrementally).
const NoHandle Handle = 0

// NodeKind distinguishes the handful of node roles this engine's
// simplified stack-graph model needs to drive stitching and definition
// lookup. The full stack-graphs formalism (scopes, attributes, pops/pushes
// of scoped symbols) is reused conceptually but not re-implemented here:
// everything stitching needs is carried on the partial paths themselves.
type NodeKind uint8

const (
	NodeKindRoot NodeKind = iota
	NodeKindFile
	NodeKindDefinition
	NodeKindReference
	NodeKindScope
)

// Node is one vertex of the stack graph: either the single global Root,
// a per-file File marker, or a definition/reference/scope node that
// belongs to exactly one file.
type Node struct {
	Kind NodeKind
	File types.FileID // empty for the Root node
	// Local is the file-local ID used by the wire format's
	// (file_id, start_local_id) key for node-path lookups.
	Local uint32
	// Span is present for Definition and Reference nodes; it is the
	// zero value for Root, File, and Scope nodes.
	Span    types.SourcePos
	HasSpan bool
	// Symbol is the symbol a Definition/Reference node binds or looks up.
	Symbol string
}

// Edge is a directed edge between two node handles. Edges carry no
// payload of their own in this simplified model — the interesting state
// (symbol stack pre/postconditions) lives on PartialPath, not on Edge.
type Edge struct {
	Sink Handle
}

// StackGraph is the arena of Files, Nodes, and Edges built up across one
// resolution call by appending per-file graphs into a single union
// structure.
type StackGraph struct {
	nodes []Node
	edges map[Handle][]Edge

	rootHandle Handle
	fileRoots  map[types.FileID]Handle
	// localIndex resolves (file, local id) -> handle for node-path loads.
	localIndex map[localKey]Handle
}

type localKey struct {
	file  types.FileID
	local uint32
}

// NewStackGraph creates an empty graph with the Root node pre-allocated
// at handle 1 (handle 0 is reserved as NoHandle).
func NewStackGraph() *StackGraph {
	g := &StackGraph{
		edges:      make(map[Handle][]Edge),
		fileRoots:  make(map[types.FileID]Handle),
		localIndex: make(map[localKey]Handle),
	}
	g.nodes = append(g.nodes, Node{}) // handle 0 := NoHandle placeholder
	g.rootHandle = g.addNode(Node{Kind: NodeKindRoot})
	return g
}

// Root returns the handle of the single global root node.
func (g *StackGraph) Root() Handle { return g.rootHandle }

func (g *StackGraph) addNode(n Node) Handle {
	h := Handle(len(g.nodes))
	g.nodes = append(g.nodes, n)
	return h
}

// Node returns the node record at h. Panics on an out-of-range handle,
// which would indicate an internal bug (a handle from another graph),
// never a condition user input can trigger.
func (g *StackGraph) Node(h Handle) Node {
	return g.nodes[h]
}

// HasFile reports whether a file's graph has been loaded into this arena.
func (g *StackGraph) HasFile(file types.FileID) bool {
	_, ok := g.fileRoots[file]
	return ok
}

// FileHandle returns the File marker node's handle for a loaded file.
func (g *StackGraph) FileHandle(file types.FileID) (Handle, bool) {
	h, ok := g.fileRoots[file]
	return h, ok
}

// AddFile inserts a new per-file graph fragment. nodes must not include a
// Root entry; AddFile assigns fresh handles and returns the File marker's
// handle plus a slice parallel to nodes giving each node's new handle, so
// the caller (Graph Loader) can translate any locally-numbered edges.
func (g *StackGraph) AddFile(file types.FileID, nodes []Node, edges [][2]int) (Handle, []Handle) {
	fileHandle := g.addNode(Node{Kind: NodeKindFile, File: file})
	g.fileRoots[file] = fileHandle

	handles := make([]Handle, len(nodes))
	for i, n := range nodes {
		n.File = file
		h := g.addNode(n)
		handles[i] = h
		if n.Kind == NodeKindDefinition || n.Kind == NodeKindReference || n.Kind == NodeKindScope {
			g.localIndex[localKey{file: file, local: n.Local}] = h
		}
	}

	for _, e := range edges {
		from := handles[e[0]]
		to := handles[e[1]]
		g.edges[from] = append(g.edges[from], Edge{Sink: to})
	}

	return fileHandle, handles
}

// NodesAt returns every node handle in file whose span equals pos exactly.
// Several nodes (identifier, attribute, ...) may share one span.
func (g *StackGraph) NodesAt(file types.FileID, pos types.SourcePos) []Handle {
	var out []Handle
	for local, h := range g.localIndex {
		if local.file != file {
			continue
		}
		n := g.nodes[h]
		if n.HasSpan && n.Span.Start == pos.Start && n.Span.End == pos.End {
			out = append(out, h)
		}
	}
	return out
}

// LocalHandle resolves a (file, local id) pair to its node handle, used by
// the path loader when keying node-path blobs.
func (g *StackGraph) LocalHandle(file types.FileID, local uint32) (Handle, bool) {
	h, ok := g.localIndex[localKey{file: file, local: local}]
	return h, ok
}

// IsDefinition reports whether h is a node a complete partial path may
// legally end on.
func (g *StackGraph) IsDefinition(h Handle) bool {
	return g.nodes[h].Kind == NodeKindDefinition
}

// IsRoot reports whether h is the global root.
func (g *StackGraph) IsRoot(h Handle) bool {
	return h == g.rootHandle
}
