package stackgraph

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/cozodb-core/internal/alloc"
)

// PartialPath is a segment of resolution through one file's graph (a node
// path) or through the root (a root path). Pre/post condition symbol
// stacks gate concatenation. PreLinksPost marks the zero-length identity
// paths the stitcher seeds the worklist with, where precondition and
// postcondition describe the very same free variable; it is the one piece
// of stack-graphs variable-substitution algebra this engine keeps, instead
// of threading a general substitution map through every concatenation.
type PartialPath struct {
	Start, End    Handle
	Precondition  SymbolStack
	Postcondition SymbolStack
	PreLinksPost  bool
	// EdgeCount records how many real graph edges this path has traversed;
	// zero-length identity paths (the stitcher's seeds) have EdgeCount 0.
	EdgeCount int
}

// IdentityPath is the zero-length partial path the stitcher seeds its
// worklist with, one per reference starting node.
func IdentityPath(at Handle) PartialPath {
	open := SymbolStack{HasVariable: true}
	return PartialPath{Start: at, End: at, Precondition: open, Postcondition: open, PreLinksPost: true}
}

// unifyStacks computes the real stack content at the instant two stacks
// both describe, or reports incompatibility. The shorter stack's fixed
// symbols must be an exact prefix of the longer's; if the shorter one is
// closed, it cannot be extended and the stacks only unify when they are
// the same length (and therefore equal).
func unifyStacks(a, b SymbolStack) (SymbolStack, bool) {
	shorter, longer := a, b
	if len(b.Symbols) < len(a.Symbols) {
		shorter, longer = b, a
	}
	for i, sym := range shorter.Symbols {
		if longer.Symbols[i] != sym {
			return SymbolStack{}, false
		}
	}
	if len(shorter.Symbols) == len(longer.Symbols) {
		return SymbolStack{Symbols: longer.Symbols, HasVariable: a.HasVariable && b.HasVariable}, true
	}
	if !shorter.HasVariable {
		return SymbolStack{}, false
	}
	return SymbolStack{Symbols: longer.Symbols, HasVariable: longer.HasVariable}, true
}

// Concatenate joins p with candidate when p.End == candidate.Start and
// p's postcondition unifies with candidate's precondition.
func Concatenate(p, candidate PartialPath) (PartialPath, bool) {
	if p.End != candidate.Start {
		return PartialPath{}, false
	}
	mid, ok := unifyStacks(p.Postcondition, candidate.Precondition)
	if !ok {
		return PartialPath{}, false
	}

	pre := p.Precondition
	if p.PreLinksPost {
		pre = mid
	}
	post := candidate.Postcondition
	if candidate.PreLinksPost {
		post = mid
	}

	return PartialPath{
		Start:         p.Start,
		End:           candidate.End,
		Precondition:  pre,
		Postcondition: post,
		PreLinksPost:  p.PreLinksPost && candidate.PreLinksPost,
		EdgeCount:     p.EdgeCount + candidate.EdgeCount,
	}, true
}

// generalizes reports whether a is at least as general as b: any real
// stack b matches, a matches too. A closed stack only generalizes itself;
// an open stack generalizes anything sharing its fixed prefix.
func generalizes(a, b SymbolStack) bool {
	if !a.HasVariable {
		return len(a.Symbols) == len(b.Symbols) && prefixEqual(a.Symbols, b.Symbols)
	}
	if len(a.Symbols) > len(b.Symbols) {
		return false
	}
	return prefixEqual(a.Symbols, b.Symbols[:len(a.Symbols)])
}

func prefixEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// shadows reports whether q shadows p: same endpoints, and q's pre/post
// are each at least as general as p's, with at least one strictly so.
func shadows(q, p PartialPath) bool {
	if q.Start != p.Start || q.End != p.End {
		return false
	}
	if !generalizes(q.Precondition, p.Precondition) || !generalizes(q.Postcondition, p.Postcondition) {
		return false
	}
	reverseGeneral := generalizes(p.Precondition, q.Precondition) && generalizes(p.Postcondition, q.Postcondition)
	return !reverseGeneral
}

// structuralHash is the equivalence key for interning: same endpoints and
// same pre/postcondition. Equivalence modulo variable renaming collapses
// to plain equality here since PartialPath carries at most one shared
// variable identity via PreLinksPost, not named variables, so there is
// nothing left to rename.
func structuralHash(p PartialPath) uint64 {
	h := xxhash.New()
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(p.Start))
	h.Write(buf[:])
	binary.LittleEndian.PutUint32(buf[:], uint32(p.End))
	h.Write(buf[:])
	writeStack(h, p.Precondition)
	writeStack(h, p.Postcondition)
	if p.PreLinksPost {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	return h.Sum64()
}

func writeStack(h *xxhash.Digest, s SymbolStack) {
	if s.HasVariable {
		h.Write([]byte{'V'})
	} else {
		h.Write([]byte{'X'})
	}
	for _, sym := range s.Symbols {
		h.Write([]byte(sym))
		h.Write([]byte{0})
	}
}

// Database interns partial paths keyed by (start node, structural hash),
// deduplicating equivalent paths as they're loaded or produced by
// concatenation. Partial paths are value objects; once deserialized they
// live here and are addressed by index.
type Database struct {
	paths []PartialPath
	byKey map[dbKey]int
	// fromNode indexes paths by start handle for GetForwardCandidates;
	// edgeSlabs recycles the backing slices rather than reallocating on
	// every intern.
	fromNode  map[Handle][]int
	edgeSlabs *alloc.SlabAllocator[int]
}

type dbKey struct {
	start Handle
	hash  uint64
}

func NewDatabase() *Database {
	return &Database{
		byKey:     make(map[dbKey]int),
		fromNode:  make(map[Handle][]int),
		edgeSlabs: alloc.NewSlabAllocatorWithDefaults[int](),
	}
}

// Intern adds p if no equivalent path is already present, returning the
// path's index either way. Monotone: the database only grows.
func (db *Database) Intern(p PartialPath) int {
	key := dbKey{start: p.Start, hash: structuralHash(p)}
	if idx, ok := db.byKey[key]; ok {
		return idx
	}
	idx := len(db.paths)
	db.paths = append(db.paths, p)
	db.byKey[key] = idx

	slice := db.edgeSlabs.Get(len(db.fromNode[p.Start]) + 1)
	slice = append(slice, db.fromNode[p.Start]...)
	slice = append(slice, idx)
	db.fromNode[p.Start] = slice

	return idx
}

// Get returns the interned path at idx.
func (db *Database) Get(idx int) PartialPath { return db.paths[idx] }

// FromNode returns the indices of every interned path starting at h.
func (db *Database) FromNode(h Handle) []int { return db.fromNode[h] }

// Len returns the number of interned partial paths.
func (db *Database) Len() int { return len(db.paths) }
