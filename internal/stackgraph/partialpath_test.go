package stackgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityPathIsZeroLengthAndOpen(t *testing.T) {
	p := IdentityPath(Handle(5))
	assert.Equal(t, Handle(5), p.Start)
	assert.Equal(t, Handle(5), p.End)
	assert.True(t, p.PreLinksPost)
	assert.True(t, p.Precondition.HasVariable)
	assert.True(t, p.Postcondition.HasVariable)
	assert.Equal(t, 0, p.EdgeCount)
}

func TestUnifyStacksPrefixMatch(t *testing.T) {
	open := SymbolStack{Symbols: []string{"a"}, HasVariable: true}
	closed := SymbolStack{Symbols: []string{"a", "b"}, HasVariable: false}

	result, ok := unifyStacks(open, closed)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, result.Symbols)
	assert.False(t, result.HasVariable)
}

func TestUnifyStacksMismatchedPrefixFails(t *testing.T) {
	a := SymbolStack{Symbols: []string{"a"}, HasVariable: true}
	b := SymbolStack{Symbols: []string{"x", "y"}, HasVariable: false}
	_, ok := unifyStacks(a, b)
	assert.False(t, ok)
}

func TestUnifyStacksBothClosedDifferentLengthFails(t *testing.T) {
	a := SymbolStack{Symbols: []string{"a"}, HasVariable: false}
	b := SymbolStack{Symbols: []string{"a", "b"}, HasVariable: false}
	_, ok := unifyStacks(a, b)
	assert.False(t, ok)
}

func TestUnifyStacksSameLengthCombinesVariableFlag(t *testing.T) {
	a := SymbolStack{Symbols: []string{"a"}, HasVariable: true}
	b := SymbolStack{Symbols: []string{"a"}, HasVariable: false}
	result, ok := unifyStacks(a, b)
	require.True(t, ok)
	assert.False(t, result.HasVariable)
}

func TestConcatenateRequiresMatchingEndpoints(t *testing.T) {
	p := PartialPath{Start: 1, End: 2}
	candidate := PartialPath{Start: 3, End: 4}
	_, ok := Concatenate(p, candidate)
	assert.False(t, ok)
}

func TestConcatenateIdentityWithCandidate(t *testing.T) {
	p := IdentityPath(Handle(1))
	candidate := PartialPath{
		Start:         1,
		End:           2,
		Precondition:  SymbolStack{Symbols: []string{"foo"}, HasVariable: false},
		Postcondition: SymbolStack{Symbols: []string{"foo"}, HasVariable: false},
		EdgeCount:     1,
	}
	result, ok := Concatenate(p, candidate)
	require.True(t, ok)
	assert.Equal(t, Handle(1), result.Start)
	assert.Equal(t, Handle(2), result.End)
	assert.Equal(t, []string{"foo"}, result.Precondition.Symbols)
	assert.Equal(t, []string{"foo"}, result.Postcondition.Symbols)
	assert.Equal(t, 1, result.EdgeCount)
}

func TestShadowsRequiresSameEndpoints(t *testing.T) {
	q := PartialPath{Start: 1, End: 2, Precondition: SymbolStack{HasVariable: true}, Postcondition: SymbolStack{HasVariable: true}}
	p := PartialPath{Start: 1, End: 3, Precondition: SymbolStack{HasVariable: true}, Postcondition: SymbolStack{HasVariable: true}}
	assert.False(t, shadows(q, p))
}

func TestShadowsOpenGeneralizesClosed(t *testing.T) {
	open := SymbolStack{HasVariable: true}
	closed := SymbolStack{Symbols: []string{"foo"}, HasVariable: false}
	q := PartialPath{Start: 1, End: 2, Precondition: open, Postcondition: open}
	p := PartialPath{Start: 1, End: 2, Precondition: closed, Postcondition: closed}
	assert.True(t, shadows(q, p))
	assert.False(t, shadows(p, q))
}

func TestShadowsEqualPathsNeitherShadows(t *testing.T) {
	stack := SymbolStack{Symbols: []string{"foo"}, HasVariable: false}
	q := PartialPath{Start: 1, End: 2, Precondition: stack, Postcondition: stack}
	p := PartialPath{Start: 1, End: 2, Precondition: stack, Postcondition: stack}
	assert.False(t, shadows(q, p))
	assert.False(t, shadows(p, q))
}

func TestDatabaseInternDeduplicatesEquivalentPaths(t *testing.T) {
	db := NewDatabase()
	stack := SymbolStack{Symbols: []string{"foo"}, HasVariable: false}
	p1 := PartialPath{Start: 1, End: 2, Precondition: stack, Postcondition: stack}
	p2 := PartialPath{Start: 1, End: 2, Precondition: stack, Postcondition: stack}

	idx1 := db.Intern(p1)
	idx2 := db.Intern(p2)
	assert.Equal(t, idx1, idx2)
	assert.Equal(t, 1, db.Len())
}

func TestDatabaseInternKeepsDistinctPaths(t *testing.T) {
	db := NewDatabase()
	stackA := SymbolStack{Symbols: []string{"foo"}, HasVariable: false}
	stackB := SymbolStack{Symbols: []string{"bar"}, HasVariable: false}
	idx1 := db.Intern(PartialPath{Start: 1, End: 2, Precondition: stackA, Postcondition: stackA})
	idx2 := db.Intern(PartialPath{Start: 1, End: 2, Precondition: stackB, Postcondition: stackB})
	assert.NotEqual(t, idx1, idx2)
	assert.Equal(t, 2, db.Len())
	assert.ElementsMatch(t, []int{idx1, idx2}, db.FromNode(Handle(1)))
}
