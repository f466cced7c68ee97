// Package stackgraph implements the stack-graph name-resolution engine:
// a blob store of on-demand-loadable graph/path fragments, a forward path
// stitcher with shadow suppression, and the resolution driver that answers
// "definition for reference" queries across many files.
package stackgraph

import "strings"

// Record/unit separators for the symbol-stack storage key:
//
//	has-var U+241E symbol_0 U+241F symbol_1 U+241F ...
const (
	recordSeparator = '␞'
	unitSeparator   = '␟'
)

// SymbolStack is a partial symbol stack: a sequence of symbols with an
// open/closed tag. An open stack (HasVariable true) ends in a free
// variable that may be extended by further symbols during concatenation;
// a closed stack is a fixed, complete sequence.
type SymbolStack struct {
	Symbols     []string
	HasVariable bool
}

// storageKey produces the storage key: a variable tag ('V' for
// open, 'X' for closed) followed by the symbols joined with U+241F.
func storageKey(stack SymbolStack) string {
	var b strings.Builder
	if stack.HasVariable {
		b.WriteByte('V')
	} else {
		b.WriteByte('X')
	}
	b.WriteRune(recordSeparator)
	for i, sym := range stack.Symbols {
		if i > 0 {
			b.WriteRune(unitSeparator)
		}
		b.WriteString(sym)
	}
	return b.String()
}

// StorageKey is the exported form of storageKey.
func StorageKey(stack SymbolStack) string { return storageKey(stack) }

// LookupPatternsFromStack returns the ordered set of probe patterns that
// must be checked when extending by a postcondition stack of n symbols
// s1,s2,...,sn:
//
//   - for each k in 1..=n: "V<rs>s1<us>...<us>sk" (open prefixes, up to
//     and including the full stack)
//   - "X<rs>s1<us>...<us>sn" (closed exact match)
//   - if the postcondition itself has a variable: "_<rs>s1<us>...<us>sn<us>"
//     (any-suffix completions)
//
// Ordering is stable (open prefixes shortest-to-longest, then the closed
// match, then the any-suffix pattern) so the output is deterministic even
// though correctness does not depend on order.
func LookupPatternsFromStack(stack SymbolStack) []string {
	n := len(stack.Symbols)
	patterns := make([]string, 0, n+2)

	for k := 1; k <= n; k++ {
		patterns = append(patterns, prefixPattern('V', stack.Symbols[:k]))
	}

	patterns = append(patterns, prefixPattern('X', stack.Symbols))

	if stack.HasVariable {
		var b strings.Builder
		b.WriteByte('_')
		b.WriteRune(recordSeparator)
		for _, sym := range stack.Symbols {
			b.WriteString(escapeLike(sym))
			b.WriteRune(unitSeparator)
		}
		patterns = append(patterns, b.String())
	}

	return patterns
}

func prefixPattern(tag byte, symbols []string) string {
	var b strings.Builder
	b.WriteByte(tag)
	b.WriteRune(recordSeparator)
	for i, sym := range symbols {
		if i > 0 {
			b.WriteRune(unitSeparator)
		}
		b.WriteString(escapeLike(sym))
	}
	return b.String()
}

// escapeLike escapes '%' and '_' with a backslash so lookup patterns
// double as SQL-LIKE patterns for the SQLite-backed deployments, which
// index root paths with LIKE probes over the same keys.
func escapeLike(s string) string {
	if !strings.ContainsAny(s, "%_\\") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseStorageKey is the inverse of storageKey: it reconstructs the
// SymbolStack a key was built from. It does not unescape LIKE-escaping
// since storageKey itself never escapes (only the patterns built by
// LookupPatternsFromStack and PatternsFromStorageKey do).
func ParseStorageKey(key string) (SymbolStack, bool) {
	if key == "" {
		return SymbolStack{}, false
	}
	tag := key[0]
	rest, ok := strings.CutPrefix(key[1:], string(recordSeparator))
	if !ok {
		return SymbolStack{}, false
	}
	var symbols []string
	if rest != "" {
		symbols = strings.Split(rest, string(unitSeparator))
	}
	return SymbolStack{Symbols: symbols, HasVariable: tag == 'V'}, true
}

// PatternsFromStorageKey enumerates the prefixes of key at U+241F
// boundaries plus one full-key pattern — the inverse used when indexing
// root-path blobs for lookup. A blob stored under a closed key
// "X<rs>a<us>b<us>c" must be discoverable both by an exact closed probe
// for "a,b,c" and by open probes for "a", "a,b", "" still carrying a
// free variable (a query whose postcondition has not yet resolved past
// that prefix) — so every strict prefix is emitted tagged 'V', and only
// the full-length prefix keeps the key's own tag.
func PatternsFromStorageKey(key string) []string {
	stack, ok := ParseStorageKey(key)
	if !ok {
		return nil
	}
	n := len(stack.Symbols)
	patterns := make([]string, 0, n+1)
	for k := 0; k < n; k++ {
		patterns = append(patterns, prefixPattern('V', stack.Symbols[:k]))
	}
	patterns = append(patterns, prefixPattern(key[0], stack.Symbols))
	return patterns
}
