package stackgraph

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/cozodb-core/internal/types"
)

// BuildFileURN and ParseFileURN are a convenience on top of the fully
// opaque File ID contract: the engine compares file IDs byte-for-byte and
// never needs them to be URNs. The CLI uses them to build stable file IDs
// from a repo/path/revision triple.
func BuildFileURN(repo, path, rev string) types.FileID {
	return types.FileID(fmt.Sprintf("urn:cozodb:%s#%s@%s", repo, path, rev))
}

// ParseFileURN is the inverse of BuildFileURN; it returns ok=false for any
// string not in the expected shape, since a well-formed File ID need not
// be a URN at all — callers who don't use this convention simply never
// call it.
func ParseFileURN(file types.FileID) (repo, path, rev string, ok bool) {
	s := string(file)
	s, ok = strings.CutPrefix(s, "urn:cozodb:")
	if !ok {
		return "", "", "", false
	}
	hashIdx := strings.IndexByte(s, '#')
	if hashIdx < 0 {
		return "", "", "", false
	}
	repo = s[:hashIdx]
	rest := s[hashIdx+1:]
	atIdx := strings.LastIndexByte(rest, '@')
	if atIdx < 0 {
		return "", "", "", false
	}
	path = rest[:atIdx]
	rev = rest[atIdx+1:]
	if repo == "" || path == "" || rev == "" {
		return "", "", "", false
	}
	return repo, path, rev, true
}
