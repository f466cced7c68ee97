package types

import (
	"fmt"
	"strconv"
	"strings"
)

// SourcePos is a half-open byte range within a file: [Start, End).
// The printed form is "<file>:<start>:<end>"; the last two ASCII colons
// are the delimiters, so file IDs containing colons round-trip correctly.
type SourcePos struct {
	FileID FileID
	Start  uint32
	End    uint32
}

// WellFormed reports whether Start <= End. A zero-width position
// (Start == End) is allowed here since source positions may point at an
// empty span (e.g. a synthetic node); interval operators in package
// interval enforce the strict s < e rule instead.
func (p SourcePos) WellFormed() bool {
	return p.Start <= p.End
}

// String renders the printed form "<file>:<start>:<end>".
func (p SourcePos) String() string {
	return fmt.Sprintf("%s:%d:%d", string(p.FileID), p.Start, p.End)
}

// PosParseField names which trailing field failed to parse, carried into
// the InvalidReference error's reason.
type PosParseField string

const (
	PosFieldStart PosParseField = "start"
	PosFieldEnd   PosParseField = "end"
)

// ParseError reports a malformed printed source position.
type ParseError struct {
	Input string
	Field PosParseField
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid reference %q: bad %s field: %v", e.Input, e.Field, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ParseSourcePos parses the printed form produced by SourcePos.String.
// The file ID is everything before the last two colons, so file IDs that
// themselves contain colons (e.g. "C:\x.py" on Windows, or a URN with a
// colon-separated scheme) still parse correctly.
func ParseSourcePos(s string) (SourcePos, error) {
	lastColon := strings.LastIndexByte(s, ':')
	if lastColon < 0 {
		return SourcePos{}, &ParseError{Input: s, Field: PosFieldEnd, Cause: errMissingColon}
	}
	secondLastColon := strings.LastIndexByte(s[:lastColon], ':')
	if secondLastColon < 0 {
		return SourcePos{}, &ParseError{Input: s, Field: PosFieldStart, Cause: errMissingColon}
	}

	fileID := s[:secondLastColon]
	startStr := s[secondLastColon+1 : lastColon]
	endStr := s[lastColon+1:]

	if fileID == "" {
		return SourcePos{}, &ParseError{Input: s, Field: PosFieldStart, Cause: errEmptyFileID}
	}

	start, err := strconv.ParseUint(startStr, 10, 32)
	if err != nil {
		return SourcePos{}, &ParseError{Input: s, Field: PosFieldStart, Cause: err}
	}
	end, err := strconv.ParseUint(endStr, 10, 32)
	if err != nil {
		return SourcePos{}, &ParseError{Input: s, Field: PosFieldEnd, Cause: err}
	}

	return SourcePos{FileID: FileID(fileID), Start: uint32(start), End: uint32(end)}, nil
}

var (
	errMissingColon = fmt.Errorf("expected \"file:start:end\"")
	errEmptyFileID  = fmt.Errorf("empty file id")
)
