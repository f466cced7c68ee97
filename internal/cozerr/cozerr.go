// Package cozerr is the error taxonomy reported verbatim to the evaluator
// at the resolution-driver boundary. Every fallible operation
// returns one of these typed errors rather than a bare string, so a caller
// can distinguish validation failures from structural failures from
// cancellation with errors.As.
package cozerr

import (
	"fmt"
	"time"

	"github.com/standardbeagle/cozodb-core/internal/types"
)

// Kind partitions the taxonomy into four policy buckets:
// validation errors fail before any work begins, structural errors fail as
// soon as encountered, semantic errors fail the whole query, and
// cancellation unwinds immediately. The Kind itself doesn't drive behavior
// (the driver already stops on the first error either way) — it documents
// which bucket a given error belongs to for callers inspecting Type.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindStructural   Kind = "structural"
	KindSemantic     Kind = "semantic"
	KindCancellation Kind = "cancellation"
)

// CoreError is the common shape every taxonomy entry satisfies.
type CoreError struct {
	Kind       Kind
	Operation  string
	Underlying error
	Timestamp  time.Time
}

func (e *CoreError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Operation, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Operation)
}

func (e *CoreError) Unwrap() error { return e.Underlying }

func newCore(kind Kind, op string, err error) *CoreError {
	return &CoreError{Kind: kind, Operation: op, Underlying: err, Timestamp: time.Now()}
}

// InvalidReference reports that a printed reference position failed to
// parse or referred to an out-of-range byte offset.
type InvalidReference struct {
	CoreError
	Got    string
	Reason string
}

func NewInvalidReference(got, reason string, cause error) *InvalidReference {
	return &InvalidReference{CoreError: *newCore(KindValidation, "parse reference", cause), Got: got, Reason: reason}
}

func (e *InvalidReference) Error() string {
	return fmt.Sprintf("invalid reference %q: %s", e.Got, e.Reason)
}

// TupleLenError reports an input row with the wrong number of columns.
type TupleLenError struct {
	CoreError
	Expected, Got int
}

func NewTupleLenError(expected, got int) *TupleLenError {
	return &TupleLenError{CoreError: *newCore(KindValidation, "decode tuple", nil), Expected: expected, Got: got}
}

func (e *TupleLenError) Error() string {
	return fmt.Sprintf("tuple length mismatch: expected %d columns, got %d", e.Expected, e.Got)
}

// TupleElemTypeError reports an input row whose column has the wrong Go type.
type TupleElemTypeError struct {
	CoreError
	Index          int
	Expected, Got string
}

func NewTupleElemTypeError(idx int, expected, got string) *TupleElemTypeError {
	return &TupleElemTypeError{CoreError: *newCore(KindValidation, "decode tuple", nil), Index: idx, Expected: expected, Got: got}
}

func (e *TupleElemTypeError) Error() string {
	return fmt.Sprintf("tuple column %d: expected %s, got %s", e.Index, e.Expected, e.Got)
}

// MissingData reports an operation that required a blob or row that the
// Blob Store does not have (and has never had — distinct from "already
// loaded", which is success-with-None).
type MissingData struct {
	CoreError
	Description string
}

func NewMissingData(description string) *MissingData {
	return &MissingData{CoreError: *newCore(KindStructural, "lookup", nil), Description: description}
}

func (e *MissingData) Error() string { return fmt.Sprintf("missing data: %s", e.Description) }

// DuplicateGraph reports that the same file ID supplied two graph rows.
type DuplicateGraph struct {
	CoreError
	FileID types.FileID
}

func NewDuplicateGraph(fileID types.FileID) *DuplicateGraph {
	return &DuplicateGraph{CoreError: *newCore(KindStructural, "build blob store", nil), FileID: fileID}
}

func (e *DuplicateGraph) Error() string { return fmt.Sprintf("duplicate graph for file %q", e.FileID) }

// UnknownFile reports a node-path or root-path row that referenced a file
// with no corresponding graph row.
type UnknownFile struct {
	CoreError
	FileID types.FileID
}

func NewUnknownFile(fileID types.FileID) *UnknownFile {
	return &UnknownFile{CoreError: *newCore(KindStructural, "build blob store", nil), FileID: fileID}
}

func (e *UnknownFile) Error() string { return fmt.Sprintf("unknown file %q referenced by path row", e.FileID) }

// BlobSource distinguishes a decompression failure from a deserialization
// failure within DeserializeBlob.
type BlobSource string

const (
	BlobSourceDecode BlobSource = "decode"
	BlobSourceLoad   BlobSource = "load"
)

// DeserializeBlob wraps a decompression or structural-deserialization
// failure, tagged with which stage failed.
type DeserializeBlob struct {
	CoreError
	What   string
	Source BlobSource
}

func NewDeserializeBlob(what string, source BlobSource, cause error) *DeserializeBlob {
	return &DeserializeBlob{CoreError: *newCore(KindStructural, "deserialize blob", cause), What: what, Source: source}
}

func (e *DeserializeBlob) Error() string {
	return fmt.Sprintf("deserialize %s failed during %s: %v", e.What, e.Source, e.Underlying)
}

// UnresolvedReference reports that a queried reference position did not
// match any node in its file's graph.
type UnresolvedReference struct {
	CoreError
	Pos types.SourcePos
}

func NewUnresolvedReference(pos types.SourcePos) *UnresolvedReference {
	return &UnresolvedReference{CoreError: *newCore(KindSemantic, "resolve reference", nil), Pos: pos}
}

func (e *UnresolvedReference) Error() string {
	return fmt.Sprintf("unresolved reference at %s", e.Pos.String())
}

// Cancelled reports a caller-originated cancellation, surfaced with the
// call-site label so the evaluator can see where the driver unwound.
type Cancelled struct {
	CoreError
	AtLabel string
}

func NewCancelled(atLabel string) *Cancelled {
	return &Cancelled{CoreError: *newCore(KindCancellation, "cancel", nil), AtLabel: atLabel}
}

func (e *Cancelled) Error() string { return fmt.Sprintf("cancelled at %s", e.AtLabel) }

// MultiError aggregates several errors that were discovered independently
// (e.g. several malformed rows in one input iterator) into one value.
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error { return e.Errors }
