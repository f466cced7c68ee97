package wire

import (
	"github.com/standardbeagle/cozodb-core/internal/cozerr"
)

// Tuple is one input row at the evaluator boundary, decoded
// from whatever row representation the Datalog evaluator uses into a
// plain slice of Go values. Column type checks happen lazily, one field
// accessor at a time, so the first mismatch reports its own index.
type Tuple []any

// ExpectLen enforces the input relation's arity.
func (t Tuple) ExpectLen(n int) error {
	if len(t) != n {
		return cozerr.NewTupleLenError(n, len(t))
	}
	return nil
}

// String reads column idx as a non-empty string.
func (t Tuple) String(idx int) (string, error) {
	v, ok := t[idx].(string)
	if !ok {
		return "", cozerr.NewTupleElemTypeError(idx, "string", typeName(t[idx]))
	}
	return v, nil
}

// Uint32 reads column idx as a value fitting u32.
func (t Tuple) Uint32(idx int) (uint32, error) {
	switch v := t[idx].(type) {
	case uint32:
		return v, nil
	case int:
		if v < 0 || v > int(^uint32(0)) {
			return 0, cozerr.NewTupleElemTypeError(idx, "non-negative int fitting u32", "out of range int")
		}
		return uint32(v), nil
	case int64:
		if v < 0 || v > int64(^uint32(0)) {
			return 0, cozerr.NewTupleElemTypeError(idx, "non-negative int fitting u32", "out of range int64")
		}
		return uint32(v), nil
	case uint64:
		if v > uint64(^uint32(0)) {
			return 0, cozerr.NewTupleElemTypeError(idx, "non-negative int fitting u32", "out of range uint64")
		}
		return uint32(v), nil
	default:
		return 0, cozerr.NewTupleElemTypeError(idx, "non-negative int fitting u32", typeName(t[idx]))
	}
}

// Int64 reads column idx as an opaque integer (the `discriminator` column).
func (t Tuple) Int64(idx int) (int64, error) {
	switch v := t[idx].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, cozerr.NewTupleElemTypeError(idx, "int", typeName(t[idx]))
	}
}

// Bytes reads column idx as a byte slice.
func (t Tuple) Bytes(idx int) ([]byte, error) {
	v, ok := t[idx].([]byte)
	if !ok {
		return nil, cozerr.NewTupleElemTypeError(idx, "[]byte", typeName(t[idx]))
	}
	return v, nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case int64:
		return "int64"
	case uint32:
		return "uint32"
	case uint64:
		return "uint64"
	case []byte:
		return "[]byte"
	default:
		return "unknown"
	}
}
