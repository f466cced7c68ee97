package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// codecVersion gates the binary layouts below; bump it if either layout
// changes, so a stale blob fails loudly instead of silently misparsing.
const codecVersion = 1

// NodeRecord is one node of a serialized per-file graph fragment, in the
// file-local numbering the graph loader will translate into arena handles.
type NodeRecord struct {
	Kind      uint8
	Local     uint32
	HasSpan   bool
	SpanStart uint32
	SpanEnd   uint32
	Symbol    string
}

// GraphPayload is a deserialized `graphs` blob: every node belonging to
// one file plus the edges between them, addressed by index into Nodes.
type GraphPayload struct {
	Nodes []NodeRecord
	Edges [][2]uint32
}

func writeString(buf *bytes.Buffer, s string) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

func readString(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := readFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// EncodeGraphPayload serializes a graph fragment as: version, node count,
// nodes (kind, local id, has-span flag, span start/end, symbol), edge
// count, edges (from-index, to-index) — all little-endian, following the
// length-prefixed binary.Write style the rest of this repo uses for
// on-disk records.
func EncodeGraphPayload(p GraphPayload) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, uint32(codecVersion)); err != nil {
		return nil, fmt.Errorf("write version: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(p.Nodes))); err != nil {
		return nil, fmt.Errorf("write node count: %w", err)
	}
	for _, n := range p.Nodes {
		if err := binary.Write(&buf, binary.LittleEndian, n.Kind); err != nil {
			return nil, fmt.Errorf("write node kind: %w", err)
		}
		if err := binary.Write(&buf, binary.LittleEndian, n.Local); err != nil {
			return nil, fmt.Errorf("write node local id: %w", err)
		}
		if err := binary.Write(&buf, binary.LittleEndian, n.HasSpan); err != nil {
			return nil, fmt.Errorf("write has-span flag: %w", err)
		}
		if err := binary.Write(&buf, binary.LittleEndian, n.SpanStart); err != nil {
			return nil, fmt.Errorf("write span start: %w", err)
		}
		if err := binary.Write(&buf, binary.LittleEndian, n.SpanEnd); err != nil {
			return nil, fmt.Errorf("write span end: %w", err)
		}
		if err := writeString(&buf, n.Symbol); err != nil {
			return nil, fmt.Errorf("write symbol: %w", err)
		}
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(p.Edges))); err != nil {
		return nil, fmt.Errorf("write edge count: %w", err)
	}
	for _, e := range p.Edges {
		if err := binary.Write(&buf, binary.LittleEndian, e[0]); err != nil {
			return nil, fmt.Errorf("write edge from: %w", err)
		}
		if err := binary.Write(&buf, binary.LittleEndian, e[1]); err != nil {
			return nil, fmt.Errorf("write edge to: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeGraphPayload is the inverse of EncodeGraphPayload.
func DecodeGraphPayload(data []byte) (GraphPayload, error) {
	r := bytes.NewReader(data)
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return GraphPayload{}, fmt.Errorf("read version: %w", err)
	}
	if version != codecVersion {
		return GraphPayload{}, fmt.Errorf("unsupported graph payload version %d", version)
	}

	var nodeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &nodeCount); err != nil {
		return GraphPayload{}, fmt.Errorf("read node count: %w", err)
	}
	nodes := make([]NodeRecord, nodeCount)
	for i := range nodes {
		if err := binary.Read(r, binary.LittleEndian, &nodes[i].Kind); err != nil {
			return GraphPayload{}, fmt.Errorf("read node kind: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &nodes[i].Local); err != nil {
			return GraphPayload{}, fmt.Errorf("read node local id: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &nodes[i].HasSpan); err != nil {
			return GraphPayload{}, fmt.Errorf("read has-span flag: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &nodes[i].SpanStart); err != nil {
			return GraphPayload{}, fmt.Errorf("read span start: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &nodes[i].SpanEnd); err != nil {
			return GraphPayload{}, fmt.Errorf("read span end: %w", err)
		}
		sym, err := readString(r)
		if err != nil {
			return GraphPayload{}, fmt.Errorf("read symbol: %w", err)
		}
		nodes[i].Symbol = sym
	}

	var edgeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &edgeCount); err != nil {
		return GraphPayload{}, fmt.Errorf("read edge count: %w", err)
	}
	edges := make([][2]uint32, edgeCount)
	for i := range edges {
		if err := binary.Read(r, binary.LittleEndian, &edges[i][0]); err != nil {
			return GraphPayload{}, fmt.Errorf("read edge from: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &edges[i][1]); err != nil {
			return GraphPayload{}, fmt.Errorf("read edge to: %w", err)
		}
	}

	return GraphPayload{Nodes: nodes, Edges: edges}, nil
}

// PathRecord is one serialized partial path, addressed by (file, local id)
// at each endpoint so the path loader can resolve it against whichever
// graph arena is currently assembled. IsRoot short-circuits
// the file/local fields when an endpoint is the single global root.
type PathRecord struct {
	StartFile    string
	StartLocal   uint32
	StartIsRoot  bool
	EndFile      string
	EndLocal     uint32
	EndIsRoot    bool
	PreSymbols   []string
	PreHasVar    bool
	PostSymbols  []string
	PostHasVar   bool
	PreLinksPost bool
	EdgeCount    uint32
}

// EncodePathList serializes a list of partial paths using the same
// version-tagged, length-prefixed layout as EncodeGraphPayload.
func EncodePathList(paths []PathRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, uint32(codecVersion)); err != nil {
		return nil, fmt.Errorf("write version: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(paths))); err != nil {
		return nil, fmt.Errorf("write path count: %w", err)
	}
	for _, p := range paths {
		if err := writeString(&buf, p.StartFile); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, p.StartLocal); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, p.StartIsRoot); err != nil {
			return nil, err
		}
		if err := writeString(&buf, p.EndFile); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, p.EndLocal); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, p.EndIsRoot); err != nil {
			return nil, err
		}
		if err := writeStringSlice(&buf, p.PreSymbols); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, p.PreHasVar); err != nil {
			return nil, err
		}
		if err := writeStringSlice(&buf, p.PostSymbols); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, p.PostHasVar); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, p.PreLinksPost); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, p.EdgeCount); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodePathList is the inverse of EncodePathList.
func DecodePathList(data []byte) ([]PathRecord, error) {
	r := bytes.NewReader(data)
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version != codecVersion {
		return nil, fmt.Errorf("unsupported path list version %d", version)
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read path count: %w", err)
	}
	paths := make([]PathRecord, count)
	for i := range paths {
		p := &paths[i]
		var err error
		if p.StartFile, err = readString(r); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &p.StartLocal); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &p.StartIsRoot); err != nil {
			return nil, err
		}
		if p.EndFile, err = readString(r); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &p.EndLocal); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &p.EndIsRoot); err != nil {
			return nil, err
		}
		if p.PreSymbols, err = readStringSlice(r); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &p.PreHasVar); err != nil {
			return nil, err
		}
		if p.PostSymbols, err = readStringSlice(r); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &p.PostHasVar); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &p.PreLinksPost); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &p.EdgeCount); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func writeStringSlice(buf *bytes.Buffer, items []string) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(items))); err != nil {
		return err
	}
	for _, s := range items {
		if err := writeString(buf, s); err != nil {
			return err
		}
	}
	return nil
}

func readStringSlice(r *bytes.Reader) ([]string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	items := make([]string, n)
	for i := range items {
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		items[i] = s
	}
	return items, nil
}
