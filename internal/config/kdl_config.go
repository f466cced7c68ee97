package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL attempts to load configuration from a .cozo.kdl file in
// projectRoot. A missing file is not an error; it returns (nil, nil) so
// the caller falls back to defaults.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, ".cozo.kdl")

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .cozo.kdl: %v", err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	if cfg.Input.Root == "" || cfg.Input.Root == "." {
		cfg.Input.Root = projectRoot
	} else if !filepath.IsAbs(cfg.Input.Root) {
		cfg.Input.Root = filepath.Clean(filepath.Join(projectRoot, cfg.Input.Root))
	}

	return cfg, nil
}

func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "resolution":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "timeout_ms":
					if v, ok := firstIntArg(cn); ok && v >= 0 {
						cfg.Resolution.TimeoutMs = uint64(v)
					}
				case "max_bytes":
					if v, ok := firstIntArg(cn); ok && v >= 0 {
						cfg.Resolution.MaxBytes = uint64(v)
					}
				case "output_missing_files":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Resolution.OutputMissingFiles = b
					}
				case "stats":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Resolution.Stats = b
					}
				}
			}
		case "input":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "root":
					if s, ok := firstStringArg(cn); ok {
						cfg.Input.Root = s
					}
				case "graphs":
					cfg.Input.GraphGlobs = collectStringArgs(cn)
				case "node_paths":
					cfg.Input.NodePathGlobs = collectStringArgs(cn)
				case "root_paths":
					cfg.Input.RootPathGlobs = collectStringArgs(cn)
				case "paths_index":
					cfg.Input.IndexGlobs = collectStringArgs(cn)
				}
			}
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
