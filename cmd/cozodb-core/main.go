// cozodb-core is a thin demonstrator around the resolution core: it loads
// serialized stack-graph rows from JSONL files on disk, runs definition
// resolution for the requested references, and exposes the recurrence
// expanders for ad hoc exploration. The real consumer of the core is the
// Datalog evaluator; this binary exists so the engine can be exercised and
// debugged without one.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/cozodb-core/internal/config"
	"github.com/standardbeagle/cozodb-core/internal/debug"
	"github.com/standardbeagle/cozodb-core/internal/encoding"
	"github.com/standardbeagle/cozodb-core/internal/interval"
	"github.com/standardbeagle/cozodb-core/internal/stackgraph"
	"github.com/standardbeagle/cozodb-core/internal/types"
	"github.com/standardbeagle/cozodb-core/internal/version"
	"github.com/standardbeagle/cozodb-core/internal/wire"
)

func main() {
	app := &cli.App{
		Name:                   "cozodb-core",
		Usage:                  "stack-graph name resolution and temporal algebra, standalone",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "directory containing .cozo.kdl",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "write a trace log to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				debug.EnableDebug = "true"
				debug.SetDebugOutput(os.Stderr)
			}
			return nil
		},
		Commands: []*cli.Command{
			resolveCommand(),
			expandCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "resolve references to definitions against serialized graph rows",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Usage: "input root directory (overrides config)"},
			&cli.StringSliceFlag{Name: "ref", Usage: "reference position file:start:end (repeatable)", Required: true},
			&cli.BoolFlag{Name: "missing-files", Usage: "report files the index says are missing from the subgraph"},
			&cli.Uint64Flag{Name: "timeout-ms", Usage: "per-query timeout in milliseconds, 0 = none"},
			&cli.Uint64Flag{Name: "max-bytes", Usage: "advisory memory ceiling, 0 = unbounded"},
			&cli.BoolFlag{Name: "stats", Usage: "print query statistics to stderr"},
			&cli.StringFlag{Name: "repo", Usage: "rewrite plain-path references to repo URNs"},
			&cli.StringFlag{Name: "rev", Usage: "revision for --repo URN rewriting", Value: "HEAD"},
		},
		Action: runResolve,
	}
}

func runResolve(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if root := c.String("root"); root != "" {
		cfg.Input.Root = root
	}
	if c.IsSet("timeout-ms") {
		cfg.Resolution.TimeoutMs = c.Uint64("timeout-ms")
	}
	if c.IsSet("max-bytes") {
		cfg.Resolution.MaxBytes = c.Uint64("max-bytes")
	}
	if c.Bool("missing-files") {
		cfg.Resolution.OutputMissingFiles = true
	}
	if c.Bool("stats") {
		cfg.Resolution.Stats = true
	}

	inputs, err := loadInputs(c.Context, cfg.Input)
	if err != nil {
		return err
	}

	refs := c.StringSlice("ref")
	if repo := c.String("repo"); repo != "" {
		rewritten := make([]string, len(refs))
		for i, ref := range refs {
			pos, err := types.ParseSourcePos(ref)
			if err != nil {
				return err
			}
			pos.FileID = stackgraph.BuildFileURN(repo, string(pos.FileID), c.String("rev"))
			rewritten[i] = pos.String()
		}
		refs = rewritten
	}
	opts := stackgraph.DriverOptions{
		References:         refs,
		OutputMissingFiles: cfg.Resolution.OutputMissingFiles,
		Timeout:            time.Duration(cfg.Resolution.TimeoutMs) * time.Millisecond,
		MaxBytes:           cfg.Resolution.MaxBytes,
	}

	driver, err := stackgraph.NewDriver(inputs, opts)
	if err != nil {
		return err
	}
	rows, stats, err := driver.Run(c.Context)
	if err != nil {
		return err
	}

	for _, row := range rows {
		switch row.Kind {
		case stackgraph.ResultDefinition:
			fmt.Printf("%s\t%s\tnull\n", row.Reference, row.Definition.String())
		case stackgraph.ResultMissingFile:
			fmt.Printf("%s\tnull\t%s\n", row.Reference, row.MissingFileID)
		}
	}

	if cfg.Resolution.Stats {
		fmt.Fprintf(os.Stderr, "query %s: %d candidates, %d shadowed, %d path blobs, %d graphs\n",
			queryFingerprint(refs), stats.CandidatesConsidered, stats.PathsShadowed, stats.BlobsLoaded, stats.GraphsLoaded)
	}
	return nil
}

// queryFingerprint gives a query a short stable ID for log correlation.
func queryFingerprint(refs []string) string {
	return encoding.Base63Encode(xxhash.Sum64String(strings.Join(refs, "\x00")))
}

// loadInputs discovers the JSONL row files under the configured globs and
// decodes them concurrently. Each line is a JSON array matching the
// relation's column order, with blob payloads base64-encoded.
func loadInputs(ctx context.Context, in config.Input) (stackgraph.DriverInputs, error) {
	var inputs stackgraph.DriverInputs

	graphFiles, err := globAll(in.Root, in.GraphGlobs)
	if err != nil {
		return inputs, err
	}
	nodePathFiles, err := globAll(in.Root, in.NodePathGlobs)
	if err != nil {
		return inputs, err
	}
	rootPathFiles, err := globAll(in.Root, in.RootPathGlobs)
	if err != nil {
		return inputs, err
	}
	indexFiles, err := globAll(in.Root, in.IndexGlobs)
	if err != nil {
		return inputs, err
	}

	// Decode files concurrently; the driver itself stays single-threaded,
	// this only parallelizes disk reads and JSON decoding up front.
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	graphRows := make([][]stackgraph.GraphRow, len(graphFiles))
	for i, path := range graphFiles {
		i, path := i, path
		g.Go(func() error {
			return decodeRowFile(path, []int{2}, func(t wire.Tuple) error {
				row, err := stackgraph.DecodeGraphRow(t)
				if err != nil {
					return err
				}
				graphRows[i] = append(graphRows[i], row)
				return nil
			})
		})
	}

	nodePathRows := make([][]stackgraph.NodePathRow, len(nodePathFiles))
	for i, path := range nodePathFiles {
		i, path := i, path
		g.Go(func() error {
			return decodeRowFile(path, []int{4}, func(t wire.Tuple) error {
				row, err := stackgraph.DecodeNodePathRow(t)
				if err != nil {
					return err
				}
				nodePathRows[i] = append(nodePathRows[i], row)
				return nil
			})
		})
	}

	rootPathRows := make([][]stackgraph.RootPathRow, len(rootPathFiles))
	for i, path := range rootPathFiles {
		i, path := i, path
		g.Go(func() error {
			return decodeRowFile(path, []int{4}, func(t wire.Tuple) error {
				row, err := stackgraph.DecodeRootPathRow(t)
				if err != nil {
					return err
				}
				rootPathRows[i] = append(rootPathRows[i], row)
				return nil
			})
		})
	}

	indexRows := make([][]stackgraph.RootPathIndexRow, len(indexFiles))
	for i, path := range indexFiles {
		i, path := i, path
		g.Go(func() error {
			return decodeRowFile(path, nil, func(t wire.Tuple) error {
				row, err := stackgraph.DecodeRootPathIndexRow(t)
				if err != nil {
					return err
				}
				indexRows[i] = append(indexRows[i], row)
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil {
		return inputs, err
	}

	for _, rows := range graphRows {
		inputs.GraphRows = append(inputs.GraphRows, rows...)
	}
	for _, rows := range nodePathRows {
		inputs.NodePathRows = append(inputs.NodePathRows, rows...)
	}
	for _, rows := range rootPathRows {
		inputs.RootPathRows = append(inputs.RootPathRows, rows...)
	}
	for _, rows := range indexRows {
		inputs.IndexRows = append(inputs.IndexRows, rows...)
	}
	inputs.HasIndex = len(indexFiles) > 0

	debug.LogLoad("loaded %d graph, %d node-path, %d root-path, %d index rows",
		len(inputs.GraphRows), len(inputs.NodePathRows), len(inputs.RootPathRows), len(inputs.IndexRows))
	return inputs, nil
}

func globAll(root string, patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(os.DirFS(root), pattern)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			full := filepath.Join(root, m)
			if !seen[full] {
				seen[full] = true
				out = append(out, full)
			}
		}
	}
	return out, nil
}

// decodeRowFile reads one JSONL file, converting each line's JSON array
// into a wire.Tuple. blobCols names the column indices carrying
// base64-encoded blob payloads.
func decodeRowFile(path string, blobCols []int, sink func(wire.Tuple) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for lineNo, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var cols []any
		if err := json.Unmarshal([]byte(line), &cols); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo+1, err)
		}
		t, err := tupleFromJSON(cols, blobCols)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo+1, err)
		}
		if err := sink(t); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo+1, err)
		}
	}
	return nil
}

// tupleFromJSON maps JSON-decoded values onto the Go types the tuple
// accessors expect: integral float64s become int64, and blob columns are
// base64-decoded to bytes.
func tupleFromJSON(cols []any, blobCols []int) (wire.Tuple, error) {
	isBlob := make(map[int]bool, len(blobCols))
	for _, idx := range blobCols {
		isBlob[idx] = true
	}
	t := make(wire.Tuple, len(cols))
	for i, v := range cols {
		switch val := v.(type) {
		case float64:
			if val != math.Trunc(val) {
				return nil, fmt.Errorf("column %d: expected integer, got %v", i, val)
			}
			t[i] = int64(val)
		case string:
			if isBlob[i] {
				raw, err := base64.StdEncoding.DecodeString(val)
				if err != nil {
					return nil, fmt.Errorf("column %d: bad base64: %w", i, err)
				}
				t[i] = raw
			} else {
				t[i] = val
			}
		default:
			t[i] = v
		}
	}
	return t, nil
}

func expandCommand() *cli.Command {
	return &cli.Command{
		Name:  "expand",
		Usage: "expand a recurrence rule over a UTC window",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "rule", Usage: "daily | weekly | monthly-day | monthly-setpos | yearly", Required: true},
			&cli.TimestampFlag{Name: "from", Layout: time.RFC3339, Usage: "window start (RFC3339)", Required: true},
			&cli.TimestampFlag{Name: "to", Layout: time.RFC3339, Usage: "window end (RFC3339)", Required: true},
			&cli.IntFlag{Name: "h0", Usage: "start minute of day", Value: 540},
			&cli.IntFlag{Name: "h1", Usage: "end minute of day (1440 = next midnight)", Value: 1020},
			&cli.StringFlag{Name: "tz", Usage: "IANA timezone", Value: "UTC"},
			&cli.IntSliceFlag{Name: "weekday", Usage: "weekday filter 1=Mon..7=Sun (weekly), or target weekday (monthly-setpos)"},
			&cli.IntFlag{Name: "day", Usage: "day of month (monthly-day, yearly)"},
			&cli.IntFlag{Name: "month", Usage: "month 1..12 (yearly)"},
			&cli.IntFlag{Name: "setpos", Usage: "occurrence ±1..±5 (monthly-setpos)"},
		},
		Action: runExpand,
	}
}

func runExpand(c *cli.Context) error {
	w := interval.Window{
		StartMS: c.Timestamp("from").UTC().UnixMilli(),
		EndMS:   c.Timestamp("to").UTC().UnixMilli(),
	}
	h0, h1, tz := c.Int("h0"), c.Int("h1"), c.String("tz")

	var (
		out []interval.Interval
		err error
	)
	switch rule := c.String("rule"); rule {
	case "daily":
		out, err = interval.ExpandDaily(w, h0, h1, tz)
	case "weekly":
		out, err = interval.ExpandWeekly(w, h0, h1, tz, c.IntSlice("weekday"))
	case "monthly-day":
		out, err = interval.ExpandMonthlyByDay(w, c.Int("day"), h0, h1, tz)
	case "monthly-setpos":
		weekdays := c.IntSlice("weekday")
		if len(weekdays) != 1 {
			return fmt.Errorf("monthly-setpos needs exactly one --weekday")
		}
		out, err = interval.ExpandMonthlyBySetPos(w, weekdays[0], c.Int("setpos"), h0, h1, tz)
	case "yearly":
		out, err = interval.ExpandYearly(w, c.Int("month"), c.Int("day"), h0, h1, tz)
	default:
		return fmt.Errorf("unknown rule %q", rule)
	}
	if err != nil {
		return err
	}

	for _, iv := range out {
		fmt.Printf("%s\t%s\n",
			time.UnixMilli(iv.Start).UTC().Format(time.RFC3339),
			time.UnixMilli(iv.End).UTC().Format(time.RFC3339))
	}
	return nil
}
