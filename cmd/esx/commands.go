package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/esx"
	"github.com/meigma/esx/dump"
	"github.com/meigma/esx/internal/sizing"
	"github.com/meigma/esx/internal/write"
	"github.com/meigma/esx/types"
)

// errRoundTrip is returned when a file does not survive decode and encode.
var errRoundTrip = errors.New("round trip mismatch")

// loaded is one plugin file read from disk.
type loaded struct {
	path   string
	raw    []byte
	plugin *esx.Plugin
}

func (c *config) load(path string) (*loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := sizing.ReadAllWithLimit(f, c.maxSize, esx.ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	p, err := esx.Decode(raw, c.pluginOptions()...)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &loaded{path: path, raw: raw, plugin: p}, nil
}

// forEachFile runs fn for every path concurrently and returns the results in
// argument order.
func forEachFile[T any](paths []string, fn func(path string) (T, error)) ([]T, error) {
	results := make([]T, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			res, err := fn(path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type fileInfo struct {
	path        string
	digest      digest.Digest
	size        int
	header      *esx.Record
	topGroups   int
	stats       esx.ProcessStats
	compressed  int
	maxFormID   esx.FormID
	fieldCounts int
}

func infoCommand() *command {
	return &command{
		name:    "info",
		usage:   "FILE...",
		minArgs: 1,
		maxArgs: -1,
		run: func(cfg *config, args []string) error {
			infos, err := forEachFile(args, func(path string) (*fileInfo, error) {
				l, err := cfg.load(path)
				if err != nil {
					return nil, err
				}
				info := &fileInfo{
					path:      path,
					digest:    digest.FromBytes(l.raw),
					size:      len(l.raw),
					header:    l.plugin.Header(),
					topGroups: len(l.plugin.TopGroups()),
					stats:     l.plugin.Process(),
				}
				for _, r := range l.plugin.AllRecords() {
					if r.Compressed() {
						info.compressed++
					}
					info.maxFormID = max(info.maxFormID, r.FormID&types.MaxIDs)
					info.fieldCounts += len(r.Fields())
				}
				return info, nil
			})
			if err != nil {
				return err
			}
			for _, info := range infos {
				fmt.Fprintf(cfg.stdout, "%s\n", info.path)
				fmt.Fprintf(cfg.stdout, "  digest:        %s\n", info.digest)
				fmt.Fprintf(cfg.stdout, "  size:          %d\n", info.size)
				fmt.Fprintf(cfg.stdout, "  header flags:  %s\n", info.header.Flags)
				fmt.Fprintf(cfg.stdout, "  form version:  %d\n", info.header.FormVersion)
				fmt.Fprintf(cfg.stdout, "  top groups:    %d\n", info.topGroups)
				fmt.Fprintf(cfg.stdout, "  groups:        %d\n", info.stats.Groups)
				fmt.Fprintf(cfg.stdout, "  records:       %d\n", info.stats.Records)
				fmt.Fprintf(cfg.stdout, "  compressed:    %d\n", info.compressed)
				fmt.Fprintf(cfg.stdout, "  fields:        %d\n", info.fieldCounts)
				fmt.Fprintf(cfg.stdout, "  max object id: %s\n", info.maxFormID)
				fmt.Fprintf(cfg.stdout, "  unresolved:    %d\n", info.stats.Failed)
			}
			return nil
		},
	}
}

func groupsCommand() *command {
	return &command{
		name:    "groups",
		usage:   "FILE",
		minArgs: 1,
		maxArgs: 1,
		run: func(cfg *config, args []string) error {
			l, err := cfg.load(args[0])
			if err != nil {
				return err
			}
			l.plugin.Process()
			for _, g := range l.plugin.TopGroups() {
				printGroup(cfg, g, 0)
			}
			return nil
		},
	}
}

func printGroup(cfg *config, g *esx.Group, depth int) {
	indent := strings.Repeat("  ", depth)
	if !g.Data.Resolved() {
		fmt.Fprintf(cfg.stdout, "%s%s [%s, %d bytes]\n", indent, g, g.Data.Kind(), len(g.Data.Bytes()))
		return
	}
	fmt.Fprintf(cfg.stdout, "%s%s [%d records]\n", indent, g, len(g.Data.Records()))
	for _, child := range g.Data.Groups() {
		printGroup(cfg, child, depth+1)
	}
}

func recordsCommand() *command {
	var signatures []string
	return &command{
		name:    "records",
		usage:   "[--signature SIG]... FILE",
		minArgs: 1,
		maxArgs: 1,
		flags: func(fs *pflag.FlagSet) {
			fs.StringSliceVarP(&signatures, "signature", "s", nil, "only list records with this signature (repeatable)")
		},
		run: func(cfg *config, args []string) error {
			l, err := cfg.load(args[0])
			if err != nil {
				return err
			}
			l.plugin.Process()
			for _, r := range l.plugin.AllRecords() {
				if len(signatures) > 0 && !slices.Contains(signatures, r.Signature.String()) {
					continue
				}
				fmt.Fprintf(cfg.stdout, "%s %s %s fields=%d\n", r.Signature, r.FormID, r.Flags, len(r.Fields()))
			}
			return nil
		},
	}
}

func dumpCommand() *command {
	var raw bool
	var format string
	return &command{
		name:    "dump",
		usage:   "[--raw] [--format yaml|cbor] FILE OUT",
		minArgs: 2,
		maxArgs: 2,
		flags: func(fs *pflag.FlagSet) {
			fs.BoolVar(&raw, "raw", false, "dump payloads and labels without resolving them")
			fs.StringVar(&format, "format", "", "output format (default: from OUT's extension)")
		},
		run: func(cfg *config, args []string) error {
			f, err := outputFormat(format, args[1])
			if err != nil {
				return err
			}
			l, err := cfg.load(args[0])
			if err != nil {
				return err
			}
			if !raw {
				l.plugin.Process()
			}
			data, err := dump.Marshal(dump.FromPlugin(l.plugin), f)
			if err != nil {
				return err
			}
			if err := write.File(args[1], data); err != nil {
				return fmt.Errorf("write %s: %w", args[1], err)
			}
			cfg.logger.Debug("dump written", "path", args[1], "format", f.String(), "size", len(data))
			return nil
		},
	}
}

func outputFormat(name, path string) (dump.Format, error) {
	if name != "" {
		return dump.ParseFormat(name)
	}
	return dump.FormatFromPath(path)
}

func restoreCommand() *command {
	return &command{
		name:    "restore",
		usage:   "DUMP OUT",
		minArgs: 2,
		maxArgs: 2,
		run: func(cfg *config, args []string) error {
			doc, err := dump.ReadFile(args[0])
			if err != nil {
				return err
			}
			p, err := dump.ToPlugin(doc, cfg.pluginOptions()...)
			if err != nil {
				return fmt.Errorf("restore %s: %w", args[0], err)
			}
			return p.Save(args[1])
		},
	}
}

type roundTrip struct {
	path     string
	original digest.Digest
	resolved digest.Digest
}

func roundtripCommand() *command {
	return &command{
		name:    "roundtrip",
		usage:   "FILE...",
		minArgs: 1,
		maxArgs: -1,
		run: func(cfg *config, args []string) error {
			results, err := forEachFile(args, func(path string) (*roundTrip, error) {
				return cfg.roundTrip(path)
			})
			if err != nil {
				return err
			}
			for _, res := range results {
				fmt.Fprintf(cfg.stdout, "%s ok %s resolved %s\n", res.path, res.original, res.resolved)
			}
			return nil
		},
	}
}

// roundTrip checks that the unresolved plugin encodes to the original bytes
// and that the resolved encoding is stable across a second decode.
func (c *config) roundTrip(path string) (*roundTrip, error) {
	l, err := c.load(path)
	if err != nil {
		return nil, err
	}
	verbatim, err := l.plugin.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	if !bytes.Equal(verbatim, l.raw) {
		return nil, fmt.Errorf("%w: %s: unresolved encoding differs", errRoundTrip, path)
	}

	l.plugin.Process()
	first, err := l.plugin.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	again, err := esx.Decode(first, c.pluginOptions()...)
	if err != nil {
		return nil, fmt.Errorf("decode re-encoded %s: %w", path, err)
	}
	again.Process()
	second, err := again.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	if !bytes.Equal(first, second) {
		return nil, fmt.Errorf("%w: %s: resolved encoding is not stable", errRoundTrip, path)
	}
	return &roundTrip{
		path:     path,
		original: digest.FromBytes(l.raw),
		resolved: digest.FromBytes(first),
	}, nil
}
