package esx

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/meigma/esx/internal/sizing"
	"github.com/meigma/esx/types"
)

// Plugin is a whole master, plugin, or light-master file: a header record
// followed by top-level groups.
type Plugin struct {
	header   Record
	groups   []*Group
	resolver *Resolver
	logger   *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Plugin) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

func newPlugin(opts []Option) *Plugin {
	o := applyOptions(opts)
	resolverOpts := append([]ResolverOption{ResolverWithLogger(o.logger)}, o.resolverOpts...)
	return &Plugin{
		resolver: NewResolver(resolverOpts...),
		logger:   o.logger,
	}
}

// New assembles a plugin from a header record and top-level groups.
func New(header Record, groups []*Group, opts ...Option) *Plugin {
	p := newPlugin(opts)
	p.header = header
	p.groups = groups
	return p
}

// Decode parses a complete plugin file. Any framing error aborts the load;
// payloads and labels are left unresolved until [Plugin.Process].
//
// The plugin aliases buf, which must not be modified afterwards.
func Decode(buf []byte, opts ...Option) (*Plugin, error) {
	p := newPlugin(opts)

	if len(buf) < 4 {
		return nil, shortBuffer("file magic", 4, len(buf))
	}
	switch types.SignatureFromBytes(buf[0:4]) {
	case SignatureTES4:
	case SignatureTES3:
		return nil, ErrTES3Header
	default:
		return nil, fmt.Errorf("%w: magic %q", ErrUnknownFileType, buf[0:4])
	}

	header, rest, err := DecodeRecord(buf)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	p.header = header

	for len(rest) > 0 {
		offset := len(buf) - len(rest)
		g, next, err := DecodeGroup(rest)
		if err != nil {
			return nil, fmt.Errorf("top group at offset %d: %w", offset, err)
		}
		p.groups = append(p.groups, g)
		rest = next
	}

	p.log().Debug("plugin decoded",
		slog.Int("size", len(buf)),
		slog.Int("top_groups", len(p.groups)),
		slog.Uint64("form_version", uint64(header.FormVersion)))
	return p, nil
}

// Read reads a plugin from r and decodes it.
func Read(r io.Reader, opts ...Option) (*Plugin, error) {
	limit := applyOptions(opts).maxFileSize
	buf, err := sizing.ReadAllWithLimit(r, limit, ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	return Decode(buf, opts...)
}

// ReadFile reads and decodes the plugin file at path.
func ReadFile(path string, opts ...Option) (*Plugin, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	p, err := Read(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p, nil
}

// Header returns the header record.
func (p *Plugin) Header() *Record {
	return &p.header
}

// TopGroups returns the top-level groups in file order.
func (p *Plugin) TopGroups() []*Group {
	return p.groups
}

// AllRecords returns the header record followed by every record reachable
// from the top-level groups, depth first and in document order. Records in
// unresolved groups are not included.
func (p *Plugin) AllRecords() []*Record {
	records := []*Record{&p.header}
	for _, g := range p.groups {
		records = g.Data.appendRecords(records)
	}
	return records
}

// Process resolves the header record and every top-level group, including
// everything beneath them. Failures are logged and counted; the affected
// values stay unresolved.
func (p *Plugin) Process() ProcessStats {
	stats := p.resolver.ProcessRecord(&p.header)
	for _, g := range p.groups {
		stats.add(p.resolver.ProcessGroup(g))
	}
	p.log().Debug("plugin processed",
		slog.Int("records", stats.Records),
		slog.Int("groups", stats.Groups),
		slog.Int("failed", stats.Failed))
	return stats
}

// AppendBinary appends the wire form of the plugin to dst.
func (p *Plugin) AppendBinary(dst []byte) ([]byte, error) {
	enc := p.resolver.encoder()
	dst, err := enc.appendRecord(dst, &p.header)
	if err != nil {
		return dst, fmt.Errorf("header: %w", err)
	}
	for _, g := range p.groups {
		if dst, err = enc.appendGroup(dst, g); err != nil {
			return dst, err
		}
	}
	return dst, nil
}

// MarshalBinary returns the wire form of the plugin.
func (p *Plugin) MarshalBinary() ([]byte, error) {
	return p.AppendBinary(nil)
}

// WriteTo writes the wire form of the plugin to w.
func (p *Plugin) WriteTo(w io.Writer) (int64, error) {
	data, err := p.MarshalBinary()
	if err != nil {
		return 0, err
	}
	return bytes.NewReader(data).WriteTo(w)
}
