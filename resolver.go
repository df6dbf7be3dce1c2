package esx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meigma/esx/internal/inflate"
)

// encoder carries the compressor used when a resolved record must be
// re-compressed.
type encoder struct {
	pool *inflate.Pool
}

var (
	defaultEncoder  = &encoder{pool: inflate.NewPool()}
	defaultResolver = NewResolver()
)

// Resolver turns raw payloads and labels into their decoded form.
//
// The RecordData, GroupData, and Label methods are strict and return an
// error. ProcessRecord and ProcessGroup are best effort: failures are logged
// and the affected value is left unresolved.
type Resolver struct {
	pool   *inflate.Pool
	logger *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverConfig)

type resolverConfig struct {
	logger           *slog.Logger
	maxDecompressed  uint64
	compressionLevel int
	levelSet         bool
}

// ResolverWithLogger sets the logger that receives resolve failures.
func ResolverWithLogger(logger *slog.Logger) ResolverOption {
	return func(c *resolverConfig) {
		c.logger = logger
	}
}

// ResolverWithMaxDecompressedSize limits the inflated size of one record payload.
// Set limit to 0 to disable the limit.
func ResolverWithMaxDecompressedSize(limit uint64) ResolverOption {
	return func(c *resolverConfig) {
		c.maxDecompressed = limit
	}
}

// ResolverWithCompressionLevel sets the zlib level used when resolved
// records are re-compressed on encode.
func ResolverWithCompressionLevel(level int) ResolverOption {
	return func(c *resolverConfig) {
		c.compressionLevel = level
		c.levelSet = true
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	cfg := resolverConfig{maxDecompressed: inflate.DefaultMaxSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	poolOpts := []inflate.Option{inflate.WithMaxSize(cfg.maxDecompressed)}
	if cfg.levelSet {
		poolOpts = append(poolOpts, inflate.WithLevel(cfg.compressionLevel))
	}
	return &Resolver{
		pool:   inflate.NewPool(poolOpts...),
		logger: cfg.logger,
	}
}

// log returns the logger, falling back to a discard logger if nil.
func (rv *Resolver) log() *slog.Logger {
	if rv.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return rv.logger
}

// encoder returns an encoder sharing the resolver's compression settings.
func (rv *Resolver) encoder() *encoder {
	return &encoder{pool: rv.pool}
}

// RecordData decodes a raw or compressed payload into fields. Resolved and
// empty payloads are returned unchanged. On error d is returned as is.
func (rv *Resolver) RecordData(d RecordData) (RecordData, error) {
	switch d.kind {
	case RecordDataRaw:
		fields, err := decodeFields(d.raw)
		if err != nil {
			return d, err
		}
		return FieldRecordData(fields...), nil
	case RecordDataCompressed:
		body, err := rv.inflate(d.raw)
		if err != nil {
			return d, err
		}
		fields, err := decodeFields(body)
		if err != nil {
			return d, err
		}
		return FieldRecordData(fields...), nil
	default:
		return d, nil
	}
}

// maxSizeHint caps the buffer preallocated from a compressed payload's
// stored length.
const maxSizeHint = 16 << 20

// inflate unpacks a compressed payload. The leading length only sizes the
// output buffer; it is not checked against the inflated length.
func (rv *Resolver) inflate(payload []byte) ([]byte, error) {
	if len(payload) < 4 {
		return nil, shortBuffer("compressed payload length", 4, len(payload))
	}
	hint := binary.LittleEndian.Uint32(payload[0:4])
	out, err := rv.pool.Inflate(payload[4:], int(min(hint, maxSizeHint)))
	if err != nil {
		if errors.Is(err, inflate.ErrTooLarge) {
			return nil, fmt.Errorf("%w: %w", ErrSizeOverflow, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
	}
	return out, nil
}

// GroupData decodes a raw payload into components and then processes every
// component on a best-effort basis. A resolved payload has its components
// processed again. On a framing error d is returned as is.
func (rv *Resolver) GroupData(d GroupData) (GroupData, error) {
	var stats ProcessStats
	switch d.kind {
	case GroupDataRaw:
		components, err := decodeComponents(d.raw)
		if err != nil {
			return d, err
		}
		rv.processComponents(components, &stats)
		return ComponentGroupData(components...), nil
	case GroupDataComponents:
		rv.processComponents(d.components, &stats)
		return d, nil
	default:
		return d, nil
	}
}

// Label resolves a group label. See [ResolveLabel].
func (rv *Resolver) Label(l Label) (Label, error) {
	return ResolveLabel(l)
}

// ProcessStats summarizes a best-effort resolve pass.
type ProcessStats struct {
	Records int // records visited
	Groups  int // groups visited
	Failed  int // records, labels, or group payloads left unresolved
}

func (s *ProcessStats) add(other ProcessStats) {
	s.Records += other.Records
	s.Groups += other.Groups
	s.Failed += other.Failed
}

// ProcessRecord resolves the record payload in place. A failure is logged
// and the payload is kept unresolved.
func (rv *Resolver) ProcessRecord(r *Record) ProcessStats {
	var stats ProcessStats
	rv.processRecord(r, &stats)
	return stats
}

// ProcessGroup resolves the group label and payload in place, recursively.
// The label and payload are handled independently: a failure in one is
// logged and does not prevent the other.
func (rv *Resolver) ProcessGroup(g *Group) ProcessStats {
	var stats ProcessStats
	rv.processGroup(g, &stats)
	return stats
}

func (rv *Resolver) processRecord(r *Record, stats *ProcessStats) {
	stats.Records++
	data, err := rv.RecordData(r.Data)
	if err != nil {
		stats.Failed++
		rv.log().Warn("record data left unresolved",
			slog.String("signature", r.Signature.String()),
			slog.String("form_id", r.FormID.String()),
			slog.Any("error", err))
		return
	}
	r.Data = data
}

func (rv *Resolver) processGroup(g *Group, stats *ProcessStats) {
	stats.Groups++

	label, err := ResolveLabel(g.Label)
	if err != nil {
		stats.Failed++
		rv.log().Warn("group label left unresolved",
			slog.String("label", g.String()),
			slog.Any("error", err))
	} else {
		g.Label = label
	}

	switch g.Data.kind {
	case GroupDataRaw:
		components, err := decodeComponents(g.Data.raw)
		if err != nil {
			stats.Failed++
			rv.log().Warn("group data left unresolved",
				slog.String("label", g.String()),
				slog.Int("size", len(g.Data.raw)),
				slog.Any("error", err))
			return
		}
		g.Data = ComponentGroupData(components...)
		rv.processComponents(components, stats)
	case GroupDataComponents:
		rv.processComponents(g.Data.components, stats)
	}
}

func (rv *Resolver) processComponents(components []Component, stats *ProcessStats) {
	for _, c := range components {
		switch v := c.(type) {
		case *Record:
			rv.processRecord(v, stats)
		case *Group:
			rv.processGroup(v, stats)
		}
	}
}
