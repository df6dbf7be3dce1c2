// Package inflate provides pooled zlib readers and writers for compressed
// record payloads.
package inflate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"

	"github.com/meigma/esx/internal/sizing"
)

// DefaultMaxSize is the default limit on inflated output (256MB).
const DefaultMaxSize = 256 << 20

var (
	// ErrCorrupt is returned when the input is not a valid zlib stream.
	ErrCorrupt = errors.New("inflate: corrupt zlib stream")

	// ErrTooLarge is returned when inflated output exceeds the configured limit.
	ErrTooLarge = errors.New("inflate: output exceeds limit")
)

// Pool manages reusable zlib readers and writers.
type Pool struct {
	readers sync.Pool
	writers sync.Pool
	level   int
	maxSize uint64
}

// Option configures a Pool.
type Option func(*Pool)

// WithLevel sets the zlib level used by Deflate (default zlib.DefaultCompression).
func WithLevel(level int) Option {
	return func(p *Pool) {
		p.level = level
	}
}

// WithMaxSize limits the inflated size of a single payload.
// Set to 0 to disable the limit.
func WithMaxSize(limit uint64) Option {
	return func(p *Pool) {
		p.maxSize = limit
	}
}

// NewPool creates a Pool.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		level:   zlib.DefaultCompression,
		maxSize: DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Inflate decompresses a complete zlib stream. sizeHint pre-sizes the output
// buffer only; the real length is whatever the stream produces.
func (p *Pool) Inflate(compressed []byte, sizeHint int) ([]byte, error) {
	zr, release, err := p.reader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	defer release()

	limit := uint64(DefaultMaxSize)
	if p != nil {
		limit = p.maxSize
	}
	out, err := sizing.ReadAllSized(zr, sizeHint, limit, ErrTooLarge)
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return out, nil
}

// Deflate compresses data into a complete zlib stream.
func (p *Pool) Deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, release, err := p.writer(&buf)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	return buf.Bytes(), nil
}

// reader returns a zlib reader over r. The caller must call release when done.
func (p *Pool) reader(r io.Reader) (io.ReadCloser, func(), error) {
	if p == nil {
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { _ = zr.Close() }, nil
	}

	// Reset consumes the stream header, so a failed Reset is final for r.
	if pooled, ok := p.readers.Get().(io.ReadCloser); ok {
		if resetter, ok := pooled.(zlib.Resetter); ok {
			if err := resetter.Reset(r, nil); err != nil {
				p.readers.Put(pooled)
				return nil, nil, err
			}
			return pooled, p.releaseReader(pooled), nil
		}
	}

	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	return zr, p.releaseReader(zr), nil
}

func (p *Pool) releaseReader(zr io.ReadCloser) func() {
	return func() {
		_ = zr.Close() //nolint:errcheck // close only reports stream errors already surfaced by Read
		p.readers.Put(zr)
	}
}

// writer returns a zlib writer targeting w. The caller must call release when done.
func (p *Pool) writer(w io.Writer) (*zlib.Writer, func(), error) {
	level := zlib.DefaultCompression
	if p != nil {
		level = p.level
		if zw, ok := p.writers.Get().(*zlib.Writer); ok {
			zw.Reset(w)
			return zw, func() { p.writers.Put(zw) }, nil
		}
	}

	zw, err := zlib.NewWriterLevel(w, level)
	if err != nil {
		return nil, nil, fmt.Errorf("deflate: %w", err)
	}
	if p == nil {
		return zw, func() {}, nil
	}
	return zw, func() { p.writers.Put(zw) }, nil
}
