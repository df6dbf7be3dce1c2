// Package sizing provides overflow-checked size conversions and bounded reads.
package sizing

import (
	"bytes"
	"io"
	"math"
)

// ToUint32 converts an int length to the uint32 used by 4-byte size fields,
// returning overflowErr if it doesn't fit.
func ToUint32(size int, overflowErr error) (uint32, error) {
	if size < 0 || uint64(size) > math.MaxUint32 {
		return 0, overflowErr
	}
	return uint32(size), nil
}

// ReadAllWithLimit reads up to maxSize bytes from r.
// Returns overflowErr if more than maxSize bytes are available.
// A maxSize of 0 disables the limit.
func ReadAllWithLimit(r io.Reader, maxSize uint64, overflowErr error) ([]byte, error) {
	return ReadAllSized(r, 0, maxSize, overflowErr)
}

// ReadAllSized is ReadAllWithLimit with a capacity hint for the output
// buffer. The hint is clamped to maxSize and is never trusted as the length.
func ReadAllSized(r io.Reader, hint int, maxSize uint64, overflowErr error) ([]byte, error) {
	if maxSize == 0 {
		maxSize = uint64(math.MaxInt - 1)
	}
	if maxSize > uint64(math.MaxInt-1) {
		return nil, overflowErr
	}
	if hint < 0 {
		hint = 0
	}
	if uint64(hint) > maxSize {
		hint = int(maxSize)
	}

	var buf bytes.Buffer
	buf.Grow(hint)
	limit := int64(maxSize) + 1 //nolint:gosec // checked above
	if _, err := buf.ReadFrom(&io.LimitedReader{R: r, N: limit}); err != nil {
		return nil, err
	}
	if uint64(buf.Len()) > maxSize {
		return nil, overflowErr
	}
	return buf.Bytes(), nil
}
