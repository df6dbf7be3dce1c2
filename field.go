package esx

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/meigma/esx/internal/sizing"
	"github.com/meigma/esx/types"
)

const (
	// FieldHeaderSize is the size of a normal field header.
	FieldHeaderSize = 6

	// MaxFieldDataSize is the largest payload a normal field header can describe.
	// Larger payloads are written with the XXXX escape.
	MaxFieldDataSize = math.MaxUint16

	// oversizedHeaderSize is the XXXX header: signature, u16 (always 4), u32 size.
	oversizedHeaderSize = FieldHeaderSize + 4
)

// Field is the smallest framed unit of a record payload: a tag and an opaque
// byte blob.
type Field struct {
	Signature Signature
	Data      []byte
}

// NewField creates a field with the given tag and payload.
func NewField(sig Signature, data []byte) Field {
	return Field{Signature: sig, Data: data}
}

// DecodeField decodes one field from the front of buf and returns the
// remaining bytes. An XXXX escape is unwrapped, so the returned field always
// carries the real signature and the full payload.
//
// The returned payload aliases buf.
func DecodeField(buf []byte) (Field, []byte, error) {
	if len(buf) < FieldHeaderSize {
		return Field{}, nil, shortBuffer("field header", FieldHeaderSize, len(buf))
	}
	sig := types.SignatureFromBytes(buf[0:4])
	size := uint64(binary.LittleEndian.Uint16(buf[4:6]))
	rest := buf[FieldHeaderSize:]

	if sig == SignatureOversized {
		if len(rest) < 4 {
			return Field{}, nil, shortBuffer("oversized field size", 4, len(rest))
		}
		size = uint64(binary.LittleEndian.Uint32(rest[0:4]))
		rest = rest[4:]
		if len(rest) < FieldHeaderSize {
			return Field{}, nil, shortBuffer("oversized field header", FieldHeaderSize, len(rest))
		}
		sig = types.SignatureFromBytes(rest[0:4])
		// The inner size is meaningless once the escape supplied the real one.
		rest = rest[FieldHeaderSize:]
	}

	if uint64(len(rest)) < size {
		return Field{}, nil, shortBuffer(fmt.Sprintf("field %s data", sig), size, len(rest))
	}
	n := int(size) //nolint:gosec // bounded by len(rest)
	return Field{Signature: sig, Data: rest[:n:n]}, rest[n:], nil
}

// Oversized reports whether the field needs the XXXX escape when encoded:
// its payload exceeds MaxFieldDataSize, or its own signature is XXXX and a
// plain header would be read back as an escape.
func (f Field) Oversized() bool {
	return len(f.Data) > MaxFieldDataSize || f.Signature == SignatureOversized
}

// Size returns the encoded size of the field in bytes.
func (f Field) Size() int {
	if f.Oversized() {
		return oversizedHeaderSize + FieldHeaderSize + len(f.Data)
	}
	return FieldHeaderSize + len(f.Data)
}

// AppendBinary appends the wire form of the field to dst.
func (f Field) AppendBinary(dst []byte) ([]byte, error) {
	if f.Oversized() {
		size, err := sizing.ToUint32(len(f.Data), ErrSizeOverflow)
		if err != nil {
			return dst, fmt.Errorf("field %s: %w", f.Signature, err)
		}
		dst = append(dst, SignatureOversized[:]...)
		dst = binary.LittleEndian.AppendUint16(dst, 4)
		dst = binary.LittleEndian.AppendUint32(dst, size)
		dst = append(dst, f.Signature[:]...)
		dst = binary.LittleEndian.AppendUint16(dst, 0)
	} else {
		dst = append(dst, f.Signature[:]...)
		dst = binary.LittleEndian.AppendUint16(dst, uint16(len(f.Data))) //nolint:gosec // checked by Oversized
	}
	return append(dst, f.Data...), nil
}

// MarshalBinary returns the wire form of the field.
func (f Field) MarshalBinary() ([]byte, error) {
	return f.AppendBinary(make([]byte, 0, f.Size()))
}

// decodeFields decodes buf as a back-to-back sequence of fields.
func decodeFields(buf []byte) ([]Field, error) {
	fields := make([]Field, 0, 8)
	for len(buf) > 0 {
		f, rest, err := DecodeField(buf)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		buf = rest
	}
	return fields, nil
}

// appendFields appends the wire form of every field to dst.
func appendFields(dst []byte, fields []Field) ([]byte, error) {
	var err error
	for _, f := range fields {
		if dst, err = f.AppendBinary(dst); err != nil {
			return dst, err
		}
	}
	return dst, nil
}
