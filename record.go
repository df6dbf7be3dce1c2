package esx

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/meigma/esx/internal/sizing"
	"github.com/meigma/esx/types"
)

// RecordHeaderSize is the size of a record header.
const RecordHeaderSize = 24

// RecordFlags is the 32-bit flag word of a record header.
type RecordFlags uint32

// Record flags. Most bits are record-type specific; only the ones with a
// stable meaning across record types are named.
const (
	FlagMaster            RecordFlags = 0x00000001
	FlagDeleted           RecordFlags = 0x00000020
	FlagLocalized         RecordFlags = 0x00000080
	FlagLightMaster       RecordFlags = 0x00000200
	FlagPersistent        RecordFlags = 0x00000400
	FlagInitiallyDisabled RecordFlags = 0x00000800
	FlagIgnored           RecordFlags = 0x00001000
	FlagCompressed        RecordFlags = 0x00040000
)

var flagNames = []struct {
	flag RecordFlags
	name string
}{
	{FlagMaster, "master"},
	{FlagDeleted, "deleted"},
	{FlagLocalized, "localized"},
	{FlagLightMaster, "light"},
	{FlagPersistent, "persistent"},
	{FlagInitiallyDisabled, "disabled"},
	{FlagIgnored, "ignored"},
	{FlagCompressed, "compressed"},
}

// Has reports whether every bit of f is set.
func (r RecordFlags) Has(f RecordFlags) bool {
	return r&f == f
}

// String lists the named flags that are set, plus any unnamed remainder in hex.
func (r RecordFlags) String() string {
	if r == 0 {
		return "none"
	}
	var parts []string
	rest := r
	for _, fn := range flagNames {
		if r.Has(fn.flag) {
			parts = append(parts, fn.name)
			rest &^= fn.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%08x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// Record is a framed entity holding game data fields.
type Record struct {
	Signature   Signature
	Flags       RecordFlags
	FormID      FormID
	Timestamp   Timestamp
	VcsInfo     VcsInfo
	FormVersion uint16
	Reserved    uint16
	Data        RecordData
}

// DecodeRecord decodes one record from the front of buf and returns the
// remaining bytes. The payload is left raw, or compressed when
// FlagCompressed is set; use a [Resolver] to decode its fields.
//
// The returned payload aliases buf.
func DecodeRecord(buf []byte) (Record, []byte, error) {
	if len(buf) < RecordHeaderSize {
		return Record{}, nil, shortBuffer("record header", RecordHeaderSize, len(buf))
	}
	header := buf[:RecordHeaderSize]
	rest := buf[RecordHeaderSize:]

	rec := Record{
		Signature:   types.SignatureFromBytes(header[0:4]),
		Flags:       RecordFlags(binary.LittleEndian.Uint32(header[8:12])),
		FormID:      FormID(binary.LittleEndian.Uint32(header[12:16])),
		Timestamp:   types.TimestampFromUint16(binary.LittleEndian.Uint16(header[16:18])),
		VcsInfo:     types.VcsInfoFromUint16(binary.LittleEndian.Uint16(header[18:20])),
		FormVersion: binary.LittleEndian.Uint16(header[20:22]),
		Reserved:    binary.LittleEndian.Uint16(header[22:24]),
	}

	size := uint64(binary.LittleEndian.Uint32(header[4:8]))
	if uint64(len(rest)) < size {
		return Record{}, nil, shortBuffer(fmt.Sprintf("record %s data", rec.Signature), size, len(rest))
	}
	n := int(size) //nolint:gosec // bounded by len(rest)
	payload := rest[:n:n]
	if rec.Flags.Has(FlagCompressed) {
		rec.Data = CompressedRecordData(payload)
	} else {
		rec.Data = RawRecordData(payload)
	}
	return rec, rest[n:], nil
}

// Compressed reports whether the header marks the payload as zlib-compressed.
func (r *Record) Compressed() bool {
	return r.Flags.Has(FlagCompressed)
}

// Fields returns the decoded fields, or nil if the payload is not resolved.
func (r *Record) Fields() []Field {
	return r.Data.Fields()
}

// String returns a short description such as "WEAP 00012eb7".
func (r *Record) String() string {
	return r.Signature.String() + " " + r.FormID.String()
}

// AppendBinary appends the wire form of the record to dst.
//
// A resolved payload is re-encoded from its fields, and re-compressed when
// FlagCompressed is set. An unresolved payload is written verbatim.
func (r *Record) AppendBinary(dst []byte) ([]byte, error) {
	return defaultEncoder.appendRecord(dst, r)
}

// MarshalBinary returns the wire form of the record.
func (r *Record) MarshalBinary() ([]byte, error) {
	return r.AppendBinary(nil)
}

func (r *Record) isComponent() {}

// appendRecord writes the header with a payload size computed from the
// encoded payload, never from a previously decoded size.
func (e *encoder) appendRecord(dst []byte, r *Record) ([]byte, error) {
	payload, err := e.recordPayload(r)
	if err != nil {
		return dst, fmt.Errorf("record %s: %w", r, err)
	}
	size, err := sizing.ToUint32(len(payload), ErrSizeOverflow)
	if err != nil {
		return dst, fmt.Errorf("record %s: %w", r, err)
	}

	dst = append(dst, r.Signature[:]...)
	dst = binary.LittleEndian.AppendUint32(dst, size)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.Flags))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(r.FormID))
	dst = binary.LittleEndian.AppendUint16(dst, r.Timestamp.Uint16())
	dst = binary.LittleEndian.AppendUint16(dst, r.VcsInfo.Uint16())
	dst = binary.LittleEndian.AppendUint16(dst, r.FormVersion)
	dst = binary.LittleEndian.AppendUint16(dst, r.Reserved)
	return append(dst, payload...), nil
}

func (e *encoder) recordPayload(r *Record) ([]byte, error) {
	switch r.Data.Kind() {
	case RecordDataRaw, RecordDataCompressed:
		return r.Data.Bytes(), nil
	case RecordDataFields:
		body, err := appendFields(nil, r.Data.Fields())
		if err != nil {
			return nil, err
		}
		if !r.Compressed() {
			return body, nil
		}
		return e.compress(body)
	default:
		return nil, nil
	}
}

// compress produces a compressed payload: the inflated length followed by a
// zlib stream.
func (e *encoder) compress(body []byte) ([]byte, error) {
	size, err := sizing.ToUint32(len(body), ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	stream, err := e.pool.Deflate(body)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 4+len(stream))
	out = binary.LittleEndian.AppendUint32(out, size)
	return append(out, stream...), nil
}
