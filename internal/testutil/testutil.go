// Package testutil builds plugin wire bytes by hand for tests, independent
// of the encoder under test.
package testutil

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zlib"
)

// CompressedFlag is the record flag marking a zlib payload.
const CompressedFlag uint32 = 0x00040000

// Field returns a normal field frame.
func Field(sig string, data []byte) []byte {
	out := []byte(sig)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(data))) //nolint:gosec // test input
	return append(out, data...)
}

// OversizedField returns an XXXX-escaped field frame.
func OversizedField(sig string, data []byte) []byte {
	out := []byte("XXXX")
	out = binary.LittleEndian.AppendUint16(out, 4)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(data))) //nolint:gosec // test input
	out = append(out, sig...)
	out = binary.LittleEndian.AppendUint16(out, 0)
	return append(out, data...)
}

// RecordHeader describes the header of a hand-built record.
type RecordHeader struct {
	Signature   string
	Flags       uint32
	FormID      uint32
	Timestamp   uint16
	Vcs         uint16
	FormVersion uint16
	Reserved    uint16
}

// Record returns a record frame with the given payload.
func Record(h RecordHeader, payload []byte) []byte {
	out := []byte(h.Signature)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload))) //nolint:gosec // test input
	out = binary.LittleEndian.AppendUint32(out, h.Flags)
	out = binary.LittleEndian.AppendUint32(out, h.FormID)
	out = binary.LittleEndian.AppendUint16(out, h.Timestamp)
	out = binary.LittleEndian.AppendUint16(out, h.Vcs)
	out = binary.LittleEndian.AppendUint16(out, h.FormVersion)
	out = binary.LittleEndian.AppendUint16(out, h.Reserved)
	return append(out, payload...)
}

// Compressed returns a compressed record payload: the inflated length
// followed by a zlib stream of body.
func Compressed(tb testing.TB, body []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		tb.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("zlib close: %v", err)
	}
	out := binary.LittleEndian.AppendUint32(nil, uint32(len(body))) //nolint:gosec // test input
	return append(out, buf.Bytes()...)
}

// Group returns a group frame. label is the 4 payload bytes of the label.
func Group(label [4]byte, labelType uint32, timestamp, vcs uint16, payload []byte) []byte {
	out := []byte("GRUP")
	out = binary.LittleEndian.AppendUint32(out, uint32(24+len(payload))) //nolint:gosec // test input
	out = append(out, label[:]...)
	out = binary.LittleEndian.AppendUint32(out, labelType)
	out = binary.LittleEndian.AppendUint16(out, timestamp)
	out = binary.LittleEndian.AppendUint16(out, vcs)
	out = binary.LittleEndian.AppendUint32(out, 0)
	return append(out, payload...)
}

// TopGroup returns a top-level group for one record type.
func TopGroup(recordType string, payload []byte) []byte {
	var label [4]byte
	copy(label[:], recordType)
	return Group(label, 0, 0, 0, payload)
}

// Uint32Label returns a label payload holding v little-endian.
func Uint32Label(v uint32) [4]byte {
	var label [4]byte
	binary.LittleEndian.PutUint32(label[:], v)
	return label
}

// Concat joins frames.
func Concat(frames ...[]byte) []byte {
	return bytes.Join(frames, nil)
}

// SamplePlugin returns a small but complete plugin exercising every frame
// kind: a header, a top group of plain records, a compressed record, an
// oversized field, nested cell groups with every child label type, and
// non-zero timestamps and vcs words.
func SamplePlugin(tb testing.TB) []byte {
	tb.Helper()

	header := Record(RecordHeader{Signature: "TES4", Flags: 0x1, FormVersion: 131},
		Concat(
			Field("HEDR", []byte{0x9a, 0x99, 0x59, 0x3f, 2, 0, 0, 0, 0, 0x10, 0, 0}),
			Field("CNAM", []byte("author\x00")),
		))

	weapons := TopGroup("WEAP", Concat(
		Record(RecordHeader{Signature: "WEAP", FormID: 0x00012EB7, Timestamp: 0x4C2A, Vcs: 0x0302, FormVersion: 44},
			Concat(Field("EDID", []byte("IronSword\x00")), Field("DATA", []byte{1, 2, 3, 4}))),
		Record(RecordHeader{Signature: "WEAP", FormID: 0x00012EB8, Flags: CompressedFlag, FormVersion: 44},
			Compressed(tb, Concat(Field("EDID", []byte("SteelSword\x00")), Field("DATA", bytes.Repeat([]byte{7}, 64))))),
	))

	books := TopGroup("BOOK", Record(RecordHeader{Signature: "BOOK", FormID: 0x00000100, FormVersion: 44},
		Concat(Field("EDID", []byte("Tome\x00")), OversizedField("DESC", bytes.Repeat([]byte("a"), 70000)))))

	cellID := uint32(0x0000003C)
	cells := TopGroup("CELL", Group(Uint32Label(1), 2, 0, 0,
		Group(Uint32Label(0xFFFFFFFF), 3, 0, 0, Concat(
			Record(RecordHeader{Signature: "CELL", FormID: cellID, FormVersion: 44}, Field("EDID", []byte("Cell\x00"))),
			Group(Uint32Label(cellID), 6, 0, 0, Concat(
				Group(Uint32Label(cellID), 8, 0, 0,
					Record(RecordHeader{Signature: "REFR", FormID: 0x00000200, FormVersion: 44}, Field("NAME", []byte{1, 0, 0, 0}))),
				Group(Uint32Label(cellID), 9, 0, 0,
					Record(RecordHeader{Signature: "REFR", FormID: 0x00000201, FormVersion: 44}, nil)),
			)),
		))))

	worlds := TopGroup("WRLD", Concat(
		Record(RecordHeader{Signature: "WRLD", FormID: 0x0000003D, FormVersion: 44}, nil),
		Group(Uint32Label(0x0000003D), 1, 0, 0,
			Group([4]byte{0xFE, 0xFF, 0x01, 0x00}, 4, 0, 0,
				Group([4]byte{0xF8, 0xFF, 0x05, 0x00}, 5, 0, 0, nil))),
	))

	dialogue := TopGroup("DIAL", Concat(
		Record(RecordHeader{Signature: "DIAL", FormID: 0x00000300, FormVersion: 44}, nil),
		Group(Uint32Label(0x00000300), 7, 0, 0, Record(RecordHeader{Signature: "INFO", FormID: 0x00000301, FormVersion: 44}, nil)),
	))

	quests := TopGroup("QUST", Concat(
		Record(RecordHeader{Signature: "QUST", FormID: 0x00000400, FormVersion: 44}, nil),
		Group(Uint32Label(0x00000400), 10, 0, 0, Record(RecordHeader{Signature: "SCEN", FormID: 0x00000401, FormVersion: 44}, nil)),
	))

	return Concat(header, weapons, books, cells, worlds, dialogue, quests)
}
