package esx

import (
	"encoding/binary"
	"fmt"

	"github.com/meigma/esx/internal/sizing"
	"github.com/meigma/esx/types"
)

// GroupHeaderSize is the size of a group header. The size stored in the
// header includes it.
const GroupHeaderSize = 24

// Group is a framed container of records and nested groups.
type Group struct {
	Label     Label
	Timestamp Timestamp
	VcsInfo   VcsInfo
	Reserved  uint32
	Data      GroupData
}

// DecodeGroup decodes one group from the front of buf and returns the
// remaining bytes. The label and payload are left unresolved.
//
// The returned payload aliases buf.
func DecodeGroup(buf []byte) (*Group, []byte, error) {
	if len(buf) < 4 {
		return nil, nil, shortBuffer("group signature", 4, len(buf))
	}
	if sig := types.SignatureFromBytes(buf[0:4]); sig != SignatureGroup {
		return nil, nil, fmt.Errorf("%w: found %q", ErrNonGroupSignature, buf[0:4])
	}
	if len(buf) < GroupHeaderSize {
		return nil, nil, shortBuffer("group header", GroupHeaderSize, len(buf))
	}
	header := buf[:GroupHeaderSize]
	rest := buf[GroupHeaderSize:]

	total := uint64(binary.LittleEndian.Uint32(header[4:8]))
	if total < GroupHeaderSize {
		return nil, nil, fmt.Errorf("%w: group size %d is smaller than its header", ErrBufferTooShort, total)
	}
	size := total - GroupHeaderSize
	if uint64(len(rest)) < size {
		return nil, nil, shortBuffer("group data", size, len(rest))
	}
	n := int(size) //nolint:gosec // bounded by len(rest)

	var label [LabelSize]byte
	copy(label[:], header[8:16])

	g := &Group{
		Label:     DecodeLabel(label),
		Timestamp: types.TimestampFromUint16(binary.LittleEndian.Uint16(header[16:18])),
		VcsInfo:   types.VcsInfoFromUint16(binary.LittleEndian.Uint16(header[18:20])),
		Reserved:  binary.LittleEndian.Uint32(header[20:24]),
		Data:      RawGroupData(rest[:n:n]),
	}
	return g, rest[n:], nil
}

// String returns the label description.
func (g *Group) String() string {
	if g.Label == nil {
		return "<no label>"
	}
	return g.Label.String()
}

// AppendBinary appends the wire form of the group to dst.
func (g *Group) AppendBinary(dst []byte) ([]byte, error) {
	return defaultEncoder.appendGroup(dst, g)
}

// MarshalBinary returns the wire form of the group.
func (g *Group) MarshalBinary() ([]byte, error) {
	return g.AppendBinary(nil)
}

func (g *Group) isComponent() {}

// appendGroup writes the header after the payload, since the header size
// covers the encoded payload.
func (e *encoder) appendGroup(dst []byte, g *Group) ([]byte, error) {
	start := len(dst)
	dst = append(dst, make([]byte, GroupHeaderSize)...)

	dst, err := e.appendGroupData(dst, g.Data)
	if err != nil {
		return dst[:start], fmt.Errorf("group %s: %w", g, err)
	}
	total, err := sizing.ToUint32(len(dst)-start, ErrSizeOverflow)
	if err != nil {
		return dst[:start], fmt.Errorf("group %s: %w", g, err)
	}

	header := dst[start : start+GroupHeaderSize]
	copy(header[0:4], SignatureGroup[:])
	binary.LittleEndian.PutUint32(header[4:8], total)
	label := EncodeLabel(g.Label)
	copy(header[8:16], label[:])
	binary.LittleEndian.PutUint16(header[16:18], g.Timestamp.Uint16())
	binary.LittleEndian.PutUint16(header[18:20], g.VcsInfo.Uint16())
	binary.LittleEndian.PutUint32(header[20:24], g.Reserved)
	return dst, nil
}
