package dump

import (
	"encoding/hex"

	"github.com/meigma/esx/types"
)

// Document is the structural form of a whole plugin.
type Document struct {
	Header Record  `yaml:"header" cbor:"1,keyasint"`
	Groups []Group `yaml:"groups,omitempty" cbor:"2,keyasint,omitempty"`
}

// Record is the structural form of a record.
type Record struct {
	Signature   types.Signature `yaml:"signature" cbor:"1,keyasint"`
	Flags       uint32          `yaml:"flags" cbor:"2,keyasint"`
	FormID      types.FormID    `yaml:"form_id" cbor:"3,keyasint"`
	Timestamp   types.Timestamp `yaml:"timestamp" cbor:"4,keyasint"`
	VcsInfo     types.VcsInfo   `yaml:"vcs_info" cbor:"5,keyasint"`
	FormVersion uint16          `yaml:"form_version" cbor:"6,keyasint"`
	Reserved    uint16          `yaml:"reserved,omitempty" cbor:"7,keyasint,omitempty"`
	Data        RecordData      `yaml:"data" cbor:"8,keyasint"`
}

// RecordData is a record payload. Kind is one of "empty", "raw",
// "compressed", or "fields". Bytes holds raw and compressed payloads
// verbatim; Fields holds resolved payloads.
type RecordData struct {
	Kind   string  `yaml:"kind" cbor:"1,keyasint"`
	Bytes  Bytes   `yaml:"bytes,omitempty" cbor:"2,keyasint,omitempty"`
	Fields []Field `yaml:"fields,omitempty" cbor:"3,keyasint,omitempty"`
}

// Field is one field of a resolved record.
type Field struct {
	Signature types.Signature `yaml:"signature" cbor:"1,keyasint"`
	Data      Bytes           `yaml:"data" cbor:"2,keyasint"`
}

// Group is the structural form of a group.
type Group struct {
	Label     Label           `yaml:"label" cbor:"1,keyasint"`
	Timestamp types.Timestamp `yaml:"timestamp" cbor:"2,keyasint"`
	VcsInfo   types.VcsInfo   `yaml:"vcs_info" cbor:"3,keyasint"`
	Reserved  uint32          `yaml:"reserved,omitempty" cbor:"4,keyasint,omitempty"`
	Data      GroupData       `yaml:"data" cbor:"5,keyasint"`
}

// Label is a group label. Kind is "raw" for an unresolved label, with
// Payload and Type holding the wire values; otherwise it names the group
// type and only the members of that type are set.
type Label struct {
	Kind       string           `yaml:"kind" cbor:"1,keyasint"`
	RecordType *types.Signature `yaml:"record_type,omitempty" cbor:"2,keyasint,omitempty"`
	Parent     *types.FormID    `yaml:"parent,omitempty" cbor:"3,keyasint,omitempty"`
	Block      *int32           `yaml:"block,omitempty" cbor:"4,keyasint,omitempty"`
	X          *int16           `yaml:"x,omitempty" cbor:"5,keyasint,omitempty"`
	Y          *int16           `yaml:"y,omitempty" cbor:"6,keyasint,omitempty"`
	Payload    Bytes            `yaml:"payload,omitempty" cbor:"7,keyasint,omitempty"`
	Type       *uint32          `yaml:"type,omitempty" cbor:"8,keyasint,omitempty"`
}

// GroupData is a group payload. Kind is one of "empty", "raw", or
// "components".
type GroupData struct {
	Kind       string      `yaml:"kind" cbor:"1,keyasint"`
	Bytes      Bytes       `yaml:"bytes,omitempty" cbor:"2,keyasint,omitempty"`
	Components []Component `yaml:"components,omitempty" cbor:"3,keyasint,omitempty"`
}

// Component holds exactly one of Record or Group.
type Component struct {
	Record *Record `yaml:"record,omitempty" cbor:"1,keyasint,omitempty"`
	Group  *Group  `yaml:"group,omitempty" cbor:"2,keyasint,omitempty"`
}

// Bytes is binary data that reads as hex in text documents and as a byte
// string in CBOR.
type Bytes []byte

// MarshalText encodes b as lower-case hex.
func (b Bytes) MarshalText() ([]byte, error) {
	out := make([]byte, hex.EncodedLen(len(b)))
	hex.Encode(out, b)
	return out, nil
}

// UnmarshalText decodes hex.
func (b *Bytes) UnmarshalText(text []byte) error {
	out := make([]byte, hex.DecodedLen(len(text)))
	if _, err := hex.Decode(out, text); err != nil {
		return err
	}
	*b = out
	return nil
}

// MarshalBinary returns b unchanged.
func (b Bytes) MarshalBinary() ([]byte, error) {
	return b, nil
}

// UnmarshalBinary copies data into b.
func (b *Bytes) UnmarshalBinary(data []byte) error {
	*b = append(Bytes(nil), data...)
	return nil
}
