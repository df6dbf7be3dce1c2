package esx

import "fmt"

// RecordDataKind identifies the state of a record payload.
type RecordDataKind uint8

const (
	// RecordDataEmpty is a payload with no bytes and no fields.
	RecordDataEmpty RecordDataKind = iota

	// RecordDataRaw is an undecoded, uncompressed payload.
	RecordDataRaw

	// RecordDataCompressed is an undecoded payload holding a length prefix and
	// a zlib stream.
	RecordDataCompressed

	// RecordDataFields is a payload decoded into its fields.
	RecordDataFields
)

func (k RecordDataKind) String() string {
	switch k {
	case RecordDataEmpty:
		return "empty"
	case RecordDataRaw:
		return "raw"
	case RecordDataCompressed:
		return "compressed"
	case RecordDataFields:
		return "fields"
	default:
		return fmt.Sprintf("RecordDataKind(%d)", uint8(k))
	}
}

// RecordData is the payload of a record in one of its [RecordDataKind] states.
// The zero value is an empty payload.
type RecordData struct {
	kind   RecordDataKind
	raw    []byte
	fields []Field
}

// RawRecordData wraps undecoded, uncompressed payload bytes.
func RawRecordData(b []byte) RecordData {
	return RecordData{kind: RecordDataRaw, raw: b}
}

// CompressedRecordData wraps an undecoded compressed payload.
func CompressedRecordData(b []byte) RecordData {
	return RecordData{kind: RecordDataCompressed, raw: b}
}

// FieldRecordData wraps an already decoded field list.
func FieldRecordData(fields ...Field) RecordData {
	if fields == nil {
		fields = []Field{}
	}
	return RecordData{kind: RecordDataFields, fields: fields}
}

// Kind returns the payload state.
func (d RecordData) Kind() RecordDataKind {
	return d.kind
}

// Resolved reports whether the payload holds decoded fields.
func (d RecordData) Resolved() bool {
	return d.kind == RecordDataFields
}

// Bytes returns the undecoded payload bytes, or nil once resolved.
func (d RecordData) Bytes() []byte {
	switch d.kind {
	case RecordDataRaw, RecordDataCompressed:
		return d.raw
	default:
		return nil
	}
}

// Fields returns the decoded fields, or nil if the payload is not resolved.
func (d RecordData) Fields() []Field {
	if d.kind != RecordDataFields {
		return nil
	}
	return d.fields
}

// Len returns the number of undecoded bytes or decoded fields.
func (d RecordData) Len() int {
	if d.kind == RecordDataFields {
		return len(d.fields)
	}
	return len(d.raw)
}

// Resolve decodes the payload into fields using the default [Resolver].
func (d RecordData) Resolve() (RecordData, error) {
	return defaultResolver.RecordData(d)
}
