// Package esx reads and writes the hierarchical binary plugin format used by
// master, plugin, and light-master files of the Creation Engine game family.
//
// A plugin is a header [Record] followed by a sequence of top-level [Group]
// values. Groups hold records and nested groups; records hold [Field] values.
// Every frame is little-endian:
//
//	Field:  [Signature(4)][Size(2)][Data]
//	        [XXXX(4)][4(2)][Size(4)][Signature(4)][0(2)][Data]   (Data > 65535 bytes)
//	Record: [Signature(4)][DataSize(4)][Flags(4)][FormID(4)][Timestamp(2)][Vcs(2)][FormVersion(2)][Reserved(2)][Data]
//	Group:  [GRUP(4)][TotalSize(4)][Label(4)][LabelType(4)][Timestamp(2)][Vcs(2)][Reserved(4)][Data]
//
// # Two-phase decoding
//
// Decoding is split in two tiers. Framing ([Decode], [DecodeRecord],
// [DecodeGroup], [DecodeField]) is strict: a truncated frame or bad magic is
// an error and nothing is returned. Resolution ([Plugin.Process],
// [Resolver]) is best effort: record payloads, group payloads, and group
// labels start in a raw state and are interpreted on demand. A value that
// fails to resolve is logged and kept in its raw form, so it still encodes
// back to the exact bytes it was read from.
//
// # Round trips
//
// Sizes are always recomputed when encoding, and anything that was never
// resolved is written back verbatim. Decoding and re-encoding a file
// therefore reproduces it byte for byte. The one exception is a compressed
// record whose fields were resolved: it is re-compressed when written, which
// yields an equivalent payload but not necessarily identical bytes.
//
// # Example
//
//	p, err := esx.ReadFile("Skyrim.esm", esx.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	p.Process()
//	for _, rec := range p.AllRecords() {
//	    fmt.Println(rec.Signature, rec.FormID, len(rec.Fields()))
//	}
package esx
