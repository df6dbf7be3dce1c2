package esx

import "github.com/meigma/esx/types"

// Re-export primitive types for the public API.
type (
	// Signature is the 4-byte ASCII type tag of fields, records, and top groups.
	Signature = types.Signature

	// FormID is the 32-bit identifier of a record.
	FormID = types.FormID

	// Timestamp is the packed last-edit date of a record or group.
	Timestamp = types.Timestamp

	// VcsInfo is the packed version-control user pair of a record or group.
	VcsInfo = types.VcsInfo
)

// SignatureOf returns the signature for a 4-character tag.
var SignatureOf = types.SignatureOf

// Well-known signatures.
var (
	SignatureTES4      = types.SignatureOf("TES4")
	SignatureTES3      = types.SignatureOf("TES3")
	SignatureGroup     = types.SignatureOf("GRUP")
	SignatureOversized = types.SignatureOf("XXXX")
)
