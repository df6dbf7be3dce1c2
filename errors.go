package esx

import (
	"errors"
	"fmt"
)

// Sentinel errors for plugin decoding.
//
// Framing errors (ErrBufferTooShort, ErrTES3Header, ErrUnknownFileType,
// ErrNonGroupSignature, ErrSizeOverflow) abort a load. Resolve errors
// (ErrUnknownGroupLabelType, ErrDecompress, and framing errors found inside a
// payload) leave the affected entity unresolved.
var (
	// ErrBufferTooShort is returned when a frame extends past the remaining bytes.
	ErrBufferTooShort = errors.New("esx: buffer too short")

	// ErrTES3Header is returned for files using the legacy TES3 layout.
	ErrTES3Header = errors.New("esx: legacy TES3 header is not supported")

	// ErrUnknownFileType is returned when the file magic is not recognised.
	ErrUnknownFileType = errors.New("esx: unknown file type")

	// ErrNonGroupSignature is returned when a group was expected but another tag was found.
	ErrNonGroupSignature = errors.New("esx: expected GRUP signature")

	// ErrUnknownGroupLabelType is returned when a group label discriminant is outside 0-10.
	ErrUnknownGroupLabelType = errors.New("esx: unknown group label type")

	// ErrDecompress is returned when a compressed record payload cannot be inflated.
	ErrDecompress = errors.New("esx: decompression failed")

	// ErrSizeOverflow is returned when a length does not fit its fixed-width field
	// or exceeds a configured limit.
	ErrSizeOverflow = errors.New("esx: size overflow")
)

// LabelTypeError reports a group label discriminant with no known
// interpretation. It matches ErrUnknownGroupLabelType with errors.Is.
type LabelTypeError struct {
	Type GroupType
}

func (e *LabelTypeError) Error() string {
	return fmt.Sprintf("%v: %d", ErrUnknownGroupLabelType, uint32(e.Type))
}

func (e *LabelTypeError) Unwrap() error {
	return ErrUnknownGroupLabelType
}

// shortBuffer builds an ErrBufferTooShort with the frame context.
func shortBuffer(what string, need uint64, have int) error {
	return fmt.Errorf("%w: %s needs %d bytes, have %d", ErrBufferTooShort, what, need, have)
}
