package types

import (
	"fmt"
	"strconv"
)

// FormID is the 32-bit identifier of a record. The upper byte selects the
// owning file in the load order and is never decoded further here.
type FormID uint32

const (
	// MaxIDs is the largest object index available to a full master or plugin.
	MaxIDs FormID = 0x00FFFFFF

	// MaxIDsLight is the largest object index available to a light master.
	MaxIDsLight FormID = 0x00000FFF
)

// String returns the identifier as eight lower-case hex digits.
func (id FormID) String() string {
	return fmt.Sprintf("%08x", uint32(id))
}

// MarshalText encodes the identifier in the same form as String.
func (id FormID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses a hex identifier, with or without a 0x prefix.
func (id *FormID) UnmarshalText(text []byte) error {
	str := string(text)
	if len(str) > 2 && (str[:2] == "0x" || str[:2] == "0X") {
		str = str[2:]
	}
	v, err := strconv.ParseUint(str, 16, 32)
	if err != nil {
		return fmt.Errorf("types: invalid form id %q: %w", text, err)
	}
	*id = FormID(v)
	return nil
}
