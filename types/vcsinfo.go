package types

// VcsInfo is the packed pair of version-control user indices stored in record
// and group headers. On the wire the last editing user occupies the first
// byte and the current editing user the second.
type VcsInfo struct {
	LastUser    uint8 `yaml:"last_user" cbor:"1,keyasint"`
	CurrentUser uint8 `yaml:"current_user" cbor:"2,keyasint"`
}

// VcsInfoFromUint16 unpacks a little-endian wire value. It is the exact
// inverse of Uint16 and deliberately not the lossy shift-based u16
// conversion; header round trips depend on that.
func VcsInfoFromUint16(v uint16) VcsInfo {
	return VcsInfo{
		LastUser:    uint8(v & 0x00FF),
		CurrentUser: uint8(v >> 8),
	}
}

// Uint16 packs the pair into its little-endian wire value.
func (v VcsInfo) Uint16() uint16 {
	return uint16(v.LastUser) | uint16(v.CurrentUser)<<8
}
