package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Signature is the 4-byte ASCII type tag carried by fields, records, and
// top-level group labels.
type Signature [4]byte

// SignatureOf returns the signature for a 4-character tag such as "WEAP".
// It panics if tag is not exactly 4 bytes long.
func SignatureOf(tag string) Signature {
	if len(tag) != 4 {
		panic(fmt.Sprintf("types: signature %q must be 4 bytes", tag))
	}
	var s Signature
	copy(s[:], tag)
	return s
}

// SignatureFromBytes copies the first four bytes of b into a Signature.
// Shorter input is zero padded.
func SignatureFromBytes(b []byte) Signature {
	var s Signature
	copy(s[:], b)
	return s
}

// Bytes returns the raw wire bytes.
func (s Signature) Bytes() []byte {
	return s[:]
}

// String returns the display form of the signature.
//
// Tags of the form ?IAD render as "(hh)IAD" with the variable leading byte in
// hex, since several physical tags share one logical field kind.
func (s Signature) String() string {
	if s[1] == 'I' && s[2] == 'A' && s[3] == 'D' {
		return fmt.Sprintf("(%02x)IAD", s[0])
	}
	return strings.ToValidUTF8(string(s[:]), "�")
}

// Compare orders signatures by their display form. It returns -1, 0, or +1.
func (s Signature) Compare(other Signature) int {
	return strings.Compare(s.String(), other.String())
}

// Equal reports whether two signatures have the same display form.
func (s Signature) Equal(other Signature) bool {
	return s.String() == other.String()
}

// MarshalText encodes the signature as its four characters when they are all
// printable ASCII, and as "0x" followed by eight hex digits otherwise.
func (s Signature) MarshalText() ([]byte, error) {
	for _, c := range s {
		if c < 0x20 || c > 0x7e {
			return []byte("0x" + hex.EncodeToString(s[:])), nil
		}
	}
	return []byte(string(s[:])), nil
}

// UnmarshalText reverses MarshalText.
func (s *Signature) UnmarshalText(text []byte) error {
	str := string(text)
	if len(str) == 10 && strings.HasPrefix(str, "0x") {
		raw, err := hex.DecodeString(str[2:])
		if err != nil {
			return fmt.Errorf("types: invalid signature %q: %w", str, err)
		}
		copy(s[:], raw)
		return nil
	}
	if len(str) != 4 {
		return fmt.Errorf("types: invalid signature %q: want 4 characters", str)
	}
	copy(s[:], str)
	return nil
}
