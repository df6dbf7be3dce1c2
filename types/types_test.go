package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sig  Signature
		want string
	}{
		{name: "plain", sig: SignatureOf("WEAP"), want: "WEAP"},
		{name: "header", sig: SignatureOf("TES4"), want: "TES4"},
		{name: "iad zero", sig: Signature{0x00, 'I', 'A', 'D'}, want: "(00)IAD"},
		{name: "iad high", sig: Signature{0x4D, 'I', 'A', 'D'}, want: "(4d)IAD"},
		{name: "iad printable", sig: SignatureOf("MIAD"), want: "(4d)IAD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.sig.String())
		})
	}
}

func TestSignatureCompare(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -1, SignatureOf("AACT").Compare(SignatureOf("WEAP")))
	assert.Equal(t, 1, SignatureOf("WEAP").Compare(SignatureOf("AACT")))
	assert.Equal(t, 0, SignatureOf("WEAP").Compare(SignatureOf("WEAP")))

	// Ordering follows the display form, so every ?IAD tag sorts by its
	// "(hh)" prefix rather than by the raw leading byte.
	assert.Equal(t, -1, Signature{0x01, 'I', 'A', 'D'}.Compare(SignatureOf("AACT")))
	assert.True(t, SignatureOf("EDID").Equal(SignatureFromBytes([]byte("EDIDxx"))))
}

func TestSignatureText(t *testing.T) {
	t.Parallel()

	t.Run("printable", func(t *testing.T) {
		t.Parallel()
		text, err := SignatureOf("GRUP").MarshalText()
		require.NoError(t, err)
		assert.Equal(t, "GRUP", string(text))

		var got Signature
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, SignatureOf("GRUP"), got)
	})

	t.Run("binary", func(t *testing.T) {
		t.Parallel()
		sig := Signature{0x00, 'I', 'A', 'D'}
		text, err := sig.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, "0x00494144", string(text))

		var got Signature
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, sig, got)
	})

	t.Run("wrong length", func(t *testing.T) {
		t.Parallel()
		var got Signature
		assert.Error(t, got.UnmarshalText([]byte("TOOLONG")))
	})
}

func TestFormID(t *testing.T) {
	t.Parallel()

	id := FormID(0x0001F00D)
	assert.Equal(t, "0001f00d", id.String())

	text, err := id.MarshalText()
	require.NoError(t, err)

	var got FormID
	require.NoError(t, got.UnmarshalText(text))
	assert.Equal(t, id, got)

	require.NoError(t, got.UnmarshalText([]byte("0xDEADBEEF")))
	assert.Equal(t, FormID(0xDEADBEEF), got)

	assert.Error(t, got.UnmarshalText([]byte("not-hex")))
}

func TestTimestampRoundTrip(t *testing.T) {
	t.Parallel()

	for year := uint8(0); year < 128; year++ {
		for month := uint8(0); month < 16; month++ {
			for day := uint8(0); day < 32; day++ {
				ts := Timestamp{Year: year, Month: month, Day: day}
				require.Equal(t, ts, TimestampFromUint16(ts.Uint16()))
			}
		}
	}
}

func TestTimestampAcceptsAnyBits(t *testing.T) {
	t.Parallel()

	for v := 0; v <= 0xFFFF; v++ {
		require.Equal(t, uint16(v), TimestampFromUint16(uint16(v)).Uint16())
	}
}

func TestTimestampLayout(t *testing.T) {
	t.Parallel()

	ts := TimestampFromUint16(0b0000011_0101_10001)
	assert.Equal(t, Timestamp{Year: 3, Month: 5, Day: 17}, ts)

	// Out of range members are masked to their bit field.
	assert.Equal(t, uint16(0x001F), Timestamp{Day: 0xFF}.Uint16())
}

func TestVcsInfo(t *testing.T) {
	t.Parallel()

	// Little-endian bytes {0x12, 0x34}: last user first, current user second.
	v := VcsInfoFromUint16(0x3412)
	assert.Equal(t, VcsInfo{LastUser: 0x12, CurrentUser: 0x34}, v)
	assert.Equal(t, uint16(0x3412), v.Uint16())

	for raw := 0; raw <= 0xFFFF; raw++ {
		require.Equal(t, uint16(raw), VcsInfoFromUint16(uint16(raw)).Uint16())
	}
}
