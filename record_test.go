package esx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/esx/internal/testutil"
)

// headerSample is a bare TES4 header: no payload, no flags, FormID
// 0xDEADBEEF, form version 131.
var headerSample = []byte{
	0x54, 0x45, 0x53, 0x34, // TES4
	0x00, 0x00, 0x00, 0x00, // data size
	0x00, 0x00, 0x00, 0x00, // flags
	0xEF, 0xBE, 0xAD, 0xDE, // form id
	0x00, 0x00, // timestamp
	0x00, 0x00, // vcs
	0x83, 0x00, // form version
	0x00, 0x00, // reserved
}

func TestDecodeRecordFixture(t *testing.T) {
	t.Parallel()

	rec, rest, err := DecodeRecord(headerSample)
	require.NoError(t, err)
	assert.Empty(t, rest)

	assert.Equal(t, SignatureTES4, rec.Signature)
	assert.Equal(t, RecordFlags(0), rec.Flags)
	assert.Equal(t, FormID(0xDEADBEEF), rec.FormID)
	assert.Equal(t, Timestamp{}, rec.Timestamp)
	assert.Equal(t, VcsInfo{}, rec.VcsInfo)
	assert.Equal(t, uint16(131), rec.FormVersion)
	assert.Equal(t, uint16(0), rec.Reserved)
	assert.Equal(t, RecordDataRaw, rec.Data.Kind())
	assert.Empty(t, rec.Data.Bytes())

	got, err := rec.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, headerSample, got)
}

func TestDecodeRecordTruncated(t *testing.T) {
	t.Parallel()

	_, _, err := DecodeRecord(headerSample[:23])
	assert.ErrorIs(t, err, ErrBufferTooShort)

	wire := testutil.Record(testutil.RecordHeader{Signature: "WEAP"}, []byte("abcdef"))
	_, _, err = DecodeRecord(wire[:len(wire)-1])
	assert.ErrorIs(t, err, ErrBufferTooShort)

	_, _, err = DecodeRecord(nil)
	assert.ErrorIs(t, err, ErrBufferTooShort)
}

func TestRecordHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	h := testutil.RecordHeader{
		Signature:   "NPC_",
		Flags:       0x00000421,
		FormID:      0x0100ABCD,
		Timestamp:   0xBEEF,
		Vcs:         0x1234,
		FormVersion: 44,
		Reserved:    0x5678,
	}
	wire := testutil.Record(h, testutil.Field("EDID", []byte("Lydia\x00")))

	rec, _, err := DecodeRecord(wire)
	require.NoError(t, err)
	assert.Equal(t, VcsInfo{LastUser: 0x34, CurrentUser: 0x12}, rec.VcsInfo)
	assert.True(t, rec.Flags.Has(FlagMaster|FlagDeleted|FlagPersistent))
	assert.Equal(t, "master|deleted|persistent", rec.Flags.String())

	got, err := rec.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, wire, got)

	// Resolving an uncompressed payload does not change its encoding.
	rec.Data, err = rec.Data.Resolve()
	require.NoError(t, err)
	got, err = rec.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, wire, got)
}

func TestRecordDataResolve(t *testing.T) {
	t.Parallel()

	body := testutil.Concat(
		testutil.Field("EDID", []byte("IronSword\x00")),
		testutil.Field("DATA", []byte{1, 2, 3, 4}),
	)

	t.Run("raw", func(t *testing.T) {
		t.Parallel()
		d, err := RawRecordData(body).Resolve()
		require.NoError(t, err)
		require.True(t, d.Resolved())
		require.Len(t, d.Fields(), 2)
		assert.Equal(t, []byte("IronSword\x00"), d.Fields()[0].Data)
		assert.Nil(t, d.Bytes())
	})

	t.Run("compressed", func(t *testing.T) {
		t.Parallel()
		d, err := CompressedRecordData(testutil.Compressed(t, body)).Resolve()
		require.NoError(t, err)
		require.Len(t, d.Fields(), 2)
		assert.Equal(t, "DATA", d.Fields()[1].Signature.String())
	})

	t.Run("wrong length prefix is only a hint", func(t *testing.T) {
		t.Parallel()
		payload := testutil.Compressed(t, body)
		payload[0], payload[1], payload[2], payload[3] = 1, 0, 0, 0
		d, err := CompressedRecordData(payload).Resolve()
		require.NoError(t, err)
		assert.Len(t, d.Fields(), 2)
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		once, err := RawRecordData(body).Resolve()
		require.NoError(t, err)
		twice, err := once.Resolve()
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		d, err := RecordData{}.Resolve()
		require.NoError(t, err)
		assert.Equal(t, RecordDataEmpty, d.Kind())
	})

	t.Run("corrupt zlib", func(t *testing.T) {
		t.Parallel()
		src := CompressedRecordData([]byte{10, 0, 0, 0, 'n', 'o', 'p', 'e'})
		d, err := src.Resolve()
		assert.ErrorIs(t, err, ErrDecompress)
		assert.Equal(t, src, d)
	})

	t.Run("missing length prefix", func(t *testing.T) {
		t.Parallel()
		_, err := CompressedRecordData([]byte{1, 2}).Resolve()
		assert.ErrorIs(t, err, ErrBufferTooShort)
	})

	t.Run("truncated field", func(t *testing.T) {
		t.Parallel()
		src := RawRecordData(body[:len(body)-2])
		d, err := src.Resolve()
		assert.ErrorIs(t, err, ErrBufferTooShort)
		assert.Equal(t, RecordDataRaw, d.Kind())
	})
}

func TestResolverDecompressLimit(t *testing.T) {
	t.Parallel()

	body := testutil.Field("DATA", bytes.Repeat([]byte{0}, 4096))
	rv := NewResolver(ResolverWithMaxDecompressedSize(1024))
	_, err := rv.RecordData(CompressedRecordData(testutil.Compressed(t, body)))
	assert.ErrorIs(t, err, ErrSizeOverflow)
}

func TestCompressedRecordRoundTrip(t *testing.T) {
	t.Parallel()

	body := testutil.Concat(
		testutil.Field("EDID", []byte("SteelSword\x00")),
		testutil.Field("DATA", bytes.Repeat([]byte{7}, 256)),
	)
	wire := testutil.Record(testutil.RecordHeader{
		Signature: "WEAP",
		Flags:     testutil.CompressedFlag,
		FormID:    0x00012EB8,
	}, testutil.Compressed(t, body))

	rec, _, err := DecodeRecord(wire)
	require.NoError(t, err)
	require.True(t, rec.Compressed())

	t.Run("unresolved is verbatim", func(t *testing.T) {
		t.Parallel()
		got, err := rec.MarshalBinary()
		require.NoError(t, err)
		assert.Equal(t, wire, got)
	})

	t.Run("resolved is recompressed", func(t *testing.T) {
		t.Parallel()
		resolved := rec
		data, err := rec.Data.Resolve()
		require.NoError(t, err)
		resolved.Data = data

		got, err := resolved.MarshalBinary()
		require.NoError(t, err)

		again, rest, err := DecodeRecord(got)
		require.NoError(t, err)
		assert.Empty(t, rest)
		assert.True(t, again.Compressed())
		assert.Equal(t, RecordDataCompressed, again.Data.Kind())
		// The payload still carries the length prefix of the inflated fields.
		assert.Equal(t, []byte{byte(len(body)), byte(len(body) >> 8), 0, 0}, again.Data.Bytes()[0:4])

		again.Data, err = again.Data.Resolve()
		require.NoError(t, err)
		assert.Equal(t, resolved.Fields(), again.Fields())
	})

	t.Run("clearing the flag writes plain fields", func(t *testing.T) {
		t.Parallel()
		plain := rec
		data, err := rec.Data.Resolve()
		require.NoError(t, err)
		plain.Data = data
		plain.Flags &^= FlagCompressed

		got, err := plain.MarshalBinary()
		require.NoError(t, err)
		assert.Equal(t, testutil.Record(testutil.RecordHeader{Signature: "WEAP", FormID: 0x00012EB8}, body), got)
	})
}

func TestRecordSizeRecomputed(t *testing.T) {
	t.Parallel()

	rec := Record{
		Signature: SignatureOf("GLOB"),
		FormID:    0x10,
		Data:      FieldRecordData(NewField(SignatureOf("EDID"), []byte("x\x00"))),
	}
	got, err := rec.MarshalBinary()
	require.NoError(t, err)

	want := testutil.Record(testutil.RecordHeader{Signature: "GLOB", FormID: 0x10}, testutil.Field("EDID", []byte("x\x00")))
	assert.Equal(t, want, got)

	rec.Data = FieldRecordData(append(rec.Fields(), NewField(SignatureOf("FLTV"), []byte{0, 0, 128, 63}))...)
	got, err = rec.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, byte(len(got)-RecordHeaderSize), got[4])
}
