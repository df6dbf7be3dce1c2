package dump

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/meigma/esx"
	"github.com/meigma/esx/internal/testutil"
)

func samplePlugin(t *testing.T, process bool) (*esx.Plugin, []byte) {
	t.Helper()
	wire := testutil.SamplePlugin(t)
	p, err := esx.Decode(wire)
	require.NoError(t, err)
	if process {
		p.Process()
	}
	return p, wire
}

func TestRoundTripUnresolved(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{FormatYAML, FormatCBOR} {
		t.Run(f.String(), func(t *testing.T) {
			t.Parallel()
			p, wire := samplePlugin(t, false)

			data, err := Marshal(FromPlugin(p), f)
			require.NoError(t, err)
			doc, err := Unmarshal(data, f)
			require.NoError(t, err)

			reloaded, err := ToPlugin(doc)
			require.NoError(t, err)
			got, err := reloaded.MarshalBinary()
			require.NoError(t, err)
			assert.Equal(t, wire, got)
		})
	}
}

func TestRoundTripResolved(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{FormatYAML, FormatCBOR} {
		t.Run(f.String(), func(t *testing.T) {
			t.Parallel()
			p, _ := samplePlugin(t, true)
			want, err := p.MarshalBinary()
			require.NoError(t, err)

			data, err := Marshal(FromPlugin(p), f)
			require.NoError(t, err)
			doc, err := Unmarshal(data, f)
			require.NoError(t, err)
			require.Len(t, doc.Groups, 6)
			assert.Equal(t, "fields", doc.Header.Data.Kind)

			reloaded, err := ToPlugin(doc)
			require.NoError(t, err)
			got, err := reloaded.MarshalBinary()
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestCBORDeterministic(t *testing.T) {
	t.Parallel()

	p, _ := samplePlugin(t, true)
	a, err := Marshal(FromPlugin(p), FormatCBOR)
	require.NoError(t, err)
	b, err := Marshal(FromPlugin(p), FormatCBOR)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestYAMLLayout(t *testing.T) {
	t.Parallel()

	p, _ := samplePlugin(t, true)
	data, err := Marshal(FromPlugin(p), FormatYAML)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, yaml.Unmarshal(data, &generic))
	require.Contains(t, generic, "header")
	require.Contains(t, generic, "groups")

	text := string(data)
	assert.Contains(t, text, "signature: TES4")
	assert.Contains(t, text, "kind: top")
	assert.Contains(t, text, "record_type: WEAP")
	assert.Contains(t, text, "kind: exterior_cell_block")
	assert.Contains(t, text, "form_id: 00012eb7")
}

func TestFromPluginLabels(t *testing.T) {
	t.Parallel()

	p, _ := samplePlugin(t, true)
	doc := FromPlugin(p)
	require.Len(t, doc.Groups, 6)

	worlds := doc.Groups[3]
	assert.Equal(t, "top", worlds.Label.Kind)
	require.Len(t, worlds.Data.Components, 2)
	children := worlds.Data.Components[1].Group
	require.NotNil(t, children)
	assert.Equal(t, "world_children", children.Label.Kind)
	require.NotNil(t, children.Label.Parent)
	assert.Equal(t, esx.FormID(0x3D), *children.Label.Parent)

	block := children.Data.Components[0].Group
	require.NotNil(t, block)
	assert.Equal(t, int16(1), *block.Label.X)
	assert.Equal(t, int16(-2), *block.Label.Y)

	unresolved, _ := samplePlugin(t, false)
	raw := FromPlugin(unresolved).Groups[0]
	assert.Equal(t, "raw", raw.Label.Kind)
	assert.Equal(t, Bytes("WEAP"), raw.Label.Payload)
	assert.Equal(t, "raw", raw.Data.Kind)
}

func TestToPluginInvalid(t *testing.T) {
	t.Parallel()

	top := uint32(0)
	tests := []struct {
		name string
		doc  Document
	}{
		{"record kind", Document{Header: Record{Data: RecordData{Kind: "bogus"}}}},
		{"group kind", Document{Groups: []Group{{Label: Label{Kind: "raw", Payload: Bytes("WEAP"), Type: &top}, Data: GroupData{Kind: "bogus"}}}}},
		{"label kind", Document{Groups: []Group{{Label: Label{Kind: "bogus"}}}}},
		{"raw payload", Document{Groups: []Group{{Label: Label{Kind: "raw", Payload: Bytes("WE"), Type: &top}}}}},
		{"top without type", Document{Groups: []Group{{Label: Label{Kind: "top"}}}}},
		{"child without parent", Document{Groups: []Group{{Label: Label{Kind: "cell_children"}}}}},
		{"empty component", Document{Groups: []Group{{
			Label: Label{Kind: "raw", Payload: Bytes("WEAP"), Type: &top},
			Data:  GroupData{Kind: "components", Components: []Component{{}}},
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ToPlugin(&tt.doc)
			require.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p, wire := samplePlugin(t, false)
	doc := FromPlugin(p)

	for _, name := range []string{"dump.yaml", "dump.yml", "dump.cbor"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, doc))

		loaded, err := ReadFile(path)
		require.NoError(t, err)
		reloaded, err := ToPlugin(loaded)
		require.NoError(t, err)
		got, err := reloaded.MarshalBinary()
		require.NoError(t, err)
		assert.Equal(t, wire, got, name)
	}

	require.ErrorIs(t, WriteFile(filepath.Join(dir, "dump.json"), doc), ErrUnknownFormat)
	_, err := ReadFile(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = FormatFromPath("/tmp/x.cbor")
	require.NoError(t, err)
	assert.Equal(t, FormatCBOR, f)

	_, err = ParseFormat("toml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}
