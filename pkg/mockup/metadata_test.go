package mockup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/fishem/pkg/fish"
)

const sampleMetadata = `<?xml version="1.0" encoding="UTF-8"?>
<edmx:Edmx xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx" Version="4.0">
  <edmx:Reference Uri="http://redfish.dmtf.org/schemas/v1/ServiceRoot_v1.xml">
    <edmx:Include Namespace="ServiceRoot"/>
    <edmx:Include Namespace="ServiceRoot.v1_5_0"/>
  </edmx:Reference>
  <edmx:Reference Uri="http://redfish.dmtf.org/schemas/v1/Chassis_v1.xml">
    <edmx:Include Namespace="Chassis"/>
  </edmx:Reference>
  <edmx:DataServices>
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="Service">
      <EntityContainer Name="Service" Extends="ServiceRoot.v1_5_0.ServiceContainer"/>
      <Annotation Term="Redfish.Owner">DMTF</Annotation>
      <Description>Service metadata</Description>
      <Empty/>
    </Schema>
  </edmx:DataServices>
</edmx:Edmx>
`

func TestDecodeMetadata(t *testing.T) {
	doc, err := DecodeMetadata([]byte(sampleMetadata))
	require.NoError(t, err)
	require.Len(t, doc, 1)

	root, ok := doc["edmx:Edmx"].(map[string]any)
	require.True(t, ok, "root element keyed by qualified name")
	assert.Equal(t, "http://docs.oasis-open.org/odata/ns/edmx", root["@xmlns:edmx"])
	assert.Equal(t, "4.0", root["@Version"])

	refs, ok := root["edmx:Reference"].([]any)
	require.True(t, ok, "repeated elements become a list")
	require.Len(t, refs, 2)

	first := refs[0].(map[string]any)
	assert.Len(t, first["edmx:Include"], 2)
	second := refs[1].(map[string]any)
	assert.Equal(t, map[string]any{"@Namespace": "Chassis"}, second["edmx:Include"])

	schema := root["edmx:DataServices"].(map[string]any)["Schema"].(map[string]any)
	assert.Equal(t, "Service", schema["@Namespace"])
	assert.Equal(t, map[string]any{"@Term": "Redfish.Owner", "#text": "DMTF"}, schema["Annotation"])
	assert.Equal(t, "Service metadata", schema["Description"])
	assert.Contains(t, schema, "Empty")
	assert.Nil(t, schema["Empty"])
}

func TestDecodeMetadata_Malformed(t *testing.T) {
	_, err := DecodeMetadata([]byte("<edmx:Edmx><unclosed></edmx:Edmx>"))
	assert.Error(t, err)

	_, err = DecodeMetadata([]byte("   "))
	assert.Error(t, err)
}

func TestDecodeMetadata_ContentOutsideRoot(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "second root element", input: `<a>x</a><b/>`},
		{name: "trailing text", input: `<a><b>1</b></a> trailing junk`},
		{name: "leading text", input: `junk <a/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DecodeMetadata([]byte(tt.input))
			assert.Error(t, err)
			assert.Nil(t, doc)
		})
	}
}

func TestDecodeMetadata_MixedContent(t *testing.T) {
	doc, err := DecodeMetadata([]byte(`<a>t<b/>u</a>`))
	require.NoError(t, err)
	assert.Equal(t, fish.Document{"a": map[string]any{"b": nil, "#text": "tu"}}, doc)

	doc, err = DecodeMetadata([]byte("<?xml version=\"1.0\"?>\n<a>\n  <b>1</b>\n</a>\n"))
	require.NoError(t, err)
	assert.Equal(t, fish.Document{"a": map[string]any{"b": "1"}}, doc)
}

func TestEncodeMetadata_RoundTrip(t *testing.T) {
	doc, err := DecodeMetadata([]byte(sampleMetadata))
	require.NoError(t, err)

	data, err := EncodeMetadata(doc)
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="utf-8"?>`))
	assert.Contains(t, out, "\n\t<edmx:Reference")
	assert.Less(t, strings.Index(out, "<edmx:Reference"), strings.Index(out, "<edmx:DataServices"),
		"references precede data services")

	again, err := DecodeMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestEncodeMetadata_Scalars(t *testing.T) {
	data, err := EncodeMetadata(fish.Document{
		"Root": map[string]any{
			"@Flag": true,
			"Count": float64(3),
			"Name":  "x",
			"Nil":   nil,
		},
	})
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `<Root Flag="true">`)
	assert.Contains(t, out, "<Count>3</Count>")
	assert.Contains(t, out, "<Name>x</Name>")
	assert.Contains(t, out, "<Nil/>")
}

func TestEncodeMetadata_Errors(t *testing.T) {
	_, err := EncodeMetadata(fish.Document{"A": nil, "B": nil})
	assert.Error(t, err, "two roots")

	_, err = EncodeMetadata(fish.Document{})
	assert.Error(t, err, "no root")

	_, err = EncodeMetadata(fish.Document{"A": []any{"x", "y"}})
	assert.Error(t, err, "list root")

	_, err = EncodeMetadata(fish.Document{"A": map[string]any{"B": struct{}{}}})
	assert.Error(t, err, "unsupported value")
}
