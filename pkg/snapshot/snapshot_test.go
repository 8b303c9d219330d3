package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/fishem/pkg/fish"
)

func sampleStore(t *testing.T) *fish.Store {
	t.Helper()
	s := fish.NewStore()
	s.Set("/redfish", fish.Document{"v1": "/redfish/v1/"})
	s.Set("/redfish/v1", fish.Document{"@odata.id": "/redfish/v1", "Id": "RootService"})
	s.Set("/redfish/v1/Chassis", fish.Document{
		"@odata.id":           "/redfish/v1/Chassis",
		"Members":             []any{},
		"Members@odata.count": 0,
	})
	_, err := s.Insert("/redfish/v1/Chassis", fish.Document{
		"Id":     "1",
		"Status": map[string]any{"State": "Enabled"},
		"Ratio":  0.5,
		"Tags":   []any{"a", nil, true},
	})
	require.NoError(t, err)
	return s
}

func encoded(t *testing.T, s *fish.Store) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, s))
	return buf.Bytes()
}

func TestWriteFileReadFile_RoundTrip(t *testing.T) {
	src := sampleStore(t)
	path := filepath.Join(t.TempDir(), "fish.json")

	require.NoError(t, WriteFile(path, src))

	dst := fish.NewStore()
	require.NoError(t, ReadFile(path, dst))

	assert.Equal(t, src.Keys(), dst.Keys())
	assert.JSONEq(t, string(encoded(t, src)), string(encoded(t, dst)))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must not be left behind")
}

func TestEncode_Compact(t *testing.T) {
	data := encoded(t, sampleStore(t))
	assert.NotContains(t, string(data), "\n    ")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "/redfish/v1/Chassis/1")
}

func TestDecode_Merges(t *testing.T) {
	s := fish.NewStore()
	s.Set("/keep", fish.Document{"Id": "keep"})
	s.Set("/replace", fish.Document{"Id": "old"})

	err := Decode(strings.NewReader(`{"/replace": {"Id": "new"}, "/added/": {"Id": "added"}}`), s)
	require.NoError(t, err)

	assert.True(t, s.Has("/keep"))
	assert.True(t, s.Has("/added"))
	doc, err := s.Get("/replace")
	require.NoError(t, err)
	assert.Equal(t, "new", doc["Id"])
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "malformed", input: `{"/a": `},
		{name: "not an object", input: `[1, 2]`},
		{name: "null", input: `null`},
		{name: "non-object value", input: `{"/a": {"Id": "a"}, "/b": 3}`},
		{name: "trailing data", input: `{"/redfish/v1":{"Id":"x"}} {"truncated":`},
		{name: "second object", input: `{"/a": {"Id": "a"}}{"/b": {"Id": "b"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fish.NewStore()
			err := Decode(strings.NewReader(tt.input), s)
			require.Error(t, err)

			var loadErr *LoadError
			assert.True(t, errors.As(err, &loadErr))
			assert.Equal(t, 0, s.Len(), "nothing may be merged on failure")
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	s := fish.NewStore()
	path := filepath.Join(t.TempDir(), "nope.json")

	err := ReadFile(path, s)
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, path, loadErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestExport_IsACopy(t *testing.T) {
	s := sampleStore(t)
	docs := Export(s)

	docs["/redfish/v1"]["Id"] = "changed"

	doc, err := s.Get("/redfish/v1")
	require.NoError(t, err)
	assert.Equal(t, "RootService", doc["Id"])
}

func TestWriteFile_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "fish.json")
	require.NoError(t, WriteFile(path, sampleStore(t)))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
