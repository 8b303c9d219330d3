package redfish

import (
	"github.com/getmockd/fishem/pkg/fish"
	"github.com/getmockd/fishem/pkg/mockup"
)

// ProtocolVersion is the document served at /redfish.
func ProtocolVersion() fish.Document {
	return fish.Document{"v1": mockup.RootKey + "/"}
}

// Seed stores the built-in documents every service starts with. Imports run
// afterwards and may overwrite them.
func Seed(store *fish.Store) {
	store.Set(mockup.VersionKey, ProtocolVersion())
}
