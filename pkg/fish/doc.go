// Package fish provides the in-memory resource tree served by fishem.
//
// The tree is stored flat: every node is a Document keyed by its canonical
// path (for example "/redfish/v1/Chassis/1"). Parent/child structure exists
// only in the keys and in the member lists of collection documents, and the
// Store keeps the two in agreement.
//
// Core Types:
//
//   - Store: the keyed document map plus its collection bookkeeping
//   - Document: one JSON object (map[string]any)
//   - NotFoundError, BadRequestError: typed failures for store operations
//
// Keys:
//
// Every key handed to the Store is passed through Normalize first, so
// "/redfish/v1/Systems/" and "/redfish/v1/Systems" address the same node.
//
// Collections:
//
// A collection document lists its members as
//
//	"Members": [{"@odata.id": "/redfish/v1/Systems/1"}, ...],
//	"Members@odata.count": 1
//
// Insert and Delete update the member list and the count in the same
// critical section as the singleton they add or remove.
//
// Thread Safety:
//
// A single sync.RWMutex guards the whole tree. Mutations hold the write lock
// for their full duration; reads and Range hold the read lock. Documents are
// deep-copied on the way in and on the way out, so callers never share
// memory with the tree.
//
// Usage:
//
//	store := fish.NewStore()
//	store.Set("/redfish/v1/Chassis", fish.Document{
//	    "Members":             []any{},
//	    "Members@odata.count": 0,
//	})
//
//	doc, err := store.Insert("/redfish/v1/Chassis", fish.Document{"Id": "A"})
//	doc, err = store.Patch("/redfish/v1/Chassis/A", fish.Document{"AssetTag": "x"})
//	doc, err = store.Delete("/redfish/v1/Chassis/A")
package fish
