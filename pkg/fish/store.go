package fish

import (
	"sort"
	"strings"
	"sync"
)

// Store is the flat key -> Document map that models the resource tree.
type Store struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		docs: make(map[string]Document),
	}
}

// Get returns a copy of the document at key.
func (s *Store) Get(key string) (Document, error) {
	key = Normalize(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, &NotFoundError{Key: key}
	}
	return doc.Clone(), nil
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[Normalize(key)]
	return ok
}

// Len returns the number of documents in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Keys returns every key in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedKeys()
}

// Set stores doc at key unconditionally, replacing any existing entry.
// No membership bookkeeping is done; Set is meant for seeding and bulk
// loads whose sources already carry consistent collections.
func (s *Store) Set(key string, doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[Normalize(key)] = doc.Clone()
}

// Merge stores every entry of docs under a single write lock. Existing keys
// not named in docs are kept.
func (s *Store) Merge(docs map[string]Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, doc := range docs {
		s.docs[Normalize(key)] = doc.Clone()
	}
}

// Range calls fn for every entry in key order while holding the read lock,
// so the walk observes one consistent state and no mutation can interleave.
// fn must not modify or retain doc, and must not call back into the Store.
// Range stops at the first error fn returns and returns it.
func (s *Store) Range(fn func(key string, doc Document) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, key := range s.sortedKeys() {
		if err := fn(key, s.docs[key]); err != nil {
			return err
		}
	}
	return nil
}

// PutWhole replaces the document at key. The new document must carry the
// same string @odata.id as the one it replaces; a stored document without a
// string @odata.id cannot be replaced.
func (s *Store) PutWhole(key string, doc Document) (Document, error) {
	key = Normalize(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.docs[key]
	if !ok {
		return nil, &NotFoundError{Key: key}
	}

	if _, ok := doc[FieldODataID]; !ok {
		return nil, &BadRequestError{Key: key, Field: FieldODataID, Message: "@odata.id not in input"}
	}
	newID, newOK := doc.ODataID()
	oldID, oldOK := existing.ODataID()
	if !newOK || !oldOK || newID != oldID {
		return nil, &BadRequestError{Key: key, Field: FieldODataID, Message: "Bad @odata.id input"}
	}

	stored := doc.Clone()
	s.docs[key] = stored
	return stored.Clone(), nil
}

// Patch merges each top-level field of fragment into the document at key.
// @odata.id cannot be patched.
func (s *Store) Patch(key string, fragment Document) (Document, error) {
	key = Normalize(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.docs[key]
	if !ok {
		return nil, &NotFoundError{Key: key}
	}
	if _, ok := fragment[FieldODataID]; ok {
		return nil, &BadRequestError{Key: key, Field: FieldODataID, Message: "Attempted to PATCH @odata.id"}
	}

	for field, value := range fragment {
		existing[field] = cloneValue(value)
	}
	return existing.Clone(), nil
}

// Insert adds doc as a new member of the collection at collectionKey. The
// member key is collectionKey + "/" + doc["Id"]; @odata.id is filled in
// when absent and must agree with that key when present.
func (s *Store) Insert(collectionKey string, doc Document) (Document, error) {
	collectionKey = Normalize(collectionKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.docs[collectionKey]
	if !ok {
		return nil, &NotFoundError{Key: collectionKey}
	}

	rawID, ok := doc[FieldID]
	if !ok {
		return nil, &BadRequestError{Key: collectionKey, Field: FieldID, Message: "Id not in input"}
	}
	id, ok := rawID.(string)
	if !ok || id == "" || strings.Contains(id, Separator) {
		return nil, &BadRequestError{Key: collectionKey, Field: FieldID, Message: "Id must be a single non-empty path segment"}
	}
	key := Join(collectionKey, id)

	if rawODataID, ok := doc[FieldODataID]; ok {
		odataID, isString := rawODataID.(string)
		if !isString || Normalize(odataID) != key {
			return nil, &BadRequestError{Key: collectionKey, Field: FieldODataID, Message: "@odata.id out of sync with Id"}
		}
	}

	members, err := memberList(collectionKey, coll)
	if err != nil {
		return nil, err
	}

	if _, exists := s.docs[key]; exists {
		return nil, &BadRequestError{Key: key, Message: "Object already exists"}
	}

	stored := doc.Clone()
	stored[FieldODataID] = key
	s.docs[key] = stored

	members = append(members, memberRef(key))
	setMembers(coll, members)

	return stored.Clone(), nil
}

// Delete removes key, every key below it, and its reference in the owning
// collection. The owner is the key one segment up.
func (s *Store) Delete(key string) (Document, error) {
	key = Normalize(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, &NotFoundError{Key: key}
	}

	ownerKey := Parent(key)
	owner, ok := s.docs[ownerKey]
	if !ok {
		return nil, &NotFoundError{Key: key, Message: "Collection not found"}
	}

	members, _ := owner[FieldMembers].([]any)
	idx := indexOfMember(members, key)
	if idx < 0 {
		return nil, &NotFoundError{Key: key, Message: "Object not in Collection"}
	}

	deleted := doc.Clone()

	for k := range s.docs {
		if k == key || IsDescendant(k, key) {
			delete(s.docs, k)
		}
	}

	remaining := make([]any, 0, len(members)-1)
	remaining = append(remaining, members[:idx]...)
	remaining = append(remaining, members[idx+1:]...)
	setMembers(owner, remaining)

	return deleted, nil
}

func (s *Store) sortedKeys() []string {
	keys := make([]string, 0, len(s.docs))
	for k := range s.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// memberList returns the collection's member references. A missing list is
// treated as empty; anything other than a list is rejected.
func memberList(collectionKey string, coll Document) ([]any, error) {
	raw, ok := coll[FieldMembers]
	if !ok || raw == nil {
		return []any{}, nil
	}
	members, ok := raw.([]any)
	if !ok {
		return nil, &BadRequestError{Key: collectionKey, Field: FieldMembers, Message: "Members is not a list"}
	}
	return members, nil
}

// setMembers stores the member list and recomputes the count.
func setMembers(coll Document, members []any) {
	coll[FieldMembers] = members
	coll[FieldMembersCount] = len(members)
}

func indexOfMember(members []any, key string) int {
	for i, m := range members {
		if id, ok := memberRefID(m); ok && id == key {
			return i
		}
	}
	return -1
}
