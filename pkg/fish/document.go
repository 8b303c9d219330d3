package fish

// Well-known document fields.
const (
	// FieldODataID is the self-identifying field of every resource.
	FieldODataID = "@odata.id"
	// FieldID is the member identifier used to build a new member's key.
	FieldID = "Id"
	// FieldMembers is the member reference list of a collection.
	FieldMembers = "Members"
	// FieldMembersCount mirrors len(Members).
	FieldMembersCount = "Members@odata.count"
)

// Document is a single resource body: a decoded JSON object.
type Document map[string]any

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

// ODataID returns the document's @odata.id and whether it is a string.
func (d Document) ODataID() (string, bool) {
	s, ok := d[FieldODataID].(string)
	return s, ok
}

// IsCollection reports whether the document carries a member list.
func (d Document) IsCollection() bool {
	_, ok := d[FieldMembers].([]any)
	return ok
}

// MemberIDs returns the @odata.id of every member reference in order.
// References without a string @odata.id are skipped.
func (d Document) MemberIDs() []string {
	members, _ := d[FieldMembers].([]any)
	ids := make([]string, 0, len(members))
	for _, m := range members {
		if id, ok := memberRefID(m); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// cloneValue copies the container types produced by encoding/json, plus the
// typed variants callers tend to build by hand.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return map[string]any(Document(val).Clone())
	case Document:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	default:
		return val
	}
}

// memberRef builds a collection member reference.
func memberRef(key string) map[string]any {
	return map[string]any{FieldODataID: key}
}

func memberRefID(ref any) (string, bool) {
	var id any
	switch m := ref.(type) {
	case map[string]any:
		id = m[FieldODataID]
	case Document:
		id = m[FieldODataID]
	default:
		return "", false
	}
	s, ok := id.(string)
	return s, ok
}
