package fish

import "strings"

// Separator is the path key delimiter.
const Separator = "/"

// Normalize returns the canonical form of a request path: trailing
// separators are removed. It accepts any string and is idempotent.
func Normalize(path string) string {
	return strings.TrimRight(path, Separator)
}

// Join appends one segment to a key.
func Join(key, segment string) string {
	return Normalize(key) + Separator + segment
}

// Parent returns the key with its final segment removed, or "" when the key
// has no parent.
func Parent(key string) string {
	key = Normalize(key)
	i := strings.LastIndex(key, Separator)
	if i <= 0 {
		return ""
	}
	return key[:i]
}

// LastSegment returns the final segment of a key.
func LastSegment(key string) string {
	key = Normalize(key)
	return key[strings.LastIndex(key, Separator)+1:]
}

// IsDescendant reports whether key lies strictly below ancestor.
// "/a/bc" is not a descendant of "/a/b".
func IsDescendant(key, ancestor string) bool {
	return strings.HasPrefix(key, Normalize(ancestor)+Separator)
}

// Segments splits a key into its non-empty segments.
func Segments(key string) []string {
	parts := strings.Split(Normalize(key), Separator)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
