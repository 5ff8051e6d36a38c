package cache

import "strings"

var defaultSerializer = NewDefaultKeySerializer()

// QueryKey identifies a cached read: the query family ("skills", "blog-post",
// "skills-stats") plus the params that narrow it down.
type QueryKey struct {
	Family string
	Params []any
}

// Key builds a QueryKey for family with the given params.
func Key(family string, params ...any) QueryKey {
	return QueryKey{Family: family, Params: params}
}

// String returns the canonical form of the key, as produced by the default serializer.
func (k QueryKey) String() string {
	return k.Serialize(defaultSerializer)
}

// Serialize renders the key with s, falling back to the default serializer
// when s is nil.
func (k QueryKey) Serialize(s KeySerializer) string {
	if s == nil {
		s = defaultSerializer
	}
	return s.SerializeKey(k.Family, k.Params...)
}

// FamilyOf returns the family segment of a serialized key.
func FamilyOf(key string) string {
	family, _, _ := strings.Cut(key, KeySeparator)
	return family
}
