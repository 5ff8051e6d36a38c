package cache

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// defaultKeySerializer implements KeySerializer using reflection-based serialization.
// Option structs and maps are flattened into sorted name=value pairs so that two
// logically identical queries always produce the same key.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds a cache key from the query family and its params.
// Params that serialize to an empty string (nil, empty option structs, empty maps)
// are dropped, so Key("skills") and Key("skills", SkillListOptions{}) are equal.
func (s *defaultKeySerializer) SerializeKey(family string, params ...any) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, family)

	for _, p := range params {
		if serialized := s.serializeValue(p); serialized != "" {
			parts = append(parts, serialized)
		}
	}

	return strings.Join(parts, KeySeparator)
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return ""
	}

	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.Struct, reflect.Map:
		return encodeParams(Params(v))
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return ""
		}
		return "[" + joinList(rv) + "]"
	case reflect.String:
		return url.QueryEscape(rv.String())
	}

	if scalar, ok := formatScalar(rv); ok {
		return scalar
	}

	return s.jsonFallback(v)
}

// jsonFallback provides JSON serialization as a last resort
func (s *defaultKeySerializer) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("fallback:%T", v)
	}
	return "json:" + string(data)
}

// Params flattens an options struct or a map into the set of non-zero
// parameters it carries, keyed by the field's json name. Pointer fields are
// included whenever they are non-nil, which lets callers express an explicit
// false filter (e.g. featured=false). The result drives both the query string
// sent to the API and the canonical cache key.
func Params(v any) map[string]string {
	out := map[string]string{}
	if v == nil {
		return out
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return out
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			name := fmt.Sprint(iter.Key().Interface())
			if value, ok := paramValue(iter.Value()); ok {
				out[name] = value
			}
		}
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rv.NumField(); i++ {
			field := rt.Field(i)
			if !field.IsExported() {
				continue
			}
			name := fieldName(field)
			if name == "" {
				continue
			}
			if value, ok := paramValue(rv.Field(i)); ok {
				out[name] = value
			}
		}
	}

	return out
}

func fieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return strings.ToLower(field.Name)
}

// paramValue reports the string form of v and whether it should be emitted.
func paramValue(rv reflect.Value) (string, bool) {
	if !rv.IsValid() {
		return "", false
	}

	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return "", false
		}
		elem := rv.Elem()
		if s, ok := formatScalar(elem); ok {
			return s, true
		}
		return paramValue(elem)
	case reflect.Interface:
		// map[string]any values follow the struct rule: zero means unset.
		if rv.IsNil() {
			return "", false
		}
		return paramValue(rv.Elem())
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return "", false
		}
		return joinList(rv), true
	}

	if rv.IsZero() {
		return "", false
	}

	if t, ok := rv.Interface().(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano), true
	}

	if s, ok := formatScalar(rv); ok {
		return s, true
	}

	data, err := json.Marshal(rv.Interface())
	if err != nil {
		return "", false
	}
	return string(data), true
}

func formatScalar(rv reflect.Value) (string, bool) {
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	}
	return "", false
}

func joinList(rv reflect.Value) string {
	items := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if s, ok := formatScalar(rv.Index(i)); ok {
			items = append(items, s)
			continue
		}
		if s, ok := paramValue(rv.Index(i)); ok {
			items = append(items, s)
		}
	}
	return strings.Join(items, ",")
}

// encodeParams renders params as escaped name=value pairs sorted by name, so
// a value holding '&' or '=' cannot pass for a second parameter.
func encodeParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}

	values := make(url.Values, len(params))
	for name, value := range params {
		values.Set(name, value)
	}
	return values.Encode()
}
