package cache

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
)

type skillListOptions struct {
	Category string `json:"category,omitempty"`
	Featured *bool  `json:"featured,omitempty"`
	Page     int    `json:"page,omitempty"`
	PerPage  int    `json:"per_page,omitempty"`
	internal string
}

func joinWithSeparator(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

func boolPtr(b bool) *bool { return &b }

func TestDefaultKeySerializer_BasicTypes(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name   string
		family string
		args   []any
		want   string
	}{
		{
			name:   "no args",
			family: "skills",
			args:   []any{},
			want:   "skills",
		},
		{
			name:   "single int",
			family: "skill",
			args:   []any{42},
			want:   joinWithSeparator("skill", "42"),
		},
		{
			name:   "multiple basic types",
			family: "blog-post",
			args:   []any{1, "hello", true, 3.14},
			want:   joinWithSeparator("blog-post", "1", "hello", "true", "3.14"),
		},
		{
			name:   "false is kept",
			family: "interests",
			args:   []any{false},
			want:   joinWithSeparator("interests", "false"),
		},
		{
			name:   "empty string is dropped",
			family: "blog-post",
			args:   []any{"", "slug"},
			want:   joinWithSeparator("blog-post", "slug"),
		},
		{
			name:   "time is normalised to UTC",
			family: "messages",
			args:   []any{time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))},
			want:   joinWithSeparator("messages", "2025-01-02T02:04:05Z"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(tt.family, tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_NilValues(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name string
		args []any
	}{
		{name: "nil interface", args: []any{nil}},
		{name: "nil pointer", args: []any{(*int)(nil)}},
		{name: "nil slice", args: []any{([]int)(nil)}},
		{name: "nil map", args: []any{(map[string]int)(nil)}},
		{name: "empty options", args: []any{skillListOptions{}}},
		{name: "empty options pointer", args: []any{&skillListOptions{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey("skills", tt.args...)
			if got != "skills" {
				t.Errorf("SerializeKey() = %v, want %v", got, "skills")
			}
		})
	}
}

func TestDefaultKeySerializer_Lists(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name string
		args []any
		want string
	}{
		{
			name: "empty slice",
			args: []any{[]int{}},
			want: joinWithSeparator("projects", "[]"),
		},
		{
			name: "int slice keeps zero",
			args: []any{[]int{0, 1, 2}},
			want: joinWithSeparator("projects", "[0,1,2]"),
		},
		{
			name: "string array",
			args: []any{[2]string{"go", "rust"}},
			want: joinWithSeparator("projects", "[go,rust]"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey("projects", tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_MapOrderDoesNotMatter(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	a := map[string]any{"category": "technical", "page": 2, "per_page": 20}
	b := map[string]any{"per_page": 20, "page": 2, "category": "technical"}

	for i := 0; i < 20; i++ {
		if serializer.SerializeKey("skills", a) != serializer.SerializeKey("skills", b) {
			t.Fatal("expected map parameter order not to change the key")
		}
	}
}

func TestDefaultKeySerializer_StructMatchesMap(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	fromStruct := serializer.SerializeKey("skills", skillListOptions{Category: "technical", Page: 2, internal: "ignored"})
	fromMap := serializer.SerializeKey("skills", map[string]string{"page": "2", "category": "technical"})

	if fromStruct != fromMap {
		t.Errorf("struct key %q != map key %q", fromStruct, fromMap)
	}
	if want := joinWithSeparator("skills", "category=technical&page=2"); fromStruct != want {
		t.Errorf("SerializeKey() = %v, want %v", fromStruct, want)
	}
}

func TestDefaultKeySerializer_MapZeroValuesMatchStruct(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	fromStruct := serializer.SerializeKey("skills", skillListOptions{Category: "web"})
	fromMap := serializer.SerializeKey("skills", map[string]any{"category": "web", "page": 0, "per_page": 0})

	if fromStruct != fromMap {
		t.Errorf("struct key %q != map key %q", fromStruct, fromMap)
	}
}

func TestDefaultKeySerializer_ValuesAreEscaped(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name string
		a    any
		b    any
	}{
		{
			name: "ampersand in value",
			a:    skillListOptions{Category: "web", Page: 2},
			b:    skillListOptions{Category: "web&page=2"},
		},
		{
			name: "equals in value",
			a:    map[string]string{"category": "a", "page": "1"},
			b:    map[string]string{"category": "a&page=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := serializer.SerializeKey("skills", tt.a)
			b := serializer.SerializeKey("skills", tt.b)
			if a == b {
				t.Errorf("distinct params share the key %q", a)
			}
		})
	}

	if got := serializer.SerializeKey("blog-post", "slug", "a::b"); strings.Count(got, KeySeparator) != 2 {
		t.Errorf("separator inside a segment was not escaped: %q", got)
	}
}

func TestParams(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want map[string]string
	}{
		{
			name: "nil",
			in:   nil,
			want: map[string]string{},
		},
		{
			name: "zero fields omitted",
			in:   skillListOptions{PerPage: 50},
			want: map[string]string{"per_page": "50"},
		},
		{
			name: "explicit false pointer kept",
			in:   &skillListOptions{Featured: boolPtr(false)},
			want: map[string]string{"featured": "false"},
		},
		{
			name: "map values",
			in:   map[string]any{"status": "published", "page": 0, "featured": true},
			want: map[string]string{"status": "published", "featured": "true"},
		},
		{
			name: "untagged fields use lower case name",
			in: struct {
				Status string
				Skip   string `json:"-"`
			}{Status: "draft", Skip: "x"},
			want: map[string]string{"status": "draft"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Params(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Params() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("Params()[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestQueryKey_FamilyOf(t *testing.T) {
	key := Key("skills", skillListOptions{Category: "soft"}).String()
	if got := FamilyOf(key); got != "skills" {
		t.Errorf("FamilyOf(%q) = %q, want skills", key, got)
	}
	if got := FamilyOf("skills-stats"); got != "skills-stats" {
		t.Errorf("FamilyOf(skills-stats) = %q", got)
	}
}

func TestQueryKey_Golden(t *testing.T) {
	keys := []struct {
		name string
		key  QueryKey
	}{
		{"skills-all", Key("skills")},
		{"skills-empty-options", Key("skills", skillListOptions{})},
		{"skills-filtered", Key("skills", skillListOptions{Category: "technical", Page: 2})},
		{"skills-filtered-map", Key("skills", map[string]any{"page": 2, "category": "technical"})},
		{"skills-not-featured", Key("skills", skillListOptions{Featured: boolPtr(false)})},
		{"skill-by-id", Key("skill", 42)},
		{"blog-post-by-slug", Key("blog-post", "slug", "hello-world")},
		{"interests-filtered", Key("interests", map[string]string{"featured": "true", "category": "music"})},
		{"uploaded-files", Key("uploaded-files")},
		{"projects-with-list", Key("projects", map[string]any{"status": "completed", "tags": []string{"go", "cli"}})},
	}

	var buf bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s\t%s\n", k.name, k.key.String())
	}

	g := goldie.New(t)
	g.Assert(t, "query_keys", buf.Bytes())
}
