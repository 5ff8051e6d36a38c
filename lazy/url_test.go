package lazy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptimizeURL(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		params ImageParams
		want   string
	}{
		{"empty url", "", DefaultImageParams(), ""},
		{"existing query untouched", "/img/a.png?v=2", ImageParams{Width: 300}, "/img/a.png?v=2"},
		{"no params", "/img/a.png", ImageParams{}, "/img/a.png"},
		{"defaults", "/img/a.png", DefaultImageParams(), "/img/a.png?q=75&f=webp&fit=cover"},
		{
			"all params in order",
			"https://cdn.example.com/a.jpg",
			ImageParams{Width: 600, Height: 400, Quality: QualityHigh, Format: FormatAVIF, Fit: "contain"},
			"https://cdn.example.com/a.jpg?w=600&h=400&q=90&f=avif&fit=contain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OptimizeURL(tt.url, tt.params))
		})
	}
}

func TestSrcSet(t *testing.T) {
	assert.Equal(t,
		"/a.png?w=300&q=75 300w, /a.png?w=600&q=75 600w, /a.png?w=900&q=75 900w, /a.png?w=1200&q=75 1200w, /a.png?w=1920&q=75 1920w",
		SrcSet("/a.png"),
	)
	assert.Equal(t, "/a.png?w=150&q=75 150w", SrcSet("/a.png", SizeThumbnail))
}

func TestSizes(t *testing.T) {
	assert.Equal(t, "(max-width: 768px) 100vw, (max-width: 1200px) 50vw, 33vw", Sizes())
}
