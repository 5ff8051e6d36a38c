package lazy

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	QualityHigh   = 90
	QualityMedium = 75
	QualityLow    = 60
)

const (
	SizeThumbnail = 150
	SizeSmall     = 300
	SizeMedium    = 600
	SizeLarge     = 1200
	SizeXLarge    = 1920
)

const (
	FormatWebP = "webp"
	FormatAVIF = "avif"
	FormatJPG  = "jpg"
	FormatPNG  = "png"
)

// DefaultSrcSetSizes are the widths rendered by SrcSet when none are given.
var DefaultSrcSetSizes = []int{300, 600, 900, 1200, 1920}

// ImageParams are the transformation hints appended to an image URL.
// Zero fields are left out.
type ImageParams struct {
	Width   int
	Height  int
	Quality int
	Format  string
	Fit     string
}

// DefaultImageParams match what a lazily loaded image requests when the
// caller sets nothing.
func DefaultImageParams() ImageParams {
	return ImageParams{Quality: QualityMedium, Format: FormatWebP, Fit: "cover"}
}

// OptimizeURL appends the w, h, q, f and fit parameters to raw, in that
// order. URLs that already carry a query are returned untouched.
func OptimizeURL(raw string, p ImageParams) string {
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "?") {
		return raw
	}

	var params []string
	add := func(key, value string) {
		params = append(params, key+"="+url.QueryEscape(value))
	}
	if p.Width > 0 {
		add("w", strconv.Itoa(p.Width))
	}
	if p.Height > 0 {
		add("h", strconv.Itoa(p.Height))
	}
	if p.Quality > 0 {
		add("q", strconv.Itoa(p.Quality))
	}
	if p.Format != "" {
		add("f", p.Format)
	}
	if p.Fit != "" {
		add("fit", p.Fit)
	}

	if len(params) == 0 {
		return raw
	}
	return raw + "?" + strings.Join(params, "&")
}

// SrcSet renders a srcset attribute with one candidate per width.
func SrcSet(base string, sizes ...int) string {
	if len(sizes) == 0 {
		sizes = DefaultSrcSetSizes
	}
	candidates := make([]string, 0, len(sizes))
	for _, size := range sizes {
		candidates = append(candidates, fmt.Sprintf("%s?w=%d&q=%d %dw", base, size, QualityMedium, size))
	}
	return strings.Join(candidates, ", ")
}

// Sizes is the default sizes attribute paired with SrcSet.
func Sizes() string {
	return "(max-width: 768px) 100vw, (max-width: 1200px) 50vw, 33vw"
}
