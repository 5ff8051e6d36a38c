package models

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

type FileCategory string

const (
	FileImage    FileCategory = "image"
	FileDocument FileCategory = "document"
	FileOther    FileCategory = "other"
)

// UploadKind selects the upload endpoint.
type UploadKind string

const (
	UploadImage    UploadKind = "image"
	UploadDocument UploadKind = "document"
)

// UploadedFile describes a stored upload. FileURL is the public URL a parent
// entity stores (e.g. a post's featured image).
type UploadedFile struct {
	Filename         string       `json:"filename"`
	OriginalFilename string       `json:"original_filename,omitempty"`
	FilePath         string       `json:"file_path,omitempty"`
	FileURL          string       `json:"file_url"`
	FileSize         int64        `json:"file_size"`
	FileCategory     FileCategory `json:"file_category"`
	UploadedAt       string       `json:"uploaded_at"`
	UploadedBy       *int         `json:"uploaded_by,omitempty"`
}

// FileList is the payload of the upload listing endpoint.
type FileList struct {
	Files []UploadedFile `json:"files"`
}

var (
	imageExtensions    = []string{"png", "jpg", "jpeg", "gif", "webp", "svg"}
	documentExtensions = []string{"pdf", "doc", "docx"}
)

// AllowedExtensions lists the file extensions the API accepts.
func AllowedExtensions() []string {
	return append(append([]string{}, imageExtensions...), documentExtensions...)
}

// Extension returns the lower-cased extension of filename without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// CategoryOf derives the file category from the file name extension.
func CategoryOf(filename string) FileCategory {
	ext := Extension(filename)
	for _, e := range imageExtensions {
		if e == ext {
			return FileImage
		}
	}
	for _, e := range documentExtensions {
		if e == ext {
			return FileDocument
		}
	}
	return FileOther
}

// FormatSize renders a byte count using binary units, e.g. "1.5 MB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	units := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}

	value := float64(bytes) / math.Pow(1024, float64(i))
	rounded := math.Round(value*100) / 100
	return fmt.Sprintf("%s %s", strconv.FormatFloat(rounded, 'f', -1, 64), units[i])
}
