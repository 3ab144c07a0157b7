// Package validation holds the client-side preconditions for registering a face.
package validation

import (
	"bytes"
	"image"
	"path/filepath"
	"strings"
	"unicode/utf8"

	// Decoders used by ContentType.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/okian/facecam/internal/domain/model"
)

// Limits applied by Upload.
const (
	MinNameLength = 2
	MaxNameLength = 50
	MinFileSize   = 1024
	MaxFileSize   = 16 * 1024 * 1024
)

// User-facing messages.
const (
	MsgMissing      = "Please provide both name and image."
	MsgNameTooShort = "Name must be at least 2 characters long."
	MsgNameTooLong  = "Name must be less than 50 characters."
	MsgTooLarge     = "File too large. Maximum size is 16MB."
	MsgTooSmall     = "File too small. Please upload a valid image."
	MsgInvalidType  = "Invalid file type. Please upload PNG, JPEG, BMP, TIFF, or WEBP images."
)

// mimeFormats maps allowed MIME types to a format name.
var mimeFormats = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpeg",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
	"image/webp": "webp",
}

// extFormats maps allowed file extensions to a format name.
var extFormats = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".bmp":  "bmp",
	".tiff": "tiff",
	".webp": "webp",
}

// Upload checks name and file in the order the user sees them and returns the
// first failure as a *model.ValidationError. The name is trimmed before checking.
func Upload(name string, file *model.UploadFile) error {
	name = strings.TrimSpace(name)
	if name == "" || file == nil {
		return invalid("name", MsgMissing)
	}

	n := utf8.RuneCountInString(name)
	if n < MinNameLength {
		return invalid("name", MsgNameTooShort)
	}
	if n > MaxNameLength {
		return invalid("name", MsgNameTooLong)
	}

	size := file.Size()
	if size > MaxFileSize {
		return invalid("file", MsgTooLarge)
	}
	if size < MinFileSize {
		return invalid("file", MsgTooSmall)
	}

	if !TypeAllowed(file.Filename, file.ContentType) {
		return invalid("file", MsgInvalidType)
	}
	return nil
}

// TypeAllowed reports whether both the MIME type and the extension are on the
// allow-list and name the same image format.
func TypeAllowed(filename, contentType string) bool {
	mimeFormat, ok := mimeFormats[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return false
	}
	extFormat, ok := extFormats[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return false
	}
	return mimeFormat == extFormat
}

// ContentType sniffs the image format from the header bytes and returns its
// MIME type, or "" when no registered decoder recognizes it.
func ContentType(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return "image/" + format
}

func invalid(field, msg string) error {
	return &model.ValidationError{Field: field, Message: msg}
}
