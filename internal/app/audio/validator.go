package audio

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	apperrors "hy-whisper/internal/app/errors"
)

// Validator decides whether an upload looks like audio before anything is
// written to disk. A file passes when its declared media type OR its
// extension is on the allow-list, so a mislabelled .mp3 is still accepted.
type Validator struct {
	mimeTypes  []string
	extensions []string
}

// NewValidator creates a validator for the given allow-lists. Entries are
// compared case-insensitively; extensions carry their leading dot.
func NewValidator(mimeTypes, extensions []string) *Validator {
	return &Validator{
		mimeTypes:  lo.Map(mimeTypes, func(s string, _ int) string { return strings.ToLower(s) }),
		extensions: lo.Map(extensions, func(s string, _ int) string { return strings.ToLower(s) }),
	}
}

// Accepts reports whether the declared media type or the filename extension
// is allowed.
func (v *Validator) Accepts(mediaType, filename string) bool {
	return lo.Contains(v.mimeTypes, normalizeMediaType(mediaType)) ||
		lo.Contains(v.extensions, strings.ToLower(filepath.Ext(filename)))
}

// Validate returns an UnsupportedFormat error when the file is rejected.
func (v *Validator) Validate(mediaType, filename string) error {
	if v.Accepts(mediaType, filename) {
		return nil
	}
	return apperrors.New(apperrors.KindUnsupportedFormat, v.RejectionMessage())
}

// RejectionMessage is the user-facing text listing the supported formats.
func (v *Validator) RejectionMessage() string {
	names := lo.Map(v.SupportedFormats(), func(s string, _ int) string { return strings.ToUpper(s) })
	return "Unsupported audio format. Supported: " + strings.Join(names, ", ")
}

// SupportedFormats returns the allowed extensions without the leading dot.
func (v *Validator) SupportedFormats() []string {
	return lo.Map(v.extensions, func(s string, _ int) string { return strings.TrimPrefix(s, ".") })
}

// SupportedMimeTypes returns a copy of the allowed media types.
func (v *Validator) SupportedMimeTypes() []string {
	return append([]string(nil), v.mimeTypes...)
}

// normalizeMediaType strips parameters such as "; codecs=opus".
func normalizeMediaType(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		return parsed
	}
	return strings.ToLower(mediaType)
}
