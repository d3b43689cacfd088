// Package ingest prepares user-attached files for a turn request. Images
// and PDFs are carried as base64 file parts; text-like files are decoded
// and folded into the prompt as attributed text.
package ingest

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// MaxFileSize is the per-file ceiling. A file of exactly this size is
// accepted; one byte over is rejected.
const MaxFileSize = 10 << 20

// Kind says how a processed file travels to the model.
type Kind int

const (
	// KindBinary is base64 file-part content (images and PDFs).
	KindBinary Kind = iota
	// KindText is decoded text folded into the prompt.
	KindText
)

// supportedTypes maps each accepted media type to how it is carried.
var supportedTypes = map[string]Kind{
	"image/jpeg":       KindBinary,
	"image/png":        KindBinary,
	"image/gif":        KindBinary,
	"image/webp":       KindBinary,
	"application/pdf":  KindBinary,
	"text/csv":         KindText,
	"text/plain":       KindText,
	"application/json": KindText,
}

// SupportedTypes returns the accepted media types in a stable order.
func SupportedTypes() []string {
	return []string{
		"image/jpeg", "image/png", "image/gif", "image/webp",
		"application/pdf",
		"text/csv", "text/plain", "application/json",
	}
}

// ValidationError describes a rejected file. The message always names the
// file so multi-attachment failures are attributable.
type ValidationError struct {
	Filename string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("file %q rejected: %s", e.Filename, e.Reason)
}

// ProcessedFile is a validated attachment ready for the wire.
type ProcessedFile struct {
	Filename  string
	MediaType string
	Kind      Kind

	// Data is the base64 content for KindBinary files.
	Data string

	// Text is the decoded content for KindText files.
	Text string
}

// PromptText renders a text-like file as an attributed prompt fragment.
func (f *ProcessedFile) PromptText() string {
	return fmt.Sprintf("[Attached file: %s]\n\n%s", f.Filename, f.Text)
}

// ProcessFile validates and converts one attachment.
//
// Rejections:
//   - size over MaxFileSize, naming the file and both sizes
//   - media type outside the supported set, naming the type and the set
//   - declared image type contradicted by content sniffing
func ProcessFile(filename, mediaType string, data []byte) (*ProcessedFile, error) {
	if len(data) > MaxFileSize {
		return nil, &ValidationError{
			Filename: filename,
			Reason: fmt.Sprintf("size %s exceeds the %s limit",
				FormatSize(int64(len(data))), FormatSize(MaxFileSize)),
		}
	}

	mediaType = normalizeMediaType(mediaType)
	kind, ok := supportedTypes[mediaType]
	if !ok {
		return nil, &ValidationError{
			Filename: filename,
			Reason: fmt.Sprintf("unsupported type %q (supported: %s)",
				mediaType, strings.Join(SupportedTypes(), ", ")),
		}
	}

	switch kind {
	case KindBinary:
		if strings.HasPrefix(mediaType, "image/") {
			if sniffed := http.DetectContentType(data); !imageTypeMatches(mediaType, sniffed) {
				return nil, &ValidationError{
					Filename: filename,
					Reason:   fmt.Sprintf("content does not match declared type %q (detected %q)", mediaType, sniffed),
				}
			}
		}
		return &ProcessedFile{
			Filename:  filename,
			MediaType: mediaType,
			Kind:      KindBinary,
			Data:      base64.StdEncoding.EncodeToString(data),
		}, nil

	default:
		if !utf8.Valid(data) {
			return nil, &ValidationError{
				Filename: filename,
				Reason:   fmt.Sprintf("declared %q but content is not valid UTF-8", mediaType),
			}
		}
		return &ProcessedFile{
			Filename:  filename,
			MediaType: mediaType,
			Kind:      KindText,
			Text:      string(data),
		}, nil
	}
}

// normalizeMediaType strips parameters like "; charset=utf-8" and lowercases.
func normalizeMediaType(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// imageTypeMatches compares a declared image type against sniffed content.
// JPEG sniffing is exact; the other formats also sniff exactly, so equality
// suffices once both sides are normalized.
func imageTypeMatches(declared, sniffed string) bool {
	return normalizeMediaType(sniffed) == declared
}

// FormatSize renders a byte count for error messages and file chips.
func FormatSize(n int64) string {
	const (
		kib = 1 << 10
		mib = 1 << 20
	)
	switch {
	case n >= mib:
		return fmt.Sprintf("%.1f MB", float64(n)/mib)
	case n >= kib:
		return fmt.Sprintf("%.1f KB", float64(n)/kib)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
