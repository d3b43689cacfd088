package ingest

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngData is a minimal valid PNG header followed by padding, enough for
// content sniffing to identify image/png.
func pngData(size int) []byte {
	header := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	if size < len(header) {
		return header[:size]
	}
	return append(header, bytes.Repeat([]byte{0}, size-len(header))...)
}

func TestProcessFileSizeLimit(t *testing.T) {
	t.Parallel()

	t.Run("exactly at the limit is accepted", func(t *testing.T) {
		t.Parallel()
		f, err := ProcessFile("big.png", "image/png", pngData(MaxFileSize))
		require.NoError(t, err)
		assert.Equal(t, KindBinary, f.Kind)
	})

	t.Run("one byte over is rejected naming the file", func(t *testing.T) {
		t.Parallel()
		_, err := ProcessFile("huge.png", "image/png", pngData(MaxFileSize+1))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "huge.png", verr.Filename)
		assert.Contains(t, verr.Error(), "huge.png")
		assert.Contains(t, verr.Reason, "10.0 MB")
	})
}

func TestProcessFileUnsupportedType(t *testing.T) {
	t.Parallel()

	_, err := ProcessFile("archive.zip", "application/zip", []byte("PK"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "application/zip")
	// The rejection names the supported set.
	assert.Contains(t, verr.Reason, "image/jpeg")
	assert.Contains(t, verr.Reason, "application/pdf")
	assert.Contains(t, verr.Reason, "text/csv")
}

func TestProcessFileImage(t *testing.T) {
	t.Parallel()

	data := pngData(64)
	f, err := ProcessFile("photo.png", "image/png", data)
	require.NoError(t, err)

	assert.Equal(t, KindBinary, f.Kind)
	assert.Equal(t, "image/png", f.MediaType)
	decoded, err := base64.StdEncoding.DecodeString(f.Data)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestProcessFileImageTypeMismatch(t *testing.T) {
	t.Parallel()

	// Plain text declared as an image fails the content sniff.
	_, err := ProcessFile("fake.png", "image/png", []byte("just some text, not a png"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "image/png")
}

func TestProcessFilePDF(t *testing.T) {
	t.Parallel()

	data := []byte("%PDF-1.7 fake body")
	f, err := ProcessFile("report.pdf", "application/pdf", data)
	require.NoError(t, err)
	assert.Equal(t, KindBinary, f.Kind)
	assert.Equal(t, base64.StdEncoding.EncodeToString(data), f.Data)
}

func TestProcessFileTextLike(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		filename  string
		mediaType string
		content   string
	}{
		{"csv", "sales.csv", "text/csv", "region,revenue\nwest,100\neast,80"},
		{"plain text", "notes.txt", "text/plain", "some notes"},
		{"json", "data.json", "application/json", `{"k":"v"}`},
		{"charset parameter stripped", "notes.txt", "text/plain; charset=utf-8", "more notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := ProcessFile(tt.filename, tt.mediaType, []byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, KindText, f.Kind)
			assert.Equal(t, tt.content, f.Text)
			assert.Empty(t, f.Data)

			// Prompt text carries the attribution marker and the content.
			prompt := f.PromptText()
			assert.True(t, strings.HasPrefix(prompt, "[Attached file: "+tt.filename+"]"))
			assert.Contains(t, prompt, tt.content)
		})
	}
}

func TestProcessFileInvalidUTF8(t *testing.T) {
	t.Parallel()

	_, err := ProcessFile("bad.txt", "text/plain", []byte{0xff, 0xfe, 0x00})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "UTF-8")
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "10.0 MB", FormatSize(10<<20))
}
