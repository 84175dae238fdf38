package filevalidator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		file     FileDescriptor
		wantKind RejectionKind
	}{
		{"pdf", FileDescriptor{Name: "cv.pdf", MIMEType: MIMEPDF, Size: 1024}, ""},
		{"doc", FileDescriptor{Name: "cv.doc", MIMEType: MIMEDoc, Size: 1024}, ""},
		{"docx", FileDescriptor{Name: "cv.docx", MIMEType: MIMEDocx, Size: 1024}, ""},
		{"exactly 10MB", FileDescriptor{Name: "cv.pdf", MIMEType: MIMEPDF, Size: MaxSizeBytes}, ""},
		{"empty file", FileDescriptor{Name: "cv.pdf", MIMEType: MIMEPDF, Size: 0}, ""},
		{"one byte over", FileDescriptor{Name: "cv.pdf", MIMEType: MIMEPDF, Size: MaxSizeBytes + 1}, KindTooLarge},
		{"png", FileDescriptor{Name: "cv.png", MIMEType: "image/png", Size: 10}, KindWrongType},
		{"text", FileDescriptor{Name: "cv.txt", MIMEType: "text/plain", Size: 10}, KindWrongType},
		{"no type", FileDescriptor{Name: "cv", Size: 10}, KindWrongType},
		{"wrong type and too large", FileDescriptor{Name: "a.zip", MIMEType: "application/zip", Size: MaxSizeBytes * 2}, KindWrongType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.file)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			var rej *RejectionError
			require.ErrorAs(t, err, &rej)
			assert.Equal(t, tt.wantKind, rej.Kind)
			assert.NotEmpty(t, rej.Message)
		})
	}
}

func TestValidate_Deterministic(t *testing.T) {
	f := FileDescriptor{Name: "cv.png", MIMEType: "image/png", Size: MaxSizeBytes + 5}
	assert.Equal(t, Validate(f), Validate(f))
}

func TestDetectMIMEType(t *testing.T) {
	pdf := []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

	assert.Equal(t, MIMEPDF, DetectMIMEType("", pdf))
	assert.Equal(t, MIMEPDF, DetectMIMEType("application/octet-stream", pdf))
	// declared type wins when present
	assert.Equal(t, "image/png", DetectMIMEType("image/png", pdf))
	assert.Equal(t, "", DetectMIMEType("", nil))
	assert.Equal(t, "text/plain; charset=utf-8", DetectMIMEType("", []byte("just some text")))
}
