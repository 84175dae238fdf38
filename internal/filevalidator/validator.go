// Package filevalidator decides whether an uploaded resume file is acceptable.
package filevalidator

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDoc  = "application/msword"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// MaxSizeBytes is inclusive.
	MaxSizeBytes int64 = 10 * 1024 * 1024

	mimeOctetStream = "application/octet-stream"
)

var allowedTypes = map[string]struct{}{
	MIMEPDF:  {},
	MIMEDoc:  {},
	MIMEDocx: {},
}

// RejectionKind classifies a refused upload.
type RejectionKind string

const (
	KindWrongType RejectionKind = "wrong-type"
	KindTooLarge  RejectionKind = "too-large"
)

// RejectionError is returned for files that fail the upload policy.
type RejectionError struct {
	Kind    RejectionKind
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("UPLOAD_REJECTED: %s", e.Message)
}

type FileDescriptor struct {
	Name     string
	MIMEType string
	Size     int64
}

// Validate checks the declared type, then the size.
func Validate(f FileDescriptor) error {
	if _, ok := allowedTypes[f.MIMEType]; !ok {
		return &RejectionError{
			Kind:    KindWrongType,
			Message: "Please upload a PDF or Word document (.pdf, .doc, .docx)",
		}
	}
	if f.Size > MaxSizeBytes {
		return &RejectionError{
			Kind:    KindTooLarge,
			Message: "File size must be less than 10MB",
		}
	}
	return nil
}

// DetectMIMEType sniffs content only when the declared type is missing or generic.
func DetectMIMEType(declared string, content []byte) string {
	if declared != "" && declared != mimeOctetStream {
		return declared
	}
	if len(content) == 0 {
		return declared
	}
	detected := mimetype.Detect(content)
	for m := detected; m != nil; m = m.Parent() {
		if _, ok := allowedTypes[m.String()]; ok {
			return m.String()
		}
	}
	return detected.String()
}
