// internal/models/resume.go
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ResumeKind tags the two ResumeSelection variants.
type ResumeKind string

const (
	ResumeKindLibrary  ResumeKind = "library"
	ResumeKindUploaded ResumeKind = "uploaded"
)

// ResumeSelection is either a LibraryResume or an UploadedResume. A nil value means nothing is selected.
type ResumeSelection interface {
	Kind() ResumeKind
	DisplayName() string
	SizeBytes() int64
	isResumeSelection()
}

// LibraryResume is a resume the applicant stored earlier.
type LibraryResume struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	IsDefault  bool      `json:"isDefault"`
}

func (LibraryResume) Kind() ResumeKind { return ResumeKindLibrary }
func (r LibraryResume) DisplayName() string { return r.Name }
func (r LibraryResume) SizeBytes() int64 { return r.Size }
func (LibraryResume) isResumeSelection() {}

// UploadedResume is a file uploaded during this application. Bytes are dropped once
// the upload acceptor has stored them under StorageKey.
type UploadedResume struct {
	Name       string `json:"name"`
	MIMEType   string `json:"mimeType"`
	Size       int64  `json:"size"`
	Bytes      []byte `json:"-"`
	StorageKey string `json:"storageKey,omitempty"`
}

func (UploadedResume) Kind() ResumeKind { return ResumeKindUploaded }
func (r UploadedResume) DisplayName() string { return r.Name }
func (r UploadedResume) SizeBytes() int64 { return r.Size }
func (UploadedResume) isResumeSelection() {}

type resumeEnvelope struct {
	Kind ResumeKind `json:"kind"`
	// LibraryResume fields
	ID         string     `json:"id,omitempty"`
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
	IsDefault  bool       `json:"isDefault,omitempty"`
	// UploadedResume fields
	MIMEType   string `json:"mimeType,omitempty"`
	StorageKey string `json:"storageKey,omitempty"`
	// shared
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// MarshalResumeSelection encodes a selection as a {"kind": ...} envelope, or null.
func MarshalResumeSelection(sel ResumeSelection) ([]byte, error) {
	switch r := sel.(type) {
	case nil:
		return []byte("null"), nil
	case LibraryResume:
		at := r.UploadedAt
		return json.Marshal(resumeEnvelope{
			Kind: ResumeKindLibrary, ID: r.ID, Name: r.Name, Size: r.Size,
			UploadedAt: &at, IsDefault: r.IsDefault,
		})
	case UploadedResume:
		return json.Marshal(resumeEnvelope{
			Kind: ResumeKindUploaded, Name: r.Name, Size: r.Size,
			MIMEType: r.MIMEType, StorageKey: r.StorageKey,
		})
	default:
		return nil, fmt.Errorf("unsupported resume selection %T", sel)
	}
}

// UnmarshalResumeSelection is the inverse of MarshalResumeSelection.
func UnmarshalResumeSelection(data []byte) (ResumeSelection, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var env resumeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid resume selection: %w", err)
	}
	switch env.Kind {
	case ResumeKindLibrary:
		r := LibraryResume{ID: env.ID, Name: env.Name, Size: env.Size, IsDefault: env.IsDefault}
		if env.UploadedAt != nil {
			r.UploadedAt = *env.UploadedAt
		}
		return r, nil
	case ResumeKindUploaded:
		return UploadedResume{Name: env.Name, Size: env.Size, MIMEType: env.MIMEType, StorageKey: env.StorageKey}, nil
	default:
		return nil, fmt.Errorf("unknown resume kind %q", env.Kind)
	}
}

// DefaultResume returns the library resume flagged as default.
func DefaultResume(library []LibraryResume) (LibraryResume, bool) {
	for _, r := range library {
		if r.IsDefault {
			return r, true
		}
	}
	return LibraryResume{}, false
}
