package resume

import "application-wizard/internal/models"

type UploadStatus string

const (
	UploadIdle      UploadStatus = "idle"
	UploadUploading UploadStatus = "uploading"
	UploadSuccess   UploadStatus = "success"
	UploadFailed    UploadStatus = "failed"
)

type LibraryStatus string

const (
	LibraryLoading LibraryStatus = "loading"
	LibraryReady   LibraryStatus = "ready"
	LibraryFailed  LibraryStatus = "failed"
)

// FileUpload is a file as received from the client.
type FileUpload struct {
	Name     string
	MIMEType string
	Content  []byte
}

type UploadState struct {
	Status   UploadStatus `json:"status"`
	FileName string       `json:"fileName,omitempty"`
	Error    string       `json:"error,omitempty"`
}

type View struct {
	Library          []models.LibraryResume `json:"library"`
	LibraryStatus    LibraryStatus          `json:"libraryStatus"`
	Selection        models.ResumeSelection `json:"-"`
	SelectionKind    models.ResumeKind      `json:"selectionKind,omitempty"`
	SelectionName    string                 `json:"selectionName,omitempty"`
	Upload           UploadState            `json:"upload"`
	Rejection        string                 `json:"rejection,omitempty"`
	PortfolioURL     string                 `json:"portfolioUrl,omitempty"`
	PortfolioError   *models.FieldError     `json:"portfolioError,omitempty"`
	ManageResumesURL string                 `json:"manageResumesUrl,omitempty"`
}
