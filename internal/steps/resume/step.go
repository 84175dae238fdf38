// Package resume is the wizard step where the applicant picks a library resume or uploads a new one.
package resume

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"application-wizard/internal/common/logger"
	"application-wizard/internal/common/metrics"
	"application-wizard/internal/common/retry"
	"application-wizard/internal/common/validation"
	"application-wizard/internal/filevalidator"
	"application-wizard/internal/models"
	"application-wizard/internal/steps"
	"application-wizard/internal/wizard"
)

var (
	ErrResumeNotFound = errors.New("RESUME_NOT_FOUND")
	ErrUploadFailed   = errors.New("UPLOAD_FAILED")
)

// Library lists the applicant's stored resumes.
type Library interface {
	ListResumes(ctx context.Context, applicantID string) ([]models.LibraryResume, error)
}

// UploadAcceptor persists an uploaded file and returns its storage key.
type UploadAcceptor interface {
	Store(ctx context.Context, applicantID string, file models.UploadedResume) (string, error)
}

type Step struct {
	mu sync.Mutex

	config   *Config
	reporter wizard.Reporter
	library  Library
	acceptor UploadAcceptor
	logger   logger.Logger
	life     steps.Lifecycle

	resumes       []models.LibraryResume
	libraryStatus LibraryStatus
	selection     models.ResumeSelection
	portfolioURL  string
	portfolioErr  *models.FieldError
	upload        UploadState
	uploadSeq     uint64
	rejection     string
}

func NewStep(config *Config, reporter wizard.Reporter, library Library, acceptor UploadAcceptor, log logger.Logger) *Step {
	if config == nil {
		config = LoadConfig()
	}
	return &Step{
		config:        config,
		reporter:      reporter,
		library:       library,
		acceptor:      acceptor,
		logger:        logger.ForComponent(log, "step.resume"),
		libraryStatus: LibraryLoading,
		upload:        UploadState{Status: UploadIdle},
	}
}

func (s *Step) ID() models.StepID { return models.StepResume }

// Mount restores the selection from the draft, reports it, and lists the library in the background.
// When the listing arrives and nothing is selected, the default library resume is preselected.
func (s *Step) Mount(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mountCtx, gen := s.life.Begin(ctx)

	d := s.reporter.Draft()
	s.selection = d.Resume.Selection
	s.portfolioURL = d.Resume.PortfolioURL
	s.portfolioErr = checkPortfolio(s.portfolioURL)
	s.libraryStatus = LibraryLoading
	s.rejection = ""
	s.reportLocked()

	applicantID := d.ApplicantID
	s.life.Go(func() {
		listCtx := mountCtx
		if s.config.ListTimeout > 0 {
			var cancel context.CancelFunc
			listCtx, cancel = context.WithTimeout(mountCtx, s.config.ListTimeout)
			defer cancel()
		}
		resumes, err := s.library.ListResumes(listCtx, applicantID)

		s.mu.Lock()
		defer s.mu.Unlock()

		if !s.life.Current(gen) {
			s.logger.Debug("discarding library listing after unmount", map[string]interface{}{"generation": gen})
			return
		}
		if err != nil {
			s.libraryStatus = LibraryFailed
			s.logger.Warn("failed to list resumes", map[string]interface{}{"error": err.Error()})
			return
		}

		s.resumes = resumes
		s.libraryStatus = LibraryReady
		if s.selection == nil {
			if def, ok := models.DefaultResume(resumes); ok {
				s.selection = def
				s.reportLocked()
			}
		}
	})
}

func (s *Step) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.life.End()
}

// Wait blocks until the library listing and any upload settle.
func (s *Step) Wait() { s.life.Wait() }

// SelectLibrary selects a library resume, replacing any upload.
func (s *Step) SelectLibrary(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.life.Mounted() {
		return steps.ErrNotMounted
	}
	for _, r := range s.resumes {
		if r.ID == id {
			s.selection = r
			s.rejection = ""
			s.upload = UploadState{Status: UploadIdle}
			s.uploadSeq++ // an upload still in flight no longer wins
			s.reportLocked()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrResumeNotFound, id)
}

// Upload validates the file synchronously. A rejected file returns *filevalidator.RejectionError and
// leaves the selection alone. An accepted file is persisted in the background with bounded retry;
// on success it becomes the selection, on final failure the upload state shows the error.
func (s *Step) Upload(_ context.Context, f FileUpload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mountCtx, gen, err := s.life.Context()
	if err != nil {
		return err
	}

	mimeType := filevalidator.DetectMIMEType(f.MIMEType, f.Content)
	desc := filevalidator.FileDescriptor{Name: f.Name, MIMEType: mimeType, Size: int64(len(f.Content))}
	if err := filevalidator.Validate(desc); err != nil {
		var rej *filevalidator.RejectionError
		if errors.As(err, &rej) {
			s.rejection = rej.Message
			metrics.UploadsTotal.WithLabelValues("rejected_" + string(rej.Kind)).Inc()
		}
		s.logger.Info("upload rejected", map[string]interface{}{"fileName": f.Name, "mimeType": mimeType, "size": desc.Size})
		return err
	}

	s.rejection = ""
	s.uploadSeq++
	seq := s.uploadSeq
	s.upload = UploadState{Status: UploadUploading, FileName: f.Name}

	file := models.UploadedResume{
		Name:     f.Name,
		MIMEType: mimeType,
		Size:     desc.Size,
		Bytes:    append([]byte(nil), f.Content...),
	}
	applicantID := s.reporter.Draft().ApplicantID

	s.life.Go(func() {
		var key string
		storeErr := retry.Do(mountCtx, s.config.Retry, retry.Always, func(ctx context.Context) error {
			storeCtx := ctx
			if s.config.StoreTimeout > 0 {
				var cancel context.CancelFunc
				storeCtx, cancel = context.WithTimeout(ctx, s.config.StoreTimeout)
				defer cancel()
			}
			var err error
			key, err = s.acceptor.Store(storeCtx, applicantID, file)
			return err
		})

		s.mu.Lock()
		defer s.mu.Unlock()

		if !s.life.Current(gen) || seq != s.uploadSeq {
			s.logger.Debug("discarding stale upload result", map[string]interface{}{"fileName": file.Name})
			return
		}

		if storeErr != nil {
			s.upload = UploadState{
				Status:   UploadFailed,
				FileName: file.Name,
				Error:    fmt.Errorf("%w: %v", ErrUploadFailed, storeErr).Error(),
			}
			metrics.UploadsTotal.WithLabelValues("failed").Inc()
			s.logger.Warn("upload failed", map[string]interface{}{"fileName": file.Name, "error": storeErr.Error()})
			return
		}

		file.StorageKey = key
		file.Bytes = nil
		s.selection = file
		s.upload = UploadState{Status: UploadSuccess, FileName: file.Name}
		metrics.UploadsTotal.WithLabelValues("success").Inc()
		s.logger.Info("upload stored", map[string]interface{}{"fileName": file.Name, "storageKey": key})
		s.reportLocked()
	})
	return nil
}

// RemoveUpload drops an uploaded selection and falls back to the default library resume, if any.
func (s *Step) RemoveUpload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.life.Mounted() {
		return steps.ErrNotMounted
	}
	s.uploadSeq++
	s.upload = UploadState{Status: UploadIdle}
	if _, ok := s.selection.(models.UploadedResume); !ok {
		return nil
	}

	s.selection = nil
	if def, ok := models.DefaultResume(s.resumes); ok {
		s.selection = def
	}
	s.reportLocked()
	return nil
}

// SetPortfolioURL stores the link. A non-empty value that is not a URL gets an advisory field error.
func (s *Step) SetPortfolioURL(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.life.Mounted() {
		return steps.ErrNotMounted
	}
	s.portfolioURL = url
	s.portfolioErr = checkPortfolio(url)
	s.reportLocked()
	return nil
}

func checkPortfolio(url string) *models.FieldError {
	if url == "" || validation.IsURL(url) {
		return nil
	}
	return &models.FieldError{Field: "portfolioUrl", Code: "INVALID_URL", Message: "Enter a full link, e.g. https://example.com"}
}

func (s *Step) reportLocked() {
	computed := s.selection != nil && s.portfolioErr == nil
	valid := s.reporter.Policy().Validity(computed)
	if err := s.reporter.Report(wizard.ResumePatch{Selection: s.selection, PortfolioURL: s.portfolioURL}, valid); err != nil {
		s.logger.Error("failed to report resume", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Step) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Library:          append([]models.LibraryResume(nil), s.resumes...),
		LibraryStatus:    s.libraryStatus,
		Selection:        s.selection,
		Upload:           s.upload,
		Rejection:        s.rejection,
		PortfolioURL:     s.portfolioURL,
		PortfolioError:   s.portfolioErr,
		ManageResumesURL: s.config.ManageResumesURL,
	}
	if s.selection != nil {
		v.SelectionKind = s.selection.Kind()
		v.SelectionName = s.selection.DisplayName()
	}
	return v
}
