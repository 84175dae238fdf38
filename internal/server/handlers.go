package server

import (
	"errors"
	"io"
	"net/http"

	apperrors "application-wizard/internal/common/errors"
	"application-wizard/internal/filevalidator"
	"application-wizard/internal/models"
	"application-wizard/internal/session"
	"application-wizard/internal/steps/resume"

	"github.com/gin-gonic/gin"
)

type createSessionRequest struct {
	Job         models.JobPosting `json:"job"`
	ApplicantID string            `json:"applicantId" binding:"required"`
}

type selectResumeRequest struct {
	ID string `json:"id" binding:"required"`
}

type portfolioRequest struct {
	URL string `json:"url"`
}

type answerRequest struct {
	Value string `json:"value"`
}

type consentRequest struct {
	Kind  models.ConsentKind `json:"kind" binding:"required"`
	Value *bool              `json:"value" binding:"required"`
}

// respondError writes {"error": StandardError} with the status mapped from its code.
func (s *Server) respondError(c *gin.Context, err error) {
	var rej *filevalidator.RejectionError
	var std *apperrors.StandardError
	if errors.As(err, &rej) {
		std = apperrors.NewUploadRejectedError(string(rej.Kind), rej.Message)
	} else {
		std = apperrors.Normalize(err)
	}
	status := apperrors.HTTPStatus(std.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request error", map[string]interface{}{"path": c.FullPath(), "code": std.Code, "error": err.Error()})
	}
	c.AbortWithStatusJSON(status, gin.H{"error": std})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	s.respondError(c, apperrors.NewInvalidInputError(err.Error()))
}

// session loads the :id session or writes a 404.
func (s *Server) session(c *gin.Context) (*session.Session, bool) {
	sess, err := s.registry.Get(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return sess, true
}

// respondView waits for in-flight step work so the snapshot is settled.
func respondView(c *gin.Context, status int, sess *session.Session) {
	sess.Wait()
	c.JSON(status, sess.View())
}

func (s *Server) health(c *gin.Context) {
	status := http.StatusOK
	results := gin.H{}
	for name, check := range s.checks {
		if err := check(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": results})
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	sess, err := s.registry.Open(c.Request.Context(), req.Job, req.ApplicantID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondView(c, http.StatusCreated, sess)
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	respondView(c, http.StatusOK, sess)
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.registry.Close(c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) next(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	if _, err := sess.Next(); err != nil {
		s.respondError(c, err)
		return
	}
	respondView(c, http.StatusOK, sess)
}

func (s *Server) back(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	if _, err := sess.Back(); err != nil {
		s.respondError(c, err)
		return
	}
	respondView(c, http.StatusOK, sess)
}

func (s *Server) submit(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	result, err := sess.Submit(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) retryProfile(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	if err := sess.RetryProfile(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	respondView(c, http.StatusOK, sess)
}

func (s *Server) selectResume(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req selectResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := sess.SelectResume(req.ID); err != nil {
		s.respondError(c, err)
		return
	}
	respondView(c, http.StatusOK, sess)
}

func (s *Server) uploadResume(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondError(c, &filevalidator.RejectionError{Kind: filevalidator.KindTooLarge, Message: "File size must be less than 10MB"})
			return
		}
		s.badRequest(c, err)
		return
	}

	declared := header.Header.Get("Content-Type")
	// reject oversized files before reading them
	if header.Size > filevalidator.MaxSizeBytes {
		if err := filevalidator.Validate(filevalidator.FileDescriptor{Name: header.Filename, MIMEType: declared, Size: header.Size}); err != nil {
			s.respondError(c, err)
			return
		}
	}

	f, err := header.Open()
	if err != nil {
		s.badRequest(c, err)
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		s.badRequest(c, err)
		return
	}

	upload := resume.FileUpload{Name: header.Filename, MIMEType: declared, Content: content}
	if err := sess.UploadResume(c.Request.Context(), upload); err != nil {
		s.respondError(c, err)
		return
	}
	respondView(c, http.StatusAccepted, sess)
}

func (s *Server) removeUpload(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	if err := sess.RemoveUpload(); err != nil {
		s.respondError(c, err)
		return
	}
	respondView(c, http.StatusOK, sess)
}

func (s *Server) setPortfolio(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req portfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := sess.SetPortfolioURL(req.URL); err != nil {
		s.respondError(c, err)
		return
	}
	respondView(c, http.StatusOK, sess)
}

func (s *Server) answer(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := sess.Answer(c.Param("qid"), req.Value); err != nil {
		s.respondError(c, err)
		return
	}
	respondView(c, http.StatusOK, sess)
}

func (s *Server) saveDraft(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	if err := sess.SaveDraft(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	respondView(c, http.StatusOK, sess)
}

func (s *Server) setConsent(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req consentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := sess.SetConsent(req.Kind, *req.Value); err != nil {
		s.respondError(c, err)
		return
	}
	respondView(c, http.StatusOK, sess)
}
