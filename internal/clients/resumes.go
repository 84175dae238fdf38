package clients

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	httpclient "application-wizard/internal/common/http"
	"application-wizard/internal/common/logger"
	"application-wizard/internal/models"
)

// ResumeLibraryClient lists stored resumes over HTTP.
type ResumeLibraryClient struct {
	baseURL string
	http    *httpclient.Client
	logger  logger.Logger
}

func NewResumeLibraryClient(config *Config, client *httpclient.Client, log logger.Logger) *ResumeLibraryClient {
	if config == nil {
		config = LoadConfig()
	}
	if client == nil {
		client = httpclient.NewClient(config.Timeout)
	}
	return &ResumeLibraryClient{
		baseURL: strings.TrimRight(config.ResumeBaseURL, "/"),
		http:    client,
		logger:  logger.ForComponent(log, "client.resumes"),
	}
}

type resumeListResponse struct {
	Resumes []models.LibraryResume `json:"resumes"`
}

// ListResumes calls GET <base>/applicants/<id>/resumes. Only the first resume flagged as default keeps the flag.
func (c *ResumeLibraryClient) ListResumes(ctx context.Context, applicantID string) ([]models.LibraryResume, error) {
	endpoint := fmt.Sprintf("%s/applicants/%s/resumes", c.baseURL, url.PathEscape(applicantID))

	var resp resumeListResponse
	if err := c.http.GetJSON(ctx, endpoint, &resp); err != nil {
		c.logger.Warn("resume listing failed", map[string]interface{}{"applicantId": applicantID, "error": err.Error()})
		return nil, err
	}

	seenDefault := false
	out := make([]models.LibraryResume, 0, len(resp.Resumes))
	for _, r := range resp.Resumes {
		if r.IsDefault {
			if seenDefault {
				c.logger.Warn("ignoring extra default resume", map[string]interface{}{"resumeId": r.ID})
				r.IsDefault = false
			}
			seenDefault = true
		}
		out = append(out, r)
	}
	return out, nil
}
