// Package clients holds the adapters for the services the wizard reads from and writes to.
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

// ProfileClient reads applicant profiles over HTTP.
type ProfileClient struct {
	baseURL string
	http    *httpclient.Client
	logger  logger.Logger
}

func NewProfileClient(config *Config, client *httpclient.Client, log logger.Logger) *ProfileClient {
	if config == nil {
		config = LoadConfig()
	}
	if client == nil {
		client = httpclient.NewClient(config.Timeout)
	}
	return &ProfileClient{
		baseURL: strings.TrimRight(config.ProfileBaseURL, "/"),
		http:    client,
		logger:  logger.ForComponent(log, "client.profile"),
	}
}

// FetchProfile calls GET <base>/applicants/<id>/profile.
func (c *ProfileClient) FetchProfile(ctx context.Context, applicantID string) (*models.ApplicantProfile, error) {
	endpoint := fmt.Sprintf("%s/applicants/%s/profile", c.baseURL, url.PathEscape(applicantID))

	var profile models.ApplicantProfile
	if err := c.http.GetJSON(ctx, endpoint, &profile); err != nil {
		c.logger.Warn("profile request failed", map[string]interface{}{"applicantId": applicantID, "error": err.Error()})
		return nil, err
	}
	if profile.ApplicantID == "" {
		profile.ApplicantID = applicantID
	}
	if profile.Completeness < 0 {
		profile.Completeness = 0
	}
	if profile.Completeness > 100 {
		profile.Completeness = 100
	}
	return &profile, nil
}
