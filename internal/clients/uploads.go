package clients

import (
	"context"
	"database/sql"
	"fmt"

	"application-wizard/internal/common/logger"
	"application-wizard/internal/models"

	"github.com/google/uuid"
)

// UploadStore keeps uploaded resume files in Postgres and hands back a uuid storage key.
type UploadStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewUploadStore(db *sql.DB, log logger.Logger) *UploadStore {
	return &UploadStore{
		db:     db,
		logger: logger.ForComponent(log, "client.uploads"),
	}
}

func (s *UploadStore) Store(ctx context.Context, applicantID string, file models.UploadedResume) (string, error) {
	key := uuid.New().String()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resume_uploads (storage_key, applicant_id, file_name, mime_type, size_bytes, content)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		key, applicantID, file.Name, file.MIMEType, file.Size, file.Bytes,
	)
	if err != nil {
		return "", fmt.Errorf("failed to store upload %s: %w", file.Name, err)
	}

	s.logger.Info("upload stored", map[string]interface{}{
		"applicantId": applicantID,
		"storageKey":  key,
		"size":        file.Size,
	})
	return key, nil
}
