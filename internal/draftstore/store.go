// Package draftstore persists application drafts in Redis, one key per applicant and job.
package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"application-wizard/internal/common/logger"
	"application-wizard/internal/models"

	"github.com/redis/go-redis/v9"
)

var (
	ErrDraftNotFound   = errors.New("DRAFT_NOT_FOUND")
	ErrDraftSaveFailed = errors.New("DRAFT_SAVE_FAILED")
	ErrDraftLoadFailed = errors.New("DRAFT_LOAD_FAILED")
)

type Store struct {
	config *Config
	redis  *redis.Client
	logger logger.Logger
}

func NewStore(config *Config, rdb *redis.Client, log logger.Logger) *Store {
	if config == nil {
		config = LoadConfig()
	}
	return &Store{
		config: config,
		redis:  rdb,
		logger: logger.ForComponent(log, "draftstore"),
	}
}

// Key is draft:<applicantID>:<jobID> with the configured prefix.
func (s *Store) Key(applicantID, jobID string) string {
	return fmt.Sprintf("%s:%s:%s", s.config.KeyPrefix, applicantID, jobID)
}

// Save overwrites the stored draft and refreshes its TTL.
func (s *Store) Save(ctx context.Context, d models.ApplicationDraft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrDraftSaveFailed, err)
	}
	key := s.Key(d.ApplicantID, d.JobID)
	if err := s.redis.Set(ctx, key, data, s.config.TTL).Err(); err != nil {
		s.logger.Error("draft save failed", map[string]interface{}{"key": key, "error": err.Error()})
		return fmt.Errorf("%w: %v", ErrDraftSaveFailed, err)
	}
	s.logger.Debug("draft saved", map[string]interface{}{"key": key, "bytes": len(data)})
	return nil
}

func (s *Store) Load(ctx context.Context, applicantID, jobID string) (models.ApplicationDraft, error) {
	key := s.Key(applicantID, jobID)
	val, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return models.ApplicationDraft{}, fmt.Errorf("%w: %s", ErrDraftNotFound, key)
	}
	if err != nil {
		return models.ApplicationDraft{}, fmt.Errorf("%w: %v", ErrDraftLoadFailed, err)
	}

	var d models.ApplicationDraft
	if err := json.Unmarshal([]byte(val), &d); err != nil {
		s.logger.Warn("discarding corrupt draft", map[string]interface{}{"key": key, "error": err.Error()})
		return models.ApplicationDraft{}, fmt.Errorf("%w: %v", ErrDraftLoadFailed, err)
	}
	if d.Questions.Answers == nil {
		d.Questions.Answers = map[string]models.Answer{}
	}
	return d, nil
}

// Delete removes the draft. Deleting a missing draft is not an error.
func (s *Store) Delete(ctx context.Context, applicantID, jobID string) error {
	key := s.Key(applicantID, jobID)
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete draft %s: %w", key, err)
	}
	return nil
}
