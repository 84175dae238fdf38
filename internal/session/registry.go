package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"application-wizard/internal/common/logger"
	"application-wizard/internal/common/metrics"
	"application-wizard/internal/common/validation"
	"application-wizard/internal/draftstore"
	"application-wizard/internal/models"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("SESSION_NOT_FOUND")
	ErrInvalidJob      = errors.New("INVALID_INPUT")
)

// Registry holds the live sessions in memory. Only drafts survive a restart.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	config *Config
	deps   Deps
	logger logger.Logger
}

func NewRegistry(config *Config, deps Deps, log logger.Logger) *Registry {
	if config == nil {
		config = LoadConfig()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Registry{
		sessions: make(map[string]*Session),
		config:   config,
		deps:     deps,
		logger:   logger.ForComponent(log, "session.registry"),
	}
}

// Open validates the job, restores any saved draft for the applicant and job, and mounts the first step.
func (r *Registry) Open(ctx context.Context, job models.JobPosting, applicantID string) (*Session, error) {
	if strings.TrimSpace(applicantID) == "" {
		return nil, fmt.Errorf("%w: applicantId is required", ErrInvalidJob)
	}
	if vr := validation.Struct(job); !vr.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJob, strings.Join(vr.GetErrorMessages(), "; "))
	}

	draft := r.restoreDraft(ctx, job.ID, applicantID)

	id := uuid.New().String()
	s := newSession(id, r.config, job, draft, r.deps, r.logger)

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	metrics.ActiveSessions.Inc()

	r.logger.Info("session opened", map[string]interface{}{
		"sessionId":   id,
		"jobId":       job.ID,
		"applicantId": applicantID,
		"draftId":     draft.ID,
		"steps":       len(s.ctrl.Steps()),
	})
	return s, nil
}

func (r *Registry) restoreDraft(ctx context.Context, jobID, applicantID string) models.ApplicationDraft {
	fresh := func() models.ApplicationDraft {
		return models.NewDraft(uuid.New().String(), jobID, applicantID, r.config.Now())
	}
	if r.deps.Drafts == nil {
		return fresh()
	}

	d, err := r.deps.Drafts.Load(ctx, applicantID, jobID)
	if err != nil {
		// a missing draft is the normal case; anything else is logged and the applicant starts over
		if !errors.Is(err, draftstore.ErrDraftNotFound) {
			r.logger.Warn("failed to restore draft", map[string]interface{}{
				"applicantId": applicantID,
				"jobId":       jobID,
				"error":       err.Error(),
			})
		}
		return fresh()
	}
	r.logger.Info("draft restored", map[string]interface{}{"draftId": d.ID, "applicantId": applicantID, "jobId": jobID})
	return d
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close removes and closes one session.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.Close()
	metrics.ActiveSessions.Dec()
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many it closed.
func (r *Registry) Sweep() int {
	cutoff := r.config.Now().Add(-r.config.IdleTTL)

	var stale []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
		metrics.ActiveSessions.Dec()
	}
	if len(stale) > 0 {
		r.logger.Info("expired idle sessions", map[string]interface{}{"count": len(stale)})
	}
	return len(stale)
}

// Run sweeps on the configured interval until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.config.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Shutdown closes every session.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.Close()
		metrics.ActiveSessions.Dec()
	}
}
