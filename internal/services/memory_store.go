package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/justsurfingit/applicant-intake/internal/models"
)

// MemoryStore keeps candidates in memory. It enforces the same uniqueness
// and patch rules as the database store and is used when no DATABASE_URL is set.
type MemoryStore struct {
	mu         sync.RWMutex
	candidates map[string]*models.Candidate
	events     map[string][]models.CandidateEvent
	eventSeq   uint
	hub        *Hub
}

func NewMemoryStore(hub *Hub) *MemoryStore {
	if hub == nil {
		hub = NewHub()
	}
	return &MemoryStore{
		candidates: make(map[string]*models.Candidate),
		events:     make(map[string][]models.CandidateEvent),
		hub:        hub,
	}
}

func (s *MemoryStore) CreateRecord(ctx context.Context, c *models.Candidate) (string, error) {
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("invalid candidate: %w", err)
	}

	s.mu.Lock()
	if _, ok := s.candidates[c.ID]; ok {
		s.mu.Unlock()
		return "", models.ErrUniqueViolation
	}
	for _, existing := range s.candidates {
		if existing.OrgID == c.OrgID && existing.JobID == c.JobID && strings.EqualFold(existing.Email, c.Email) {
			s.mu.Unlock()
			return "", models.ErrUniqueViolation
		}
	}

	now := time.Now()
	stored := *c
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.candidates[c.ID] = &stored
	s.mu.Unlock()

	s.hub.Publish(ChangeCreated, stored)
	return stored.ID, nil
}

func (s *MemoryStore) QueryByField(ctx context.Context, orgID, field, value string) ([]models.Candidate, error) {
	if _, ok := models.Columns[field]; !ok {
		return nil, fmt.Errorf("unsupported query field %q", field)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Candidate
	for _, c := range s.candidates {
		if c.OrgID != orgID {
			continue
		}
		var v string
		switch field {
		case "email":
			if strings.EqualFold(c.Email, value) {
				out = append(out, *c)
			}
			continue
		case "jobId":
			v = c.JobID
		case "stage":
			v = c.Stage
		default:
			return nil, fmt.Errorf("unsupported query field %q", field)
		}
		if v == value {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *MemoryStore) PatchRecord(ctx context.Context, id string, patch models.Patch) error {
	if _, err := checkPatch(patch); err != nil {
		return err
	}

	s.mu.Lock()
	c, ok := s.candidates[id]
	if !ok {
		s.mu.Unlock()
		return models.ErrNotFound
	}
	next := *c
	applyPatch(&next, patch)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("invalid candidate after patch: %w", err)
	}
	next.UpdatedAt = time.Now()
	s.candidates[id] = &next
	s.mu.Unlock()

	s.hub.Publish(ChangeUpdated, next)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.candidates[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *c
	return &out, nil
}

// ListByJob returns the job's candidates, newest application first.
func (s *MemoryStore) ListByJob(ctx context.Context, orgID, jobID string) ([]models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Candidate
	for _, c := range s.candidates {
		if c.OrgID == orgID && c.JobID == jobID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AppliedAt > out[j].AppliedAt
	})
	return out, nil
}

func (s *MemoryStore) Subscribe(orgID string) (<-chan CandidateChange, func()) {
	return s.hub.Subscribe(orgID)
}

func (s *MemoryStore) RecordEvent(ctx context.Context, candidateID, eventType, details string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventSeq++
	s.events[candidateID] = append(s.events[candidateID], models.CandidateEvent{
		ID:          s.eventSeq,
		CreatedAt:   time.Now(),
		CandidateID: candidateID,
		EventType:   eventType,
		Details:     details,
	})
	return nil
}

func (s *MemoryStore) ListEvents(ctx context.Context, candidateID string) ([]models.CandidateEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.CandidateEvent(nil), s.events[candidateID]...), nil
}

func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candidates)
}
