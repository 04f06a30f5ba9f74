package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justsurfingit/applicant-intake/internal/models"
	"github.com/justsurfingit/applicant-intake/internal/submission"
	"gorm.io/gorm"
)

// CandidateRepository is what the workflow and the recruiter endpoints need
// from a candidate store.
type CandidateRepository interface {
	submission.CandidateStore
	submission.EventRecorder
	ListByJob(ctx context.Context, orgID, jobID string) ([]models.Candidate, error)
	ListEvents(ctx context.Context, candidateID string) ([]models.CandidateEvent, error)
	Subscribe(orgID string) (<-chan CandidateChange, func())
}

var (
	_ CandidateRepository = (*CandidateService)(nil)
	_ CandidateRepository = (*MemoryStore)(nil)
)

// CandidateService stores candidates in Postgres through gorm. The
// (org_id, job_id, email) unique index backs the duplicate guard.
type CandidateService struct {
	DB      *gorm.DB
	hub     *Hub
	changes ChangePublisher
}

// NewCandidateService publishes changes straight to hub unless pub is set,
// in which case pub is expected to deliver them to hub itself.
func NewCandidateService(db *gorm.DB, hub *Hub, pub ChangePublisher) *CandidateService {
	if hub == nil {
		hub = NewHub()
	}
	if pub == nil {
		pub = hub
	}
	return &CandidateService{DB: db, hub: hub, changes: pub}
}

func (s *CandidateService) CreateRecord(ctx context.Context, c *models.Candidate) (string, error) {
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("invalid candidate: %w", err)
	}

	if err := s.DB.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return "", models.ErrUniqueViolation
		}
		return "", err
	}

	s.changes.Publish(ChangeCreated, *c)
	return c.ID, nil
}

func (s *CandidateService) QueryByField(ctx context.Context, orgID, field, value string) ([]models.Candidate, error) {
	col, ok := models.Columns[field]
	if !ok {
		return nil, fmt.Errorf("unsupported query field %q", field)
	}

	q := s.DB.WithContext(ctx).Where("org_id = ?", orgID)
	if field == "email" {
		q = q.Where("LOWER(email) = ?", strings.ToLower(value))
	} else {
		q = q.Where(col+" = ?", value)
	}

	var out []models.Candidate
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CandidateService) PatchRecord(ctx context.Context, id string, patch models.Patch) error {
	cols, err := checkPatch(patch)
	if err != nil {
		return err
	}

	res := s.DB.WithContext(ctx).Model(&models.Candidate{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}

	if c, err := s.Get(ctx, id); err == nil {
		s.changes.Publish(ChangeUpdated, *c)
	}
	return nil
}

func (s *CandidateService) Get(ctx context.Context, id string) (*models.Candidate, error) {
	var c models.Candidate
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *CandidateService) ListByJob(ctx context.Context, orgID, jobID string) ([]models.Candidate, error) {
	var out []models.Candidate
	err := s.DB.WithContext(ctx).
		Where("org_id = ? AND job_id = ?", orgID, jobID).
		Order("applied_at DESC").
		Find(&out).Error
	return out, err
}

func (s *CandidateService) Subscribe(orgID string) (<-chan CandidateChange, func()) {
	return s.hub.Subscribe(orgID)
}

func (s *CandidateService) RecordEvent(ctx context.Context, candidateID, eventType, details string) error {
	event := models.CandidateEvent{
		CandidateID: candidateID,
		EventType:   eventType,
		Details:     details,
	}
	return s.DB.WithContext(ctx).Create(&event).Error
}

func (s *CandidateService) ListEvents(ctx context.Context, candidateID string) ([]models.CandidateEvent, error) {
	var out []models.CandidateEvent
	err := s.DB.WithContext(ctx).Where("candidate_id = ?", candidateID).Order("id").Find(&out).Error
	return out, err
}

// isUniqueViolation needs the connection opened with TranslateError, as
// database.Connect does.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
