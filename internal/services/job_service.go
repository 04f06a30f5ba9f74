package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/applicant-intake/internal/dtos"
	"github.com/justsurfingit/applicant-intake/internal/models"
	"gorm.io/gorm"
)

// JobRepository is the org-scoped job board.
type JobRepository interface {
	CreateJob(ctx context.Context, orgID string, req *dtos.JobCreationRequest) (*models.Job, error)
	GetJob(ctx context.Context, orgID, jobID string) (*models.Job, error)
	ListJobs(ctx context.Context, orgID string) ([]models.Job, error)
}

var (
	_ JobRepository = (*JobService)(nil)
	_ JobRepository = (*MemoryJobStore)(nil)
)

type JobService struct {
	DB *gorm.DB
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{
		DB: db,
	}
}

func (s *JobService) CreateJob(ctx context.Context, orgID string, req *dtos.JobCreationRequest) (*models.Job, error) {
	db := s.DB.WithContext(ctx)

	// companies are unique per organization; reuse an existing one
	var company models.Company
	err := db.Where(models.Company{OrgID: orgID, Name: req.CompanyName}).
		FirstOrCreate(&company).Error
	if err != nil {
		return nil, err
	}

	job := newJob(orgID, req)
	job.CompanyID = company.ID
	if err := db.Create(job).Error; err != nil {
		return nil, err
	}
	job.Company = company
	return job, nil
}

func (s *JobService) GetJob(ctx context.Context, orgID, jobID string) (*models.Job, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).Preload("Company").
		Where("org_id = ? AND id = ?", orgID, jobID).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (s *JobService) ListJobs(ctx context.Context, orgID string) ([]models.Job, error) {
	var jobs []models.Job
	err := s.DB.WithContext(ctx).Preload("Company").
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

func newJob(orgID string, req *dtos.JobCreationRequest) *models.Job {
	status := req.Status
	if status == "" {
		status = models.JobStatusOpen
	}
	return &models.Job{
		ID:          uuid.NewString(),
		OrgID:       orgID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		JobLink:     req.JobLink,
		Status:      status,
	}
}

// MemoryJobStore is the in-memory job board used with the memory candidate store.
type MemoryJobStore struct {
	mu        sync.RWMutex
	jobs      map[string]*models.Job
	companies map[string]models.Company
	nextID    uint
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		jobs:      make(map[string]*models.Job),
		companies: make(map[string]models.Company),
	}
}

func (s *MemoryJobStore) CreateJob(ctx context.Context, orgID string, req *dtos.JobCreationRequest) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := orgID + "/" + req.CompanyName
	company, ok := s.companies[key]
	if !ok {
		s.nextID++
		company = models.Company{ID: s.nextID, OrgID: orgID, Name: req.CompanyName, CreatedAt: time.Now()}
		s.companies[key] = company
	}

	job := newJob(orgID, req)
	job.CompanyID = company.ID
	job.Company = company
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	s.jobs[job.ID] = job

	out := *job
	return &out, nil
}

func (s *MemoryJobStore) GetJob(ctx context.Context, orgID, jobID string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok || job.OrgID != orgID {
		return nil, models.ErrNotFound
	}
	out := *job
	return &out, nil
}

func (s *MemoryJobStore) ListJobs(ctx context.Context, orgID string) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Job
	for _, j := range s.jobs {
		if j.OrgID == orgID {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	return out, nil
}

// ToJobResponse flattens a job for the public board.
func ToJobResponse(j *models.Job) dtos.JobResponse {
	return dtos.JobResponse{
		ID:          j.ID,
		CompanyName: j.Company.Name,
		Title:       j.Title,
		Description: j.Description,
		Location:    j.Location,
		JobLink:     j.JobLink,
		Status:      j.Status,
	}
}
