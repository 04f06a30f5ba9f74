package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/justsurfingit/applicant-intake/internal/models"
)

func newCandidate(id, email string) *models.Candidate {
	return &models.Candidate{
		ID:        id,
		OrgID:     "org-1",
		JobID:     "job-1",
		Email:     email,
		Name:      "Ada Lovelace",
		Stage:     models.StageNew,
		AppliedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func TestMemoryStoreCreateRecord(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	id, err := s.CreateRecord(ctx, newCandidate("c1", "ada@example.com"))
	if err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	if id != "c1" {
		t.Errorf("id = %q, want c1", id)
	}

	tests := []struct {
		name string
		c    *models.Candidate
		want error
	}{
		{"same id", newCandidate("c1", "other@example.com"), models.ErrUniqueViolation},
		{"same email different case", newCandidate("c2", "ADA@example.com"), models.ErrUniqueViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateRecord(ctx, tt.c); !errors.Is(err, tt.want) {
				t.Errorf("CreateRecord() error = %v, want %v", err, tt.want)
			}
		})
	}

	other := newCandidate("c3", "ada@example.com")
	other.JobID = "job-2"
	if _, err := s.CreateRecord(ctx, other); err != nil {
		t.Errorf("same email on another job should be allowed, got %v", err)
	}
	if s.Count() != 2 {
		t.Errorf("Count() = %d, want 2", s.Count())
	}
}

func TestMemoryStoreCreateRecordValidates(t *testing.T) {
	s := NewMemoryStore(nil)
	c := newCandidate("c1", "not-an-email")
	if _, err := s.CreateRecord(context.Background(), c); err == nil {
		t.Fatal("expected validation error")
	}
	if s.Count() != 0 {
		t.Errorf("invalid record was stored")
	}
}

func TestMemoryStoreQueryByField(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)
	s.CreateRecord(ctx, newCandidate("c1", "ada@example.com"))
	s.CreateRecord(ctx, newCandidate("c2", "grace@example.com"))

	tests := []struct {
		name  string
		org   string
		field string
		value string
		want  int
	}{
		{"email case insensitive", "org-1", "email", "Ada@Example.com", 1},
		{"job", "org-1", "jobId", "job-1", 2},
		{"stage", "org-1", "stage", models.StageNew, 2},
		{"other org", "org-2", "jobId", "job-1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.QueryByField(ctx, tt.org, tt.field, tt.value)
			if err != nil {
				t.Fatalf("QueryByField() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d records, want %d", len(got), tt.want)
			}
		})
	}

	if _, err := s.QueryByField(ctx, "org-1", "name", "Ada"); err == nil {
		t.Error("expected error for unsupported field")
	}
}

func TestMemoryStorePatchRecord(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)
	s.CreateRecord(ctx, newCandidate("c1", "ada@example.com"))

	err := s.PatchRecord(ctx, "c1", models.Patch{
		"resumeUrl":      "https://assets/resume.pdf",
		"screeningScore": 72.0,
		"manualInput":    true,
	})
	if err != nil {
		t.Fatalf("PatchRecord() error = %v", err)
	}

	c, _ := s.Get(ctx, "c1")
	if c.ResumeURL != "https://assets/resume.pdf" || !c.ManualInput {
		t.Errorf("patch not applied: %+v", c)
	}
	if c.ScreeningScore == nil || *c.ScreeningScore != 72 {
		t.Errorf("ScreeningScore = %v, want 72", c.ScreeningScore)
	}

	rejected := []struct {
		name  string
		patch models.Patch
	}{
		{"immutable field", models.Patch{"email": "x@example.com"}},
		{"wrong type", models.Patch{"manualInput": "yes"}},
		{"score as int", models.Patch{"screeningScore": 50}},
		{"empty", models.Patch{}},
		{"invalid result", models.Patch{"stage": ""}},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.PatchRecord(ctx, "c1", tt.patch); err == nil {
				t.Error("expected error")
			}
		})
	}

	if err := s.PatchRecord(ctx, "missing", models.Patch{"stage": "Screen"}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("PatchRecord(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreListByJobNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	older := newCandidate("c1", "ada@example.com")
	older.AppliedAt = "2026-01-01T10:00:00Z"
	newer := newCandidate("c2", "grace@example.com")
	newer.AppliedAt = "2026-02-01T10:00:00Z"
	s.CreateRecord(ctx, older)
	s.CreateRecord(ctx, newer)

	got, err := s.ListByJob(ctx, "org-1", "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "c2" {
		t.Errorf("ListByJob() order = %v", got)
	}
}

func TestMemoryStorePublishesChanges(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)
	ch, cancel := s.Subscribe("org-1")
	defer cancel()

	s.CreateRecord(ctx, newCandidate("c1", "ada@example.com"))
	s.PatchRecord(ctx, "c1", models.Patch{"stage": "Screen"})

	want := []string{ChangeCreated, ChangeUpdated}
	for _, w := range want {
		select {
		case got := <-ch:
			if got.Type != w || got.Candidate.ID != "c1" {
				t.Errorf("change = %+v, want %s for c1", got, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("no %s change received", w)
		}
	}
}

func TestMemoryStoreEvents(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)
	s.RecordEvent(ctx, "c1", models.EventCreated, "")
	s.RecordEvent(ctx, "c1", models.EventScreened, "score 80")
	s.RecordEvent(ctx, "c2", models.EventCreated, "")

	events, _ := s.ListEvents(ctx, "c1")
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].EventType != models.EventCreated || events[1].EventType != models.EventScreened {
		t.Errorf("events out of order: %+v", events)
	}
	if events[0].ID >= events[1].ID {
		t.Errorf("event ids not increasing")
	}
}
