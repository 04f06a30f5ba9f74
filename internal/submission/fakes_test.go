package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/justsurfingit/applicant-intake/internal/models"
)

// trace records collaborator calls in order across fakes.
type trace struct {
	mu    sync.Mutex
	calls []string
}

func (t *trace) add(call string) {
	t.mu.Lock()
	t.calls = append(t.calls, call)
	t.mu.Unlock()
}

func (t *trace) list() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.calls...)
}

func (t *trace) index(prefix string) int {
	for i, c := range t.list() {
		if strings.HasPrefix(c, prefix) {
			return i
		}
	}
	return -1
}

type memStore struct {
	tr *trace

	mu        sync.Mutex
	records   map[string]models.Candidate
	patches   int
	createErr error
}

func newMemStore(tr *trace) *memStore {
	return &memStore{tr: tr, records: make(map[string]models.Candidate)}
}

func (m *memStore) CreateRecord(ctx context.Context, c *models.Candidate) (string, error) {
	m.tr.add("create")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	for _, r := range m.records {
		if r.OrgID == c.OrgID && r.JobID == c.JobID && r.Email == c.Email {
			return "", models.ErrUniqueViolation
		}
	}
	m.records[c.ID] = *c
	return c.ID, nil
}

func (m *memStore) QueryByField(ctx context.Context, orgID, field, value string) ([]models.Candidate, error) {
	m.tr.add("query")
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Candidate
	for _, r := range m.records {
		if r.OrgID == orgID && field == "email" && r.Email == value {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) PatchRecord(ctx context.Context, id string, patch models.Patch) error {
	m.tr.add("patch")
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return models.ErrNotFound
	}
	for k, v := range patch {
		switch k {
		case "resumeUrl":
			r.ResumeURL = v.(string)
		case "videoUrl":
			r.VideoURL = v.(string)
		case "thumbnailUrl":
			r.ThumbnailURL = v.(string)
		case "resumeText":
			r.ResumeText = v.(string)
		case "manualInput":
			r.ManualInput = v.(bool)
		case "screeningScore":
			score := v.(float64)
			r.ScreeningScore = &score
		case "screeningSummary":
			r.ScreeningSummary = v.(string)
		default:
			return fmt.Errorf("unexpected patch field %q", k)
		}
	}
	m.records[id] = r
	m.patches++
	return nil
}

func (m *memStore) Get(ctx context.Context, id string) (*models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) all() []models.Candidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Candidate
	for _, r := range m.records {
		out = append(out, r)
	}
	return out
}

type fakeAssets struct {
	tr   *trace
	fail map[string]error // keyed by object suffix
}

func (f *fakeAssets) failFor(path string) error {
	for suffix, err := range f.fail {
		if strings.Contains(path, suffix) {
			return err
		}
	}
	return nil
}

func (f *fakeAssets) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error) {
	f.tr.add("upload:" + path)
	if err := f.failFor(path); err != nil {
		return "", err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	return "https://assets.test/" + path, nil
}

func (f *fakeAssets) UploadWithProgress(ctx context.Context, path string, r io.Reader, size int64, contentType string, onProgress func(float64)) (string, error) {
	f.tr.add("upload:" + path)
	if err := f.failFor(path); err != nil {
		return "", err
	}
	onProgress(50)
	onProgress(100)
	return "https://assets.test/" + path, nil
}

type fakeScreener struct {
	tr     *trace
	screen func(ctx context.Context, req ScreenRequest) (*ScreenResult, error)
}

func (f *fakeScreener) Screen(ctx context.Context, req ScreenRequest) (*ScreenResult, error) {
	f.tr.add("screen")
	return f.screen(ctx, req)
}

func scoreOf(v float64) func(context.Context, ScreenRequest) (*ScreenResult, error) {
	return func(context.Context, ScreenRequest) (*ScreenResult, error) {
		return &ScreenResult{Score: &v, Summary: "solid match"}, nil
	}
}

var errScreeningDown = errors.New("screening backend unavailable")

func failing(context.Context, ScreenRequest) (*ScreenResult, error) {
	return nil, errScreeningDown
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (n *fakeNotifier) SendApplicationReceipt(ctx context.Context, email, jobTitle, candidateName string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, email+"|"+jobTitle+"|"+candidateName)
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeEvents struct {
	mu     sync.Mutex
	events []string
}

func (e *fakeEvents) RecordEvent(ctx context.Context, candidateID, eventType, details string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, eventType)
	return nil
}

func (e *fakeEvents) has(eventType string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ev := range e.events {
		if ev == eventType {
			return true
		}
	}
	return false
}
