package services

import (
	"log/slog"
	"sync"

	"github.com/justsurfingit/applicant-intake/internal/models"
)

const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
)

// CandidateChange is delivered to subscribers of an organization.
type CandidateChange struct {
	Type      string           `json:"type"`
	Candidate models.Candidate `json:"candidate"`
}

// Hub fans candidate changes out to per-organization subscribers. Slow
// subscribers miss changes rather than blocking writers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[int]chan CandidateChange
	nextID int
	buffer int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan CandidateChange), buffer: 16}
}

// Subscribe returns a channel of changes for orgID and a cancel func that
// closes it. Cancel is safe to call more than once.
func (h *Hub) Subscribe(orgID string) (<-chan CandidateChange, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan CandidateChange, h.buffer)
	if h.subs[orgID] == nil {
		h.subs[orgID] = make(map[int]chan CandidateChange)
	}
	h.subs[orgID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[orgID], id)
			if len(h.subs[orgID]) == 0 {
				delete(h.subs, orgID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

func (h *Hub) Publish(changeType string, c models.Candidate) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[c.OrgID] {
		select {
		case ch <- CandidateChange{Type: changeType, Candidate: c}:
		default:
			slog.Warn("dropping candidate change for slow subscriber", "org_id", c.OrgID, "candidate_id", c.ID)
		}
	}
}

func (h *Hub) Subscribers(orgID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[orgID])
}
