package services

import (
	"sync"
	"time"

	"github.com/justsurfingit/applicant-intake/internal/submission"
)

// PendingSubmissions keeps live submissions between HTTP requests so a
// screening failure can be finished with pasted text. Idle entries expire
// after ttl.
type PendingSubmissions struct {
	mu    sync.Mutex
	items map[string]*submission.Submission
	ttl   time.Duration
	now   func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewPendingSubmissions(ttl time.Duration) *PendingSubmissions {
	return &PendingSubmissions{
		items: make(map[string]*submission.Submission),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (p *PendingSubmissions) Put(s *submission.Submission) {
	p.mu.Lock()
	p.items[s.ID] = s
	p.mu.Unlock()
}

func (p *PendingSubmissions) Get(id string) (*submission.Submission, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.items[id]
	return s, ok
}

func (p *PendingSubmissions) Remove(id string) {
	p.mu.Lock()
	s, ok := p.items[id]
	delete(p.items, id)
	p.mu.Unlock()
	if ok {
		s.Close()
	}
}

func (p *PendingSubmissions) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Sweep closes and drops entries idle for longer than ttl. A submission that
// is still running is never dropped.
func (p *PendingSubmissions) Sweep() int {
	cutoff := p.now().Add(-p.ttl)

	p.mu.Lock()
	var expired []*submission.Submission
	for id, s := range p.items {
		snap := s.Snapshot()
		if snap.Submitting || snap.UpdatedAt.After(cutoff) {
			continue
		}
		expired = append(expired, s)
		delete(p.items, id)
	}
	p.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

// Start sweeps every interval until Stop is called.
func (p *PendingSubmissions) Start(interval time.Duration) {
	p.mu.Lock()
	if p.stop != nil {
		p.mu.Unlock()
		return
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	stop, done := p.stop, p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.Sweep()
			case <-stop:
				return
			}
		}
	}()
}

func (p *PendingSubmissions) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.mu.Unlock()
	if stop == nil {
		return
	}
	p.once.Do(func() { close(stop) })
	<-done
}
