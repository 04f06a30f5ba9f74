package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/justsurfingit/applicant-intake/internal/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ChangePublisher receives every stored candidate change.
type ChangePublisher interface {
	Publish(changeType string, c models.Candidate)
}

var _ ChangePublisher = (*Hub)(nil)

const changeChannel = "candidate_changes"

// changeNotice is the NOTIFY payload. Candidates carry resume text, which
// can exceed the 8000 byte payload limit, so only the id travels.
type changeNotice struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// PGFanout relays candidate changes between API replicas. Publish sends a
// NOTIFY; Run receives every replica's notices (its own included), reloads
// the row and hands it to the local hub.
type PGFanout struct {
	db        *gorm.DB
	hub       *Hub
	listener  *pq.Listener
	pingEvery time.Duration
}

func NewPGFanout(dsn string, db *gorm.DB, hub *Hub) (*PGFanout, error) {
	l := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			slog.Warn("candidate change listener", "event", int(ev), "error", err)
		}
	})
	if err := l.Listen(changeChannel); err != nil {
		l.Close()
		return nil, fmt.Errorf("listen on %s: %w", changeChannel, err)
	}
	return &PGFanout{db: db, hub: hub, listener: l, pingEvery: 90 * time.Second}, nil
}

func (f *PGFanout) Publish(changeType string, c models.Candidate) {
	payload, err := json.Marshal(changeNotice{Type: changeType, ID: c.ID})
	if err == nil {
		err = f.db.Exec("SELECT pg_notify(?, ?)", changeChannel, string(payload)).Error
	}
	if err != nil {
		slog.Warn("candidate change not broadcast, publishing locally", "candidate_id", c.ID, "error", err)
		f.hub.Publish(changeType, c)
	}
}

// Run relays notices to the hub until ctx is done.
func (f *PGFanout) Run(ctx context.Context) {
	ticker := time.NewTicker(f.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-f.listener.Notify:
			if !ok {
				return
			}
			if n == nil {
				// Reconnected; anything sent while down is gone.
				slog.Info("candidate change listener reconnected")
				continue
			}
			f.relay(ctx, n.Extra)
		case <-ticker.C:
			go func() {
				if err := f.listener.Ping(); err != nil {
					slog.Warn("candidate change listener ping failed", "error", err)
				}
			}()
		}
	}
}

func (f *PGFanout) relay(ctx context.Context, payload string) {
	n, err := decodeNotice(payload)
	if err != nil {
		slog.Warn("ignoring candidate change notice", "payload", payload, "error", err)
		return
	}

	var c models.Candidate
	if err := f.db.WithContext(ctx).First(&c, "id = ?", n.ID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("reload changed candidate", "candidate_id", n.ID, "error", err)
		}
		return
	}
	f.hub.Publish(n.Type, c)
}

func (f *PGFanout) Close() error {
	return f.listener.Close()
}

func decodeNotice(payload string) (changeNotice, error) {
	var n changeNotice
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return n, err
	}
	if n.ID == "" {
		return n, errors.New("notice without candidate id")
	}
	switch n.Type {
	case ChangeCreated, ChangeUpdated:
	default:
		return n, fmt.Errorf("unknown change type %q", n.Type)
	}
	return n, nil
}
