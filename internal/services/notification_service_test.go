package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

func newTestGmail(t *testing.T, h http.HandlerFunc) *gmail.Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("gmail.NewService() error = %v", err)
	}
	return svc
}

func TestSendApplicationReceipt(t *testing.T) {
	var calls atomic.Int32
	var sent gmail.Message
	svc := newTestGmail(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error":{"code":503,"message":"backend"}}`, http.StatusServiceUnavailable)
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/users/me/messages/send") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&sent)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"m1"}`))
	})

	s := NewNotificationService(svc, "jobs@acme.test")
	s.sleep = time.Millisecond

	if err := s.SendApplicationReceipt(context.Background(), "ada@example.com", "Backend Engineer", "Ada Lovelace"); err != nil {
		t.Fatalf("SendApplicationReceipt() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}

	raw, err := base64.URLEncoding.DecodeString(sent.Raw)
	if err != nil {
		t.Fatalf("raw message not base64url: %v", err)
	}
	msg := string(raw)
	for _, want := range []string{"To: ada@example.com", "From: jobs@acme.test", "Hi Ada Lovelace", "Backend Engineer"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestSendApplicationReceiptFailsFastOnClientError(t *testing.T) {
	var calls atomic.Int32
	svc := newTestGmail(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"Invalid To header"}}`))
	})

	s := NewNotificationService(svc, "")
	s.sleep = time.Millisecond

	err := s.SendApplicationReceipt(context.Background(), "bad", "SRE", "X")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestSendApplicationReceiptWithoutClient(t *testing.T) {
	if err := NewNotificationService(nil, "").SendApplicationReceipt(context.Background(), "a@b.c", "SRE", "X"); err == nil {
		t.Error("expected error without gmail client")
	}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{"first try", []error{nil}, 1, false},
		{"transient then ok", []error{errors.New("reset"), nil}, 2, false},
		{"rate limited", []error{&googleapi.Error{Code: 429}, &googleapi.Error{Code: 429}, &googleapi.Error{Code: 429}}, 3, true},
		{"forbidden", []error{&googleapi.Error{Code: 403}}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retry(context.Background(), 3, time.Millisecond, func() error {
				err := tt.errs[calls]
				calls++
				return err
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("retry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retry(ctx, 3, time.Hour, func() error { return errors.New("down") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("retry() error = %v, want context.Canceled", err)
	}
}
