package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/justsurfingit/applicant-intake/internal/logger"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

// NotificationService sends application receipts through the Gmail API.
type NotificationService struct {
	GmailClient *gmail.Service
	From        string

	attempts int
	sleep    time.Duration
}

func NewNotificationService(gmailSvc *gmail.Service, from string) *NotificationService {
	return &NotificationService{
		GmailClient: gmailSvc,
		From:        from,
		attempts:    3,
		sleep:       time.Second,
	}
}

func (s *NotificationService) SendApplicationReceipt(ctx context.Context, email, jobTitle, candidateName string) error {
	if s.GmailClient == nil {
		return errors.New("gmail client not configured")
	}

	raw := buildReceipt(s.From, email, jobTitle, candidateName)
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}

	err := retry(ctx, s.attempts, s.sleep, func() error {
		_, err := s.GmailClient.Users.Messages.Send("me", msg).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("send receipt to %s: %w", email, err)
	}

	logger.Info(ctx, "application receipt sent", "job_title", jobTitle)
	return nil
}

func buildReceipt(from, to, jobTitle, name string) []byte {
	subject := fmt.Sprintf("We received your application for %s", jobTitle)

	var sb strings.Builder
	if from != "" {
		sb.WriteString("From: " + from + "\r\n")
	}
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(fmt.Sprintf("Hi %s,\r\n\r\n", name))
	sb.WriteString(fmt.Sprintf("Thanks for applying for the %s position. Your application is in and our team will review it shortly.\r\n\r\n", jobTitle))
	sb.WriteString("We'll be in touch about next steps.\r\n")
	return []byte(sb.String())
}

// retry executes a function with exponential backoff. Client errors other
// than 429 fail fast.
func retry(ctx context.Context, attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = f()
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		slog.Warn("gmail API error, retrying", "error", err, "backoff", sleep)
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

func isPermanent(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code >= 400 && gErr.Code < 500 && gErr.Code != http.StatusTooManyRequests
	}
	return false
}
