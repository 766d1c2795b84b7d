// Package mailer delivers generated response emails through the Gmail API.
// Delivery is best-effort: the pipeline result never depends on it.
package mailer

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

type GmailSender struct {
	svc  *gmail.Service
	from string
}

// NewGmail builds a sender from OAuth2 credentials JSON (Google Cloud
// Console format) and a refresh token obtained with cmd/gmail-auth-helper.
func NewGmail(ctx context.Context, credentialsJSON []byte, refreshToken, from string) (*GmailSender, error) {
	config, err := google.ConfigFromJSON(credentialsJSON, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gmail credentials: %w", err)
	}
	client := config.Client(ctx, &oauth2.Token{RefreshToken: refreshToken})
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to init gmail service: %w", err)
	}
	return &GmailSender{svc: svc, from: from}, nil
}

func (s *GmailSender) Send(ctx context.Context, to, subject, body string) error {
	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		s.from, to, subject, body)
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString([]byte(raw))}
	if _, err := s.svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
