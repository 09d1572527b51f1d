package service

import (
	"context"
	"log"
	"thundercipher/internal/platform/config"
)

// LogMailer writes outgoing mail to the process log. Deployments wire a
// real transport behind the Mailer interface.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	log.Printf("INFO: [MAIL] from=%s to=%s subject=%q body=%q", config.AppConfig.MailFrom, to, subject, body)
	return nil
}
