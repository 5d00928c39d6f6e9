package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"pagechat/internal/models"
)

const (
	smtpTimeout = 30 * time.Second
)

// SMTPService delivers mention notifications over SMTP. It implements
// chat.Notifier.
type SMTPService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPService(host string, port int, username, password, from string) *SMTPService {
	return &SMTPService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// NotifyMentions sends one email addressed to every mentioned user.
// The preview is plain text already truncated by the caller.
func (s *SMTPService) NotifyMentions(ctx context.Context, fromDisplayName string, recipients []models.UserMention, preview, deepLink string) error {
	if len(recipients) == 0 {
		return nil
	}

	to := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if strings.TrimSpace(r.Email) != "" {
			to = append(to, r.Email)
		}
	}
	if len(to) == 0 {
		return nil
	}

	subject := fmt.Sprintf("[Mention] %s mentioned you", fromDisplayName)
	body := buildMentionBody(fromDisplayName, preview, deepLink)

	return s.send(ctx, to, subject, body)
}

func buildMentionBody(fromDisplayName, preview, deepLink string) string {
	return fmt.Sprintf(`<html><body>
<p><strong>%s</strong> mentioned you in a page conversation:</p>
<blockquote>%s</blockquote>
<p><a href="%s">Open the conversation</a></p>
</body></html>`,
		html.EscapeString(fromDisplayName),
		html.EscapeString(preview),
		html.EscapeString(deepLink))
}

func (s *SMTPService) send(ctx context.Context, to []string, subject, body string) error {
	msg := s.buildMessage(to, subject, body)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	ctx, cancel := context.WithTimeout(ctx, smtpTimeout)
	defer cancel()

	dialer := net.Dialer{Timeout: smtpTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsCfg := &tls.Config{ServerName: s.host}
		if err := client.StartTLS(tlsCfg); err != nil {
			return fmt.Errorf("STARTTLS: %w", err)
		}
	} else if s.port != 25 && s.port != 1025 {
		return fmt.Errorf("STARTTLS not available on port %d (required for secure auth)", s.port)
	}

	if s.username != "" && s.password != "" {
		auth := smtp.PlainAuth("", s.username, s.password, s.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication: %w", err)
		}
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("SMTP MAIL command: %w", err)
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("SMTP RCPT command for %s: %w", rcpt, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA command: %w", err)
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		wc.Close()
		return fmt.Errorf("writing email body: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("closing email body: %w", err)
	}

	if err := client.Quit(); err != nil {
		slog.Warn("smtp QUIT command failed", "component", "email", "error", err)
	}

	return nil
}

func (s *SMTPService) buildMessage(to []string, subject, body string) string {
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"utf-8\"\r\n\r\n%s",
		s.from, strings.Join(to, ", "), subject, body)
}
