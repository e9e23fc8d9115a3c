// Package mail sends campaign email to lead lists through an SMTP relay.
package mail

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/use-agent/leadforge/config"
	"github.com/use-agent/leadforge/export"
	"github.com/use-agent/leadforge/models"
)

// Sender delivers one message. Injectable for tests; the only real
// implementation speaks SMTP with STARTTLS.
type Sender interface {
	Send(msg Message) error
}

// Message is one outbound email.
type Message struct {
	From        string
	To          string
	Subject     string
	Body        string
	Attachments []models.Attachment
}

// SMTPSender sends through the configured relay.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{host: cfg.SMTPHost, port: cfg.SMTPPort, username: cfg.Username, password: cfg.Password}
}

func (s *SMTPSender) Send(msg Message) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	from := msg.From
	if from == "" {
		from = s.username
	}
	if err := smtp.SendMail(addr, auth, from, []string{msg.To}, buildMIME(from, msg)); err != nil {
		return models.NewAPIError(models.ErrCodeMail, fmt.Sprintf("send to %s failed", msg.To), err)
	}
	return nil
}

// buildMIME renders the message as multipart/mixed with base64 attachments.
func buildMIME(from string, msg Message) []byte {
	const boundary = "leadforge-mime-boundary"
	var b strings.Builder

	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(msg.Attachments) == 0 {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(msg.Body)
		return []byte(b.String())
	}

	b.WriteString("Content-Type: multipart/mixed; boundary=" + boundary + "\r\n\r\n")
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body + "\r\n")

	for _, att := range msg.Attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString("Content-Type: " + contentType + "\r\n")
		b.WriteString("Content-Transfer-Encoding: base64\r\n")
		b.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n\r\n", att.Filename))
		b.WriteString(base64.StdEncoding.EncodeToString(att.Data) + "\r\n")
	}
	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}

// BulkResult summarizes a bulk send.
type BulkResult struct {
	Sent    int
	Skipped int
	Total   int
}

// Bulk sends one message per lead row, spacing sends to stay under relay
// rate limits. Rows without a recoverable email address are skipped, and
// per-recipient failures do not stop the batch.
type Bulk struct {
	sender Sender
	delay  time.Duration
	logger *slog.Logger
}

func NewBulk(sender Sender, delay time.Duration, logger *slog.Logger) *Bulk {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bulk{sender: sender, delay: delay, logger: logger}
}

// Send delivers the campaign to every addressable row. {{name}} in the
// body is replaced per recipient.
func (b *Bulk) Send(req models.SendEmailRequest) BulkResult {
	res := BulkResult{Total: len(req.Leads)}
	for i, row := range req.Leads {
		email := export.EmailFromRow(row)
		if email == "" {
			res.Skipped++
			b.logger.Debug("lead row has no email, skipping", "index", i)
			continue
		}

		name := export.NameFromRow(row)
		if name == "" {
			name = "there"
		}
		body := strings.ReplaceAll(req.Body, "{{name}}", name)

		msg := Message{
			From:        req.From,
			To:          email,
			Subject:     req.Subject,
			Body:        body,
			Attachments: req.Attachments,
		}
		if err := b.sender.Send(msg); err != nil {
			res.Skipped++
			b.logger.Warn("send failed", "to", email, "error", err)
		} else {
			res.Sent++
		}

		if b.delay > 0 && i < len(req.Leads)-1 {
			time.Sleep(b.delay)
		}
	}
	return res
}
