// internal/app/system/mailer/mailer.go
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Email is a single outgoing message.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers an Email.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// Config holds SMTP settings. An empty Host selects log-only delivery.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

// Mailer sends over SMTP, or logs the message when no host is configured.
type Mailer struct {
	cfg    Config
	auth   smtp.Auth
	addr   string
	logger *zap.Logger

	// swapped in tests
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New builds a Mailer from cfg.
func New(cfg Config, logger *zap.Logger) *Mailer {
	m := &Mailer{cfg: cfg, logger: logger, sendMail: smtp.SendMail}
	if cfg.Host == "" {
		logger.Info("SMTP host not configured; emails will be logged, not sent")
		return m
	}
	if cfg.Port == 0 {
		m.cfg.Port = 587
	}
	if cfg.User != "" {
		m.auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}
	m.addr = cfg.Host + ":" + strconv.Itoa(m.cfg.Port)
	return m
}

// LogOnly reports whether messages are logged instead of sent.
func (m *Mailer) LogOnly() bool { return m.addr == "" }

// Send delivers e. net/smtp has no context support, so ctx is only checked
// before the dial.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(e.To); err != nil {
		return fmt.Errorf("mailer: bad recipient %q: %w", e.To, err)
	}

	if m.LogOnly() {
		m.logger.Info("email (log only)",
			zap.String("to", e.To),
			zap.String("subject", e.Subject),
			zap.String("text", e.TextBody))
		return nil
	}

	raw, err := m.build(e)
	if err != nil {
		return fmt.Errorf("mailer: build message: %w", err)
	}
	start := time.Now()
	if err := m.sendMail(m.addr, m.auth, m.cfg.From, []string{e.To}, raw); err != nil {
		m.logger.Warn("smtp send failed", zap.String("to", e.To), zap.Error(err))
		return fmt.Errorf("smtp error: %w", err)
	}
	m.logger.Info("email sent",
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
		zap.Duration("took", time.Since(start)))
	return nil
}

// build renders a multipart/alternative message with text and HTML parts.
func (m *Mailer) build(e Email) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		ctype   string
		content string
	}{
		{"text/plain; charset=UTF-8", e.TextBody},
		{"text/html; charset=UTF-8", e.HTMLBody},
	}
	for _, p := range parts {
		if p.content == "" {
			continue
		}
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.ctype},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	from := (&mail.Address{Name: m.cfg.FromName, Address: m.cfg.From}).String()

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", e.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", e.Subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "Message-ID: <%s@takeandeat>\r\n", uuid.NewString())
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
