// Package verifymail issues an email verification link and mails it.
// Registration and the resend button on the login page both go through it.
package verifymail

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/takeandeat/internal/app/store/verifications"
	"github.com/dalemusser/takeandeat/internal/app/system/mailer"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// VerifyPath is where the emailed link points.
const VerifyPath = "/register/verify"

// Tokens creates verification records.
type Tokens interface {
	Create(ctx context.Context, userID primitive.ObjectID, ch verifications.Channel, destination string, isResend bool) (*verifications.CreateResult, error)
	Expiry(ch verifications.Channel) time.Duration
}

type Sender struct {
	Tokens  Tokens
	Mail    mailer.Sender
	BaseURL string
	Log     *zap.Logger
}

func New(tokens Tokens, mail mailer.Sender, baseURL string, logger *zap.Logger) *Sender {
	return &Sender{Tokens: tokens, Mail: mail, BaseURL: baseURL, Log: logger}
}

// Send replaces any pending link for u and emails a new one. A resend
// counts against the resend limit and may return
// verifications.ErrTooManyResends.
func (s *Sender) Send(ctx context.Context, u models.User, isResend bool) error {
	if u.Email == "" {
		return fmt.Errorf("profile %s has no email", u.ID.Hex())
	}
	res, err := s.Tokens.Create(ctx, u.ID, verifications.ChannelEmail, u.Email, isResend)
	if err != nil {
		return fmt.Errorf("create verification: %w", err)
	}

	msg := mailer.BuildVerificationEmail(
		viewdata.SiteName,
		u.FullName,
		s.Link(res.Token),
		FormatExpiry(s.Tokens.Expiry(verifications.ChannelEmail)),
	)
	msg.To = u.Email
	if err := s.Mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}

	s.Log.Info("verification email sent",
		zap.String("user_id", u.ID.Hex()),
		zap.Bool("resend", isResend),
		zap.Int("resend_count", res.ResendCount))
	return nil
}

// Link is the absolute verification URL for token.
func (s *Sender) Link(token string) string {
	return s.BaseURL + VerifyPath + "?token=" + url.QueryEscape(token)
}

// FormatExpiry formats a duration for an email, e.g. "10 minutes", "1 hour".
func FormatExpiry(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := minutes / 60
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
