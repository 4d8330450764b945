package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AndriiVeremi/contacts-api/internal/cache"
	"github.com/AndriiVeremi/contacts-api/internal/hash"
	"github.com/AndriiVeremi/contacts-api/internal/logging"
	"github.com/AndriiVeremi/contacts-api/internal/models"
	"github.com/AndriiVeremi/contacts-api/internal/repo"
	"github.com/AndriiVeremi/contacts-api/internal/tokens"
)

const ResetTokenTTL = 30 * time.Minute

type PasswordResetService struct {
	Repo  *repo.GormRepo
	Cache *cache.UserCache
	Mail  MailSender
}

func NewPasswordResetService(r *repo.GormRepo, c *cache.UserCache, m MailSender) *PasswordResetService {
	return &PasswordResetService{Repo: r, Cache: c, Mail: m}
}

// RequestReset creates a single-use token and mails it. Unknown addresses
// are a silent no-op so callers cannot probe for accounts.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "password_reset.request")

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		l.Info("reset_requested_unknown_email")
		return nil
	}

	raw, err := tokens.NewOpaqueToken()
	if err != nil {
		return fmt.Errorf("generating reset token: %w", err)
	}
	token := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     raw,
		ExpiresAt: time.Now().Add(ResetTokenTTL),
	}
	if err := s.Repo.SavePasswordResetToken(ctx, token); err != nil {
		return fmt.Errorf("saving reset token: %w", err)
	}

	if s.Mail != nil {
		go func(to, tok string) {
			if err := s.Mail.SendPasswordReset(to, tok); err != nil {
				l.Warn("reset_mail_failed", "error", err)
			}
		}(user.Email, raw)
	}

	l.Info("reset_requested", "user_id", user.ID)
	return nil
}

// ConfirmReset checks existence, then the used flag, then expiry, in that
// order, before changing the password and consuming the token.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "password_reset.confirm")

	prt, err := s.Repo.GetPasswordResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("looking up reset token: %w", err)
	}
	if prt == nil {
		return ErrResetTokenInvalid
	}
	if prt.Used {
		return ErrResetTokenUsed
	}
	if time.Now().After(prt.ExpiresAt) {
		return ErrResetTokenInvalid
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.Repo.UpdateUserPassword(ctx, prt.UserID, pwHash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if err := s.Repo.MarkPasswordResetTokenUsed(ctx, token); err != nil {
		return fmt.Errorf("consuming reset token: %w", err)
	}

	// Password changed; the cached snapshot is stale.
	if user, err := s.Repo.GetUserByID(ctx, prt.UserID); err == nil && user != nil {
		if err := s.Cache.Delete(ctx, user.ID, user.Username); err != nil {
			cache.LogMiss(ctx, "delete", err)
		}
	}

	l.Info("password_reset_completed", "user_id", prt.UserID)
	return nil
}
