package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AndriiVeremi/contacts-api/internal/cache"
	"github.com/AndriiVeremi/contacts-api/internal/events"
	"github.com/AndriiVeremi/contacts-api/internal/hash"
	"github.com/AndriiVeremi/contacts-api/internal/logging"
	"github.com/AndriiVeremi/contacts-api/internal/models"
	"github.com/AndriiVeremi/contacts-api/internal/repo"
	"github.com/AndriiVeremi/contacts-api/internal/tokens"
	"github.com/AndriiVeremi/contacts-api/internal/upload"
)

// MailSender is implemented by mail.Sender; kept narrow for tests.
type MailSender interface {
	SendConfirmation(to, username, host, token string) error
	SendPasswordReset(to, token string) error
}

// EventPublisher is implemented by events.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type RegisterData struct {
	Username string
	Password string
	Email    string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	Repo  *repo.GormRepo
	Cache *cache.UserCache
	Deny  *cache.DenyList
	Mail  MailSender
	Pub   EventPublisher

	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	EmailTTL   time.Duration
}

func NewAuthService(r *repo.GormRepo, c *cache.UserCache, d *cache.DenyList, secret []byte, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		Repo:       r,
		Cache:      c,
		Deny:       d,
		Secret:     secret,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		EmailTTL:   7 * 24 * time.Hour,
	}
}

// Register creates an unconfirmed user and kicks off the confirmation mail
// in the background. Avatar lookup is best-effort.
func (s *AuthService) Register(ctx context.Context, data RegisterData, host string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if existing, err := s.Repo.GetUserByUsername(ctx, data.Username); err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	} else if existing != nil {
		return nil, ErrConflict
	}
	if existing, err := s.Repo.GetUserByEmail(ctx, data.Email); err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	} else if existing != nil {
		return nil, ErrConflict
	}

	pwHash, err := hash.HashPassword(data.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Username:     data.Username,
		Email:        data.Email,
		HashPassword: pwHash,
		Role:         models.RoleUser,
		Avatar:       upload.GravatarURL(data.Email),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		// A concurrent registration can slip past the lookups above; the
		// unique index still catches it.
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.publish(ctx, events.TopicUserEvents, user.ID, map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	if s.Mail != nil {
		emailToken, err := tokens.NewEmailToken(user.Email, s.Secret, s.EmailTTL)
		if err != nil {
			l.Error("confirmation_token_failed", "error", err)
		} else {
			go func(to, username, tok string) {
				if err := s.Mail.SendConfirmation(to, username, host, tok); err != nil {
					l.Warn("confirmation_mail_failed", "error", err)
				}
			}(user.Email, user.Username, emailToken)
		}
	}

	l.Info("register_success", "user_id", user.ID)
	return user, nil
}

// Authenticate verifies credentials and warms the session cache. Absent
// user and wrong password collapse into ErrUnauthorized; the unconfirmed
// case keeps its own error.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		l.Warn("login_failed", "status", 401, "reason", "unknown_user")
		return nil, ErrUnauthorized
	}
	if !user.Confirmed {
		l.Warn("login_failed", "status", 401, "reason", "email_not_confirmed")
		return nil, ErrEmailNotConfirmed
	}
	if !hash.CheckPassword(user.HashPassword, password) {
		l.Warn("login_failed", "status", 401, "reason", "bad_password")
		return nil, ErrUnauthorized
	}

	if err := s.Cache.Set(ctx, cache.SnapshotOf(user)); err != nil {
		cache.LogMiss(ctx, "set", err)
	}

	s.publish(ctx, events.TopicUserEvents, user.ID, map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	l.Info("login_successful", "user_id", user.ID)
	return user, nil
}

// EmailFromConfirmationToken verifies a mailed confirmation token and
// returns the address it was issued for.
func (s *AuthService) EmailFromConfirmationToken(token string) (string, error) {
	return tokens.EmailFromToken(token, s.Secret)
}

// SendConfirmation re-sends the confirmation mail in the background.
func (s *AuthService) SendConfirmation(ctx context.Context, user *models.User, host string) {
	if s.Mail == nil {
		return
	}
	l := logging.FromContext(ctx)
	emailToken, err := tokens.NewEmailToken(user.Email, s.Secret, s.EmailTTL)
	if err != nil {
		l.Error("confirmation_token_failed", "error", err)
		return
	}
	go func(to, username, tok string) {
		if err := s.Mail.SendConfirmation(to, username, host, tok); err != nil {
			l.Warn("confirmation_mail_failed", "error", err)
		}
	}(user.Email, user.Username, emailToken)
}

func (s *AuthService) IssueAccessToken(username string) (string, error) {
	return tokens.NewAccessToken(username, s.Secret, s.AccessTTL)
}

// IssueRefreshToken mints an opaque value, persists only its hash together
// with client metadata, and returns the raw value (the only time it is
// ever visible).
func (s *AuthService) IssueRefreshToken(ctx context.Context, userID uint, ip, userAgent string) (string, error) {
	raw, err := tokens.NewOpaqueToken()
	if err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: tokens.Sha256Hex(raw),
		ExpiredAt: time.Now().Add(s.RefreshTTL),
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := s.Repo.SaveRefreshToken(ctx, token); err != nil {
		return "", fmt.Errorf("saving refresh token: %w", err)
	}
	return raw, nil
}

// ValidateRefreshToken resolves an opaque token to its owner. Missing,
// expired and revoked tokens are indistinguishable to the caller.
func (s *AuthService) ValidateRefreshToken(ctx context.Context, raw string) (*models.User, error) {
	token, err := s.Repo.GetActiveRefreshToken(ctx, tokens.Sha256Hex(raw), time.Now())
	if err != nil {
		return nil, fmt.Errorf("looking up refresh token: %w", err)
	}
	if token == nil {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.Repo.GetUserByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidRefreshToken
	}
	return user, nil
}

// RevokeRefreshToken is idempotent; unknown tokens are a no-op.
func (s *AuthService) RevokeRefreshToken(ctx context.Context, raw string) error {
	return s.Repo.RevokeRefreshToken(ctx, tokens.Sha256Hex(raw), time.Now())
}

// RevokeAccessToken deny-lists the token for its remaining lifetime and
// evicts the owner's cached snapshot.
func (s *AuthService) RevokeAccessToken(ctx context.Context, token string) error {
	claims, err := tokens.AccessClaimsFromToken(token, s.Secret)
	if err != nil {
		return ErrUnauthorized
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if err := s.Deny.Revoke(ctx, token, remaining); err != nil {
		return fmt.Errorf("deny-listing token: %w", err)
	}

	if user, err := s.Repo.GetUserByUsername(ctx, claims.Subject); err == nil && user != nil {
		if err := s.Cache.Delete(ctx, user.ID, user.Username); err != nil {
			cache.LogMiss(ctx, "delete", err)
		}
		s.publish(ctx, events.TopicUserEvents, user.ID, map[string]any{
			"type":     "user_logged_out",
			"user_id":  user.ID,
			"username": user.Username,
		})
	}
	return nil
}

// GetCurrentUser resolves an access token to its user: deny list, then
// signature/expiry, then cache-aside lookup by username.
func (s *AuthService) GetCurrentUser(ctx context.Context, token string) (*models.User, error) {
	revoked, err := s.Deny.IsRevoked(ctx, token)
	if err != nil {
		cache.LogMiss(ctx, "denylist", err)
	}
	if revoked {
		return nil, ErrUnauthorized
	}

	claims, err := tokens.AccessClaimsFromToken(token, s.Secret)
	if err != nil {
		return nil, ErrUnauthorized
	}
	username := claims.Subject
	if username == "" {
		return nil, ErrUnauthorized
	}

	if snap, err := s.Cache.GetByUsername(ctx, username); err != nil {
		cache.LogMiss(ctx, "get", err)
	} else if snap != nil {
		return &models.User{
			ID:        snap.ID,
			Username:  snap.Username,
			Email:     snap.Email,
			Role:      snap.Role,
			Avatar:    snap.Avatar,
			Confirmed: snap.Confirmed,
		}, nil
	}

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthorized
	}

	if err := s.Cache.Set(ctx, cache.SnapshotOf(user)); err != nil {
		cache.LogMiss(ctx, "set", err)
	}
	return user, nil
}

func (s *AuthService) publish(ctx context.Context, topic string, userID uint, event map[string]any) {
	if s.Pub == nil {
		return
	}
	if err := s.Pub.PublishEvent(ctx, topic, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "error", err)
	}
}
