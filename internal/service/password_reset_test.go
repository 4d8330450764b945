package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndriiVeremi/contacts-api/internal/hash"
	"github.com/AndriiVeremi/contacts-api/internal/models"
)

func (env *testEnv) waitForResetToken(t *testing.T, email string) string {
	t.Helper()
	var token string
	require.Eventually(t, func() bool {
		token = env.Mail.resetTokenFor(email)
		return token != ""
	}, time.Second, 10*time.Millisecond, "reset mail was never sent")
	return token
}

func TestPasswordReset_FullFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.createConfirmedUser(t, "alice", "alice@example.com", "pw123456")

	require.NoError(t, env.Reset.RequestReset(ctx, "alice@example.com"))
	token := env.waitForResetToken(t, "alice@example.com")

	require.NoError(t, env.Reset.ConfirmReset(ctx, token, "newpw12345"))

	user, err := env.Repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, hash.CheckPassword(user.HashPassword, "newpw12345"))
	assert.False(t, hash.CheckPassword(user.HashPassword, "pw123456"))
}

func TestPasswordReset_UnknownEmailSilent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	// Same nil error as for a known address, and no mail goes out.
	require.NoError(t, env.Reset.RequestReset(ctx, "nobody@example.com"))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, env.Mail.resetTokenFor("nobody@example.com"))

	var count int64
	require.NoError(t, env.DB.Model(&models.PasswordResetToken{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPasswordReset_TokenSingleUse(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.createConfirmedUser(t, "alice", "alice@example.com", "pw123456")

	require.NoError(t, env.Reset.RequestReset(ctx, "alice@example.com"))
	token := env.waitForResetToken(t, "alice@example.com")

	require.NoError(t, env.Reset.ConfirmReset(ctx, token, "newpw12345"))

	err := env.Reset.ConfirmReset(ctx, token, "thirdpw123")
	assert.ErrorIs(t, err, ErrResetTokenUsed)

	// Second attempt must not have touched the password.
	user, err2 := env.Repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err2)
	assert.True(t, hash.CheckPassword(user.HashPassword, "newpw12345"))
}

func TestPasswordReset_ExpiredToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.createConfirmedUser(t, "alice", "alice@example.com", "pw123456")

	require.NoError(t, env.Reset.RequestReset(ctx, "alice@example.com"))
	token := env.waitForResetToken(t, "alice@example.com")

	require.NoError(t, env.DB.Model(&models.PasswordResetToken{}).
		Where("token = ?", token).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	err := env.Reset.ConfirmReset(ctx, token, "newpw12345")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestPasswordReset_UnknownToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	err := env.Reset.ConfirmReset(context.Background(), "never-issued", "newpw12345")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestPasswordReset_UsedWinsOverExpired(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createConfirmedUser(t, "alice", "alice@example.com", "pw123456")

	prt := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     "seeded-token",
		ExpiresAt: time.Now().Add(-time.Minute),
		Used:      true,
	}
	require.NoError(t, env.Repo.SavePasswordResetToken(ctx, prt))

	// A token that is both used and expired reports used.
	err := env.Reset.ConfirmReset(ctx, "seeded-token", "newpw12345")
	assert.ErrorIs(t, err, ErrResetTokenUsed)
}

func TestPasswordReset_EvictsCachedSnapshot(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createConfirmedUser(t, "alice", "alice@example.com", "pw123456")

	_, err := env.Auth.Authenticate(ctx, "alice", "pw123456")
	require.NoError(t, err)

	require.NoError(t, env.Reset.RequestReset(ctx, "alice@example.com"))
	token := env.waitForResetToken(t, "alice@example.com")
	require.NoError(t, env.Reset.ConfirmReset(ctx, token, "newpw12345"))

	snap, err := env.Cache.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, snap)
}
