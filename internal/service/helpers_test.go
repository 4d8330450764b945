package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/AndriiVeremi/contacts-api/internal/cache"
	"github.com/AndriiVeremi/contacts-api/internal/hash"
	"github.com/AndriiVeremi/contacts-api/internal/models"
	"github.com/AndriiVeremi/contacts-api/internal/repo"
)

type fakeMail struct {
	mu            sync.Mutex
	confirmations []string
	resets        map[string]string // email -> token
}

func newFakeMail() *fakeMail {
	return &fakeMail{resets: make(map[string]string)}
}

func (f *fakeMail) SendConfirmation(to, username, host, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, to)
	return nil
}

func (f *fakeMail) SendPasswordReset(to, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets[to] = token
	return nil
}

func (f *fakeMail) resetTokenFor(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resets[email]
}

type testEnv struct {
	DB    *gorm.DB
	Repo  *repo.GormRepo
	Redis *miniredis.Miniredis
	Cache *cache.UserCache
	Deny  *cache.DenyList
	Mail  *fakeMail
	Auth  *AuthService
	Reset *PasswordResetService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Contact{},
		&models.RefreshToken{},
		&models.PasswordResetToken{},
	))

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	r := repo.New(db)
	userCache := cache.NewUserCache(rdb)
	denyList := cache.NewDenyList(rdb)
	mailer := newFakeMail()

	auth := NewAuthService(r, userCache, denyList, []byte("test-secret"), 15*time.Minute, 7*24*time.Hour)
	auth.Mail = mailer

	return &testEnv{
		DB:    db,
		Repo:  r,
		Redis: mr,
		Cache: userCache,
		Deny:  denyList,
		Mail:  mailer,
		Auth:  auth,
		Reset: NewPasswordResetService(r, userCache, mailer),
	}
}

func (env *testEnv) createConfirmedUser(t *testing.T, username, email, password string) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        email,
		HashPassword: pwHash,
		Role:         models.RoleUser,
		Confirmed:    true,
	}
	require.NoError(t, env.Repo.CreateUser(context.Background(), user))
	return user
}
