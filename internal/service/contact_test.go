package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndriiVeremi/contacts-api/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestContactService_CRUD(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createConfirmedUser(t, "alice", "alice@example.com", "pw123456")
	svc := NewContactService(env.Repo)

	created, err := svc.CreateContact(ctx, ContactData{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
		Phone:     "+380501112233",
		Birthday:  date(1990, time.March, 14),
	}, user)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := svc.GetContact(ctx, created.ID, user)
	require.NoError(t, err)
	assert.Equal(t, "John", got.FirstName)

	updated, err := svc.UpdateContact(ctx, created.ID, ContactData{
		FirstName: "Johnny",
		LastName:  "Doe",
		Email:     "john@example.com",
		Phone:     "+380501112233",
		Birthday:  date(1990, time.March, 14),
		ExtraInfo: "met at conference",
	}, user)
	require.NoError(t, err)
	assert.Equal(t, "Johnny", updated.FirstName)
	assert.Equal(t, "met at conference", updated.ExtraInfo)

	require.NoError(t, svc.RemoveContact(ctx, created.ID, user))

	_, err = svc.GetContact(ctx, created.ID, user)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactService_OwnershipScoping(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createConfirmedUser(t, "alice", "alice@example.com", "pw123456")
	bob := env.createConfirmedUser(t, "bob", "bob@example.com", "pw123456")
	svc := NewContactService(env.Repo)

	created, err := svc.CreateContact(ctx, ContactData{
		FirstName: "John", LastName: "Doe", Email: "john@example.com",
	}, alice)
	require.NoError(t, err)

	_, err = svc.GetContact(ctx, created.ID, bob)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateContact(ctx, created.ID, ContactData{FirstName: "Hijacked"}, bob)
	assert.ErrorIs(t, err, ErrNotFound)

	// Removing someone else's contact is a no-op for the caller.
	require.NoError(t, svc.RemoveContact(ctx, created.ID, bob))

	got, err := svc.GetContact(ctx, created.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "John", got.FirstName)
}

func TestContactService_ListPagination(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createConfirmedUser(t, "alice", "alice@example.com", "pw123456")
	svc := NewContactService(env.Repo)

	for i := 0; i < 5; i++ {
		_, err := svc.CreateContact(ctx, ContactData{
			FirstName: "Contact",
			LastName:  string(rune('A' + i)),
			Email:     "c@example.com",
		}, user)
		require.NoError(t, err)
	}

	page, err := svc.GetContacts(ctx, user, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := svc.GetContacts(ctx, user, 10, 4)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

type failingSearcher struct{}

func (failingSearcher) IndexContact(context.Context, *models.Contact) error { return nil }
func (failingSearcher) DeleteContact(context.Context, uint) error           { return nil }
func (failingSearcher) Search(context.Context, uint, string, string, string) ([]models.Contact, error) {
	return nil, errors.New("index unavailable")
}

func TestContactService_SearchFallsBackToSQL(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createConfirmedUser(t, "alice", "alice@example.com", "pw123456")
	svc := NewContactService(env.Repo)
	svc.Searcher = failingSearcher{}

	_, err := svc.CreateContact(ctx, ContactData{
		FirstName: "John", LastName: "Doe", Email: "john@example.com",
	}, user)
	require.NoError(t, err)
	_, err = svc.CreateContact(ctx, ContactData{
		FirstName: "Jane", LastName: "Roe", Email: "jane@example.com",
	}, user)
	require.NoError(t, err)

	found, err := svc.SearchContacts(ctx, user, "joh", "", "")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "John", found[0].FirstName)
}

func TestContactService_SearchScopedToUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createConfirmedUser(t, "alice", "alice@example.com", "pw123456")
	bob := env.createConfirmedUser(t, "bob", "bob@example.com", "pw123456")
	svc := NewContactService(env.Repo)

	_, err := svc.CreateContact(ctx, ContactData{
		FirstName: "John", LastName: "Doe", Email: "john@example.com",
	}, alice)
	require.NoError(t, err)

	found, err := svc.SearchContacts(ctx, bob, "john", "", "")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestBirthdayWithin(t *testing.T) {
	t.Parallel()

	today := date(2026, time.August, 30)

	tests := []struct {
		name      string
		birthday  time.Time
		days      int
		want      bool
		wantUntil int
	}{
		{name: "today", birthday: date(1990, time.August, 30), days: 7, want: true, wantUntil: 0},
		{name: "tomorrow", birthday: date(1990, time.August, 31), days: 7, want: true, wantUntil: 1},
		{name: "exactly at window edge", birthday: date(1990, time.September, 6), days: 7, want: true, wantUntil: 7},
		{name: "one past the window", birthday: date(1990, time.September, 7), days: 7, want: false, wantUntil: 8},
		{name: "yesterday wraps to next year", birthday: date(1990, time.August, 29), days: 7, want: false, wantUntil: 364},
		{name: "year wrap inside window", birthday: date(1985, time.January, 2), days: 7, wantUntil: 125, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, until := birthdayWithin(tt.birthday, today, tt.days)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantUntil, until)
		})
	}
}

func TestBirthdayWithin_NewYearWrap(t *testing.T) {
	t.Parallel()

	today := date(2026, time.December, 29)

	got, until := birthdayWithin(date(1990, time.January, 3), today, 7)
	assert.True(t, got)
	assert.Equal(t, 5, until)

	got, _ = birthdayWithin(date(1990, time.January, 6), today, 7)
	assert.False(t, got)
}

func TestContactService_GetUpcomingBirthdays(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createConfirmedUser(t, "alice", "alice@example.com", "pw123456")
	svc := NewContactService(env.Repo)

	now := time.Now()
	soon := now.AddDate(-30, 0, 3)
	far := now.AddDate(-30, 0, 40)

	_, err := svc.CreateContact(ctx, ContactData{
		FirstName: "Soon", LastName: "Person", Email: "soon@example.com", Birthday: soon,
	}, user)
	require.NoError(t, err)
	_, err = svc.CreateContact(ctx, ContactData{
		FirstName: "Far", LastName: "Person", Email: "far@example.com", Birthday: far,
	}, user)
	require.NoError(t, err)

	upcoming, err := svc.GetUpcomingBirthdays(ctx, user, 7)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "Soon", upcoming[0].FirstName)
}
