package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AndriiVeremi/contacts-api/internal/logging"
	"github.com/AndriiVeremi/contacts-api/internal/models"
)

const DefaultTTL = time.Hour

// UserSnapshot is the denormalized copy of a user kept in Redis. It is a
// performance hint only; the credential store stays the source of truth.
type UserSnapshot struct {
	ID        uint            `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	Avatar    string          `json:"avatar"`
	Confirmed bool            `json:"confirmed"`
}

func SnapshotOf(u *models.User) *UserSnapshot {
	return &UserSnapshot{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Avatar:    u.Avatar,
		Confirmed: u.Confirmed,
	}
}

type UserCache struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewUserCache(rdb *redis.Client) *UserCache {
	return &UserCache{RDB: rdb, TTL: DefaultTTL}
}

func userKey(id uint) string { return fmt.Sprintf("user:%d", id) }

func usernameKey(name string) string { return "username:" + name }

// Set stores the snapshot and the username index under the same TTL so
// both entries expire together.
func (c *UserCache) Set(ctx context.Context, snap *UserSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	pipe := c.RDB.TxPipeline()
	pipe.Set(ctx, userKey(snap.ID), data, c.TTL)
	pipe.Set(ctx, usernameKey(snap.Username), strconv.FormatUint(uint64(snap.ID), 10), c.TTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *UserCache) Get(ctx context.Context, id uint) (*UserSnapshot, error) {
	data, err := c.RDB.Get(ctx, userKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap UserSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetByUsername resolves the username index first, then the snapshot.
// A broken index counts as a miss.
func (c *UserCache) GetByUsername(ctx context.Context, username string) (*UserSnapshot, error) {
	raw, err := c.RDB.Get(ctx, usernameKey(username)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, nil
	}
	return c.Get(ctx, uint(id))
}

// Delete drops the snapshot and its username index together.
func (c *UserCache) Delete(ctx context.Context, id uint, username string) error {
	return c.RDB.Del(ctx, userKey(id), usernameKey(username)).Err()
}

// LogMiss is a helper for call sites that treat cache errors as misses.
func LogMiss(ctx context.Context, op string, err error) {
	if err != nil {
		logging.FromContext(ctx).Warn("cache_degraded", "op", op, "error", err)
	}
}
