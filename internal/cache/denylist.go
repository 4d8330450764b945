package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DenyList tracks revoked access tokens until their natural expiry, so the
// registry never accumulates entries for tokens that are already dead.
type DenyList struct {
	RDB *redis.Client
}

func NewDenyList(rdb *redis.Client) *DenyList {
	return &DenyList{RDB: rdb}
}

func denyKey(token string) string { return "bl:" + token }

// Revoke adds the token for the remaining lifetime. Tokens with no
// remaining lifetime are already unusable and are skipped.
func (d *DenyList) Revoke(ctx context.Context, token string, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}
	return d.RDB.Set(ctx, denyKey(token), "1", remaining).Err()
}

func (d *DenyList) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := d.RDB.Exists(ctx, denyKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
