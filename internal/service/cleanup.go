package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AndriiVeremi/contacts-api/internal/repo"
)

const revokedRetention = 7 * 24 * time.Hour

// CleanupJob garbage-collects dead refresh and password reset tokens.
// Failures are logged and the next run proceeds regardless.
type CleanupJob struct {
	Repo *repo.GormRepo
	Log  *slog.Logger
}

func (j *CleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()
	cutoff := now.Add(-revokedRetention)

	if n, err := j.Repo.PurgeRefreshTokens(ctx, now, cutoff); err != nil {
		j.Log.Error("cleanup_refresh_tokens_failed", "error", err)
	} else if n > 0 {
		j.Log.Info("cleanup_refresh_tokens", "deleted", n)
	}

	if n, err := j.Repo.PurgePasswordResetTokens(ctx, now, cutoff); err != nil {
		j.Log.Error("cleanup_reset_tokens_failed", "error", err)
	} else if n > 0 {
		j.Log.Info("cleanup_reset_tokens", "deleted", n)
	}
}

// StartCleanup schedules the job hourly and returns the running scheduler.
func StartCleanup(r *repo.GormRepo, log *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	job := &CleanupJob{Repo: r, Log: log}
	if _, err := c.AddJob("@every 1h", job); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
