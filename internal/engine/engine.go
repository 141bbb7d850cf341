package engine

import (
	"context"
	"database/sql"
	"time"

	"glasswork/internal/config"
	"glasswork/internal/events"
	"glasswork/internal/repo"
)

const maxStoreRetries = 3

type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Config *config.Config
	Now    func() time.Time

	broker *broker
}

func New(db *sql.DB, cfg *config.Config) Engine {
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Config: cfg,
		Now:    time.Now,
		broker: newBroker(),
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) nowStamp() string {
	return e.now().UTC().Format(time.RFC3339)
}

// withRetry reruns fn on retryable store errors, up to maxStoreRetries
// attempts. Validation errors and other permanent failures pass through.
func (e Engine) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxStoreRetries; attempt++ {
		err = fn()
		if err == nil || !repo.IsRetryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 25 * time.Millisecond):
		}
	}
	return err
}
