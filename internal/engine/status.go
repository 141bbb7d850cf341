package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"glasswork/internal/domain"
	"glasswork/internal/events"
	"glasswork/internal/repo"
)

const maxStatusLen = 120

// DefaultStatus is reported when no status was ever logged.
const DefaultStatus = string(domain.StatusOffline)

// SetStatus records a new availability status. Setting the value that is
// already current is a no-op and returns the existing log entry.
//
// The operation performs two writes: the profile availability flag first,
// then the status log entry. When the flag lands but the log write fails
// the caller gets a PartialWriteError; rerunning SetStatus with the same
// value converges both writes.
func (e Engine) SetStatus(ctx context.Context, value, actorID string) (domain.StatusLog, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.StatusLog{}, invalid("status", "must not be empty")
	}
	if len(value) > maxStatusLen {
		return domain.StatusLog{}, invalid("status", fmt.Sprintf("must not exceed %d characters", maxStatusLen))
	}

	var out domain.StatusLog
	var created bool
	err := e.withRetry(ctx, func() error {
		var err error
		out, created, err = e.setStatusOnce(ctx, value, actorID)
		return err
	})
	if err != nil {
		return domain.StatusLog{}, err
	}
	if created {
		e.broker.publish(out)
	}
	return out, nil
}

func (e Engine) setStatusOnce(ctx context.Context, value, actorID string) (domain.StatusLog, bool, error) {
	now := e.nowStamp()
	profile, err := e.Repo.EnsureProfile(ctx, now)
	if err != nil {
		return domain.StatusLog{}, false, err
	}

	current, err := e.Repo.LatestStatus(ctx)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return domain.StatusLog{}, false, err
	}
	if err == nil && current.IsActive && current.StatusText == value {
		return current, false, nil
	}

	// First write: the availability flag on the profile.
	open := domain.StatusValue(value).IsOpen()
	if err := e.Repo.UpdateProfile(ctx, profile.ID, repo.ProfilePatch{IsLookingForWork: &open}, now); err != nil {
		return domain.StatusLog{}, false, err
	}

	// Second write: the log entry, with its audit event.
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.StatusLog{}, false, partialStatus(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE status_logs SET is_active=0 WHERE is_active=1`); err != nil {
		return domain.StatusLog{}, false, partialStatus(err)
	}
	log, err := e.Repo.InsertStatusTx(ctx, tx, domain.StatusLog{
		CreatedAt:  now,
		StatusText: value,
		IsActive:   true,
	})
	if err != nil {
		return domain.StatusLog{}, false, partialStatus(err)
	}
	if err := e.Events.Append(ctx, tx, "status.changed", "status", fmt.Sprint(log.ID), actorID, events.EventPayload{
		"status":  value,
		"is_open": open,
	}); err != nil {
		return domain.StatusLog{}, false, partialStatus(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.StatusLog{}, false, partialStatus(err)
	}
	return log, true, nil
}

func partialStatus(err error) error {
	return &PartialWriteError{Op: "set status", Err: err}
}

// CurrentStatus returns the latest logged status, or the offline default
// when nothing was ever logged.
func (e Engine) CurrentStatus(ctx context.Context) (domain.StatusLog, error) {
	log, err := e.Repo.LatestStatus(ctx)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.StatusLog{StatusText: DefaultStatus}, nil
	}
	if err != nil {
		return domain.StatusLog{}, err
	}
	return log, nil
}

// StatusHistory returns up to limit log entries, newest first.
func (e Engine) StatusHistory(ctx context.Context, limit int) ([]domain.StatusLog, error) {
	if limit <= 0 {
		return nil, invalid("limit", "must be a positive integer")
	}
	var logs []domain.StatusLog
	err := e.withRetry(ctx, func() error {
		var err error
		logs, err = e.Repo.StatusHistory(ctx, limit)
		return err
	})
	return logs, err
}

// IsOpenToWork reports whether the current status means actively available.
func (e Engine) IsOpenToWork(ctx context.Context) (bool, error) {
	log, err := e.CurrentStatus(ctx)
	if err != nil {
		return false, err
	}
	return domain.StatusValue(log.StatusText).IsOpen(), nil
}
