package engine

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"glasswork/internal/domain"
	"glasswork/internal/events"
	"glasswork/internal/repo"
)

// CreateAPIKey mints a new API key for an actor. The raw key is returned
// exactly once; only its hash is stored.
func (e Engine) CreateAPIKey(ctx context.Context, actorID, name string) (domain.APIKey, string, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return domain.APIKey{}, "", invalid("actor", "must not be empty")
	}
	raw := "gw_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	key := domain.APIKey{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Name:      strings.TrimSpace(name),
		KeyHash:   repo.HashAPIKey(raw),
		CreatedAt: e.nowStamp(),
	}
	err := e.withRetry(ctx, func() error {
		tx, err := e.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := e.Repo.InsertAPIKeyTx(ctx, tx, key); err != nil {
			return err
		}
		if err := e.Events.Append(ctx, tx, "apikey.created", "apikey", key.ID, actorID, events.EventPayload{
			"name": key.Name,
		}); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return domain.APIKey{}, "", err
	}
	return key, raw, nil
}

func (e Engine) ListAPIKeys(ctx context.Context, actorID string) ([]domain.APIKey, error) {
	return e.Repo.ListAPIKeys(ctx, actorID)
}

func (e Engine) RevokeAPIKey(ctx context.Context, id, actorID string) error {
	return e.withRetry(ctx, func() error {
		tx, err := e.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := e.Repo.DeleteAPIKeyTx(ctx, tx, id); err != nil {
			return err
		}
		if err := e.Events.Append(ctx, tx, "apikey.revoked", "apikey", id, actorID, nil); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// RecentEvents lists audit log entries, newest first.
func (e Engine) RecentEvents(ctx context.Context, limit int, cursor int64, evtType string) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	return e.Repo.LatestEvents(ctx, limit, cursor, evtType)
}
