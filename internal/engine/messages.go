package engine

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"glasswork/internal/domain"
	"glasswork/internal/events"
)

const maxMessageLen = 5000

// SubmitMessage records a contact form submission.
func (e Engine) SubmitMessage(ctx context.Context, name, email, text string) (domain.Message, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	text = strings.TrimSpace(text)
	if name == "" {
		return domain.Message{}, invalid("name", "must not be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Message{}, invalid("email", "must be a valid address")
	}
	if text == "" {
		return domain.Message{}, invalid("message", "must not be empty")
	}
	if len(text) > maxMessageLen {
		return domain.Message{}, invalid("message", fmt.Sprintf("must not exceed %d characters", maxMessageLen))
	}

	var out domain.Message
	err := e.withRetry(ctx, func() error {
		var err error
		out, err = e.Repo.InsertMessage(ctx, domain.Message{
			CreatedAt:   e.nowStamp(),
			SenderName:  name,
			SenderEmail: email,
			MessageText: text,
		})
		return err
	})
	if err != nil {
		return domain.Message{}, err
	}
	return out, nil
}

// ListMessages returns inbox messages, newest first.
func (e Engine) ListMessages(ctx context.Context, unreadOnly bool) ([]domain.Message, error) {
	var out []domain.Message
	err := e.withRetry(ctx, func() error {
		var err error
		out, err = e.Repo.ListMessages(ctx, unreadOnly)
		return err
	})
	return out, err
}

// MarkMessageRead flips the read flag and returns the updated message.
func (e Engine) MarkMessageRead(ctx context.Context, id int64, read bool, actorID string) (domain.Message, error) {
	var out domain.Message
	err := e.withRetry(ctx, func() error {
		tx, err := e.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := e.Repo.SetMessageReadTx(ctx, tx, id, read); err != nil {
			return err
		}
		if err := e.Events.Append(ctx, tx, "message.read", "message", fmt.Sprint(id), actorID, events.EventPayload{
			"read": read,
		}); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		out, err = e.Repo.GetMessage(ctx, id)
		return err
	})
	if err != nil {
		return domain.Message{}, err
	}
	return out, nil
}

// DeleteMessage removes a message from the inbox.
func (e Engine) DeleteMessage(ctx context.Context, id int64, actorID string) error {
	return e.withRetry(ctx, func() error {
		tx, err := e.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := e.Repo.DeleteMessageTx(ctx, tx, id); err != nil {
			return err
		}
		if err := e.Events.Append(ctx, tx, "message.deleted", "message", fmt.Sprint(id), actorID, nil); err != nil {
			return err
		}
		return tx.Commit()
	})
}
