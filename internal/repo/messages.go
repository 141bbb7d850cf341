package repo

import (
	"context"
	"database/sql"

	"glasswork/internal/domain"
)

func (r Repo) InsertMessage(ctx context.Context, m domain.Message) (domain.Message, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO messages(created_at,sender_name,sender_email,message_text,is_read) VALUES (?,?,?,?,0)`,
		m.CreatedAt, m.SenderName, m.SenderEmail, m.MessageText)
	if err != nil {
		return m, wrapErr("insert message", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return m, wrapErr("insert message", err)
	}
	m.ID = id
	m.IsRead = false
	return m, nil
}

func (r Repo) GetMessage(ctx context.Context, id int64) (domain.Message, error) {
	var m domain.Message
	var read int
	err := r.DB.QueryRowContext(ctx, `SELECT id,created_at,sender_name,sender_email,message_text,is_read FROM messages WHERE id=?`, id).
		Scan(&m.ID, &m.CreatedAt, &m.SenderName, &m.SenderEmail, &m.MessageText, &read)
	if err == sql.ErrNoRows {
		return m, ErrNotFound
	}
	if err != nil {
		return m, wrapErr("get message", err)
	}
	m.IsRead = read != 0
	return m, nil
}

// ListMessages returns messages most-recent-first, optionally only unread.
func (r Repo) ListMessages(ctx context.Context, unreadOnly bool) ([]domain.Message, error) {
	query := `SELECT id,created_at,sender_name,sender_email,message_text,is_read FROM messages`
	if unreadOnly {
		query += ` WHERE is_read=0`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapErr("list messages", err)
	}
	defer rows.Close()
	var res []domain.Message
	for rows.Next() {
		var m domain.Message
		var read int
		if err := rows.Scan(&m.ID, &m.CreatedAt, &m.SenderName, &m.SenderEmail, &m.MessageText, &read); err != nil {
			return nil, wrapErr("list messages", err)
		}
		m.IsRead = read != 0
		res = append(res, m)
	}
	return res, wrapErr("list messages", rows.Err())
}

func (r Repo) SetMessageRead(ctx context.Context, id int64, read bool) error {
	return r.setMessageRead(ctx, nil, id, read)
}

func (r Repo) SetMessageReadTx(ctx context.Context, tx *sql.Tx, id int64, read bool) error {
	return r.setMessageRead(ctx, tx, id, read)
}

func (r Repo) setMessageRead(ctx context.Context, tx *sql.Tx, id int64, read bool) error {
	const query = `UPDATE messages SET is_read=? WHERE id=?`
	var (
		res sql.Result
		err error
	)
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, boolInt(read), id)
	} else {
		res, err = r.DB.ExecContext(ctx, query, boolInt(read), id)
	}
	if err != nil {
		return wrapErr("set message read", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteMessage(ctx context.Context, id int64) error {
	return r.deleteMessage(ctx, nil, id)
}

func (r Repo) DeleteMessageTx(ctx context.Context, tx *sql.Tx, id int64) error {
	return r.deleteMessage(ctx, tx, id)
}

func (r Repo) deleteMessage(ctx context.Context, tx *sql.Tx, id int64) error {
	const query = `DELETE FROM messages WHERE id=?`
	var (
		res sql.Result
		err error
	)
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, id)
	} else {
		res, err = r.DB.ExecContext(ctx, query, id)
	}
	if err != nil {
		return wrapErr("delete message", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
