package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"glasswork/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

// --- status log (append-only) ---

func (r Repo) InsertStatusTx(ctx context.Context, tx *sql.Tx, s domain.StatusLog) (domain.StatusLog, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO status_logs(created_at,status_text,is_active) VALUES (?,?,?)`,
		s.CreatedAt, s.StatusText, boolInt(s.IsActive))
	if err != nil {
		return s, wrapErr("insert status", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return s, wrapErr("insert status", err)
	}
	s.ID = id
	return s, nil
}

func (r Repo) LatestStatus(ctx context.Context) (domain.StatusLog, error) {
	var s domain.StatusLog
	var active int
	err := r.DB.QueryRowContext(ctx, `SELECT id,created_at,status_text,is_active FROM status_logs ORDER BY created_at DESC, id DESC LIMIT 1`).
		Scan(&s.ID, &s.CreatedAt, &s.StatusText, &active)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	if err != nil {
		return s, wrapErr("latest status", err)
	}
	s.IsActive = active != 0
	return s, nil
}

func (r Repo) StatusHistory(ctx context.Context, limit int) ([]domain.StatusLog, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,created_at,status_text,is_active FROM status_logs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, wrapErr("status history", err)
	}
	defer rows.Close()
	var res []domain.StatusLog
	for rows.Next() {
		var s domain.StatusLog
		var active int
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.StatusText, &active); err != nil {
			return nil, wrapErr("status history", err)
		}
		s.IsActive = active != 0
		res = append(res, s)
	}
	return res, wrapErr("status history", rows.Err())
}

// StatusAfter returns log rows with IDs greater than the cursor in ascending
// order. Backs the subscription feed.
func (r Repo) StatusAfter(ctx context.Context, cursor int64, limit int) ([]domain.StatusLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT id,created_at,status_text,is_active FROM status_logs WHERE id>? ORDER BY id ASC LIMIT ?`, cursor, limit)
	if err != nil {
		return nil, wrapErr("status after", err)
	}
	defer rows.Close()
	var res []domain.StatusLog
	for rows.Next() {
		var s domain.StatusLog
		var active int
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.StatusText, &active); err != nil {
			return nil, wrapErr("status after", err)
		}
		s.IsActive = active != 0
		res = append(res, s)
	}
	return res, wrapErr("status after", rows.Err())
}

// LatestStatusID returns the most recent status log ID, 0 when empty.
func (r Repo) LatestStatusID(ctx context.Context) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `SELECT COALESCE(MAX(id),0) FROM status_logs`).Scan(&id)
	if err != nil {
		return 0, wrapErr("latest status id", err)
	}
	return id, nil
}

// --- profile settings (single row, updated in place) ---

func scanProfile(scan func(dest ...any) error) (domain.ProfileSettings, error) {
	var p domain.ProfileSettings
	var bio, github, linkedin sql.NullString
	var cv, cert, img sql.NullString
	var looking int
	err := scan(&p.ID, &bio, &looking, &github, &linkedin, &cv, &cert, &img, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, wrapErr("scan profile", err)
	}
	p.Bio = bio.String
	p.IsLookingForWork = looking != 0
	p.GithubURL = github.String
	p.LinkedinURL = linkedin.String
	p.CVURL = nullStrPtr(cv)
	p.CertificationURL = nullStrPtr(cert)
	p.ProfileImageURL = nullStrPtr(img)
	return p, nil
}

const profileCols = `id,bio,is_looking_for_work,github_url,linkedin_url,cv_url,certification_url,profile_image_url,updated_at`

func (r Repo) GetProfile(ctx context.Context) (domain.ProfileSettings, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+profileCols+` FROM profile_settings ORDER BY id ASC LIMIT 1`)
	return scanProfile(row.Scan)
}

// EnsureProfile seeds the single settings row when missing.
func (r Repo) EnsureProfile(ctx context.Context, now string) (domain.ProfileSettings, error) {
	p, err := r.GetProfile(ctx)
	if err == nil {
		return p, nil
	}
	if err != ErrNotFound {
		return p, err
	}
	res, err := r.DB.ExecContext(ctx, `INSERT INTO profile_settings(is_looking_for_work,updated_at) VALUES (0,?)`, now)
	if err != nil {
		return p, wrapErr("seed profile", err)
	}
	id, _ := res.LastInsertId()
	return domain.ProfileSettings{ID: id, UpdatedAt: now}, nil
}

// ProfilePatch lists optional field updates; nil means leave unchanged.
type ProfilePatch struct {
	Bio              *string
	GithubURL        *string
	LinkedinURL      *string
	CVURL            *string
	CertificationURL *string
	ProfileImageURL  *string
	IsLookingForWork *bool
}

func (r Repo) UpdateProfile(ctx context.Context, id int64, patch ProfilePatch, now string) error {
	return r.updateProfile(ctx, nil, id, patch, now)
}

func (r Repo) UpdateProfileTx(ctx context.Context, tx *sql.Tx, id int64, patch ProfilePatch, now string) error {
	return r.updateProfile(ctx, tx, id, patch, now)
}

func (r Repo) updateProfile(ctx context.Context, tx *sql.Tx, id int64, patch ProfilePatch, now string) error {
	var (
		fields []string
		args   []any
	)
	appendField := func(name string, v any) {
		fields = append(fields, name+"=?")
		args = append(args, v)
	}
	if patch.Bio != nil {
		appendField("bio", nullable(*patch.Bio))
	}
	if patch.GithubURL != nil {
		appendField("github_url", nullable(*patch.GithubURL))
	}
	if patch.LinkedinURL != nil {
		appendField("linkedin_url", nullable(*patch.LinkedinURL))
	}
	if patch.CVURL != nil {
		appendField("cv_url", nullable(*patch.CVURL))
	}
	if patch.CertificationURL != nil {
		appendField("certification_url", nullable(*patch.CertificationURL))
	}
	if patch.ProfileImageURL != nil {
		appendField("profile_image_url", nullable(*patch.ProfileImageURL))
	}
	if patch.IsLookingForWork != nil {
		appendField("is_looking_for_work", boolInt(*patch.IsLookingForWork))
	}
	if len(fields) == 0 {
		return nil
	}
	appendField("updated_at", now)
	args = append(args, id)
	query := `UPDATE profile_settings SET ` + strings.Join(fields, ",") + ` WHERE id=?`
	var (
		res sql.Result
		err error
	)
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, args...)
	} else {
		res, err = r.DB.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return wrapErr("update profile", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- helpers ---

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullStrPtr(v sql.NullString) *string {
	if !v.Valid || v.String == "" {
		return nil
	}
	s := v.String
	return &s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func marshalTags(tags []string) (any, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalTags(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw.String), &tags); err != nil {
		return nil
	}
	return tags
}
