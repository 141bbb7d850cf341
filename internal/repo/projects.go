package repo

import (
	"context"
	"database/sql"
	"strings"

	"glasswork/internal/domain"
)

const projectCols = `id,created_at,title,description,image_url,github_url,live_url,tags_json,display_order`

func scanProject(scan func(dest ...any) error) (domain.Project, error) {
	var p domain.Project
	var image, github, live, tags sql.NullString
	err := scan(&p.ID, &p.CreatedAt, &p.Title, &p.Description, &image, &github, &live, &tags, &p.DisplayOrder)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, wrapErr("scan project", err)
	}
	p.ImageURL = nullStrPtr(image)
	p.GithubURL = nullStrPtr(github)
	p.LiveURL = nullStrPtr(live)
	p.Tags = unmarshalTags(tags)
	return p, nil
}

func (r Repo) InsertProjectTx(ctx context.Context, tx *sql.Tx, p domain.Project) (domain.Project, error) {
	tags, err := marshalTags(p.Tags)
	if err != nil {
		return p, wrapErr("insert project", err)
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO projects(created_at,title,description,image_url,github_url,live_url,tags_json,display_order)
VALUES (?,?,?,?,?,?,?,?)`,
		p.CreatedAt, p.Title, p.Description, nullablePtr(p.ImageURL), nullablePtr(p.GithubURL), nullablePtr(p.LiveURL), tags, p.DisplayOrder)
	if err != nil {
		return p, wrapErr("insert project", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return p, wrapErr("insert project", err)
	}
	p.ID = id
	return p, nil
}

func (r Repo) GetProject(ctx context.Context, id int64) (domain.Project, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+projectCols+` FROM projects WHERE id=?`, id)
	return scanProject(row.Scan)
}

func (r Repo) GetProjectTx(ctx context.Context, tx *sql.Tx, id int64) (domain.Project, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+projectCols+` FROM projects WHERE id=?`, id)
	return scanProject(row.Scan)
}

func (r Repo) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return r.listProjects(ctx, r.DB.QueryContext)
}

func (r Repo) ListProjectsTx(ctx context.Context, tx *sql.Tx) ([]domain.Project, error) {
	return r.listProjects(ctx, tx.QueryContext)
}

func (r Repo) listProjects(ctx context.Context, query func(context.Context, string, ...any) (*sql.Rows, error)) ([]domain.Project, error) {
	rows, err := query(ctx, `SELECT `+projectCols+` FROM projects ORDER BY display_order ASC, id ASC`)
	if err != nil {
		return nil, wrapErr("list projects", err)
	}
	defer rows.Close()
	var res []domain.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, wrapErr("list projects", rows.Err())
}

// ProjectPatch lists optional field updates; nil means leave unchanged.
// display_order is deliberately absent: ordering changes go through
// SetDisplayOrderTx so the swap and densify paths stay explicit.
type ProjectPatch struct {
	Title       *string
	Description *string
	ImageURL    *string
	GithubURL   *string
	LiveURL     *string
	Tags        []string
	TagsSet     bool
}

func (r Repo) UpdateProject(ctx context.Context, id int64, patch ProjectPatch) error {
	return r.updateProject(ctx, nil, id, patch)
}

func (r Repo) UpdateProjectTx(ctx context.Context, tx *sql.Tx, id int64, patch ProjectPatch) error {
	return r.updateProject(ctx, tx, id, patch)
}

func (r Repo) updateProject(ctx context.Context, tx *sql.Tx, id int64, patch ProjectPatch) error {
	var (
		fields []string
		args   []any
	)
	if patch.Title != nil {
		fields = append(fields, "title=?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		fields = append(fields, "description=?")
		args = append(args, *patch.Description)
	}
	if patch.ImageURL != nil {
		fields = append(fields, "image_url=?")
		args = append(args, nullable(*patch.ImageURL))
	}
	if patch.GithubURL != nil {
		fields = append(fields, "github_url=?")
		args = append(args, nullable(*patch.GithubURL))
	}
	if patch.LiveURL != nil {
		fields = append(fields, "live_url=?")
		args = append(args, nullable(*patch.LiveURL))
	}
	if patch.TagsSet {
		tags, err := marshalTags(patch.Tags)
		if err != nil {
			return wrapErr("update project", err)
		}
		fields = append(fields, "tags_json=?")
		args = append(args, tags)
	}
	if len(fields) == 0 {
		return nil
	}
	args = append(args, id)
	query := `UPDATE projects SET ` + strings.Join(fields, ",") + ` WHERE id=?`
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
		return wrapErr("update project", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) SetDisplayOrderTx(ctx context.Context, tx *sql.Tx, id int64, order int) error {
	res, err := tx.ExecContext(ctx, `UPDATE projects SET display_order=? WHERE id=?`, order, id)
	if err != nil {
		return wrapErr("set display order", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteProjectTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id=?`, id)
	if err != nil {
		return wrapErr("delete project", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MaxDisplayOrderTx returns the current maximum display order, 0 when the
// collection is empty.
func (r Repo) MaxDisplayOrderTx(ctx context.Context, tx *sql.Tx) (int, error) {
	var max int
	err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(display_order),0) FROM projects`).Scan(&max)
	if err != nil {
		return 0, wrapErr("max display order", err)
	}
	return max, nil
}

func nullablePtr(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}
