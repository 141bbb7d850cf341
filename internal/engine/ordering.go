package engine

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"glasswork/internal/domain"
	"glasswork/internal/events"
	"glasswork/internal/repo"
)

// MoveDirection selects which neighbour a project swaps with.
type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// ProjectCreateOptions are parameters for creating a showcase project.
type ProjectCreateOptions struct {
	Title       string
	Description string
	ImageURL    string
	GithubURL   string
	LiveURL     string
	Tags        []string
	ActorID     string
}

// CreateProject appends a project at the end of the display order.
func (e Engine) CreateProject(ctx context.Context, opts ProjectCreateOptions) (domain.Project, error) {
	opts.Title = strings.TrimSpace(opts.Title)
	opts.Description = strings.TrimSpace(opts.Description)
	if opts.Title == "" {
		return domain.Project{}, invalid("title", "must not be empty")
	}
	if opts.Description == "" {
		return domain.Project{}, invalid("description", "must not be empty")
	}
	for field, raw := range map[string]string{
		"image_url":  opts.ImageURL,
		"github_url": opts.GithubURL,
		"live_url":   opts.LiveURL,
	} {
		if err := validateURL(field, raw); err != nil {
			return domain.Project{}, err
		}
	}

	var out domain.Project
	err := e.withRetry(ctx, func() error {
		tx, err := e.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		max, err := e.Repo.MaxDisplayOrderTx(ctx, tx)
		if err != nil {
			return err
		}
		out, err = e.Repo.InsertProjectTx(ctx, tx, domain.Project{
			CreatedAt:    e.nowStamp(),
			Title:        opts.Title,
			Description:  opts.Description,
			ImageURL:     optional(opts.ImageURL),
			GithubURL:    optional(opts.GithubURL),
			LiveURL:      optional(opts.LiveURL),
			Tags:         opts.Tags,
			DisplayOrder: max + 1,
		})
		if err != nil {
			return err
		}
		if err := e.Events.Append(ctx, tx, "project.created", "project", fmt.Sprint(out.ID), opts.ActorID, events.EventPayload{
			"title":         out.Title,
			"display_order": out.DisplayOrder,
		}); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return domain.Project{}, err
	}
	return out, nil
}

// ProjectUpdateOptions carries partial updates. Nil fields keep their value.
type ProjectUpdateOptions struct {
	Title       *string
	Description *string
	ImageURL    *string
	GithubURL   *string
	LiveURL     *string
	Tags        []string
	TagsSet     bool
	ActorID     string
}

// UpdateProject edits project content fields. Display order is not
// editable here; use MoveProject.
func (e Engine) UpdateProject(ctx context.Context, id int64, opts ProjectUpdateOptions) (domain.Project, error) {
	if opts.Title != nil {
		trimmed := strings.TrimSpace(*opts.Title)
		if trimmed == "" {
			return domain.Project{}, invalid("title", "must not be empty")
		}
		opts.Title = &trimmed
	}
	if opts.Description != nil {
		trimmed := strings.TrimSpace(*opts.Description)
		if trimmed == "" {
			return domain.Project{}, invalid("description", "must not be empty")
		}
		opts.Description = &trimmed
	}
	for field, raw := range map[string]*string{
		"image_url":  opts.ImageURL,
		"github_url": opts.GithubURL,
		"live_url":   opts.LiveURL,
	} {
		if raw == nil {
			continue
		}
		if err := validateURL(field, *raw); err != nil {
			return domain.Project{}, err
		}
	}

	var out domain.Project
	err := e.withRetry(ctx, func() error {
		tx, err := e.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := e.Repo.UpdateProjectTx(ctx, tx, id, repo.ProjectPatch{
			Title:       opts.Title,
			Description: opts.Description,
			ImageURL:    opts.ImageURL,
			GithubURL:   opts.GithubURL,
			LiveURL:     opts.LiveURL,
			Tags:        opts.Tags,
			TagsSet:     opts.TagsSet,
		}); err != nil {
			return err
		}
		if err := e.Events.Append(ctx, tx, "project.updated", "project", fmt.Sprint(id), opts.ActorID, events.EventPayload{
			"fields": changedProjectFields(opts),
		}); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		out, err = e.Repo.GetProject(ctx, id)
		return err
	})
	if err != nil {
		return domain.Project{}, err
	}
	return out, nil
}

// DeleteProject removes a project and closes the gap its position leaves,
// so the remaining projects stay numbered 1..N.
func (e Engine) DeleteProject(ctx context.Context, id int64, actorID string) error {
	return e.withRetry(ctx, func() error {
		tx, err := e.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		p, err := e.Repo.GetProjectTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := e.Repo.DeleteProjectTx(ctx, tx, id); err != nil {
			return err
		}
		if err := e.reconcileTx(ctx, tx); err != nil {
			return err
		}
		if err := e.Events.Append(ctx, tx, "project.deleted", "project", fmt.Sprint(id), actorID, events.EventPayload{
			"title": p.Title,
		}); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// ListProjects returns all projects ordered for display.
func (e Engine) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	err := e.withRetry(ctx, func() error {
		var err error
		out, err = e.Repo.ListProjects(ctx)
		return err
	})
	return out, err
}

// GetProject returns one project by id.
func (e Engine) GetProject(ctx context.Context, id int64) (domain.Project, error) {
	return e.Repo.GetProject(ctx, id)
}

// MoveProject swaps a project with its neighbour in the given direction.
// Moving the first project up or the last one down is a no-op. When the
// stored order is found corrupted it is reconciled first, then the move
// applies on the repaired sequence.
func (e Engine) MoveProject(ctx context.Context, id int64, dir MoveDirection, actorID string) ([]domain.Project, error) {
	if dir != MoveUp && dir != MoveDown {
		return nil, invalid("direction", `must be "up" or "down"`)
	}

	var out []domain.Project
	err := e.withRetry(ctx, func() error {
		tx, err := e.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		all, err := e.Repo.ListProjectsTx(ctx, tx)
		if err != nil {
			return err
		}
		if !isDense(all) {
			if err := e.renumberTx(ctx, tx, all, actorID); err != nil {
				return err
			}
		}

		idx := -1
		for i, p := range all {
			if p.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return repo.ErrNotFound
		}

		other := idx - 1
		if dir == MoveDown {
			other = idx + 1
		}
		if other < 0 || other >= len(all) {
			out = all
			return tx.Commit()
		}

		// Two-row swap: each project takes the neighbour's slot.
		a, b := all[idx], all[other]
		if err := e.Repo.SetDisplayOrderTx(ctx, tx, a.ID, other+1); err != nil {
			return err
		}
		if err := e.Repo.SetDisplayOrderTx(ctx, tx, b.ID, idx+1); err != nil {
			return err
		}

		out, err = e.Repo.ListProjectsTx(ctx, tx)
		if err != nil {
			return err
		}
		if !isDense(out) {
			return &OrderCorruptionError{Orders: orders(out)}
		}
		if err := e.Events.Append(ctx, tx, "project.moved", "project", fmt.Sprint(id), actorID, events.EventPayload{
			"direction": string(dir),
			"from":      idx + 1,
			"to":        other + 1,
		}); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReconcileProjects rewrites every display_order to the project's 1-based
// position in the current display listing. On an already dense sequence
// this changes nothing.
func (e Engine) ReconcileProjects(ctx context.Context, actorID string) ([]domain.Project, error) {
	var out []domain.Project
	err := e.withRetry(ctx, func() error {
		tx, err := e.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		all, err := e.Repo.ListProjectsTx(ctx, tx)
		if err != nil {
			return err
		}
		if err := e.renumberTx(ctx, tx, all, actorID); err != nil {
			return err
		}
		out, err = e.Repo.ListProjectsTx(ctx, tx)
		if err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e Engine) reconcileTx(ctx context.Context, tx *sql.Tx) error {
	all, err := e.Repo.ListProjectsTx(ctx, tx)
	if err != nil {
		return err
	}
	return e.renumberTx(ctx, tx, all, "")
}

func (e Engine) renumberTx(ctx context.Context, tx *sql.Tx, all []domain.Project, actorID string) error {
	changed := 0
	for i, p := range all {
		want := i + 1
		if p.DisplayOrder == want {
			continue
		}
		if err := e.Repo.SetDisplayOrderTx(ctx, tx, p.ID, want); err != nil {
			return err
		}
		changed++
	}
	if changed > 0 {
		if err := e.Events.Append(ctx, tx, "project.reconciled", "project", "", actorID, events.EventPayload{
			"rewritten": changed,
		}); err != nil {
			return err
		}
	}
	return nil
}

func changedProjectFields(opts ProjectUpdateOptions) []string {
	var fields []string
	if opts.Title != nil {
		fields = append(fields, "title")
	}
	if opts.Description != nil {
		fields = append(fields, "description")
	}
	if opts.ImageURL != nil {
		fields = append(fields, "image_url")
	}
	if opts.GithubURL != nil {
		fields = append(fields, "github_url")
	}
	if opts.LiveURL != nil {
		fields = append(fields, "live_url")
	}
	if opts.TagsSet {
		fields = append(fields, "tags")
	}
	return fields
}

func isDense(all []domain.Project) bool {
	for i, p := range all {
		if p.DisplayOrder != i+1 {
			return false
		}
	}
	return true
}

func orders(all []domain.Project) []int {
	out := make([]int, len(all))
	for i, p := range all {
		out[i] = p.DisplayOrder
	}
	return out
}

func validateURL(field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalid(field, "must be an http or https URL")
	}
	return nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
