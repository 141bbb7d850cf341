package engine

import (
	"context"

	"glasswork/internal/domain"
	"glasswork/internal/events"
	"glasswork/internal/repo"
)

// Profile returns the singleton profile row, creating it on first use.
func (e Engine) Profile(ctx context.Context) (domain.ProfileSettings, error) {
	var out domain.ProfileSettings
	err := e.withRetry(ctx, func() error {
		var err error
		out, err = e.Repo.EnsureProfile(ctx, e.nowStamp())
		return err
	})
	return out, err
}

// ProfileUpdateOptions carries partial profile edits. Nil fields keep
// their value; pointing at an empty string clears an optional link.
type ProfileUpdateOptions struct {
	Bio              *string
	GithubURL        *string
	LinkedinURL      *string
	CVURL            *string
	CertificationURL *string
	ProfileImageURL  *string
	ActorID          string
}

func (e Engine) UpdateProfile(ctx context.Context, opts ProfileUpdateOptions) (domain.ProfileSettings, error) {
	for field, raw := range map[string]*string{
		"github_url":        opts.GithubURL,
		"linkedin_url":      opts.LinkedinURL,
		"cv_url":            opts.CVURL,
		"certification_url": opts.CertificationURL,
		"profile_image_url": opts.ProfileImageURL,
	} {
		if raw == nil {
			continue
		}
		if err := validateURL(field, *raw); err != nil {
			return domain.ProfileSettings{}, err
		}
	}

	var out domain.ProfileSettings
	err := e.withRetry(ctx, func() error {
		now := e.nowStamp()
		profile, err := e.Repo.EnsureProfile(ctx, now)
		if err != nil {
			return err
		}

		tx, err := e.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		patch := repo.ProfilePatch{
			Bio:              opts.Bio,
			GithubURL:        opts.GithubURL,
			LinkedinURL:      opts.LinkedinURL,
			CVURL:            opts.CVURL,
			CertificationURL: opts.CertificationURL,
			ProfileImageURL:  opts.ProfileImageURL,
		}
		if err := e.Repo.UpdateProfileTx(ctx, tx, profile.ID, patch, now); err != nil {
			return err
		}
		if err := e.Events.Append(ctx, tx, "profile.updated", "profile", "", opts.ActorID, events.EventPayload{
			"fields": changedProfileFields(opts),
		}); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		out, err = e.Repo.GetProfile(ctx)
		return err
	})
	if err != nil {
		return domain.ProfileSettings{}, err
	}
	return out, nil
}

func changedProfileFields(opts ProfileUpdateOptions) []string {
	var fields []string
	if opts.Bio != nil {
		fields = append(fields, "bio")
	}
	if opts.GithubURL != nil {
		fields = append(fields, "github_url")
	}
	if opts.LinkedinURL != nil {
		fields = append(fields, "linkedin_url")
	}
	if opts.CVURL != nil {
		fields = append(fields, "cv_url")
	}
	if opts.CertificationURL != nil {
		fields = append(fields, "certification_url")
	}
	if opts.ProfileImageURL != nil {
		fields = append(fields, "profile_image_url")
	}
	return fields
}
