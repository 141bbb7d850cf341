package server

import (
	"glasswork/internal/domain"
)

// Request payloads

type SetStatusRequest struct {
	Status string `json:"status"`
}

type CreateProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    *string  `json:"image_url,omitempty"`
	GithubURL   *string  `json:"github_url,omitempty"`
	LiveURL     *string  `json:"live_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type UpdateProjectRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	GithubURL   *string  `json:"github_url,omitempty"`
	LiveURL     *string  `json:"live_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type MoveProjectRequest struct {
	Direction string `json:"direction" enum:"up,down"`
}

type SubmitMessageRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email" format:"email"`
	Message string `json:"message"`
}

type UpdateProfileRequest struct {
	Bio              *string `json:"bio,omitempty"`
	GithubURL        *string `json:"github_url,omitempty"`
	LinkedinURL      *string `json:"linkedin_url,omitempty"`
	CVURL            *string `json:"cv_url,omitempty"`
	CertificationURL *string `json:"certification_url,omitempty"`
	ProfileImageURL  *string `json:"profile_image_url,omitempty"`
}

// Response payloads

type StatusResponse struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	IsOpen    bool   `json:"is_open"`
	CreatedAt string `json:"created_at,omitempty" format:"date-time"`
}

type ProjectResponse struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ImageURL     *string  `json:"image_url,omitempty"`
	GithubURL    *string  `json:"github_url,omitempty"`
	LiveURL      *string  `json:"live_url,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	DisplayOrder int      `json:"display_order"`
	CreatedAt    string   `json:"created_at" format:"date-time"`
}

type ProfileResponse struct {
	Bio              string  `json:"bio,omitempty"`
	IsLookingForWork bool    `json:"is_looking_for_work"`
	GithubURL        string  `json:"github_url,omitempty"`
	LinkedinURL      string  `json:"linkedin_url,omitempty"`
	CVURL            *string `json:"cv_url,omitempty"`
	CertificationURL *string `json:"certification_url,omitempty"`
	ProfileImageURL  *string `json:"profile_image_url,omitempty"`
	UpdatedAt        string  `json:"updated_at,omitempty" format:"date-time"`
}

type MessageResponse struct {
	ID          int64  `json:"id"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Message     string `json:"message"`
	IsRead      bool   `json:"is_read"`
	CreatedAt   string `json:"created_at" format:"date-time"`
}

type AssetResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func statusResponse(log domain.StatusLog) StatusResponse {
	return StatusResponse{
		ID:        log.ID,
		Status:    log.StatusText,
		IsOpen:    domain.StatusValue(log.StatusText).IsOpen(),
		CreatedAt: log.CreatedAt,
	}
}

func mapStatuses(logs []domain.StatusLog) []StatusResponse {
	out := make([]StatusResponse, 0, len(logs))
	for _, log := range logs {
		out = append(out, statusResponse(log))
	}
	return out
}

func projectResponse(p domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		GithubURL:    p.GithubURL,
		LiveURL:      p.LiveURL,
		Tags:         p.Tags,
		DisplayOrder: p.DisplayOrder,
		CreatedAt:    p.CreatedAt,
	}
}

func mapProjects(items []domain.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(items))
	for _, p := range items {
		out = append(out, projectResponse(p))
	}
	return out
}

func profileResponse(p domain.ProfileSettings) ProfileResponse {
	return ProfileResponse{
		Bio:              p.Bio,
		IsLookingForWork: p.IsLookingForWork,
		GithubURL:        p.GithubURL,
		LinkedinURL:      p.LinkedinURL,
		CVURL:            p.CVURL,
		CertificationURL: p.CertificationURL,
		ProfileImageURL:  p.ProfileImageURL,
		UpdatedAt:        p.UpdatedAt,
	}
}

func messageResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		SenderName:  m.SenderName,
		SenderEmail: m.SenderEmail,
		Message:     m.MessageText,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}

func mapMessages(items []domain.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, messageResponse(m))
	}
	return out
}
