package glassworksdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a minimal Glasswork HTTP API client.
type Client struct {
	BaseURL     string
	APIKey      string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Status is the availability status API model.
type Status struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	IsOpen    bool   `json:"is_open"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Project is the showcase project API model.
type Project struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ImageURL     *string  `json:"image_url,omitempty"`
	GithubURL    *string  `json:"github_url,omitempty"`
	LiveURL      *string  `json:"live_url,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	DisplayOrder int      `json:"display_order"`
	CreatedAt    string   `json:"created_at"`
}

// Profile is the public profile API model.
type Profile struct {
	Bio              string  `json:"bio,omitempty"`
	IsLookingForWork bool    `json:"is_looking_for_work"`
	GithubURL        string  `json:"github_url,omitempty"`
	LinkedinURL      string  `json:"linkedin_url,omitempty"`
	CVURL            *string `json:"cv_url,omitempty"`
	CertificationURL *string `json:"certification_url,omitempty"`
	ProfileImageURL  *string `json:"profile_image_url,omitempty"`
}

// Message is the contact message API model.
type Message struct {
	ID          int64  `json:"id"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Message     string `json:"message"`
	IsRead      bool   `json:"is_read"`
	CreatedAt   string `json:"created_at"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// CurrentStatus returns the current availability status.
func (c *Client) CurrentStatus(ctx context.Context) (Status, error) {
	var resp Status
	err := c.do(ctx, http.MethodGet, "v1/status", nil, &resp)
	return resp, err
}

// StatusHistory returns up to limit status entries, newest first.
func (c *Client) StatusHistory(ctx context.Context, limit int) ([]Status, error) {
	endpoint := "v1/status/history"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var resp []Status
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// SetStatus sets the availability status. Requires credentials.
func (c *Client) SetStatus(ctx context.Context, status string) (Status, error) {
	var resp Status
	err := c.do(ctx, http.MethodPut, "v1/status", map[string]any{"status": status}, &resp)
	return resp, err
}

// Projects lists showcase projects in display order.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var resp []Project
	err := c.do(ctx, http.MethodGet, "v1/projects", nil, &resp)
	return resp, err
}

// Project fetches one project by id.
func (c *Client) Project(ctx context.Context, id int64) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("v1/projects/%d", id), nil, &resp)
	return resp, err
}

// MoveProject moves a project one slot. Requires credentials.
func (c *Client) MoveProject(ctx context.Context, id int64, direction string) ([]Project, error) {
	var resp []Project
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("v1/projects/%d/move", id),
		map[string]any{"direction": direction}, &resp)
	return resp, err
}

// Profile returns the public profile.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var resp Profile
	err := c.do(ctx, http.MethodGet, "v1/profile", nil, &resp)
	return resp, err
}

// SubmitMessage sends a contact form message. No credentials needed.
func (c *Client) SubmitMessage(ctx context.Context, name, email, message string) (Message, error) {
	body := map[string]any{
		"name":    name,
		"email":   email,
		"message": message,
	}
	var resp Message
	err := c.do(ctx, http.MethodPost, "v1/messages", body, &resp)
	return resp, err
}

// Messages lists inbox messages. Requires credentials.
func (c *Client) Messages(ctx context.Context, unreadOnly bool) ([]Message, error) {
	endpoint := "v1/messages"
	if unreadOnly {
		endpoint += "?unread=true"
	}
	var resp []Message
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.APIKey != "":
		req.Header.Set("X-Api-Key", c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
