package domain

// StatusValue is one of the recognized availability states. The status log
// stores free text, so unknown values still round-trip; they just never
// count as "open to work".
type StatusValue string

const (
	StatusOpenToWork StatusValue = "OPEN TO WORK"
	StatusBusy       StatusValue = "CURRENTLY BUSY"
	StatusOffline    StatusValue = "OFFLINE"
	StatusTravelling StatusValue = "TRAVELLING"
)

// KnownStatuses lists the recognized values in display order.
func KnownStatuses() []StatusValue {
	return []StatusValue{StatusOpenToWork, StatusBusy, StatusOffline, StatusTravelling}
}

// ParseStatus reports whether v is a recognized value. Unrecognized input is
// returned unchanged as a custom status.
func ParseStatus(v string) (StatusValue, bool) {
	for _, s := range KnownStatuses() {
		if string(s) == v {
			return s, true
		}
	}
	return StatusValue(v), false
}

// IsOpen derives the "looking for work" flag from a status value. Strict
// membership, not substring matching.
func (v StatusValue) IsOpen() bool {
	return v == StatusOpenToWork
}

type StatusLog struct {
	ID         int64  `json:"id"`
	CreatedAt  string `json:"created_at" format:"date-time"`
	StatusText string `json:"status_text"`
	IsActive   bool   `json:"is_active"`
}

type ProfileSettings struct {
	ID               int64   `json:"id"`
	Bio              string  `json:"bio,omitempty"`
	IsLookingForWork bool    `json:"is_looking_for_work"`
	GithubURL        string  `json:"github_url,omitempty"`
	LinkedinURL      string  `json:"linkedin_url,omitempty"`
	CVURL            *string `json:"cv_url,omitempty"`
	CertificationURL *string `json:"certification_url,omitempty"`
	ProfileImageURL  *string `json:"profile_image_url,omitempty"`
	UpdatedAt        string  `json:"updated_at" format:"date-time"`
}

type Project struct {
	ID           int64    `json:"id"`
	CreatedAt    string   `json:"created_at" format:"date-time"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ImageURL     *string  `json:"image_url,omitempty"`
	GithubURL    *string  `json:"github_url,omitempty"`
	LiveURL      *string  `json:"live_url,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	DisplayOrder int      `json:"display_order"`
}

type Message struct {
	ID          int64  `json:"id"`
	CreatedAt   string `json:"created_at" format:"date-time"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	MessageText string `json:"message_text"`
	IsRead      bool   `json:"is_read"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

type APIKey struct {
	ID        string `json:"id"`
	ActorID   string `json:"actor_id"`
	Name      string `json:"name,omitempty"`
	KeyHash   string `json:"key_hash"`
	CreatedAt string `json:"created_at" format:"date-time"`
}
