package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Message priorities.
const (
	PriorityNormal = "Normal"
	PriorityUrgent = "Urgent"
)

// Notification types and audiences.
const (
	NotificationAnnouncement = "announcement"
	NotificationEvent        = "event"

	AudienceAll      = "All"
	AudienceStudents = "Students"
	AudienceTeachers = "Teachers"
)

// Attachment references an uploaded file served under /uploads.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Reply is a threaded answer to a message.
type Reply struct {
	ID       string    `json:"id"`
	Sender   string    `json:"sender"`
	Message  string    `json:"message"`
	DateTime time.Time `json:"dateTime"`
}

// Attachments is persisted as a JSONB array.
type Attachments []Attachment

// Replies is persisted as a JSONB array.
type Replies []Reply

// Value marshals attachments to JSON for persistence.
func (a Attachments) Value() (driver.Value, error) {
	if a == nil {
		a = Attachments{}
	}
	return marshalJSONB(a, "attachments")
}

// Scan unmarshals a JSON array of attachments.
func (a *Attachments) Scan(value interface{}) error {
	*a = Attachments{}
	return scanJSONB(value, a, "attachments")
}

// Value marshals replies to JSON for persistence.
func (r Replies) Value() (driver.Value, error) {
	if r == nil {
		r = Replies{}
	}
	return marshalJSONB(r, "replies")
}

// Scan unmarshals a JSON array of replies.
func (r *Replies) Scan(value interface{}) error {
	*r = Replies{}
	return scanJSONB(value, r, "replies")
}

// Message is an internal mail item between staff and students.
type Message struct {
	ID          string      `json:"id" db:"id"`
	Sender      string      `json:"sender" db:"sender"`
	Receiver    string      `json:"receiver" db:"receiver"`
	Subject     string      `json:"subject" db:"subject"`
	Message     string      `json:"message" db:"message"`
	Attachments Attachments `json:"attachments" db:"attachments"`
	Priority    string      `json:"priority" db:"priority"`
	Category    string      `json:"category" db:"category"`
	Read        bool        `json:"read" db:"is_read"`
	Pinned      bool        `json:"pinned" db:"pinned"`
	Liked       bool        `json:"liked" db:"liked"`
	Replies     Replies     `json:"replies" db:"replies"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// MessageFilter narrows message listings.
type MessageFilter struct {
	Receiver   string
	UnreadOnly bool
	Search     string
}

// MessageFlags carries the toggles a reader may change. Nil leaves a flag unchanged.
type MessageFlags struct {
	Read   *bool `json:"read"`
	Pinned *bool `json:"pinned"`
	Liked  *bool `json:"liked"`
}

// Notification is a broadcast announcement or event.
type Notification struct {
	ID        string    `json:"id" db:"id"`
	Type      string    `json:"type" db:"type"`
	Message   string    `json:"message" db:"message"`
	Date      string    `json:"date" db:"date"`
	Audience  string    `json:"audience" db:"audience"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

func marshalJSONB(v interface{}, name string) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", name, err)
	}
	return data, nil
}

func scanJSONB(value interface{}, dest interface{}, name string) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, name)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}
