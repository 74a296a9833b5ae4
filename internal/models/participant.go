package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CheckInStatus is the participant's door state. Pending moves to CheckedIn once and never back.
type CheckInStatus string

const (
	StatusPending   CheckInStatus = "Pending"
	StatusCheckedIn CheckInStatus = "CheckedIn"
)

// UnknownParticipantName is used when the form has no field with the name role.
const UnknownParticipantName = "Unknown"

// Submission is a registration form submission keyed by form field id.
// Values are strings, numbers or booleans depending on the field type.
type Submission map[string]interface{}

// Text returns the value under key as trimmed text.
func (s Submission) Text(key string) string {
	if v, ok := s[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Filled reports whether the value under key counts as an answer.
// Blank strings and unchecked checkboxes are empty; zero is a valid number.
func (s Submission) Filled(key string) bool {
	switch v := s[key].(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case bool:
		return v
	default:
		return true
	}
}

// Participant is one registration against one event.
type Participant struct {
	ID            uuid.UUID     `json:"id"`
	EntryUUID     string        `json:"entry_uuid"`
	EventID       uuid.UUID     `json:"event_id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	TeamName      string        `json:"team_name,omitempty"`
	FormData      Submission    `json:"form_data"`
	CheckInStatus CheckInStatus `json:"check_in_status"`
	RegisteredAt  time.Time     `json:"registered_at"`
	CheckedInAt   *time.Time    `json:"checked_in_at,omitempty"`
}

// CheckedIn reports whether the participant has already been admitted.
func (p *Participant) CheckedIn() bool {
	return p.CheckInStatus == StatusCheckedIn
}
