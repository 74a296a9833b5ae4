package models

import (
	"time"

	"github.com/google/uuid"
)

// FieldType is the input kind of a registration form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldTextarea FieldType = "textarea"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldEmail, FieldNumber, FieldSelect, FieldCheckbox, FieldTextarea:
		return true
	}
	return false
}

// FieldRole tags a form field with the participant attribute it supplies.
// It is chosen when the form is designed; registration never guesses from labels.
type FieldRole string

const (
	FieldRoleNone     FieldRole = "none"
	FieldRoleName     FieldRole = "name"
	FieldRoleEmail    FieldRole = "email"
	FieldRoleTeamName FieldRole = "teamName"
)

// Valid reports whether r is a known role. The empty role means none.
func (r FieldRole) Valid() bool {
	switch r {
	case "", FieldRoleNone, FieldRoleName, FieldRoleEmail, FieldRoleTeamName:
		return true
	}
	return false
}

// FormField is one field in an event's registration form (admin-defined).
type FormField struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"` // select only
	Role     FieldRole `json:"role,omitempty"`
}

// EventType distinguishes solo registrations from team registrations.
type EventType string

const (
	EventIndividual EventType = "individual"
	EventTeam       EventType = "team"
)

// Event is an activity accepting registrations.
type Event struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Date        string      `json:"date"` // calendar date, stored as entered
	Location    string      `json:"location"`
	EventType   EventType   `json:"event_type"`
	MaxTeamSize *int        `json:"max_team_size,omitempty"`
	FormFields  []FormField `json:"form_fields"`
	CreatedAt   time.Time   `json:"created_at"`
}

// IsTeam reports whether the event registers teams.
func (e *Event) IsTeam() bool {
	return e.EventType == EventTeam
}

// FieldByRole returns the first form field carrying role r.
func (e *Event) FieldByRole(r FieldRole) (FormField, bool) {
	for _, f := range e.FormFields {
		if f.Role == r {
			return f, true
		}
	}
	return FormField{}, false
}
