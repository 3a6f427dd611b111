package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

//go:generate go tool stringer -type=TaskStatus -linecomment

// IdentityField names the User attribute used as its public slug.
type IdentityField string

const (
	IdentityUsername IdentityField = "username"
	IdentityEmail    IdentityField = "email"
)

// ParseIdentityField validates a configured identity field name.
func ParseIdentityField(raw string) (IdentityField, error) {
	switch f := IdentityField(strings.ToLower(strings.TrimSpace(raw))); f {
	case IdentityUsername, IdentityEmail:
		return f, nil
	case "":
		return IdentityUsername, nil
	default:
		return "", fmt.Errorf("unsupported identity field %q", raw)
	}
}

// User is a board member that tasks can be assigned to.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `json:"is_active"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Identity returns the value of the given identity field.
func (u User) Identity(field IdentityField) string {
	if field == IdentityEmail {
		return u.Email
	}
	return u.Username
}

// SetIdentity assigns the value of the given identity field.
func (u *User) SetIdentity(field IdentityField, value string) {
	if field == IdentityEmail {
		u.Email = value
		return
	}
	u.Username = value
}

// Sprint is a time box that groups tasks.
type Sprint struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" validate:"max=100"`
	Description string    `json:"description"`
	End         time.Time `json:"end" validate:"required"`
}

// TaskStatus is the board column a task sits in.
type TaskStatus int

const (
	StatusNotStarted TaskStatus = iota + 1 // Not Started
	StatusInProgress                       // In Progress
	StatusTesting                          // Testing
	StatusDone                             // Done
)

// TaskStatuses lists every status in board order.
var TaskStatuses = []TaskStatus{StatusNotStarted, StatusInProgress, StatusTesting, StatusDone}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	return s >= StatusNotStarted && s <= StatusDone
}

// Task represents a single card in the scrum board.
type Task struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name" validate:"required,max=100"`
	Description string     `json:"description"`
	SprintID    null.Int64 `json:"sprint"`
	Status      TaskStatus `json:"status"`
	Order       int64      `json:"order"`
	Assigned    *User      `json:"assigned"`
	Started     null.Time  `json:"started"`
	Due         null.Time  `json:"due"`
	Completed   null.Time  `json:"completed"`
}

// StatusDisplay returns the human readable label of the task status.
func (t Task) StatusDisplay() string {
	return t.Status.String()
}

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"
