package model

import (
	"time"
)

// User represents a portal user. Users authenticated against the workflow
// database carry AuthProvider "workflow" and an unusable password hash.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	AuthProvider string    `json:"auth_provider"` // local, workflow
	IsActive     bool      `json:"is_active"`
	Groups       []string  `json:"groups"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser creates a user with default values.
func NewUser(username string) *User {
	now := time.Now().UTC()
	return &User{
		Username:     username,
		AuthProvider: "local",
		IsActive:     true,
		Groups:       []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// InGroup checks membership of a single group.
func (u *User) InGroup(name string) bool {
	for _, g := range u.Groups {
		if g == name {
			return true
		}
	}
	return false
}

// Group is a named permission bundle. The fixed set is seeded by the
// bootstrap routine; memberships come from the workflow database or from
// local administration.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Default group names, matching the workflow engine's coordinator groups.
const (
	GroupAdmin             = "admin"
	GroupCircleHead        = "circleHead"
	GroupCircleCoordinator = "circleCoordinator"
	GroupSurveyCoordinator = "surveyCoordinator"
	GroupDesignCoordinator = "designCoordinator"
	GroupViewer            = "viewer"
)

// DefaultGroups returns the fixed group set in seed order.
func DefaultGroups() []Group {
	return []Group{
		{Name: GroupAdmin, Description: "Full access to every portal operation"},
		{Name: GroupCircleHead, Description: "Circle-level dashboard access"},
		{Name: GroupCircleCoordinator, Description: "Coordinates circle uploads"},
		{Name: GroupSurveyCoordinator, Description: "Coordinates survey uploads"},
		{Name: GroupDesignCoordinator, Description: "Design team lead; delete and export"},
		{Name: GroupViewer, Description: "Read-only dashboard access"},
	}
}
