package model

import (
	"time"
)

// Platform roles.
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// User represents a platform user. Identity and session establishment are
// handled by the external auth provider; this service only consumes the
// resolved role and tenant.
type User struct {
	Key       string    `json:"_key,omitempty"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"` // admin, instructor, student
	CollegeID string    `json:"college_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ViewerFromClaims builds the acting user from resolved JWT claims. Only the
// authorization-relevant fields are populated.
func ViewerFromClaims(userID, role, collegeID string) User {
	return User{Key: userID, Role: role, CollegeID: collegeID}
}

// IsAdmin returns true if user is admin.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManageExams reports whether the user may drive lifecycle transitions.
func (u *User) CanManageExams() bool {
	return u.Role == RoleAdmin || u.Role == RoleInstructor
}

// CanViewAlerts reports whether the user may read proctoring alerts.
func (u *User) CanViewAlerts() bool {
	return u.Role == RoleAdmin || u.Role == RoleInstructor
}

// SameCollege checks tenant scoping; admins have cross-tenant access.
func (u *User) SameCollege(collegeID string) bool {
	if u.Role == RoleAdmin {
		return true
	}
	return u.CollegeID == collegeID
}
