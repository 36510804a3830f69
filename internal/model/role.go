package model

import "time"

// Role is a privilege level. The set is closed: RoleAdmin and RoleUser.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (r Role) String() string {
	return string(r)
}

// UserRole maps an external identity subject to a role.
//
// A subject without a row has RoleUser. Rows are created lazily, only when
// an admin assigns a role or an operator runs a bootstrap command.
type UserRole struct {
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
