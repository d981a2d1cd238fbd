package model

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	// ProtectedUsername is the seeded account that can never be deleted or
	// downgraded from the admin role.
	ProtectedUsername = "admin"
)

type User struct {
	ID             int       `db:"id"              json:"id"`
	Username       string    `db:"username"        json:"username"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	Role           string    `db:"role"            json:"role"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
}
