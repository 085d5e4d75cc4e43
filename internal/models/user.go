package models

import "time"

// User captures application-facing fields for a managed account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Profile      string    `json:"profile"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserPatch lists the columns an update may touch. Nil fields are left as stored.
type UserPatch struct {
	Username     *string
	Name         *string
	Email        *string
	Profile      *string
	PasswordHash *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Name == nil && p.Email == nil && p.Profile == nil && p.PasswordHash == nil
}
