package models

import "time"

// User is a login account. PasswordHash holds an argon2id PHC string and
// never leaves the server.
type User struct {
	ID           int64
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}

// UserSummary is the password-free projection returned to callers.
type UserSummary struct {
	ID       int64
	UserName string
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, UserName: u.UserName}
}
