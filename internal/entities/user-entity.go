package entities

import "time"

type User struct {
	ID             uint64    `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	HashedPassword string    `json:"-" db:"hashed_password"`
	FullName       string    `json:"full_name" db:"full_name"`
	IsAdmin        int       `json:"is_admin" db:"is_admin"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

func (u *User) Admin() bool {
	return u != nil && u.IsAdmin == 1
}
