package dto

import (
	"time"

	"ticket-desk/internal/entities"
)

type UserResponseDTO struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsAdmin   int       `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u *entities.User) UserResponseDTO {
	return UserResponseDTO{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

func NewUserResponses(users []entities.User) []UserResponseDTO {
	out := make([]UserResponseDTO, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
