package user

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type User struct {
	Id        ulid.ULID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Password  string    `json:"-"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RegisterRequest struct {
	Username string
	Email    string
	FullName string
	Password string
}
