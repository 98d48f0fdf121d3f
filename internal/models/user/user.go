package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal - аутентифицированная личность запроса, полученная из bearer-токена.
// Передаётся явным параметром в каждый вызов сервиса.
type Principal struct {
	ID    uuid.UUID
	Email string
}

func (u *User) Principal() Principal {
	return Principal{
		ID:    u.ID,
		Email: u.Email,
	}
}
