package models

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors an identity-provider account. Subject is the provider's stable id.
type User struct {
	ID        uuid.UUID `json:"id"`
	Subject   string    `json:"subject"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpdateUser struct {
	ID       uuid.UUID
	Email    Field[string]
	Name     Field[*string]
	ImageURL Field[*string]
}

func (u *UpdateUser) Apply(usr *User) {
	u.Email.Apply(&usr.Email)
	u.Name.Apply(&usr.Name)
	u.ImageURL.Apply(&usr.ImageURL)
}
