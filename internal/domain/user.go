package domain

import "time"

// User is a registered customer or administrator. The password hash and
// role never leave the service in responses.
type User struct {
	ID               int64     `json:"id"`
	FirstName        string    `json:"nombre"`
	PaternalLastName string    `json:"apellido_paterno"`
	MaternalLastName string    `json:"apellido_materno"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Role             string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UserSummary is the minimal projection embedded in address responses.
type UserSummary struct {
	ID               int64  `json:"id"`
	FirstName        string `json:"nombre"`
	PaternalLastName string `json:"apellido_paterno"`
}

// UserDetail adds the maternal last name to UserSummary.
type UserDetail struct {
	UserSummary
	MaternalLastName string `json:"apellido_materno"`
}

// Summary returns the minimal projection of u.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, FirstName: u.FirstName, PaternalLastName: u.PaternalLastName}
}

// UserPatch is a partial profile update. Password is plaintext and is hashed
// before it reaches storage.
type UserPatch struct {
	FirstName        *string
	PaternalLastName *string
	MaternalLastName *string
	Email            *string
	Password         *string
}
