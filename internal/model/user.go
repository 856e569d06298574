package model

import "time"

// User is a registered account. Email is the unique key and the identity
// carried in access tokens.
type User struct {
	ID           string    `json:"-"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"-"`
}
