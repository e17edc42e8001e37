package models

import "time"

// Role determines what a user may do at the API boundary.
type Role string

const (
	RoleClient     Role = "client"
	RoleSpecialist Role = "specialist"
	RoleAdmin      Role = "admin"
)

// User is a marketplace account. Clients request work, specialists perform
// it. Rating and ReviewCount are the specialist's aggregate, recomputed by
// the order engine whenever one of their orders is rated.
type User struct {
	ID           string    `json:"id"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email,omitempty"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Profession   string    `json:"profession,omitempty"`
	Region       string    `json:"region,omitempty"`
	District     string    `json:"district,omitempty"`
	Rating       float64   `json:"rating"`
	ReviewCount  int       `json:"review_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SignupRequest struct {
	Phone      string `json:"phone" validate:"required,min=7,max=20"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Name       string `json:"name" validate:"required,min=2,max=50"`
	Surname    string `json:"surname,omitempty" validate:"omitempty,max=50"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       Role   `json:"role" validate:"required,oneof=client specialist"`
	Profession string `json:"profession,omitempty" validate:"required_if=Role specialist"`
	Region     string `json:"region,omitempty"`
	District   string `json:"district,omitempty"`
}

type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// UserUpdateData defines the profile fields a user may change.
type UserUpdateData struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Surname    *string `json:"surname,omitempty" validate:"omitempty,max=50"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Profession *string `json:"profession,omitempty"`
	Region     *string `json:"region,omitempty"`
	District   *string `json:"district,omitempty"`
}
