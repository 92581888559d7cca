package domain

import "time"

const (
	RoleCustomer = "Customer"
	RoleAdmin    = "Admin"
)

type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedDate  time.Time  `json:"createdDate"`
	UpdatedDate  *time.Time `json:"updatedDate,omitempty"`
}

// UserDTO es la proyeccion publica del usuario; nunca lleva material de credenciales.
type UserDTO struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	CreatedDate time.Time `json:"createdDate"`
}

func (u User) DTO() UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		CreatedDate: u.CreatedDate,
	}
}

// LoginResult es el payload de un login exitoso.
type LoginResult struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}
