package dto

// RegisterDTO is the request body for account creation.
type RegisterDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginDTO is the request body for credential login.
type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserDTO struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// AuthResponseDTO carries the signed bearer token after register/login.
type AuthResponseDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}
