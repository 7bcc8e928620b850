package dto

type RegisterDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,max=255"`
}

// LoginDTO accepts the OAuth2 password form (username, password) as well as
// a JSON body (email, password).
type LoginDTO struct {
	Email    string `json:"email" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type TokenResponseDTO struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	User        UserResponseDTO `json:"user"`
}
