package types

type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type PasswordRequest struct {
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type ResetEmailRequest struct {
	Email string `json:"email"`
}

type Profile struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RegisterResponse struct {
	Data    Profile `json:"data"`
	Message string  `json:"message"`
}

type LoginResponse struct {
	Token   TokenPair `json:"token"`
	Message string    `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
