package models

// Credentials are exchanged for a token pair on login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Tokens is the token pair issued on login.
type Tokens struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token,omitempty"`
	TokenType    string  `json:"token_type,omitempty"`
	ExpiresIn    float64 `json:"expires_in,omitempty"`
}

// User is an admin account.
type User struct {
	Record
	Username         string  `json:"username"`
	Email            string  `json:"email"`
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	FullName         string  `json:"full_name,omitempty"`
	Role             string  `json:"role"`
	IsActive         bool    `json:"is_active"`
	LastLogin        *string `json:"last_login"`
	IsSuperAdmin     bool    `json:"is_super_admin"`
	CanManageUsers   bool    `json:"can_manage_users"`
	CanManageContent bool    `json:"can_manage_content"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	User    User   `json:"user"`
	Tokens  Tokens `json:"tokens"`
	Message string `json:"message,omitempty"`
}

// TokenValidation is the payload of the validate-token endpoint.
type TokenValidation struct {
	Valid   bool           `json:"valid"`
	User    map[string]any `json:"user"`
	Message string         `json:"message,omitempty"`
}

// PasswordChange is the body of the change-password endpoint.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Ack is the payload of endpoints that only confirm an action.
type Ack struct {
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
)

// UserInput creates or updates an admin account.
type UserInput struct {
	Username  string  `json:"username,omitempty"`
	Email     string  `json:"email,omitempty"`
	Password  string  `json:"password,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Role      Role    `json:"role,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}
