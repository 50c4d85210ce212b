package models

// Credential is the single admin password record in the auth collection.
type Credential struct {
	HashedPassword string `json:"hashed_password" bson:"hashed_password"`
}

// LoginRequest is the JSON body for POST /password_authentication.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// UpdatePasswordRequest is the JSON body for POST /update_password.
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}
