package models

// UserProfile is the signed-in user's profile as returned by GET /accounts/me.
type UserProfile struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	IsVerifiedEmail bool   `json:"is_verified_email"`
	IsSuperuser     bool   `json:"is_superuser"`
}
