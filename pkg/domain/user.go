package domain

// User is a registered moviedash account as returned by the backend.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Session is the authenticated identity plus the bearer token that proves it.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// AuthPayload is the data block of a successful login or register response.
type AuthPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
