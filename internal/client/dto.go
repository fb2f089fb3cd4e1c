package client

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse covers the shapes the backend has used over time: a bare
// token, or a token plus one of the user name fields.
type LoginResponse struct {
	Token    string `json:"token,omitempty"`
	User     string `json:"user,omitempty"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Message  string `json:"message,omitempty"`
}

type EmailKeyRequest struct {
	Email string `json:"email"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	EmailKey string `json:"email_key"`
}

type MessageResponse struct {
	Message string `json:"message,omitempty"`
}

type SessionStatus struct {
	User     string `json:"user,omitempty"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (s *SessionStatus) UserName() string {
	if s == nil {
		return ""
	}
	return firstNonEmpty(s.User, s.Username, s.Name)
}
