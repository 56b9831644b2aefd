package entities

type UserType string

const (
	UserTypeRenter UserType = "renter"
	UserTypeOwner  UserType = "owner"
)

func (t UserType) Valid() bool {
	return t == UserTypeRenter || t == UserTypeOwner
}

type Session struct {
	Email    string   `json:"email"`
	UserType UserType `json:"userType"`
}

type SessionResponse struct {
	IsAuthenticated bool     `json:"isAuthenticated"`
	Session         *Session `json:"session,omitempty"`
	UserName        string   `json:"userName,omitempty"`
	Message         string   `json:"message,omitempty"`
	Redirect        string   `json:"redirect,omitempty"`
}
