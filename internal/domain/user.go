package domain

// User is owned by the API's account management; the console only reads it.
type User struct {
	ID    *ID    `json:"id,omitempty"`
	Login string `json:"login,omitempty"`
}

func (u User) EntityID() *ID        { return u.ID }
func (u User) DisplayLabel() string { return u.Login }
