package domain

type Share struct {
	ID       *ID    `json:"id,omitempty"`
	Invite   string `json:"invite,omitempty"`
	Author   *User  `json:"author,omitempty"`
	WithUser *User  `json:"withUser,omitempty"`
	Sharing  *Note  `json:"sharing,omitempty"`
}

func (s Share) EntityID() *ID        { return s.ID }
func (s Share) DisplayLabel() string { return s.Invite }
