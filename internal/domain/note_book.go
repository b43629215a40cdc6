package domain

type NoteBook struct {
	ID     *ID    `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Handle string `json:"handle,omitempty"`
	User   *User  `json:"user,omitempty"`
}

func (n NoteBook) EntityID() *ID        { return n.ID }
func (n NoteBook) DisplayLabel() string { return n.Name }
