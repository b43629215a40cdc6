package domain

import "time"

type Note struct {
	ID       *ID        `json:"id,omitempty"`
	Title    string     `json:"title,omitempty"`
	Content  string     `json:"content,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	User     *User      `json:"user,omitempty"`
	Notebook *NoteBook  `json:"notebook,omitempty"`
}

func (n Note) EntityID() *ID        { return n.ID }
func (n Note) DisplayLabel() string { return n.Title }
