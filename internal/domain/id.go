package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyID = errors.New("identifier is empty")

// ID is a server-assigned identifier. The API sends numeric ids as JSON
// numbers; anything else is carried as an opaque string.
type ID string

func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyID
	}
	if strings.ContainsAny(s, "/?#") {
		return "", fmt.Errorf("invalid identifier %q", s)
	}
	return ID(s), nil
}

func (id ID) String() string {
	return string(id)
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid identifier %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// numeric reports whether id is a valid JSON integer literal, so it can
// be written back as a bare number. "007" is not one.
func (id ID) numeric() bool {
	s := string(id)
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IDPtr returns a pointer to a copy of id.
func IDPtr(id ID) *ID {
	return &id
}
