package domain

import (
	"encoding/json"
	"fmt"
)

// MergePatch is a JSON merge patch body. Entity supplies the members to set
// and every name in Clear is sent as an explicit null, which removes it.
type MergePatch[T Entity] struct {
	Entity T
	Clear  []string
}

func (p MergePatch[T]) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(p.Entity)
	if err != nil {
		return nil, err
	}
	members := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, fmt.Errorf("failed to build merge patch: %w", err)
	}
	for _, name := range p.Clear {
		members[name] = json.RawMessage("null")
	}
	return json.Marshal(members)
}
