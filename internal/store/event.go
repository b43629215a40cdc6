package store

type Action string

const (
	ActionFetchList     Action = "fetch_entity_list"
	ActionFetchOne      Action = "fetch_entity"
	ActionCreate        Action = "create_entity"
	ActionUpdate        Action = "update_entity"
	ActionPartialUpdate Action = "partial_update_entity"
	ActionDelete        Action = "delete_entity"
	ActionRefresh       Action = "refresh_entity_list"
	ActionReset         Action = "reset"
)

// IsWrite reports whether the action mutates the remote collection.
func (a Action) IsWrite() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionPartialUpdate, ActionDelete:
		return true
	}
	return false
}

type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseFulfilled Phase = "fulfilled"
	PhaseRejected  Phase = "rejected"
)

type Event struct {
	Store  string
	Action Action
	Phase  Phase
	ID     string
	Err    error
}
