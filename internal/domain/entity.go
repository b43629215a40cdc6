package domain

// Entity is a record fetched from the REST API. A draft has a nil EntityID.
type Entity interface {
	EntityID() *ID
	DisplayLabel() string
}

// IDString returns the identifier of e, or "" for a draft.
func IDString(e Entity) string {
	if id := e.EntityID(); id != nil {
		return id.String()
	}
	return ""
}

// RefID returns the identifier of an optional related record, or "" when the
// relation is absent or the related record carries no identifier.
func RefID[T Entity](ref *T) string {
	if ref == nil {
		return ""
	}
	return IDString(*ref)
}

// RefLabel returns the display label of an optional related record, or ""
// when the relation is absent.
func RefLabel[T Entity](ref *T) string {
	if ref == nil {
		return ""
	}
	return (*ref).DisplayLabel()
}
