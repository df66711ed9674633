package domain

// Entity is a persisted record served under /api/<entity>.
type Entity interface {
	GetID() *int64
	SetID(id int64)
	GetUser() *UserRef
	SetUser(u *UserRef)
}

// EntityPtr lets generic code take the struct type as its parameter and
// still reach the pointer-receiver methods, e.g. NewResource[domain.Points].
type EntityPtr[T any] interface {
	*T
	Entity
	// Merge copies every non-nil field of other into the receiver.
	Merge(other *T)
	// Clone returns a copy that shares no pointers with the receiver.
	Clone() *T
}

func clonePtr[V any](p *V) *V {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
