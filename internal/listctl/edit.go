package listctl

// editState tracks the single row in edit mode. base is the committed record
// when editing began; draft receives field edits until commit or cancel.
type editState[T any] struct {
	active bool
	id     int64
	base   T
	draft  T
}

func (e *editState[T]) clear() {
	var zero T
	e.active = false
	e.id = 0
	e.base = zero
	e.draft = zero
}

// EditOption customises BeginEdit.
type EditOption func(*editOptions)

type editOptions struct {
	discard bool
}

// DiscardChanges lets BeginEdit drop unsaved edits of the current target.
// The drop is announced with a warning notification.
func DiscardChanges() EditOption {
	return func(o *editOptions) { o.discard = true }
}
