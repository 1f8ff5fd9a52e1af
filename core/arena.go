package core

// Destination is a stable handle to a render target (a text window or a tab).
// The zero value never addresses a destination.
type Destination int

// arena hands out stable integer handles for slots. Released slots are not
// reused, so a stale handle can never address a newer value.
type arena[T any] struct {
	slots []*T
	live  int
}

func (a *arena[T]) Alloc(v *T) int {
	a.slots = append(a.slots, v)
	a.live++
	return len(a.slots)
}

func (a *arena[T]) Get(handle int) (*T, bool) {
	if handle <= 0 || handle > len(a.slots) {
		return nil, false
	}
	v := a.slots[handle-1]
	return v, v != nil
}

func (a *arena[T]) Release(handle int) {
	if handle <= 0 || handle > len(a.slots) || a.slots[handle-1] == nil {
		return
	}
	a.slots[handle-1] = nil
	a.live--
}

func (a *arena[T]) Len() int {
	return a.live
}
