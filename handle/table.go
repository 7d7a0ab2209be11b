package handle

import (
	"errors"
	"sync"

	"github.com/wippyai/object-abi/object"
)

var (
	ErrClosed  = errors.New("handle table closed")
	ErrFull    = errors.New("handle table full")
	ErrInvalid = errors.New("invalid handle")
)

// Table maps guest handles to objects.
//
// Each entry owns one reference to its object and carries its own count of
// guest references. The object reference is released when the guest count
// drops to zero or the table is closed.
type Table struct {
	entries   []entry
	freeList  []Handle
	limit     int
	live      int
	mu        sync.RWMutex
	closed    bool
	observers []Observer
	obsMu     sync.RWMutex
}

type entry struct {
	obj   object.Object
	refs  uint32
	valid bool
}

// NewTable creates a table holding at most limit live handles. A limit of
// zero or less means unbounded.
func NewTable(limit int) *Table {
	return &Table{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
		limit:    limit,
	}
}

// Insert stores o with one guest reference. The table takes over the
// caller's reference to o; on error the caller still owns it.
func (t *Table) Insert(o object.Object) (Handle, error) {
	if o.IsNull() {
		return 0, ErrInvalid
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, ErrClosed
	}
	if t.limit > 0 && t.live >= t.limit {
		t.mu.Unlock()
		return 0, ErrFull
	}

	e := entry{obj: o, refs: 1, valid: true}
	var h Handle
	if len(t.freeList) > 0 {
		h = t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		t.entries[h-1] = e
	} else {
		t.entries = append(t.entries, e)
		h = Handle(len(t.entries))
	}
	t.live++
	t.mu.Unlock()

	t.notify(Event{Type: EventInserted, Handle: h, Object: o, Refs: 1})
	return h, nil
}

// Get returns the object behind h without retaining it.
func (t *Table) Get(h Handle) (object.Object, bool) {
	if h == 0 {
		return object.Null, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := int(h - 1)
	if idx >= len(t.entries) || !t.entries[idx].valid {
		return object.Null, false
	}
	return t.entries[idx].obj, true
}

// Acquire returns the object behind h with an extra reference that the
// caller must release. The object stays usable even if h is released
// meanwhile.
func (t *Table) Acquire(h Handle) (object.Object, bool) {
	if h == 0 {
		return object.Null, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := int(h - 1)
	if idx >= len(t.entries) || !t.entries[idx].valid {
		return object.Null, false
	}
	o := t.entries[idx].obj
	if o.Retain() != object.OK {
		return object.Null, false
	}
	return o, true
}

// Retain adds a guest reference to h.
func (t *Table) Retain(h Handle) error {
	t.mu.Lock()
	e, err := t.lookup(h)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	e.refs++
	ev := Event{Type: EventRetained, Handle: h, Object: e.obj, Refs: e.refs}
	t.mu.Unlock()

	t.notify(ev)
	return nil
}

// Release drops a guest reference to h. When the last one goes the handle
// is freed and the table's object reference released.
func (t *Table) Release(h Handle) error {
	t.mu.Lock()
	e, err := t.lookup(h)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	e.refs--
	ev := Event{Type: EventReleased, Handle: h, Object: e.obj, Refs: e.refs}
	if e.refs > 0 {
		t.mu.Unlock()
		t.notify(ev)
		return nil
	}

	obj := e.obj
	*e = entry{}
	t.freeList = append(t.freeList, h)
	t.live--
	t.mu.Unlock()

	t.notify(ev)
	obj.Release()
	t.notify(Event{Type: EventDropped, Handle: h, Object: obj})
	return nil
}

// lookup must be called with mu held.
func (t *Table) lookup(h Handle) (*entry, error) {
	if t.closed {
		return nil, ErrClosed
	}
	idx := int(h) - 1
	if h == 0 || idx >= len(t.entries) || !t.entries[idx].valid {
		return nil, ErrInvalid
	}
	return &t.entries[idx], nil
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}

// Each iterates over live handles.
func (t *Table) Each(fn func(Handle, object.Object, uint32) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, e := range t.entries {
		if e.valid {
			if !fn(Handle(i+1), e.obj, e.refs) {
				break
			}
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Close releases every remaining object and stops accepting operations.
// Closing twice is a no-op.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true

	type dropped struct {
		h   Handle
		obj object.Object
	}
	var drop []dropped
	for i := range t.entries {
		if t.entries[i].valid {
			drop = append(drop, dropped{Handle(i + 1), t.entries[i].obj})
		}
	}
	t.entries = nil
	t.freeList = nil
	t.live = 0
	t.mu.Unlock()

	for _, d := range drop {
		d.obj.Release()
		t.notify(Event{Type: EventDropped, Handle: d.h, Object: d.obj})
	}
	return nil
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnHandleEvent(e)
	}
}
