package handle

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/object-abi/object"
)

type counter struct {
	object.Refs
	destroyed int
}

func newCounter() (*counter, object.Object) {
	c := &counter{}
	c.Init(func() { c.destroyed++ })
	return c, object.New(invokeCounter, c)
}

func invokeCounter(cx any, op object.Op, _ []object.Arg, _ object.Counts) object.Status {
	c := cx.(*counter)
	switch op {
	case object.OpRetain:
		return c.Retain()
	case object.OpRelease:
		return c.Release()
	}
	return object.ErrorInvalid
}

type recorder struct {
	mu     sync.Mutex
	events []EventType
}

func (r *recorder) OnHandleEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.Type)
}

func TestTable_Basic(t *testing.T) {
	table := NewTable(0)
	c, obj := newCounter()

	h, err := table.Insert(obj)
	if err != nil {
		t.Fatal(err)
	}
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	got, ok := table.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if got.Context != obj.Context {
		t.Fatal("Get returned a different object")
	}
	if table.Len() != 1 {
		t.Fatalf("Len = %d, want 1", table.Len())
	}

	if _, ok := table.Get(0); ok {
		t.Error("handle 0 must be invalid")
	}
	if _, ok := table.Get(h + 1); ok {
		t.Error("unissued handle resolved")
	}

	if err := table.Release(h); err != nil {
		t.Fatal(err)
	}
	if c.destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", c.destroyed)
	}
	if table.Len() != 0 {
		t.Errorf("Len = %d after release", table.Len())
	}
	if err := table.Release(h); !errors.Is(err, ErrInvalid) {
		t.Errorf("double release = %v, want ErrInvalid", err)
	}
}

func TestTable_GuestCount(t *testing.T) {
	table := NewTable(0)
	c, obj := newCounter()
	h, _ := table.Insert(obj)

	for i := 0; i < 3; i++ {
		if err := table.Retain(h); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := table.Release(h); err != nil {
			t.Fatal(err)
		}
		if c.destroyed != 0 {
			t.Fatalf("destroyed after %d releases", i+1)
		}
	}
	if c.Count() != 1 {
		t.Errorf("object refs = %d, want 1", c.Count())
	}
	table.Release(h)
	if c.destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", c.destroyed)
	}
}

func TestTable_Reuse(t *testing.T) {
	table := NewTable(0)
	_, a := newCounter()
	_, b := newCounter()
	_, c := newCounter()

	h1, _ := table.Insert(a)
	h2, _ := table.Insert(b)
	table.Release(h1)

	h3, _ := table.Insert(c)
	if h3 != h1 {
		t.Errorf("handle %d not reused, got %d", h1, h3)
	}
	if got, _ := table.Get(h3); got.Context != c.Context {
		t.Error("reused handle resolves to a stale object")
	}
	if got, _ := table.Get(h2); got.Context != b.Context {
		t.Error("neighbour handle disturbed")
	}
}

func TestTable_Limit(t *testing.T) {
	table := NewTable(2)
	_, a := newCounter()
	_, b := newCounter()
	cc, c := newCounter()

	table.Insert(a)
	h, _ := table.Insert(b)
	if _, err := table.Insert(c); !errors.Is(err, ErrFull) {
		t.Fatalf("Insert over limit = %v, want ErrFull", err)
	}
	if cc.Count() != 1 || cc.destroyed != 0 {
		t.Error("rejected object was touched")
	}

	table.Release(h)
	if _, err := table.Insert(c); err != nil {
		t.Fatalf("Insert after release = %v", err)
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable(0)
	var counters []*counter
	for i := 0; i < 4; i++ {
		c, obj := newCounter()
		counters = append(counters, c)
		h, _ := table.Insert(obj)
		table.Retain(h)
	}

	if err := table.Close(); err != nil {
		t.Fatal(err)
	}
	if err := table.Close(); err != nil {
		t.Fatal(err)
	}
	for i, c := range counters {
		if c.destroyed != 1 {
			t.Errorf("counter %d destroyed %d times, want 1", i, c.destroyed)
		}
	}

	_, obj := newCounter()
	if _, err := table.Insert(obj); !errors.Is(err, ErrClosed) {
		t.Errorf("Insert after close = %v, want ErrClosed", err)
	}
	if err := table.Retain(1); !errors.Is(err, ErrClosed) {
		t.Errorf("Retain after close = %v, want ErrClosed", err)
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable(0)
	obs := &recorder{}
	table.Subscribe(obs)

	_, obj := newCounter()
	h, _ := table.Insert(obj)
	table.Retain(h)
	table.Release(h)
	table.Release(h)

	want := []EventType{EventInserted, EventRetained, EventReleased, EventReleased, EventDropped}
	if diff := cmp.Diff(want, obs.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}

	table.Unsubscribe(obs)
	_, obj = newCounter()
	table.Insert(obj)
	if len(obs.events) != len(want) {
		t.Error("unsubscribed observer still notified")
	}
}

func TestTable_Concurrent(t *testing.T) {
	table := NewTable(0)
	c, obj := newCounter()
	h, _ := table.Insert(obj)

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			for j := 0; j < 100; j++ {
				if err := table.Retain(h); err != nil {
					return err
				}
				if err := table.Release(h); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if c.destroyed != 0 {
		t.Fatal("object destroyed while handle live")
	}
	table.Release(h)
	if c.destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", c.destroyed)
	}
}

func TestTable_Acquire(t *testing.T) {
	table := NewTable(0)
	c, obj := newCounter()

	h, err := table.Insert(obj)
	if err != nil {
		t.Fatal(err)
	}
	held, ok := table.Acquire(h)
	if !ok {
		t.Fatal("Acquire failed")
	}
	if c.Count() != 2 {
		t.Fatalf("count = %d, want 2", c.Count())
	}

	if err := table.Release(h); err != nil {
		t.Fatal(err)
	}
	if c.destroyed != 0 {
		t.Fatal("object destroyed while acquired")
	}
	if _, ok := table.Acquire(h); ok {
		t.Error("released handle acquired")
	}
	held.Release()
	if c.destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", c.destroyed)
	}

	if _, ok := table.Acquire(0); ok {
		t.Error("handle 0 acquired")
	}
}
