package ring

import (
	"fmt"
	"sync"
	"testing"
)

func TestBuffer_Eviction(t *testing.T) {
	buf := New[string](3)

	buf.Add("event-1")
	buf.Add("event-2")
	buf.Add("event-3")

	if buf.Len() != 3 {
		t.Fatalf("expected len=3, got %d", buf.Len())
	}

	// Add one more; oldest (event-1) should be evicted.
	old, evicted := buf.Add("event-4")
	if !evicted || old != "event-1" {
		t.Fatalf("expected event-1 to be evicted, got %q (evicted=%v)", old, evicted)
	}

	all := buf.List()
	expectedOrder := []string{"event-2", "event-3", "event-4"}
	for i, expected := range expectedOrder {
		if all[i] != expected {
			t.Errorf("position %d: expected %q, got %q", i, expected, all[i])
		}
	}
}

func TestBuffer_CapacityOne(t *testing.T) {
	buf := New[string](1)

	buf.Add("first")
	buf.Add("second")
	if buf.Len() != 1 {
		t.Fatalf("expected len=1, got %d", buf.Len())
	}
	if all := buf.List(); all[0] != "second" {
		t.Errorf("expected 'second', got %q", all[0])
	}
}

func TestBuffer_Empty(t *testing.T) {
	buf := New[int](10)

	if all := buf.List(); all != nil {
		t.Errorf("expected nil for empty buffer, got %v", all)
	}
	if _, ok := buf.Last(); ok {
		t.Error("expected no last item in empty buffer")
	}
}

func TestBuffer_WrapAround(t *testing.T) {
	buf := New[string](3)

	for i := 0; i < 10; i++ {
		buf.Add(fmt.Sprintf("event-%d", i))
	}

	all := buf.List()
	if len(all) != 3 {
		t.Fatalf("expected 3 items, got %d", len(all))
	}
	for i, expected := range []string{"event-7", "event-8", "event-9"} {
		if all[i] != expected {
			t.Errorf("position %d: expected %q, got %q", i, expected, all[i])
		}
	}
	if last, _ := buf.Last(); last != "event-9" {
		t.Errorf("expected last item event-9, got %q", last)
	}
}

func TestBuffer_Filter(t *testing.T) {
	buf := New[int](10)
	for i := 1; i <= 6; i++ {
		buf.Add(i)
	}

	even := buf.Filter(func(n int) bool { return n%2 == 0 })
	if len(even) != 3 || even[0] != 2 || even[2] != 6 {
		t.Errorf("unexpected filter result: %v", even)
	}
}

func TestBuffer_Clear(t *testing.T) {
	buf := New[int](3)
	buf.Add(1)
	buf.Add(2)
	buf.Add(3)
	buf.Add(4)

	buf.Clear()
	if buf.Len() != 0 {
		t.Fatalf("expected len=0 after clear, got %d", buf.Len())
	}

	buf.Add(5)
	if all := buf.List(); len(all) != 1 || all[0] != 5 {
		t.Errorf("expected [5] after clear+add, got %v", all)
	}
}

func TestBuffer_ConcurrentAccess(t *testing.T) {
	buf := New[int](100)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			buf.Add(n)
		}(i)
	}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf.List()
			buf.Len()
		}()
	}
	wg.Wait()

	if buf.Len() != 50 {
		t.Errorf("expected len=50, got %d", buf.Len())
	}
}

func TestBuffer_ZeroCapacity(t *testing.T) {
	// Zero capacity should be clamped to 1.
	buf := New[int](0)
	if buf.Cap() != 1 {
		t.Errorf("expected cap=1 for zero capacity input, got %d", buf.Cap())
	}
}
