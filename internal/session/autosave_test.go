package session

import "testing"

func TestDebouncerMergesBurstIntoSingleCall(t *testing.T) {
	queue := make([]func(), 0, 8)
	d := NewDebouncer(func(fn func()) { queue = append(queue, fn) })

	value := 0
	for i := 1; i <= 5; i++ {
		v := i
		d.Post(autosaveKey, func() { value = v })
	}

	if len(queue) != 1 {
		t.Fatalf("expected 1 scheduled callback, got %d", len(queue))
	}
	queue[0]()

	if value != 5 {
		t.Fatalf("expected latest callback to run, got %d", value)
	}
}

func TestDebouncerDropsWorkAfterDestroy(t *testing.T) {
	queue := make([]func(), 0, 4)
	d := NewDebouncer(func(fn func()) { queue = append(queue, fn) })

	ran := false
	d.Post(autosaveKey, func() { ran = true })
	d.Destroy()

	if len(queue) != 1 {
		t.Fatalf("expected one queued callback before destroy, got %d", len(queue))
	}
	queue[0]()

	if ran {
		t.Fatalf("expected queued work to be dropped after destroy")
	}

	d.Post(autosaveKey, func() { ran = true })
	if len(queue) != 1 {
		t.Fatalf("expected no new callback after destroy, got %d", len(queue))
	}
}

func TestNewDebouncerPanicsOnNilPost(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected NewDebouncer to panic when post is nil")
		}
	}()

	_ = NewDebouncer(nil)
}

func TestAutosaverNotifyChangedDebouncesIntoOneSave(t *testing.T) {
	var scheduled func()
	post := func(fn func()) { scheduled = fn }

	saves := 0
	a := NewAutosaver(post, func() { saves++ })

	a.NotifyChanged()
	a.NotifyChanged()
	a.NotifyChanged()

	if scheduled == nil {
		t.Fatalf("expected a save to be scheduled")
	}
	scheduled()

	if saves != 1 {
		t.Fatalf("expected exactly one save to run, got %d", saves)
	}
}
