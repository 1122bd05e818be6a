package debounce

import (
	"testing"
	"time"
)

func TestOnlyNewestFires(t *testing.T) {
	d := New()
	c1 := d.Schedule("redraw", time.Millisecond)
	c2 := d.Schedule("redraw", time.Millisecond)
	c3 := d.Schedule("redraw", time.Millisecond)

	m1 := c1().(Fired)
	m2 := c2().(Fired)
	m3 := c3().(Fired)

	if d.Fire(m1) || d.Fire(m2) {
		t.Error("superseded ticks must not fire")
	}
	if !d.Fire(m3) {
		t.Error("newest tick should fire")
	}
	if d.Fire(m3) {
		t.Error("a tick fires at most once")
	}
	if d.Pending("redraw") {
		t.Error("nothing should be pending after firing")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	d := New()
	a := d.Schedule("a", time.Millisecond)().(Fired)
	b := d.Schedule("b", time.Millisecond)().(Fired)
	if !d.Fire(a) || !d.Fire(b) {
		t.Error("different keys must not supersede each other")
	}
}

func TestCancel(t *testing.T) {
	d := New()
	m := d.Schedule("save", time.Millisecond)().(Fired)
	if !d.Pending("save") {
		t.Fatal("expected pending request")
	}
	d.Cancel("save")
	if d.Pending("save") {
		t.Error("Cancel should clear pending")
	}
	if d.Fire(m) {
		t.Error("cancelled tick fired")
	}
}
