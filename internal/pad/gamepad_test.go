package pad

import (
	"errors"
	"testing"
)

type recordBackend struct {
	available bool
	openErr   error
	writeErr  error
	opened    int
	closed    int
	writes    []Report
}

func (b *recordBackend) Name() string    { return "record" }
func (b *recordBackend) Available() bool { return b.available }
func (b *recordBackend) Open() error {
	if b.openErr != nil {
		return b.openErr
	}
	b.opened++
	return nil
}
func (b *recordBackend) Write(r Report) error {
	if b.writeErr != nil {
		return b.writeErr
	}
	b.writes = append(b.writes, r)
	return nil
}
func (b *recordBackend) Close() error { b.closed++; return nil }

func TestGamepadBuffersUntilFlush(t *testing.T) {
	b := &recordBackend{available: true}
	g := New(b, nil)
	if err := g.Open(); err != nil {
		t.Fatal(err)
	}

	g.SetLeftTrigger(10)
	g.SetRightTrigger(20)
	g.SetLeftStick(0.5, -0.5)
	g.SetRightStick(2, -3)
	g.Press(ButtonA)
	g.Press(ButtonDpadUp)
	g.Release(ButtonDpadUp)
	if len(b.writes) != 0 {
		t.Fatalf("backend written before flush: %v", b.writes)
	}

	if err := g.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(b.writes) != 1 {
		t.Fatalf("got %d writes, want 1", len(b.writes))
	}
	want := Report{
		LeftTrigger:  10,
		RightTrigger: 20,
		LeftStick:    Vector{0.5, -0.5},
		RightStick:   Vector{1, -1},
		Buttons:      ButtonA,
	}
	if b.writes[0] != want {
		t.Errorf("got %+v, want %+v", b.writes[0], want)
	}
	if g.Committed() != want {
		t.Errorf("Committed() = %+v", g.Committed())
	}
}

func TestGamepadResetIsNeutral(t *testing.T) {
	b := &recordBackend{available: true}
	g := New(b, nil)
	_ = g.Open()
	g.SetLeftStick(1, 1)
	g.Press(ButtonB)
	_ = g.Flush()

	g.Reset()
	_ = g.Flush()
	if last := b.writes[len(b.writes)-1]; !last.Neutral() {
		t.Errorf("after reset got %+v", last)
	}
}

func TestGamepadClosedIsNoop(t *testing.T) {
	b := &recordBackend{available: true}
	g := New(b, nil)

	g.SetLeftTrigger(255)
	g.Press(ButtonStart)
	g.Reset()
	if err := g.Flush(); err != nil {
		t.Fatalf("Flush on closed gamepad: %v", err)
	}
	if len(b.writes) != 0 {
		t.Errorf("closed gamepad wrote %v", b.writes)
	}

	_ = g.Open()
	if err := g.Flush(); err != nil {
		t.Fatal(err)
	}
	if !b.writes[0].Neutral() {
		t.Errorf("calls before Open leaked into %+v", b.writes[0])
	}

	if err := g.Close(); err != nil {
		t.Fatal(err)
	}
	g.Press(ButtonY)
	_ = g.Flush()
	if len(b.writes) != 1 || b.closed != 1 {
		t.Errorf("writes=%d closed=%d", len(b.writes), b.closed)
	}
	if err := g.Close(); err != nil || b.closed != 1 {
		t.Errorf("second Close: err=%v closed=%d", err, b.closed)
	}
}

func TestGamepadUnavailable(t *testing.T) {
	for _, g := range []*Gamepad{
		New(nil, nil),
		New(&recordBackend{available: false}, nil),
	} {
		if g.Available() {
			t.Errorf("%s: Available() = true", g.Name())
		}
		if err := g.Open(); !errors.Is(err, ErrUnavailable) {
			t.Errorf("%s: Open() = %v, want ErrUnavailable", g.Name(), err)
		}
		if g.open {
			t.Errorf("%s: open after failed Open", g.Name())
		}
	}
}

func TestGamepadErrorsWrap(t *testing.T) {
	boom := errors.New("boom")

	g := New(&recordBackend{available: true, openErr: boom}, nil)
	if err := g.Open(); !errors.Is(err, boom) {
		t.Errorf("Open() = %v", err)
	}

	b := &recordBackend{available: true, writeErr: boom}
	g = New(b, nil)
	_ = g.Open()
	g.Press(ButtonA)
	if err := g.Flush(); !errors.Is(err, boom) {
		t.Errorf("Flush() = %v", err)
	}
	if g.Committed().Pressed(ButtonA) {
		t.Error("failed flush was committed")
	}
}

func TestButtonString(t *testing.T) {
	if got := ButtonGuide.String(); got != "guide" {
		t.Errorf("got %q", got)
	}
	if got := (ButtonDpadUp | ButtonDpadRight).String(); got != "dpad_up+dpad_right" {
		t.Errorf("got %q", got)
	}
	if got := Button(0).String(); got != "none" {
		t.Errorf("got %q", got)
	}
}
