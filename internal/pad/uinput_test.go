package pad

import (
	"fmt"
	"testing"

	"github.com/bendahl/uinput"
)

type fakeDevice struct {
	calls  []string
	closed bool
}

func (d *fakeDevice) ButtonDown(key int) error {
	d.calls = append(d.calls, fmt.Sprintf("down %d", key))
	return nil
}
func (d *fakeDevice) ButtonUp(key int) error {
	d.calls = append(d.calls, fmt.Sprintf("up %d", key))
	return nil
}
func (d *fakeDevice) LeftStickMove(x, y float32) error {
	d.calls = append(d.calls, fmt.Sprintf("ls %.2f %.2f", x, y))
	return nil
}
func (d *fakeDevice) RightStickMove(x, y float32) error {
	d.calls = append(d.calls, fmt.Sprintf("rs %.2f %.2f", x, y))
	return nil
}
func (d *fakeDevice) Close() error { d.closed = true; return nil }

func stubUinput(t *testing.T, present bool) *fakeDevice {
	t.Helper()
	origCreate, origProbe := createUinputGamepad, probeUinput
	t.Cleanup(func() { createUinputGamepad, probeUinput = origCreate, origProbe })

	dev := &fakeDevice{}
	probeUinput = func(string) bool { return present }
	createUinputGamepad = func(string, []byte) (gamepadDevice, error) { return dev, nil }
	return dev
}

func TestUinputFirstWriteIsFull(t *testing.T) {
	dev := stubUinput(t, true)
	u := NewUinput("/dev/uinput", "djpad", nil)
	if !u.Available() {
		t.Fatal("probe ignored")
	}
	if err := u.Open(); err != nil {
		t.Fatal(err)
	}
	if err := u.Write(Report{}); err != nil {
		t.Fatal(err)
	}
	// every button released, both sticks centred, both triggers at rest
	if got, want := len(dev.calls), len(Buttons)+4; got != want {
		t.Fatalf("got %d calls, want %d: %v", got, want, dev.calls)
	}
	tail := fmt.Sprint(dev.calls[len(dev.calls)-2:])
	want := fmt.Sprint([]string{
		fmt.Sprintf("up %d", uinput.ButtonTriggerLeft),
		fmt.Sprintf("up %d", uinput.ButtonTriggerRight),
	})
	if tail != want {
		t.Errorf("triggers not released: got %s, want %s", tail, want)
	}
}

func TestUinputWritesOnlyChanges(t *testing.T) {
	dev := stubUinput(t, true)
	u := NewUinput("/dev/uinput", "djpad", nil)
	_ = u.Open()
	_ = u.Write(Report{})
	dev.calls = nil

	r := Report{LeftTrigger: 255, LeftStick: Vector{1, 1}, Buttons: ButtonA}
	if err := u.Write(r); err != nil {
		t.Fatal(err)
	}
	want := []string{
		fmt.Sprintf("down %d", uinput.ButtonSouth),
		"ls 1.00 -1.00",
		fmt.Sprintf("down %d", uinput.ButtonTriggerLeft),
	}
	if fmt.Sprint(dev.calls) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", dev.calls, want)
	}

	dev.calls = nil
	_ = u.Write(r)
	if len(dev.calls) != 0 {
		t.Errorf("unchanged report produced %v", dev.calls)
	}

	r.Buttons = 0
	_ = u.Write(r)
	if want := fmt.Sprintf("up %d", uinput.ButtonSouth); len(dev.calls) != 1 || dev.calls[0] != want {
		t.Errorf("got %v, want [%s]", dev.calls, want)
	}

	if err := u.Close(); err != nil || !dev.closed {
		t.Errorf("Close: err=%v closed=%v", err, dev.closed)
	}
}

func TestUinputTriggerThreshold(t *testing.T) {
	dev := stubUinput(t, true)
	u := NewUinput("/dev/uinput", "djpad", nil)
	_ = u.Open()
	_ = u.Write(Report{})

	steps := []struct {
		right uint8
		want  []string
	}{
		{100, nil},
		{127, nil},
		{128, []string{fmt.Sprintf("down %d", uinput.ButtonTriggerRight)}},
		{255, nil},
		{127, []string{fmt.Sprintf("up %d", uinput.ButtonTriggerRight)}},
	}
	for _, s := range steps {
		dev.calls = nil
		if err := u.Write(Report{RightTrigger: s.right}); err != nil {
			t.Fatal(err)
		}
		if fmt.Sprint(dev.calls) != fmt.Sprint(s.want) {
			t.Errorf("RightTrigger=%d: got %v, want %v", s.right, dev.calls, s.want)
		}
	}
}

func TestUinputUnavailable(t *testing.T) {
	stubUinput(t, false)
	g := New(NewUinput("/dev/uinput", "djpad", nil), nil)
	if g.Available() {
		t.Error("Available() = true without uinput")
	}
}
