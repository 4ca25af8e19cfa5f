package pad

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bendahl/uinput"
)

// Identify as an Xbox 360 pad so games pick a sensible default layout.
const (
	xboxVendorID  = 0x045E
	xboxProductID = 0x028E
)

// gamepadDevice is the subset of uinput.Gamepad used by the backend.
type gamepadDevice interface {
	ButtonDown(key int) error
	ButtonUp(key int) error
	LeftStickMove(x, y float32) error
	RightStickMove(x, y float32) error
	Close() error
}

var _ gamepadDevice = uinput.Gamepad(nil)

var createUinputGamepad = func(path string, name []byte) (gamepadDevice, error) {
	g, err := uinput.CreateGamepad(path, name, xboxVendorID, xboxProductID)
	if err != nil {
		return nil, err
	}
	return g, nil
}

var probeUinput = func(path string) bool {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

var uinputButtons = map[Button]int{
	ButtonA:          uinput.ButtonSouth,
	ButtonB:          uinput.ButtonEast,
	ButtonX:          uinput.ButtonWest,
	ButtonY:          uinput.ButtonNorth,
	ButtonLB:         uinput.ButtonBumperLeft,
	ButtonRB:         uinput.ButtonBumperRight,
	ButtonBack:       uinput.ButtonSelect,
	ButtonStart:      uinput.ButtonStart,
	ButtonGuide:      uinput.ButtonMode,
	ButtonLeftThumb:  uinput.ButtonThumbLeft,
	ButtonRightThumb: uinput.ButtonThumbRight,
	ButtonDpadUp:     uinput.ButtonDpadUp,
	ButtonDpadDown:   uinput.ButtonDpadDown,
	ButtonDpadLeft:   uinput.ButtonDpadLeft,
	ButtonDpadRight:  uinput.ButtonDpadRight,
}

// UinputBackend drives a Linux virtual gamepad through /dev/uinput. uinput
// has no batching of its own, so Write only emits what changed since the
// previous report.
type UinputBackend struct {
	path   string
	name   string
	logger *slog.Logger

	dev    gamepadDevice
	last   Report
	synced bool
}

// NewUinput returns a backend creating a device called name through path.
func NewUinput(path, name string, logger *slog.Logger) *UinputBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &UinputBackend{path: path, name: name, logger: logger}
}

func (u *UinputBackend) Name() string { return "uinput:" + u.path }

// Available reports whether the uinput node exists and is writable.
func (u *UinputBackend) Available() bool { return probeUinput(u.path) }

func (u *UinputBackend) Open() error {
	dev, err := createUinputGamepad(u.path, []byte(u.name))
	if err != nil {
		return fmt.Errorf("uinput %s: %w", u.path, err)
	}
	u.dev = dev
	u.last = Report{}
	u.synced = false
	u.logger.Info("uinput: gamepad created", "path", u.path, "name", u.name)
	return nil
}

// uinput.Gamepad exposes the triggers as buttons only. A trigger counts as
// pulled from half travel on.
const triggerThreshold = 128

func triggerPulled(v uint8) bool { return v >= triggerThreshold }

func (u *UinputBackend) writeTrigger(code int, was, is uint8, full bool) error {
	if triggerPulled(was) == triggerPulled(is) && !full {
		return nil
	}
	if triggerPulled(is) {
		return u.dev.ButtonDown(code)
	}
	return u.dev.ButtonUp(code)
}

func (u *UinputBackend) Write(r Report) error {
	if u.dev == nil {
		return fmt.Errorf("uinput %s: %w", u.path, ErrNotOpen)
	}
	prev := u.last
	// nothing is known about the device state until the first write
	full := !u.synced

	for _, b := range Buttons {
		was, is := prev.Pressed(b), r.Pressed(b)
		if was == is && !full {
			continue
		}
		code := uinputButtons[b]
		var err error
		if is {
			err = u.dev.ButtonDown(code)
		} else {
			err = u.dev.ButtonUp(code)
		}
		if err != nil {
			return fmt.Errorf("button %s: %w", b, err)
		}
	}

	// evdev Y axes grow downward
	if full || r.LeftStick != prev.LeftStick {
		if err := u.dev.LeftStickMove(float32(r.LeftStick.X), float32(-r.LeftStick.Y)); err != nil {
			return fmt.Errorf("left stick: %w", err)
		}
	}
	if full || r.RightStick != prev.RightStick {
		if err := u.dev.RightStickMove(float32(r.RightStick.X), float32(-r.RightStick.Y)); err != nil {
			return fmt.Errorf("right stick: %w", err)
		}
	}
	if err := u.writeTrigger(uinput.ButtonTriggerLeft, prev.LeftTrigger, r.LeftTrigger, full); err != nil {
		return fmt.Errorf("left trigger: %w", err)
	}
	if err := u.writeTrigger(uinput.ButtonTriggerRight, prev.RightTrigger, r.RightTrigger, full); err != nil {
		return fmt.Errorf("right trigger: %w", err)
	}

	u.last = r
	u.synced = true
	return nil
}

func (u *UinputBackend) Close() error {
	if u.dev == nil {
		return nil
	}
	u.logger.Info("uinput: destroying gamepad", "path", u.path)
	err := u.dev.Close()
	u.dev = nil
	return err
}
