package win32

import (
	"fmt"
	"slices"
	"strings"

	"github.com/1broseidon/hatch/internal/platform"
)

// XInput reports at most four controllers.
const xuserMaxCount = 4

const (
	xinputFlagGamepad  = 0x1
	xinputCapsWireless = 0x2

	xinputDevSubtypeGamepad     = 0x01
	xinputDevSubtypeWheel       = 0x02
	xinputDevSubtypeArcadeStick = 0x03
	xinputDevSubtypeFlightStick = 0x04
	xinputDevSubtypeDancePad    = 0x05
	xinputDevSubtypeGuitar      = 0x06
	xinputDevSubtypeDrumKit     = 0x08
)

// Gamepad button bits.
const (
	xinputDPadUp        = 0x0001
	xinputDPadDown      = 0x0002
	xinputDPadLeft      = 0x0004
	xinputDPadRight     = 0x0008
	xinputStart         = 0x0010
	xinputBack          = 0x0020
	xinputLeftThumb     = 0x0040
	xinputRightThumb    = 0x0080
	xinputLeftShoulder  = 0x0100
	xinputRightShoulder = 0x0200
	xinputA             = 0x1000
	xinputB             = 0x2000
	xinputX             = 0x4000
	xinputY             = 0x8000
)

// Hat bits, matching the unified joystick hat state.
const (
	hatUp    = 1
	hatRight = 2
	hatDown  = 4
	hatLeft  = 8
)

type xinputGamepad struct {
	Buttons      uint16
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
}

type xinputState struct {
	PacketNumber uint32
	Gamepad      xinputGamepad
}

type xinputVibration struct {
	LeftMotorSpeed  uint16
	RightMotorSpeed uint16
}

type xinputCapabilities struct {
	Type      uint8
	SubType   uint8
	Flags     uint16
	Gamepad   xinputGamepad
	Vibration xinputVibration
}

// Axes, buttons and hats of every XInput device.
const (
	xinputAxes    = 6
	xinputButtons = 10
	xinputHats    = 1
)

func xinputDeviceName(caps xinputCapabilities) string {
	switch caps.SubType {
	case xinputDevSubtypeWheel:
		return "XInput Wheel"
	case xinputDevSubtypeArcadeStick:
		return "XInput Arcade Stick"
	case xinputDevSubtypeFlightStick:
		return "XInput Flight Stick"
	case xinputDevSubtypeDancePad:
		return "XInput Dance Pad"
	case xinputDevSubtypeGuitar:
		return "XInput Guitar"
	case xinputDevSubtypeDrumKit:
		return "XInput Drum Kit"
	case xinputDevSubtypeGamepad:
		if caps.Flags&xinputCapsWireless != 0 {
			return "Wireless Xbox Controller"
		}
		return "Xbox Controller"
	}
	return "Unknown XInput Device"
}

// xinputGUID is "xinput" in hex followed by the device subtype.
func xinputGUID(caps xinputCapabilities) string {
	return fmt.Sprintf("78696e707574%02x000000000000000000", caps.SubType)
}

// readGamepad copies a gamepad report into the joystick state selected by
// mode.
func readGamepad(j *platform.Joystick, pad xinputGamepad, mode platform.JoystickPollMode) {
	if mode == platform.PollAll || mode == platform.PollAxes {
		j.Axes[0] = (float32(pad.ThumbLX) + 0.5) / 32767.5
		j.Axes[1] = -(float32(pad.ThumbLY) + 0.5) / 32767.5
		j.Axes[2] = (float32(pad.ThumbRX) + 0.5) / 32767.5
		j.Axes[3] = -(float32(pad.ThumbRY) + 0.5) / 32767.5
		j.Axes[4] = float32(pad.LeftTrigger)/127.5 - 1
		j.Axes[5] = float32(pad.RightTrigger)/127.5 - 1
	}
	if mode != platform.PollAll && mode != platform.PollButtons {
		return
	}

	buttons := [xinputButtons]uint16{
		xinputA, xinputB, xinputX, xinputY,
		xinputLeftShoulder, xinputRightShoulder,
		xinputBack, xinputStart,
		xinputLeftThumb, xinputRightThumb,
	}
	for i, bit := range buttons {
		j.Buttons[i] = 0
		if pad.Buttons&bit != 0 {
			j.Buttons[i] = 1
		}
	}

	var hat byte
	if pad.Buttons&xinputDPadUp != 0 {
		hat |= hatUp
	}
	if pad.Buttons&xinputDPadRight != 0 {
		hat |= hatRight
	}
	if pad.Buttons&xinputDPadDown != 0 {
		hat |= hatDown
	}
	if pad.Buttons&xinputDPadLeft != 0 {
		hat |= hatLeft
	}
	// Opposing directions cancel out.
	if hat&(hatLeft|hatRight) == hatLeft|hatRight {
		hat &^= hatLeft | hatRight
	}
	if hat&(hatUp|hatDown) == hatUp|hatDown {
		hat &^= hatUp | hatDown
	}
	j.Hats[0] = hat
}

// updateGamepadGUID rewrites DirectInput product GUIDs into the
// vendor/product form used by gamepad mappings.
func updateGamepadGUID(guid string) string {
	if len(guid) != 32 || !strings.HasSuffix(guid, "504944564944") {
		return guid
	}
	return "03000000" + guid[0:4] + "0000" + guid[4:8] + "000000000000"
}

// diffDevices compares the known device names with the current list.
func diffDevices(known map[string]bool, current []string) (added, removed []string) {
	seen := make(map[string]bool, len(current))
	for _, name := range current {
		if !known[name] && !seen[name] {
			added = append(added, name)
		}
		seen[name] = true
	}
	for name := range known {
		if !seen[name] {
			removed = append(removed, name)
		}
	}
	slices.Sort(removed)
	return added, removed
}
