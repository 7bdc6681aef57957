package platform

import "github.com/1broseidon/hatch/internal/event"

// CursorID identifies a cursor object. Zero is the default arrow.
type CursorID uint32

// Cursor is the platform-neutral cursor record.
type Cursor struct {
	ID       CursorID
	Shape    event.CursorShape
	Standard bool
	Platform any
}
