package cart

import (
	"fmt"

	"github.com/google/uuid"
)

// Subject identifies whose cart an operation targets: an authenticated user
// (server-persisted row) or a guest device (redis key).
type Subject struct {
	UserID   uuid.UUID
	DeviceID string
}

// UserSubject builds a subject for an authenticated user.
func UserSubject(userID uuid.UUID) Subject {
	return Subject{UserID: userID}
}

// GuestSubject builds a subject for an anonymous device.
func GuestSubject(deviceID string) Subject {
	return Subject{DeviceID: deviceID}
}

// IsUser reports whether the subject is an authenticated user.
func (s Subject) IsUser() bool {
	return s.UserID != uuid.Nil
}

// Key returns a stable identifier usable in KV keys and logs.
func (s Subject) Key() string {
	if s.IsUser() {
		return fmt.Sprintf("user:%s", s.UserID)
	}
	return fmt.Sprintf("guest:%s", s.DeviceID)
}
