package domain

import "time"

// Message is an immutable chat line. It lives only inside a room's history ring.
type Message struct {
	Username  string
	Room      RoomName
	Text      string
	Timestamp time.Time
}
