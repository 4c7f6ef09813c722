package domain

import (
	"time"
)

// Role of a participant within a room.
type Role string

const (
	RoleHost   Role = "host"
	RoleViewer Role = "viewer"
)

// MessageKind distinguishes regular chat from host announcements.
type MessageKind string

const (
	KindChat         MessageKind = "chat"
	KindAnnouncement MessageKind = "announcement"
)

// Product is the item showcased in a room. All fields are opaque to the
// server: stored and echoed, never interpreted.
type Product struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	PurchaseLink string `json:"purchase_link,omitempty"`
}

// Room is the public metadata of a live room.
type Room struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Product      Product   `json:"product"`
	StreamURL    string    `json:"stream_url,omitempty"`
	HostClientID string    `json:"-"`
	ViewerCount  int       `json:"viewer_count"`
	MessageCount uint64    `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Participant is a client's membership record in a single room, keyed by the
// stable client id so bans survive reconnects.
type Participant struct {
	ClientID string    `json:"client_id"`
	ConnID   string    `json:"-"`
	Name     string    `json:"name"`
	Role     Role      `json:"role"`
	Banned   bool      `json:"banned"`
	JoinedAt time.Time `json:"joined_at"`

	// LastSentAt is only maintained for viewers; hosts never engage the
	// slow-mode timer.
	LastSentAt time.Time `json:"-"`
}

// Message is a single entry in a room's log. Deleted is one-way: messages
// are soft-deleted in place so ordering and ids stay stable.
type Message struct {
	ID         string              `json:"id"`
	Seq        uint64              `json:"seq"`
	AuthorID   string              `json:"author_id"`
	AuthorName string              `json:"author_name"`
	Body       string              `json:"body"`
	Kind       MessageKind         `json:"kind"`
	SentAt     time.Time           `json:"sent_at"`
	Deleted    bool                `json:"deleted"`
	Reactions  map[string][]string `json:"reactions,omitempty"`
}

// Clone returns a copy that shares nothing with the original. Snapshots hand
// clones to callers so the live log entry can keep mutating (reactions,
// soft delete) while the copy is serialized outside the room lock.
func (m *Message) Clone() *Message {
	c := *m
	if m.Reactions != nil {
		c.Reactions = make(map[string][]string, len(m.Reactions))
		for symbol, ids := range m.Reactions {
			c.Reactions[symbol] = append([]string(nil), ids...)
		}
	}
	return &c
}

// Pinned reports whether an announcement is still inside its pin window at
// the given instant. It is a derived view; nothing mutates when it expires.
func (m *Message) Pinned(now time.Time, pinDuration time.Duration) bool {
	return m.Kind == KindAnnouncement && now.Sub(m.SentAt) < pinDuration
}

// SlowMode is a room's rate-limit configuration. The interval is fixed at
// room creation; only Enabled is mutable.
type SlowMode struct {
	Enabled  bool          `json:"enabled"`
	Interval time.Duration `json:"-"`
}

// IntervalSeconds is what goes on the wire.
func (s SlowMode) IntervalSeconds() int {
	return int(s.Interval / time.Second)
}
