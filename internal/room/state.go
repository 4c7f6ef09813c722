package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/AnychainX/Live-Commerce-Chat/internal/domain"
)

// Limits bound the per-room state. Zero values are replaced by defaults.
type Limits struct {
	MaxMessageLength int
	LogCapacity      int
	SlowModeInterval time.Duration
	PinDuration      time.Duration
}

// DefaultLimits returns the production limits.
func DefaultLimits() Limits {
	return Limits{
		MaxMessageLength: 500,
		LogCapacity:      300,
		SlowModeInterval: 5 * time.Second,
		PinDuration:      30 * time.Second,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxMessageLength <= 0 {
		l.MaxMessageLength = d.MaxMessageLength
	}
	if l.LogCapacity <= 0 {
		l.LogCapacity = d.LogCapacity
	}
	if l.SlowModeInterval <= 0 {
		l.SlowModeInterval = d.SlowModeInterval
	}
	if l.PinDuration <= 0 {
		l.PinDuration = d.PinDuration
	}
	return l
}

// State owns all mutable state of a single room: roster, message log, ban
// set, and slow-mode config. A single mutex serializes every operation so
// the capacity, ban, and rate-limit invariants hold under concurrent
// connections. Rooms are independent; operations on different rooms never
// contend.
type State struct {
	mu sync.Mutex

	clock  Clock
	limits Limits

	room    domain.Room
	hostKey string

	participants map[string]*domain.Participant
	banned       map[string]struct{}
	log          []*domain.Message
	slowMode     domain.SlowMode
	seq          uint64
}

func newState(r domain.Room, hostKey string, clock Clock, limits Limits) *State {
	return &State{
		clock:        clock,
		limits:       limits,
		room:         r,
		hostKey:      hostKey,
		participants: make(map[string]*domain.Participant),
		banned:       make(map[string]struct{}),
		slowMode:     domain.SlowMode{Enabled: false, Interval: limits.SlowModeInterval},
	}
}

// ID returns the room's immutable identifier.
func (s *State) ID() string {
	return s.room.ID
}

// Snapshot returns the public room metadata with the live viewer count.
func (s *State) Snapshot() domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() domain.Room {
	r := s.room
	r.ViewerCount = len(s.participants)
	return r
}

func (s *State) slowModeConfigLocked() domain.SlowModeConfig {
	return domain.SlowModeConfig{
		Enabled:         s.slowMode.Enabled,
		IntervalSeconds: s.slowMode.IntervalSeconds(),
	}
}

// JoinSnapshot is the full room view handed to a joining client.
type JoinSnapshot struct {
	Room     domain.Room
	Messages []*domain.Message
	Banned   []string
	SlowMode domain.SlowModeConfig
	Self     domain.Participant
}

// Join adds the client to the roster, or refreshes its record when it is
// already present. The role is derived server-side: host if and only if the
// presented key matches the room's host key — a bare role claim from the
// client is never trusted. The banned flag comes from the ban set, so a
// banned client that reconnects rejoins as banned.
func (s *State) Join(clientID, displayName, hostKey string) JoinSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	role := domain.RoleViewer
	if hostKey != "" && hostKey == s.hostKey {
		role = domain.RoleHost
	}

	p, ok := s.participants[clientID]
	if !ok {
		p = &domain.Participant{
			ClientID: clientID,
			JoinedAt: s.clock.Now(),
		}
		s.participants[clientID] = p
	}
	p.Name = displayName
	p.Role = role
	_, p.Banned = s.banned[clientID]

	bannedIDs := make([]string, 0, len(s.banned))
	for id := range s.banned {
		bannedIDs = append(bannedIDs, id)
	}

	// Clones, not the live pointers: the snapshot is marshaled after the
	// room lock is released, while reactions and deletes keep mutating the
	// log entries under it.
	messages := make([]*domain.Message, len(s.log))
	for i, m := range s.log {
		messages[i] = m.Clone()
	}

	return JoinSnapshot{
		Room:     s.snapshotLocked(),
		Messages: messages,
		Banned:   bannedIDs,
		SlowMode: s.slowModeConfigLocked(),
		Self:     *p,
	}
}

// Leave removes the client from the roster. Leaving twice, or without ever
// having joined, is a no-op. The returned count is the roster size after
// removal; left reports whether anything changed.
func (s *State) Leave(clientID string) (count int, left bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[clientID]; !ok {
		return len(s.participants), false
	}
	delete(s.participants, clientID)
	return len(s.participants), true
}

// ViewerCount returns the current roster size.
func (s *State) ViewerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participants)
}

// Send validates and appends a message. Checks run in a fixed order, each a
// distinct failure: membership, ban, announcement gating, slow mode. A
// slow-mode rejection does not advance the sender's last-send timestamp, so
// the remaining wait keeps shrinking.
func (s *State) Send(clientID, body string, kind domain.MessageKind) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[clientID]
	if !ok {
		return nil, ErrNotInRoom
	}
	if p.Banned {
		return nil, ErrBanned
	}
	if kind == domain.KindAnnouncement && p.Role != domain.RoleHost {
		return nil, ErrHostOnly
	}
	now := s.clock.Now()
	if s.slowMode.Enabled && p.Role == domain.RoleViewer && !p.LastSentAt.IsZero() {
		elapsed := now.Sub(p.LastSentAt)
		if elapsed < s.slowMode.Interval {
			return nil, &RateLimitError{Remaining: s.slowMode.Interval - elapsed}
		}
	}

	if kind != domain.KindAnnouncement {
		kind = domain.KindChat
	}
	if r := []rune(body); len(r) > s.limits.MaxMessageLength {
		body = string(r[:s.limits.MaxMessageLength])
	}

	s.seq++
	msg := &domain.Message{
		ID:         fmt.Sprintf("%d-%s", s.seq, clientID),
		Seq:        s.seq,
		AuthorID:   clientID,
		AuthorName: p.Name,
		Body:       body,
		Kind:       kind,
		SentAt:     now,
	}

	s.log = append(s.log, msg)
	if len(s.log) > s.limits.LogCapacity {
		s.log = s.log[1:]
	}
	s.room.MessageCount++

	if p.Role == domain.RoleViewer {
		p.LastSentAt = now
	}

	return msg, nil
}

// Delete soft-deletes a message. Host-only. An unknown id succeeds silently
// so probing clients learn nothing about evicted log contents; deleting an
// already-deleted message is a harmless no-op. The returned flag reports
// whether a broadcast is warranted.
func (s *State) Delete(clientID, messageID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isHostLocked(clientID) {
		return false, ErrHostOnly
	}
	msg := s.findLocked(messageID)
	if msg == nil {
		return false, nil
	}
	msg.Deleted = true
	return true, nil
}

// React toggles the client's reaction symbol on a message. No role
// restriction; reacting to a soft-deleted message is permitted. An unknown
// message id is a silent no-op. Returns the message's full reaction map
// after the toggle.
func (s *State) React(clientID, messageID, symbol string) (map[string][]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[clientID]; !ok {
		return nil, false, ErrNotInRoom
	}
	msg := s.findLocked(messageID)
	if msg == nil {
		return nil, false, nil
	}

	ids := msg.Reactions[symbol]
	removed := false
	for i, id := range ids {
		if id == clientID {
			ids = append(ids[:i], ids[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		if len(ids) == 0 {
			delete(msg.Reactions, symbol)
		} else {
			msg.Reactions[symbol] = ids
		}
	} else {
		if msg.Reactions == nil {
			msg.Reactions = make(map[string][]string)
		}
		msg.Reactions[symbol] = append(ids, clientID)
	}

	return msg.Reactions, true, nil
}

// ClearChat empties the log. Host-only. The ban set and slow-mode config
// are untouched.
func (s *State) ClearChat(clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isHostLocked(clientID) {
		return ErrHostOnly
	}
	s.log = nil
	return nil
}

// Ban adds the target to the ban set and flags a present participant.
// Host-only, idempotent. A ban never disconnects the target; it only blocks
// future sends.
func (s *State) Ban(clientID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isHostLocked(clientID) {
		return ErrHostOnly
	}
	s.banned[targetID] = struct{}{}
	if p, ok := s.participants[targetID]; ok {
		p.Banned = true
	}
	return nil
}

// Unban removes the target from the ban set and clears the flag on a
// present participant. Host-only, idempotent.
func (s *State) Unban(clientID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isHostLocked(clientID) {
		return ErrHostOnly
	}
	delete(s.banned, targetID)
	if p, ok := s.participants[targetID]; ok {
		p.Banned = false
	}
	return nil
}

// SetSlowMode flips slow mode on or off. The interval itself is fixed at
// room creation. Host-only.
func (s *State) SetSlowMode(clientID string, enabled bool) (domain.SlowModeConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isHostLocked(clientID) {
		return domain.SlowModeConfig{}, ErrHostOnly
	}
	s.slowMode.Enabled = enabled
	return s.slowModeConfigLocked(), nil
}

// Pinned returns the announcements still inside their pin window, oldest
// first. Deleted announcements are never surfaced.
func (s *State) Pinned() []*domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var pinned []*domain.Message
	for _, m := range s.log {
		if !m.Deleted && m.Pinned(now, s.limits.PinDuration) {
			pinned = append(pinned, m.Clone())
		}
	}
	return pinned
}

func (s *State) isHostLocked(clientID string) bool {
	p, ok := s.participants[clientID]
	return ok && p.Role == domain.RoleHost
}

func (s *State) findLocked(messageID string) *domain.Message {
	for _, m := range s.log {
		if m.ID == messageID {
			return m
		}
	}
	return nil
}
