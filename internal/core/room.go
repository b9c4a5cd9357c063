package core

// Room is a named broadcast scope. The member set is owned by the hub
// goroutine; rooms are never deleted once created.
type Room struct {
	Name string
	Tag  string // ANSI color shown in notices about this room

	members map[*Session]struct{}
}

// NewRoom constructs a room with no members.
func NewRoom(name, tag string) *Room {
	return &Room{
		Name:    name,
		Tag:     tag,
		members: make(map[*Session]struct{}),
	}
}

// Add inserts a session into the member set.
func (r *Room) Add(s *Session) {
	r.members[s] = struct{}{}
}

// Remove deletes a session from the member set. Removing a non-member is a
// no-op.
func (r *Room) Remove(s *Session) {
	delete(r.members, s)
}

// Len returns the current member count.
func (r *Room) Len() int {
	return len(r.members)
}

// Broadcast delivers text once to every current member except exclude.
// Delivery is fire-and-forget; members whose connection is closed or whose
// buffer is full are skipped, and their identifiers are returned so the
// caller can log the drop.
func (r *Room) Broadcast(text string, exclude *Session) []string {
	var dropped []string
	for m := range r.members {
		if m == exclude {
			continue
		}
		if !m.deliver(text) {
			dropped = append(dropped, m.ID)
		}
	}
	return dropped
}
