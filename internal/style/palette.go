package style

// ANSI escape sequences are part of the wire format: every client receives
// the same bytes and renders them in its own terminal. Rendering must not
// depend on whether the server's stdout is a terminal, so the sequences are
// fixed constants rather than a terminal-aware color library.
const (
	Reset = "\x1b[0m"
	Grey  = "\x1b[90m"

	// RoomAll is reserved for the default room and never handed out by the
	// palette.
	RoomAll = "\x1b[31m"
)

var palette = []string{
	"\x1b[32m", // green
	"\x1b[33m", // yellow
	"\x1b[34m", // blue
	"\x1b[35m", // magenta
	"\x1b[36m", // cyan
	"\x1b[37m", // white
}

// Palette hands out colors round-robin. Clients and rooms draw from the
// same cursor, so assignment depends only on the global order of draws.
// Not safe for concurrent use; the hub goroutine is the sole caller.
type Palette struct {
	next int
}

// Next returns the next color in the cycle.
func (p *Palette) Next() string {
	c := palette[p.next%len(palette)]
	p.next++
	return c
}

// Size returns the number of distinct colors in the cycle.
func Size() int { return len(palette) }
