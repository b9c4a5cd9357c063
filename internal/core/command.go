package core

import "strings"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandPlain broadcasts chat text to the sender's current room.
	CommandPlain CommandKind = iota
	// CommandCreateRoom creates a room and moves the sender into it.
	CommandCreateRoom
	// CommandJoinRoom switches the sender to an existing room.
	CommandJoinRoom
	// CommandExit switches the sender back to the default room.
	CommandExit
	// CommandWhisper sends a private message to one session.
	CommandWhisper
	// CommandListRooms lists every room with its member count.
	CommandListRooms
	// CommandWho lists the identifiers in the sender's current room.
	CommandWho
)

// Command is one classified input line.
type Command struct {
	Kind   CommandKind
	Room   string // CommandCreateRoom, CommandJoinRoom
	Target string // CommandWhisper
	Text   string // CommandPlain body or whisper body
}

// ParseLine classifies a raw input line. A line is a command only when its
// first whitespace-delimited token is "/" followed by a known keyword;
// anything else, including unrecognized "/" prefixes, is plain chat text.
// Missing arguments are left empty for the hub to reject with feedback.
func ParseLine(raw string) Command {
	line := strings.TrimSpace(raw)
	if !strings.HasPrefix(line, "/") {
		return Command{Kind: CommandPlain, Text: line}
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/create":
		return Command{Kind: CommandCreateRoom, Room: argument(fields)}
	case "/join":
		return Command{Kind: CommandJoinRoom, Room: argument(fields)}
	case "/exit":
		return Command{Kind: CommandExit}
	case "/w":
		target := argument(fields)
		rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		_, body, _ := strings.Cut(rest, " ")
		return Command{Kind: CommandWhisper, Target: target, Text: strings.TrimSpace(body)}
	case "/list":
		return Command{Kind: CommandListRooms}
	case "/who":
		return Command{Kind: CommandWho}
	}
	return Command{Kind: CommandPlain, Text: line}
}

func argument(fields []string) string {
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
