package core

import "errors"

// ErrHubClosed is returned when a connection arrives after the hub's Run
// loop has stopped.
var ErrHubClosed = errors.New("hub closed")
