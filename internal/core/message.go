package core

// Message is a single chat message as stored in a room's log.
// Seq is the message's 0-based position in the log and never changes.
type Message struct {
	Seq  uint64
	Text string
}
