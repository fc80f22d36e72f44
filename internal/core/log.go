package core

import "sync"

// MessageLog is a room's append-only message sequence. Appends are
// exclusive, reads are shared; a read that starts after an append
// returns is guaranteed to observe it.
type MessageLog struct {
	mu   sync.RWMutex
	msgs []Message
}

// NewMessageLog constructs an empty log.
func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Append adds a message and returns its assigned sequence number,
// which equals the log length before the append.
func (l *MessageLog) Append(text string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	seq := uint64(len(l.msgs))
	l.msgs = append(l.msgs, Message{Seq: seq, Text: text})
	return seq
}

// ReadSince returns every message the client has not consumed yet,
// given a cursor counting messages already seen. A cursor at or past
// the end yields an empty result, never an error.
func (l *MessageLog) ReadSince(cursor uint64) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if cursor >= uint64(len(l.msgs)) {
		return nil
	}
	out := make([]Message, len(l.msgs)-int(cursor))
	copy(out, l.msgs[cursor:])
	return out
}

// Len returns the number of messages appended so far.
func (l *MessageLog) Len() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.msgs))
}
