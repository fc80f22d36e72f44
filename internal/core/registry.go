package core

import "sync"

// DefaultRoom is the room clients land in when they omit a room name.
const DefaultRoom = "DEFAULT"

// Registry maps room names to their message logs, creating logs
// lazily. At most one log ever exists per name, however many callers
// race on first reference. The registry lock covers only the
// check-and-insert; log operations never hold it, so rooms do not
// contend with each other.
type Registry struct {
	mu   sync.Mutex
	logs map[string]*MessageLog
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		logs: make(map[string]*MessageLog),
	}
}

// GetOrCreate returns the log for the named room, creating it on
// first reference. An empty name canonicalizes to DefaultRoom.
func (r *Registry) GetOrCreate(name string) *MessageLog {
	if name == "" {
		name = DefaultRoom
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	log, ok := r.logs[name]
	if !ok {
		log = NewMessageLog()
		r.logs[name] = log
	}
	return log
}

// Rooms returns the number of rooms created so far.
func (r *Registry) Rooms() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.logs)
}
