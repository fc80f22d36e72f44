package proto

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind discriminates the three request shapes the server understands.
type Kind int

const (
	// KindPage asks for the static chat page.
	KindPage Kind = iota
	// KindPull asks for messages newer than a cursor.
	KindPull
	// KindPush appends a message to a room.
	KindPush
)

// Request is a decoded request line.
type Request struct {
	Kind   Kind
	Room   string
	Cursor uint64 // pull only
	Text   string // push only
}

// DecodeError describes why a request line could not be understood.
// Its reason is sent back to the client verbatim.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return e.Reason
}

// The protocol is the first line of an HTTP/1.0 exchange; everything
// after it is ignored. Room segments are alphanumeric, and an empty
// segment means the default room.
var (
	pageRequest = regexp.MustCompile(`^GET /([A-Za-z0-9]*/?) HTTP`)
	pullRequest = regexp.MustCompile(`^POST /([A-Za-z0-9]*)/?pull\?last=([0-9]+) HTTP`)
	pushRequest = regexp.MustCompile(`^POST /([A-Za-z0-9]*)/?push\?msg=([^ ]*) HTTP`)
)

// ParseRequest decodes a request line into one of the three request
// shapes. Unrecognized lines yield a *DecodeError.
func ParseRequest(line string) (Request, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Request{}, &DecodeError{Reason: "Empty request."}
	}

	if m := pullRequest.FindStringSubmatch(line); m != nil {
		cursor, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return Request{}, &DecodeError{Reason: "Bad cursor."}
		}
		return Request{Kind: KindPull, Room: m[1], Cursor: cursor}, nil
	}
	if m := pushRequest.FindStringSubmatch(line); m != nil {
		return Request{Kind: KindPush, Room: m[1], Text: m[2]}, nil
	}
	if m := pageRequest.FindStringSubmatch(line); m != nil {
		return Request{Kind: KindPage, Room: strings.TrimSuffix(m[1], "/")}, nil
	}

	return Request{}, &DecodeError{Reason: "Malformed request."}
}
