package proto

import (
	"fmt"
	"io"
	"strings"
)

// Response statuses and content types used on the wire.
const (
	StatusOK       = "200 OK"
	StatusNotFound = "404 NOT FOUND"
	StatusBusy     = "503 SERVICE UNAVAILABLE"

	ContentHTML = "text/html"
	ContentText = "text/plain"

	// NextCursorHeader tells a pulling client the cursor to use on its
	// next poll: the cursor it sent plus the number of messages returned.
	NextCursorHeader = "X-Next-Cursor"
)

// Header is one extra response header.
type Header struct {
	Name  string
	Value string
}

// Response is a minimal HTTP/1.0 reply: status line, content type,
// content length, optional extra headers, then the body.
type Response struct {
	Status      string
	ContentType string
	Headers     []Header
	Body        string
}

// OK builds a success response.
func OK(contentType, body string) Response {
	return Response{Status: StatusOK, ContentType: contentType, Body: body}
}

// NotFound builds a rejection carrying a human-readable reason.
func NotFound(reason string) Response {
	return Response{Status: StatusNotFound, ContentType: ContentText, Body: reason}
}

// Busy is sent by the acceptor when the job queue is full.
func Busy() Response {
	return Response{Status: StatusBusy, ContentType: ContentText, Body: "busy"}
}

// WithHeader returns a copy of the response with one extra header.
func (r Response) WithHeader(name, value string) Response {
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
	return r
}

// WriteTo serializes the response onto the connection.
func (r Response) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.0 %s\r\n", r.Status)
	fmt.Fprintf(&b, "Content-Type: %s; charset=utf-8\r\n", r.ContentType)
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(r.Body))
	for _, h := range r.Headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h.Name, h.Value)
	}
	b.WriteString("\r\n")
	b.WriteString(r.Body)

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
