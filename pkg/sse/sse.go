// Package sse writes Server-Sent Events.
//
//	stream, err := sse.New(c.W, c.R)
//	if err != nil {
//	    return
//	}
//	stream.Send("status", map[string]any{"status": "Pendente"})
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrUnsupported = errors.New("sse: response writer cannot flush")

// Stream is an open event stream to one client.
type Stream struct {
	w  http.ResponseWriter
	r  *http.Request
	rc *http.ResponseController
}

// New sets the event-stream headers, lifts the server's write deadline and
// flushes the headers. It answers 500 itself when the writer cannot flush.
func New(w http.ResponseWriter, r *http.Request) (*Stream, error) {
	rc := http.NewResponseController(w)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	_ = rc.SetWriteDeadline(time.Time{})
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return &Stream{w: w, r: r, rc: rc}, nil
}

// Send writes a named event with a JSON payload.
func (s *Stream) Send(event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	return s.SendRaw(event, payload)
}

// SendRaw writes a named event whose data is already encoded. An empty
// event name sends an unnamed "message" event.
func (s *Stream) SendRaw(event string, data []byte) error {
	if event != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Comment writes a comment line; clients ignore it, proxies see traffic.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Done is closed when the client disconnects.
func (s *Stream) Done() <-chan struct{} {
	return s.r.Context().Done()
}
