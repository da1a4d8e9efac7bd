package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Events sent on the suggestion stream
const (
	eventPending    = "pending"
	eventSuggestion = "suggestion"
	eventNotice     = "notice"
	eventError      = "error"
)

// sseKeepAlive is how often a comment line is sent while the assistant is working,
// so proxies do not close an idle stream
var sseKeepAlive = 15 * time.Second

// eventStream writes Server-Sent Events for one suggestion request
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newEventStream sets the SSE headers. It fails when w cannot flush.
func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &eventStream{w: w, flusher: flusher}, nil
}

// send writes one event with a JSON payload
func (s *eventStream) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *eventStream) keepAlive() error {
	if _, err := fmt.Fprint(s.w, ": keep-alive\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *eventStream) pending(stepID string) error {
	return s.send(eventPending, map[string]string{"stepId": stepID})
}

func (s *eventStream) suggestion(resp SuggestionResponse) error {
	return s.send(eventSuggestion, resp)
}

// notice tells the client the assistant could not help and the user should type the answer
func (s *eventStream) notice(stepID, notice string) error {
	return s.send(eventNotice, map[string]string{"stepId": stepID, "notice": notice})
}

func (s *eventStream) fail(err error) error {
	return s.send(eventError, map[string]any{"error": err.Error(), "status": HTTPStatus(err)})
}
