package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/expidus/lunar-remote/backend"
	"github.com/expidus/lunar-remote/events"
	"github.com/expidus/lunar-remote/logger"
)

const (
	defaultKeepAlive = 30 * time.Second
	minKeepAlive     = 10 * time.Second
	maxKeepAlive     = 120 * time.Second
)

// eventStream writes Server-Sent Events frames and flushes after each one.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func openEventStream(w http.ResponseWriter) (*eventStream, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	return &eventStream{w: w, flusher: flusher}, true
}

func (s *eventStream) write(frame string) error {
	if _, err := io.WriteString(s.w, frame); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// event sends e as a named event with its data JSON-encoded on one line.
func (s *eventStream) event(e events.Event) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Type, err)
	}
	return s.write(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, data))
}

// comment sends a line EventSource clients ignore, keeping proxies from
// closing an idle connection.
func (s *eventStream) comment(text string) error {
	return s.write(": " + text + "\n\n")
}

func (s *eventStream) info(message string) error {
	return s.event(events.Event{Type: events.TypeServerInfo, Data: message})
}

// sseHandler streams broadcaster events to one client: a connected notice,
// then the filtered events, and a bye notice when the request ends.
func sseHandler(b *backend.Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keepAlive, err := parseKeepAlive(r.URL.Query().Get("keepalive"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		stream, ok := openEventStream(w)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		ch := b.SubscribeFunc(parseFilter(r))
		defer b.Unsubscribe(ch)

		if err := stream.info("connected"); err != nil {
			logger.Debug("[sse] client gone before first event: %v", err)
			return
		}

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				if err := stream.info("bye"); err != nil {
					logger.Debug("[sse] failed to say bye: %v", err)
				}
				return
			case <-ticker.C:
				if err := stream.comment("alive"); err != nil {
					logger.Debug("[sse] keepalive failed, closing: %v", err)
					return
				}
			case e, open := <-ch:
				if !open {
					return
				}
				if err := stream.event(e); err != nil {
					logger.Warn("[sse] dropping client: %v", err)
					return
				}
				ticker.Reset(keepAlive)
			}
		}
	}
}

// parseKeepAlive reads a duration such as "30s" or "1m", or a bare number
// of seconds. Empty yields the default.
func parseKeepAlive(raw string) (time.Duration, error) {
	if raw == "" {
		return defaultKeepAlive, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		secs, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return 0, errors.New("keepalive must be a duration such as 30s")
		}
		d = time.Duration(secs) * time.Second
	}
	if d < minKeepAlive || d > maxKeepAlive {
		return 0, fmt.Errorf("keepalive must be between %s and %s", minKeepAlive, maxKeepAlive)
	}
	return d, nil
}

// parseFilter builds an event filter from ?types=trash.changed,... and
// returns nil (pass everything) without it. server.info always passes.
func parseFilter(r *http.Request) func(events.Event) bool {
	var include []string
	for _, t := range strings.Split(r.URL.Query().Get("types"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			include = append(include, t)
		}
	}
	if len(include) > 0 && !slices.Contains(include, events.TypeServerInfo) {
		include = append(include, events.TypeServerInfo)
	}
	return events.FilterTypes(include)
}
