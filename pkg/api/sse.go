package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/yourusername/gomoku3d/pkg/engine"
)

// maxReplayDelay bounds the per-step delay a client may request.
const maxReplayDelay = 10 * time.Second

// replaySlotWait is how long a websocket replay queues for a slow slot.
const replaySlotWait = time.Second

// replayEventNames maps replay events to SSE event names.
var replayEventNames = map[engine.EventType]string{
	engine.EventReplayStart: "start",
	engine.EventReplayStep:  "step",
	engine.EventReplayDone:  "done",
}

// Replay handles Server-Sent Events for streaming a replay of the game.
// GET /api/games/{id}/replay?delay_ms=...
//
// The stream sends a "start" event with the number of moves, one "step"
// event per stone, and a final "done" event. Disconnecting cancels the
// replay.
func (h *Handlers) Replay(w http.ResponseWriter, r *http.Request) {
	// Replays hold a connection open for their whole run, so they use the
	// slow pool and fail fast when it is full.
	if h.pool != nil {
		if !h.pool.TryAcquireSlow() {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseSlow()
	}

	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	delayMS := parseIntParam(r.URL.Query().Get("delay_ms"), int(engine.DefaultReplayDelay/time.Millisecond))
	delay := time.Duration(delayMS) * time.Millisecond
	if delay < 0 || delay > maxReplayDelay {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("delay_ms must be between 0 and %d", maxReplayDelay.Milliseconds()), "INVALID_DELAY")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported", "STREAMING_UNSUPPORTED")
		return
	}

	queue := newEventQueue()
	task, err := sess.Engine.StartReplay(r.Context(), delay, queue)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrReplayInProgress) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error(), "REPLAY_IN_PROGRESS")
		return
	}
	defer task.Cancel()

	// A long replay outlives the server's write timeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Printf("Replay %s: clearing write deadline: %v", sess.ID, err)
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-queue.ready:
			for _, ev := range queue.drain() {
				name, ok := replayEventNames[ev.Type]
				if !ok {
					continue
				}
				writeSSEEvent(w, name, ev)
				flusher.Flush()
				if ev.Type == engine.EventReplayDone {
					return
				}
			}
		case <-r.Context().Done():
			return
		}
	}
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data interface{}) {
	fmt.Fprintf(w, "event: %s\n", event)
	if data != nil {
		jsonData, _ := json.Marshal(data)
		fmt.Fprintf(w, "data: %s\n", jsonData)
	}
	fmt.Fprintf(w, "\n")
}

// parseIntParam parses an integer from a string with a default value.
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	var val int
	if _, err := fmt.Sscanf(s, "%d", &val); err != nil {
		return defaultVal
	}
	return val
}
