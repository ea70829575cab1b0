package engine

import "fmt"

// EventType identifies what changed in an Event.
type EventType int

const (
	EventStone       EventType = iota // a stone was placed
	EventTurn                         // the player to move changed
	EventWin                          // a placement won the round
	EventScores                       // scores changed
	EventUndo                         // a stone was removed by undo
	EventReset                        // the board was cleared
	EventDraw                         // the board filled without a winner
	EventReplayStart                  // a replay began; redraw from an empty board
	EventReplayStep                   // one replayed stone
	EventReplayDone                   // replay finished or was cancelled
	EventLoad                         // the round was replaced by Load; redraw from a snapshot
)

var eventNames = [...]string{
	EventStone:       "stone",
	EventTurn:        "turn",
	EventWin:         "win",
	EventScores:      "scores",
	EventUndo:        "undo",
	EventReset:       "reset",
	EventDraw:        "draw",
	EventReplayStart: "replay_start",
	EventReplayStep:  "replay_step",
	EventReplayDone:  "replay_done",
	EventLoad:        "load",
}

func (t EventType) String() string {
	if t >= 0 && int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// MarshalText encodes the event name.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes an event name, so clients can read events back.
func (t *EventType) UnmarshalText(text []byte) error {
	for i, name := range eventNames {
		if name == string(text) {
			*t = EventType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event type %q", text)
}

// Event is a notification from the engine to presentation code.
// Only the fields relevant to Type are set.
type Event struct {
	Type      EventType `json:"type"`
	Col       int       `json:"col"`
	Row       int       `json:"row"`
	Color     Color     `json:"color,omitempty"`
	Seq       int       `json:"seq,omitempty"`
	Player    Color     `json:"current_player,omitempty"`
	Winner    Color     `json:"winner,omitempty"`
	Line      []Cell    `json:"line,omitempty"`
	Scores    *Scores   `json:"scores,omitempty"`
	Total     int       `json:"total,omitempty"`     // replay or load length
	Cancelled bool      `json:"cancelled,omitempty"` // replay_done only
}

// Sink receives engine events. Sinks run synchronously on the goroutine that
// mutated the engine and must not call the engine's mutating methods.
type Sink interface {
	Notify(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Notify calls f(ev).
func (f SinkFunc) Notify(ev Event) { f(ev) }
