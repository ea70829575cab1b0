package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/gomoku3d/pkg/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// WSMessage is a generic WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`    // Message type: "move", "click", "undo", "reset", "replay", "cancel_replay", "state", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a generic WebSocket response.
type WSResponse struct {
	Type    string      `json:"type"`              // Response type: "result", "event", "error", "pong"
	ID      string      `json:"id,omitempty"`      // Request ID
	Payload interface{} `json:"payload,omitempty"` // Response data
	Error   string      `json:"error,omitempty"`   // Error message if any
}

// WSReplayRequest is the payload of a "replay" message.
type WSReplayRequest struct {
	DelayMS *int64 `json:"delay_ms,omitempty"`
}

// WSClient represents a connected WebSocket client bound to one session.
type WSClient struct {
	conn     *websocket.Conn
	session  *Session
	sendChan chan WSResponse
	ctx      context.Context // cancelled when the connection closes
	pool     *WorkerPool
	mu       sync.Mutex
}

// WebSocket handles WebSocket connections for playing a session in real time.
// Every engine event of the session is pushed to the client as an "event"
// message, including those caused by other clients.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &WSClient{conn: conn, session: sess, sendChan: make(chan WSResponse, 256), ctx: ctx, pool: h.pool}

	queue := newEventQueue()
	unsubscribe := sess.Engine.Subscribe(queue)

	var pumps sync.WaitGroup
	pumps.Add(2)
	go func() {
		defer pumps.Done()
		client.writePump()
	}()

	// The event pump is stopped before sendChan is closed, so it never
	// sends on a closed channel.
	eventsDone := make(chan struct{})
	go func() {
		defer close(eventsDone)
		defer pumps.Done()
		client.eventPump(queue)
	}()

	client.readPump()

	cancel()
	unsubscribe()
	queue.close()
	<-eventsDone
	close(client.sendChan)
	pumps.Wait()
}

// writePump writes queued responses. After a write error it keeps draining
// sendChan so producers never block on a dead connection.
func (c *WSClient) writePump() {
	defer c.conn.Close()
	failed := false
	for msg := range c.sendChan {
		if failed {
			continue
		}
		c.mu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		err := c.conn.WriteJSON(msg)
		c.mu.Unlock()
		if err != nil {
			failed = true
			c.conn.Close()
		}
	}
}

// eventPump forwards engine events to the client until the queue closes.
func (c *WSClient) eventPump(queue *eventQueue) {
	for {
		select {
		case <-queue.ready:
			for _, ev := range queue.drain() {
				c.sendChan <- WSResponse{Type: "event", Payload: ev}
			}
		case <-queue.closed:
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer c.conn.Close()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	defer func() {
		if v := recover(); v != nil {
			log.Printf("panic handling %q from session %s: %v", msg.Type, c.session.ID, v)
			c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "internal error"}
		}
	}()

	switch msg.Type {
	case "move":
		c.handleMove(msg)
	case "click":
		c.handleClick(msg)
	case "undo":
		resp := undoResponse(c.session.Engine.Undo())
		resp.Game = c.state()
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
	case "reset":
		c.session.Engine.Reset()
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: c.state()}
	case "replay":
		c.handleReplay(msg)
	case "cancel_replay":
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: ReplayCancelResponse{Cancelled: c.session.Engine.CancelReplay()}}
	case "state":
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: c.state()}
	case "ping":
		c.sendChan <- WSResponse{Type: "pong", ID: msg.ID}
	default:
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type"}
	}
}

func (c *WSClient) state() *GameResponse {
	return gameResponse(c.session.ID, c.session.Engine.Snapshot())
}

func (c *WSClient) handleMove(msg WSMessage) {
	var req MoveRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	if req.Col == nil || req.Row == nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "col and row are required"}
		return
	}
	resp := moveResponse(c.session.Engine.AttemptMove(*req.Col, *req.Row))
	resp.Game = c.state()
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
}

func (c *WSClient) handleClick(msg WSMessage) {
	var req ClickRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	resp, err := click(c.session, req)
	if err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: err.Error()}
		return
	}
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
}

// handleReplay starts a replay whose events reach this client, and every
// other subscriber of the session, through the event stream. Closing the
// connection cancels it. The replay holds a slow pool slot until it ends,
// waiting at most replaySlotWait for one.
func (c *WSClient) handleReplay(msg WSMessage) {
	var req WSReplayRequest
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
			return
		}
	}
	delay := engine.DefaultReplayDelay
	if req.DelayMS != nil {
		delay = time.Duration(*req.DelayMS) * time.Millisecond
	}
	if delay < 0 || delay > maxReplayDelay {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid delay"}
		return
	}

	release := func() {}
	if c.pool != nil {
		ctx, cancel := context.WithTimeout(c.ctx, replaySlotWait)
		err := c.pool.AcquireSlow(ctx)
		cancel()
		if err != nil {
			c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "server busy"}
			return
		}
		release = c.pool.ReleaseSlow
	}

	task, err := c.session.Engine.StartReplay(c.ctx, delay, nil)
	if err != nil {
		release()
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: err.Error()}
		return
	}
	go func() {
		<-task.Done()
		release()
	}()
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: ReplayStarted{
		Total:   task.Total(),
		DelayMS: delay.Milliseconds(),
	}}
}
