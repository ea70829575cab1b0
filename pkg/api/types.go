package api

import (
	"github.com/yourusername/gomoku3d/internal/positionid"
	"github.com/yourusername/gomoku3d/pkg/engine"
	"github.com/yourusername/gomoku3d/pkg/resolver"
)

// CreateGameRequest is the request body for POST /api/games.
type CreateGameRequest struct {
	BoardSize int `json:"board_size,omitempty"` // N; 0 uses the server default
	WinLength int `json:"win_length,omitempty"` // 0 uses the server default
}

// MoveRequest places a stone at an intersection.
type MoveRequest struct {
	Col *int `json:"col"`
	Row *int `json:"row"`
}

// ClickRequest is a pointer press and release on the rendered board.
type ClickRequest struct {
	Down     resolver.Point       `json:"down"`
	Up       resolver.Point       `json:"up"`
	Viewport resolver.Viewport    `json:"viewport"`
	Camera   *resolver.CameraSpec `json:"camera,omitempty"`
}

// GameResponse is the full state of a game session.
type GameResponse struct {
	ID            string        `json:"id"`
	BoardSize     int           `json:"board_size"`
	WinLength     int           `json:"win_length"`
	Board         [][]int       `json:"board"` // board[row][col]: 0 empty, 1 black, 2 white
	CurrentPlayer engine.Color  `json:"current_player"`
	Phase         engine.Phase  `json:"phase"`
	Winner        engine.Color  `json:"winner,omitempty"`
	WinLine       []engine.Cell `json:"win_line,omitempty"`
	Scores        engine.Scores `json:"scores"`
	History       []engine.Move `json:"history"`
	Replaying     bool          `json:"replaying"`
	PositionID    string        `json:"position_id"`
}

// MoveResponse reports the outcome of a move. Rejected moves are not
// errors: Accepted is false and Code names the reason.
type MoveResponse struct {
	Accepted bool          `json:"accepted"`
	Code     string        `json:"code,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Move     *engine.Move  `json:"move,omitempty"`
	Won      bool          `json:"won,omitempty"`
	Draw     bool          `json:"draw,omitempty"`
	Winner   engine.Color  `json:"winner,omitempty"`
	Line     []engine.Cell `json:"line,omitempty"`
	Game     *GameResponse `json:"game,omitempty"`
}

// ClickResponse reports how a click was resolved and, when it hit the
// board, the resulting move.
type ClickResponse struct {
	IsClick  bool          `json:"is_click"`          // false when the pointer was dragged
	Resolved bool          `json:"resolved"`          // false when the ray missed the board
	Cell     *engine.Cell  `json:"cell,omitempty"`
	Move     *MoveResponse `json:"move,omitempty"`
}

// UndoResponse reports the outcome of an undo.
type UndoResponse struct {
	Accepted bool          `json:"accepted"`
	Code     string        `json:"code,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Move     *engine.Move  `json:"move,omitempty"` // the removed stone
	Game     *GameResponse `json:"game,omitempty"`
}

// ReplayStarted acknowledges a replay started over the WebSocket.
type ReplayStarted struct {
	Total   int   `json:"total"`
	DelayMS int64 `json:"delay_ms"`
}

// ReplayCancelResponse reports whether a running replay was cancelled.
type ReplayCancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error   string `json:"error"`             // Error message
	Code    string `json:"code,omitempty"`    // Error code
	Details string `json:"details,omitempty"` // Additional details
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status   string     `json:"status"`         // "ok" or "error"
	Version  string     `json:"version"`        // Server version
	Ready    bool       `json:"ready"`          // Whether sessions can be created
	Sessions int        `json:"sessions"`       // Open game sessions
	Pool     *PoolStats `json:"pool,omitempty"` // Worker pool statistics
}

// gameResponse builds the wire form of a session's current state.
func gameResponse(id string, snap *engine.Snapshot) *GameResponse {
	grid := snap.Board.Grid()
	board := make([][]int, len(grid))
	for row, cells := range grid {
		board[row] = make([]int, len(cells))
		for col, c := range cells {
			board[row][col] = int(c)
		}
	}

	return &GameResponse{
		ID:            id,
		BoardSize:     snap.BoardSize,
		WinLength:     snap.WinLength,
		Board:         board,
		CurrentPlayer: snap.CurrentPlayer,
		Phase:         snap.Phase,
		Winner:        snap.Winner,
		WinLine:       snap.WinLine,
		Scores:        snap.Scores,
		History:       snap.History,
		Replaying:     snap.Replaying,
		PositionID:    positionid.PositionID(snap.Board),
	}
}

// moveResponse converts an engine move result.
func moveResponse(res engine.MoveResult) *MoveResponse {
	resp := &MoveResponse{Accepted: res.Accepted}
	if !res.Accepted {
		resp.Code = engine.ReasonCode(res.Reason)
		resp.Reason = res.Reason.Error()
		return resp
	}
	m := res.Move
	resp.Move = &m
	resp.Won = res.Won
	resp.Draw = res.Draw
	resp.Winner = res.Winner
	resp.Line = res.Line
	return resp
}

// undoResponse converts an engine undo result.
func undoResponse(res engine.UndoResult) *UndoResponse {
	resp := &UndoResponse{Accepted: res.Accepted}
	if !res.Accepted {
		resp.Code = engine.ReasonCode(res.Reason)
		resp.Reason = res.Reason.Error()
		return resp
	}
	m := res.Move
	resp.Move = &m
	return resp
}
