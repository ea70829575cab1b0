// Package main provides C-compatible functions for building a shared library.
// Build with: go build -buildmode=c-shared -o libgomoku3d.so ./pkg/capi
//
// Games are addressed by integer handles returned from gomoku_new. Strings
// returned to C must be released with gomoku_free_string.
package main

/*
#include <stdlib.h>
#include <stdint.h>
*/
import "C"
import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/yourusername/gomoku3d/internal/positionid"
	"github.com/yourusername/gomoku3d/pkg/engine"
	"github.com/yourusername/gomoku3d/pkg/resolver"
)

const version = "1.0.0"

// game is one engine behind a handle.
type game struct {
	engine   *engine.Engine
	resolver resolver.Resolver
}

var (
	games      = make(map[C.int]*game)
	nextHandle C.int = 1
	gamesMutex sync.RWMutex
	lastError  string
	errorMutex sync.Mutex
)

var errBadHandle = errors.New("invalid game handle")

// setError stores an error message for later retrieval.
func setError(err error) {
	errorMutex.Lock()
	defer errorMutex.Unlock()
	if err != nil {
		lastError = err.Error()
	} else {
		lastError = ""
	}
}

// lookup returns the game for a handle, recording an error if there is none.
func lookup(h C.int) *game {
	gamesMutex.RLock()
	g := games[h]
	gamesMutex.RUnlock()
	if g == nil {
		setError(fmt.Errorf("%w: %d", errBadHandle, int(h)))
	}
	return g
}

// writeJSON marshals v into *out. It returns 0 on success.
func writeJSON(out **C.char, v interface{}) C.int {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		setError(err)
		*out = C.CString(`{"error": "encoding failed"}`)
		return -1
	}
	*out = C.CString(string(jsonBytes))
	setError(nil)
	return 0
}

//export gomoku_version
func gomoku_version() *C.char {
	return C.CString(version)
}

//export gomoku_last_error
func gomoku_last_error() *C.char {
	errorMutex.Lock()
	defer errorMutex.Unlock()
	if lastError == "" {
		return nil
	}
	return C.CString(lastError)
}

// gomoku_new creates a game. Zero arguments select the defaults (a 15x15
// board, five in a row). It returns a handle, or -1 on error.
//
//export gomoku_new
func gomoku_new(boardSize, winLength C.int) C.int {
	e, err := engine.NewEngine(engine.Options{
		BoardSize: int(boardSize),
		WinLength: int(winLength),
	})
	if err != nil {
		setError(err)
		return -1
	}

	gamesMutex.Lock()
	defer gamesMutex.Unlock()
	h := nextHandle
	nextHandle++
	games[h] = &game{engine: e, resolver: resolver.New(e.BoardSize())}
	setError(nil)
	return h
}

//export gomoku_free
func gomoku_free(h C.int) {
	gamesMutex.Lock()
	g := games[h]
	delete(games, h)
	gamesMutex.Unlock()

	if g != nil {
		g.engine.CancelReplay()
	}
}

// gomoku_move places the current player's stone. A rejected move still
// returns 0; the JSON result reports accepted=false and the reason.
//
//export gomoku_move
func gomoku_move(h, col, row C.int, resultJSON **C.char) C.int {
	g := lookup(h)
	if g == nil {
		*resultJSON = C.CString(`{"error": "invalid handle"}`)
		return -1
	}

	res := g.engine.AttemptMove(int(col), int(row))
	result := map[string]interface{}{
		"accepted": res.Accepted,
	}
	if res.Accepted {
		result["move"] = res.Move
		result["won"] = res.Won
		result["draw"] = res.Draw
		if res.Won {
			result["winner"] = res.Winner
			result["line"] = res.Line
		}
	} else {
		result["code"] = engine.ReasonCode(res.Reason)
	}
	return writeJSON(resultJSON, result)
}

//export gomoku_undo
func gomoku_undo(h C.int, resultJSON **C.char) C.int {
	g := lookup(h)
	if g == nil {
		*resultJSON = C.CString(`{"error": "invalid handle"}`)
		return -1
	}

	res := g.engine.Undo()
	result := map[string]interface{}{
		"accepted": res.Accepted,
	}
	if res.Accepted {
		result["move"] = res.Move
	} else {
		result["code"] = engine.ReasonCode(res.Reason)
	}
	return writeJSON(resultJSON, result)
}

//export gomoku_reset
func gomoku_reset(h C.int) C.int {
	g := lookup(h)
	if g == nil {
		return -1
	}
	g.engine.Reset()
	setError(nil)
	return 0
}

// gomoku_state_json returns the game state as JSON, or NULL for a bad handle.
//
//export gomoku_state_json
func gomoku_state_json(h C.int) *C.char {
	g := lookup(h)
	if g == nil {
		return nil
	}

	snap := g.engine.Snapshot()
	state := map[string]interface{}{
		"board_size":     snap.BoardSize,
		"win_length":     snap.WinLength,
		"board":          snap.Board.Grid(),
		"current_player": snap.CurrentPlayer,
		"phase":          snap.Phase,
		"scores":         snap.Scores,
		"history":        snap.History,
		"replaying":      snap.Replaying,
		"position_id":    positionid.PositionID(snap.Board),
	}
	if snap.Phase == engine.Won {
		state["winner"] = snap.Winner
		state["win_line"] = snap.WinLine
	}

	var out *C.char
	if writeJSON(&out, state) != 0 {
		return nil
	}
	return out
}

// gomoku_resolve_click maps a pointer press and release to an intersection.
// cameraJSON describes the active camera (NULL for the default). It returns
// 1 and sets col/row when the click hits an intersection, 0 for a drag or a
// miss, and -1 on error.
//
//export gomoku_resolve_click
func gomoku_resolve_click(h C.int, downX, downY, upX, upY, width, height C.double, cameraJSON *C.char, col, row *C.int) C.int {
	g := lookup(h)
	if g == nil {
		return -1
	}

	var spec *resolver.CameraSpec
	if cameraJSON != nil {
		spec = new(resolver.CameraSpec)
		if err := json.Unmarshal([]byte(C.GoString(cameraJSON)), spec); err != nil {
			setError(fmt.Errorf("invalid camera: %w", err))
			return -1
		}
	}
	cam, err := spec.Camera(g.engine.BoardSize())
	if err != nil {
		setError(err)
		return -1
	}

	cell, ok, isClick := g.resolver.ResolveClick(
		resolver.Point{X: float64(downX), Y: float64(downY)},
		resolver.Point{X: float64(upX), Y: float64(upY)},
		resolver.Viewport{Width: float64(width), Height: float64(height)},
		cam,
	)
	setError(nil)
	if !isClick || !ok {
		return 0
	}
	if col != nil {
		*col = C.int(cell.Col)
	}
	if row != nil {
		*row = C.int(cell.Row)
	}
	return 1
}

//export gomoku_free_string
func gomoku_free_string(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

func main() {}
