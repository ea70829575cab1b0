// Package tui is a terminal front-end for a gomoku3d engine built on tview.
package tui

import (
	"fmt"
	"sync"

	"github.com/yourusername/gomoku3d/pkg/engine"
)

// model is what the board view draws. It follows the engine through its
// events, so a replay can show stones the game state does not change.
type model struct {
	mu        sync.Mutex
	grid      [][]engine.Color
	last      engine.Cell
	hasLast   bool
	winLine   map[engine.Cell]bool
	status    string
	scores    engine.Scores
	replaying bool
	replayPos int
	replayLen int
}

func newModel(snap *engine.Snapshot) *model {
	m := &model{}
	m.sync(snap)
	return m
}

// sync replaces the model with the engine state.
func (m *model) sync(snap *engine.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncLocked(snap)
}

func (m *model) syncLocked(snap *engine.Snapshot) {
	m.grid = snap.Board.Grid()
	m.last, m.hasLast = engine.Cell{}, false
	if mv, ok := snap.LastMove(); ok {
		m.last, m.hasLast = mv.Cell(), true
	}
	m.winLine = make(map[engine.Cell]bool, len(snap.WinLine))
	for _, c := range snap.WinLine {
		m.winLine[c] = true
	}
	m.scores = snap.Scores
	m.replaying = false

	switch snap.Phase {
	case engine.Won:
		m.status = fmt.Sprintf("%s wins", snap.Winner)
	case engine.Draw:
		m.status = "draw"
	default:
		m.status = fmt.Sprintf("%s to play", snap.CurrentPlayer)
	}
}

// apply updates the model for one engine event. snapshot is called for
// events that change the game state.
func (m *model) apply(ev engine.Event, snapshot func() *engine.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev.Type {
	case engine.EventReplayStart:
		for _, row := range m.grid {
			clear(row)
		}
		clear(m.winLine)
		m.hasLast = false
		m.replaying = true
		m.replayPos, m.replayLen = 0, ev.Total
		m.status = fmt.Sprintf("replay 0/%d", ev.Total)
	case engine.EventReplayStep:
		if ev.Row >= 0 && ev.Row < len(m.grid) && ev.Col >= 0 && ev.Col < len(m.grid[ev.Row]) {
			m.grid[ev.Row][ev.Col] = ev.Color
		}
		m.last, m.hasLast = engine.Cell{Col: ev.Col, Row: ev.Row}, true
		m.replayPos = ev.Seq
		m.status = fmt.Sprintf("replay %d/%d", m.replayPos, m.replayLen)
	case engine.EventReplayDone, engine.EventLoad:
		m.syncLocked(snapshot())
	case engine.EventStone, engine.EventUndo, engine.EventReset, engine.EventWin, engine.EventDraw, engine.EventTurn, engine.EventScores:
		if !m.replaying {
			m.syncLocked(snapshot())
		}
	}
}

// cell returns the color at (col, row).
func (m *model) cell(col, row int) engine.Color {
	return m.grid[row][col]
}

// side returns the number of intersections per side.
func (m *model) side() int {
	return len(m.grid)
}

// statusText is the text shown under the board.
func (m *model) statusText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("  %s\n  black %d  white %d", m.status, m.scores.Black, m.scores.White)
}
