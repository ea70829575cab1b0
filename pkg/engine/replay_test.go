package engine

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncRecorder is a recorder safe for use from the replay goroutine.
type syncRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *syncRecorder) Notify(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *syncRecorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func TestReplayIsRestartable(t *testing.T) {
	e := newTestEngine(t)
	play(t, e, Cell{7, 7}, Cell{8, 7}, Cell{7, 8})

	r := e.Replay()
	first := slices.Collect(r.All())
	second := slices.Collect(r.All())

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, Cell{7, 7}, first[0].Cell())
	assert.Equal(t, White, first[1].Color)

	// Moves made after Replay do not leak into it.
	play(t, e, Cell{1, 1})
	assert.Equal(t, 3, r.Len())
	assert.Len(t, slices.Collect(r.All()), 3)
}

func TestReplayStopsEarly(t *testing.T) {
	e := newTestEngine(t)
	play(t, e, Cell{0, 0}, Cell{1, 1}, Cell{2, 2})

	var seen []int
	for m := range e.Replay().All() {
		seen = append(seen, m.Seq)
		if m.Seq == 2 {
			break
		}
	}
	assert.Equal(t, []int{1, 2}, seen)
}

func TestStartReplayDeliversEveryStone(t *testing.T) {
	e := newTestEngine(t)
	play(t, e, Cell{7, 7}, Cell{8, 8}, Cell{6, 6})
	before := e.Snapshot()

	subscriber := &syncRecorder{}
	e.Subscribe(subscriber)
	own := &syncRecorder{}

	task, err := e.StartReplay(context.Background(), 0, own)
	require.NoError(t, err)
	require.NoError(t, task.Wait())

	events := own.snapshot()
	require.Len(t, events, 5)
	assert.Equal(t, Event{Type: EventReplayStart, Total: 3}, events[0])
	for i, want := range before.History {
		ev := events[i+1]
		assert.Equal(t, EventReplayStep, ev.Type)
		assert.Equal(t, want.Col, ev.Col)
		assert.Equal(t, want.Row, ev.Row)
		assert.Equal(t, want.Color, ev.Color)
		assert.Equal(t, want.Seq, ev.Seq)
	}
	done := events[4]
	assert.Equal(t, EventReplayDone, done.Type)
	assert.Equal(t, 3, done.Seq)
	assert.False(t, done.Cancelled)

	assert.Equal(t, events, subscriber.snapshot())
	assert.Equal(t, 3, task.Steps())
	assert.Equal(t, 3, task.Total())

	// Replay shows moves without touching the game.
	assert.Equal(t, before, e.Snapshot())
	assert.False(t, e.Replaying())
}

func TestStartReplayEmptyHistory(t *testing.T) {
	e := newTestEngine(t)
	own := &syncRecorder{}

	task, err := e.StartReplay(context.Background(), time.Hour, own)
	require.NoError(t, err)
	require.NoError(t, task.Wait())

	events := own.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, EventReplayStart, events[0].Type)
	assert.Equal(t, EventReplayDone, events[1].Type)
	assert.Zero(t, task.Steps())
}

func TestEngineBusyDuringReplay(t *testing.T) {
	e := newTestEngine(t)
	play(t, e, Cell{7, 7}, Cell{8, 8})

	task, err := e.StartReplay(context.Background(), time.Hour, nil)
	require.NoError(t, err)
	assert.True(t, e.Replaying())
	assert.True(t, e.Snapshot().Replaying)

	res := e.AttemptMove(0, 0)
	assert.False(t, res.Accepted)
	assert.ErrorIs(t, res.Reason, ErrBusy)

	undo := e.Undo()
	assert.False(t, undo.Accepted)
	assert.ErrorIs(t, undo.Reason, ErrBusy)

	_, err = e.StartReplay(context.Background(), 0, nil)
	assert.ErrorIs(t, err, ErrReplayInProgress)

	task.Cancel()
	assert.ErrorIs(t, task.Wait(), ErrReplayCancelled)
	assert.LessOrEqual(t, task.Steps(), 1)
	assert.False(t, e.Replaying())

	res = e.AttemptMove(0, 0)
	assert.True(t, res.Accepted)
}

func TestReplayStopsOnContextDeadline(t *testing.T) {
	e := newTestEngine(t)
	play(t, e, Cell{7, 7}, Cell{8, 8})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	own := &syncRecorder{}
	task, err := e.StartReplay(ctx, time.Hour, own)
	require.NoError(t, err)

	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("replay did not stop on context deadline")
	}
	assert.ErrorIs(t, task.Wait(), context.DeadlineExceeded)

	events := own.snapshot()
	last := events[len(events)-1]
	assert.Equal(t, EventReplayDone, last.Type)
	assert.True(t, last.Cancelled)
}

func TestResetCancelsReplay(t *testing.T) {
	e := newTestEngine(t)
	play(t, e, Cell{7, 7}, Cell{8, 8}, Cell{9, 9})

	subscriber := &syncRecorder{}
	e.Subscribe(subscriber)
	own := &syncRecorder{}

	task, err := e.StartReplay(context.Background(), time.Hour, own)
	require.NoError(t, err)

	e.Reset()
	assert.ErrorIs(t, task.Wait(), ErrReplayCancelled)
	assert.False(t, e.Replaying())
	assert.Zero(t, e.Snapshot().Board.Count())

	ownEvents := own.snapshot()
	last := ownEvents[len(ownEvents)-1]
	assert.Equal(t, EventReplayDone, last.Type)
	assert.True(t, last.Cancelled)

	// Subscribers see replay_done before the reset.
	var types []EventType
	for _, ev := range subscriber.snapshot() {
		types = append(types, ev.Type)
	}
	n := len(types)
	require.GreaterOrEqual(t, n, 3)
	assert.Equal(t, []EventType{EventReplayDone, EventReset, EventTurn}, types[n-3:])

	// A new replay can start right away.
	task, err = e.StartReplay(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.NoError(t, task.Wait())
}

func TestCancelReplay(t *testing.T) {
	e := newTestEngine(t)
	assert.False(t, e.CancelReplay())

	play(t, e, Cell{7, 7}, Cell{8, 8})
	task, err := e.StartReplay(context.Background(), time.Hour, nil)
	require.NoError(t, err)

	assert.True(t, e.CancelReplay())
	assert.ErrorIs(t, task.Wait(), ErrReplayCancelled)
	assert.False(t, e.Replaying())
}
