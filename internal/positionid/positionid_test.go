package positionid

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/yourusername/gomoku3d/pkg/engine"
)

// openingBoard plays a short opening on a standard board.
func openingBoard(t *testing.T) *engine.Board {
	t.Helper()
	e, err := engine.NewEngine(engine.DefaultOptions())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	for _, c := range []engine.Cell{{Col: 7, Row: 7}, {Col: 8, Row: 7}, {Col: 8, Row: 8}, {Col: 6, Row: 6}, {Col: 0, Row: 14}, {Col: 14, Row: 14}, {Col: 14, Row: 0}} {
		if res := e.AttemptMove(c.Col, c.Row); !res.Accepted {
			t.Fatalf("move %v rejected: %v", c, res.Reason)
		}
	}
	return e.Snapshot().Board
}

func TestPositionIDEmptyBoard(t *testing.T) {
	posID := PositionID(engine.NewBoard(14))
	want := "O" + strings.Repeat("A", 76)

	if posID != want {
		t.Errorf("PositionID mismatch: got %s, want %s", posID, want)
	}
	if len(posID) != IDLength(14) {
		t.Errorf("len = %d, want %d", len(posID), IDLength(14))
	}
}

func TestPositionIDFirstCell(t *testing.T) {
	grid := engine.NewBoard(14).Grid()
	grid[0][0] = engine.Black
	b, err := engine.BoardFromGrid(grid)
	if err != nil {
		t.Fatal(err)
	}

	// Cell 0 occupies the lowest bits of the first byte: 0b00000001.
	posID := PositionID(b)
	if !strings.HasPrefix(posID, "OAQ") {
		t.Errorf("PositionID = %s, want prefix OAQ", posID)
	}
}

func TestKeyRoundTrip(t *testing.T) {
	board := openingBoard(t)

	key := MakeKey(board)
	board2, err := BoardFromKey(key)
	if err != nil {
		t.Fatalf("BoardFromKey: %v", err)
	}

	if !engine.EqualBoards(board, board2) {
		t.Errorf("Key round-trip failed")
		t.Errorf("Original: %v", board.Grid())
		t.Errorf("Result:   %v", board2.Grid())
	}
}

func TestPositionIDRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 3, 8, 14, 18, 25} {
		e, err := engine.NewEngine(engine.Options{BoardSize: n, WinLength: 2})
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		e.AttemptMove(0, 0)
		e.AttemptMove(n, n)
		board := e.Snapshot().Board

		posID := PositionID(board)
		if len(posID) != IDLength(n) {
			t.Errorf("n=%d: len = %d, want %d", n, len(posID), IDLength(n))
		}

		board2, err := BoardFromPositionID(posID)
		if err != nil {
			t.Fatalf("n=%d: BoardFromPositionID(%s): %v", n, posID, err)
		}
		if !engine.EqualBoards(board, board2) {
			t.Errorf("n=%d: round-trip mismatch for %s", n, posID)
		}
	}
}

func TestPositionIDOpening(t *testing.T) {
	board := openingBoard(t)
	posID := PositionID(board)

	board2, err := BoardFromPositionID(posID)
	if err != nil {
		t.Fatalf("BoardFromPositionID: %v", err)
	}
	if board2.At(7, 7) != engine.Black || board2.At(8, 7) != engine.White || board2.At(14, 0) != engine.Black {
		t.Errorf("decoded board mismatch: %v", board2.Grid())
	}
	if board2.Count() != 7 {
		t.Errorf("Count = %d, want 7", board2.Count())
	}
}

func TestInvalidPositionID(t *testing.T) {
	valid := PositionID(openingBoard(t))

	invalidIDs := []string{
		"",
		"O",                           // too short
		valid + "A",                   // too long
		"z" + valid[1:],               // size out of range
		"O!" + valid[2:],              // invalid character
		"O" + strings.Repeat("/", 76), // cell value 3
	}

	for _, id := range invalidIDs {
		_, err := BoardFromPositionID(id)
		if err == nil {
			t.Errorf("BoardFromPositionID(%q) should fail", id)
		}
	}
}

func TestCheckPosition(t *testing.T) {
	grid := engine.NewBoard(4).Grid()
	grid[0][0] = engine.White
	b, _ := engine.BoardFromGrid(grid)
	if CheckPosition(b) {
		t.Error("white cannot be ahead of black")
	}

	grid[1][1] = engine.Black
	grid[2][2] = engine.Black
	b, _ = engine.BoardFromGrid(grid)
	if !CheckPosition(b) {
		t.Error("black one stone ahead should be valid")
	}

	// A position ID of a board with two extra black stones is rejected.
	grid[3][3] = engine.Black
	b, _ = engine.BoardFromGrid(grid)
	if _, err := BoardFromPositionID(PositionID(b)); err != ErrInvalidPositionID {
		t.Errorf("err = %v, want ErrInvalidPositionID", err)
	}
}

func TestEqualKeys(t *testing.T) {
	k1 := MakeKey(openingBoard(t))
	k2 := MakeKey(openingBoard(t))
	if !EqualKeys(k1, k2) {
		t.Error("identical boards should give equal keys")
	}
	if EqualKeys(k1, MakeKey(engine.NewBoard(14))) {
		t.Error("different boards should give different keys")
	}
}

func TestPositionIDIsRawStdBase64(t *testing.T) {
	key := MakeKey(openingBoard(t))
	posID := PositionIDFromKey(key)

	if want := "O" + base64.RawStdEncoding.EncodeToString(key.Data); posID != want {
		t.Errorf("PositionID = %s, want %s", posID, want)
	}
}

func TestPositionIDRejectsPaddingBits(t *testing.T) {
	// 14x14 packs into 49 bytes, leaving 4 unused bits in the last character.
	valid := "N" + strings.Repeat("A", 66)
	if _, err := BoardFromPositionID(valid); err != nil {
		t.Fatalf("empty 14x14 board: %v", err)
	}
	if _, err := BoardFromPositionID(valid[:66] + "B"); err == nil {
		t.Error("non-zero padding bits should be rejected")
	}
}
