// Package positionid implements compact position IDs for Gomoku boards.
//
// A position ID is one character holding N (the board size) from the
// standard base64 alphabet, followed by the board packed at 2 bits per
// intersection in row-major order (0 empty, 1 black, 2 white) and encoded
// as unpadded standard base64. A standard 15x15 board gives a 77-character
// ID.
package positionid

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/yourusername/gomoku3d/pkg/engine"
)

// sizeAlphabet maps N to the first character of an ID.
const sizeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// ErrInvalidPositionID is returned when a position ID is invalid
var ErrInvalidPositionID = errors.New("invalid position ID")

// Key is the packed binary form of a board: 4 intersections per byte,
// lowest bits first.
type Key struct {
	Size int
	Data []uint8
}

// keyBytes returns the number of bytes needed for a board of size n.
func keyBytes(n int) int {
	side := n + 1
	return (side*side + 3) / 4
}

// IDLength returns the length of the position ID of a board of size n.
func IDLength(n int) int {
	return 1 + base64.RawStdEncoding.EncodedLen(keyBytes(n))
}

// MakeKey packs a board.
func MakeKey(b *engine.Board) Key {
	key := Key{Size: b.Size(), Data: make([]uint8, keyBytes(b.Size()))}
	side := b.Side()
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			i := row*side + col
			key.Data[i/4] |= uint8(b.At(col, row)) << (2 * (i % 4))
		}
	}
	return key
}

// BoardFromKey unpacks a board. It fails on a cell value of 3 or on set bits
// past the last intersection.
func BoardFromKey(key Key) (*engine.Board, error) {
	if key.Size < 0 || key.Size > engine.MaxBoardSize || len(key.Data) != keyBytes(key.Size) {
		return nil, ErrInvalidPositionID
	}
	side := key.Size + 1
	grid := make([][]engine.Color, side)
	for row := range grid {
		grid[row] = make([]engine.Color, side)
		for col := range grid[row] {
			i := row*side + col
			v := (key.Data[i/4] >> (2 * (i % 4))) & 0x3
			if v > uint8(engine.White) {
				return nil, ErrInvalidPositionID
			}
			grid[row][col] = engine.Color(v)
		}
	}
	if tail := side * side; tail%4 != 0 && key.Data[len(key.Data)-1]>>(2*(tail%4)) != 0 {
		return nil, ErrInvalidPositionID
	}
	return engine.BoardFromGrid(grid)
}

// EqualKeys returns true if two keys are identical
func EqualKeys(k1, k2 Key) bool {
	return k1.Size == k2.Size && bytes.Equal(k1.Data, k2.Data)
}

// idEncoding encodes the key bytes. Its strict mode rejects non-zero
// padding bits, so every key has exactly one ID.
var idEncoding = base64.RawStdEncoding.Strict()

// PositionIDFromKey generates a position ID string from a key
func PositionIDFromKey(key Key) string {
	return string(sizeAlphabet[key.Size]) + idEncoding.EncodeToString(key.Data)
}

// PositionID generates a position ID string from a board
func PositionID(b *engine.Board) string {
	return PositionIDFromKey(MakeKey(b))
}

// KeyFromPositionID decodes a position ID string to a key
func KeyFromPositionID(posID string) (Key, error) {
	if len(posID) == 0 {
		return Key{}, ErrInvalidPositionID
	}
	n := strings.IndexByte(sizeAlphabet, posID[0])
	if n < 0 || n > engine.MaxBoardSize || len(posID) != IDLength(n) {
		return Key{}, ErrInvalidPositionID
	}
	data, err := idEncoding.DecodeString(posID[1:])
	if err != nil || len(data) != keyBytes(n) {
		return Key{}, ErrInvalidPositionID
	}
	return Key{Size: n, Data: data}, nil
}

// BoardFromPositionID decodes a base64 position ID string to a board
func BoardFromPositionID(posID string) (*engine.Board, error) {
	key, err := KeyFromPositionID(posID)
	if err != nil {
		return nil, err
	}
	b, err := BoardFromKey(key)
	if err != nil {
		return nil, err
	}
	if !CheckPosition(b) {
		return nil, ErrInvalidPositionID
	}
	return b, nil
}

// CheckPosition validates that a board could arise in play: black moves
// first, so black has as many stones as white or one more.
func CheckPosition(b *engine.Board) bool {
	var black, white int
	side := b.Side()
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			switch b.At(col, row) {
			case engine.Black:
				black++
			case engine.White:
				white++
			}
		}
	}
	return black == white || black == white+1
}
