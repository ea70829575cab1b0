package record

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yourusername/gomoku3d/pkg/engine"
)

// SGF (Smart Game Format) is a standard format for recording games.
// See: https://www.red-bean.com/sgf/
//
// Example SGF:
// (;FF[4]GM[4]CA[UTF-8]AP[gomoku3d:1.0]SZ[15]RU[freestyle]
//  PB[Alice]PW[Bob]RE[B+]
//  ;B[hh]
//  ;W[ih]
//  ...)
//
// Points are two letters, column then row, 'a' being 0.

// GameType is the SGF GM value for Gomoku and Renju.
const GameType = 4

// ErrSyntax is wrapped by all parse errors.
var ErrSyntax = errors.New("sgf syntax error")

// Write writes a record in SGF format.
func Write(w io.Writer, r *Record) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "(;FF[4]GM[%d]CA[UTF-8]AP[gomoku3d:1.0]SZ[%d]RU[freestyle]\n", GameType, r.BoardSize+1)

	var header strings.Builder
	writeProp(&header, "PB", r.PlayerBlack)
	writeProp(&header, "PW", r.PlayerWhite)
	writeProp(&header, "DT", r.Date)
	writeProp(&header, "EV", r.Event)
	writeProp(&header, "RE", r.Result.SGF())
	writeProp(&header, "GC", r.Comment)
	if header.Len() > 0 {
		bw.WriteString(header.String())
		bw.WriteByte('\n')
	}

	for _, m := range r.Moves {
		point, err := FormatPoint(m.Col, m.Row)
		if err != nil {
			return fmt.Errorf("move %d: %w", m.Seq, err)
		}
		switch m.Color {
		case engine.Black:
			fmt.Fprintf(bw, ";B[%s]\n", point)
		case engine.White:
			fmt.Fprintf(bw, ";W[%s]\n", point)
		default:
			return fmt.Errorf("move %d: no color", m.Seq)
		}
	}

	bw.WriteString(")\n")
	return bw.Flush()
}

// String returns the record in SGF format.
func (r *Record) String() string {
	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		return ""
	}
	return buf.String()
}

func writeProp(b *strings.Builder, id, value string) {
	if value == "" {
		return
	}
	b.WriteString(id)
	b.WriteByte('[')
	b.WriteString(escape(value))
	b.WriteByte(']')
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `]`, `\]`).Replace(s)
}

// FormatPoint encodes (col, row) as two SGF letters.
func FormatPoint(col, row int) (string, error) {
	if col < 0 || col > 25 || row < 0 || row > 25 {
		return "", fmt.Errorf("point %d,%d cannot be written in SGF", col, row)
	}
	return string([]byte{byte('a' + col), byte('a' + row)}), nil
}

// ParsePoint decodes two SGF letters into (col, row).
func ParsePoint(s string) (col, row int, err error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'z' || s[1] < 'a' || s[1] > 'z' {
		return 0, 0, fmt.Errorf("%w: bad point %q", ErrSyntax, s)
	}
	return int(s[0] - 'a'), int(s[1] - 'a'), nil
}

// Parse reads the first game tree of an SGF file.
func Parse(rd io.Reader) (*Record, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("reading SGF: %w", err)
	}

	nodes, err := parseNodes(string(data))
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrSyntax)
	}

	root := nodes[0]
	if gm, ok := root["GM"]; ok && gm != strconv.Itoa(GameType) {
		return nil, fmt.Errorf("%w: GM[%s] is not a Gomoku game", ErrSyntax, gm)
	}

	side := 15
	if sz, ok := root["SZ"]; ok {
		// SZ may be "15" or "15:15"
		sz, _, _ = strings.Cut(sz, ":")
		side, err = strconv.Atoi(sz)
		if err != nil || side < 2 || side > 26 {
			return nil, fmt.Errorf("%w: bad SZ[%s]", ErrSyntax, root["SZ"])
		}
	}

	r := New(side - 1)
	r.PlayerBlack = root["PB"]
	r.PlayerWhite = root["PW"]
	r.Date = root["DT"]
	r.Event = root["EV"]
	r.Comment = root["GC"]
	switch re := root["RE"]; {
	case strings.HasPrefix(re, "B+"):
		r.Result = ResultBlack
	case strings.HasPrefix(re, "W+"):
		r.Result = ResultWhite
	case re == "0" || strings.EqualFold(re, "draw"):
		r.Result = ResultDraw
	}

	for i, node := range nodes {
		for _, prop := range [...]struct {
			id    string
			color engine.Color
		}{{"B", engine.Black}, {"W", engine.White}} {
			point, ok := node[prop.id]
			if !ok {
				continue
			}
			col, row, err := ParsePoint(point)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
			if col >= side || row >= side {
				return nil, fmt.Errorf("%w: node %d: point %q outside %dx%d board", ErrSyntax, i, point, side, side)
			}
			r.AddMove(prop.color, col, row)
		}
	}

	return r, nil
}

// parseNodes splits the main line of the first game tree into nodes of
// property id to first value. The main line follows the first variation at
// every branch, so parsing stops at the first ')'.
func parseNodes(content string) ([]map[string]string, error) {
	var (
		nodes []map[string]string
		node  map[string]string
		ident strings.Builder
		depth int
	)

	for i := 0; i < len(content); i++ {
		ch := content[i]
		switch {
		case ch == '(':
			depth++
		case ch == ')':
			if depth == 0 {
				return nil, fmt.Errorf("%w: unexpected ')' at %d", ErrSyntax, i)
			}
			return nodes, nil
		case ch == ';':
			if depth == 0 {
				return nil, fmt.Errorf("%w: node outside game tree at %d", ErrSyntax, i)
			}
			node = make(map[string]string)
			nodes = append(nodes, node)
		case ch >= 'A' && ch <= 'Z':
			ident.WriteByte(ch)
		case ch == '[':
			if node == nil || ident.Len() == 0 {
				return nil, fmt.Errorf("%w: value without property at %d", ErrSyntax, i)
			}
			value, end, err := readValue(content, i)
			if err != nil {
				return nil, err
			}
			id := ident.String()
			if _, dup := node[id]; !dup {
				node[id] = value
			}
			i = end
			// Further values of the same property keep the identifier.
			if j := skipSpace(content, i+1); j < len(content) && content[j] == '[' {
				i = j - 1
				continue
			}
			ident.Reset()
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
		case ch >= 'a' && ch <= 'z':
			// lowercase letters in old-style identifiers are ignored
		default:
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, ch, i)
		}
	}

	if depth == 0 {
		return nil, fmt.Errorf("%w: no game tree", ErrSyntax)
	}
	return nil, fmt.Errorf("%w: unterminated game tree", ErrSyntax)
}

// readValue reads a bracketed value starting at content[start] == '['. It
// returns the unescaped value and the index of the closing bracket.
func readValue(content string, start int) (string, int, error) {
	var b strings.Builder
	for i := start + 1; i < len(content); i++ {
		switch ch := content[i]; ch {
		case '\\':
			i++
			if i < len(content) && content[i] != '\n' {
				b.WriteByte(content[i])
			}
		case ']':
			return b.String(), i, nil
		default:
			b.WriteByte(ch)
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated value at %d", ErrSyntax, start)
}

func skipSpace(content string, i int) int {
	for i < len(content) && strings.IndexByte(" \t\r\n", content[i]) >= 0 {
		i++
	}
	return i
}
