// Package external implements a line-oriented text protocol for playing
// Gomoku over a TCP socket.
//
// Protocol overview:
// - Server listens on a TCP port
// - Each connection gets its own game
// - Client sends one command per line
// - Commands include: new, play, undo, reset, board, history, scores, sgf, exit
// - Coordinates are written as "h8" (column letter, 1-based row) or "7 7"
// - Responses are one or more lines; failures start with "Error:" and
//   rejected moves with "rejected <reason>"
package external

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/yourusername/gomoku3d/internal/positionid"
	"github.com/yourusername/gomoku3d/pkg/engine"
	"github.com/yourusername/gomoku3d/pkg/record"
)

// Version is reported by the version command.
const Version = "gomoku3d line protocol 1.0"

// Server implements the line protocol server.
type Server struct {
	listener net.Listener
	mu       sync.Mutex
	running  bool
	options  ServerOptions
	active   map[net.Conn]struct{}
	conns    sync.WaitGroup // one per entry in active
}

// ServerOptions configures the protocol server.
type ServerOptions struct {
	Host          string      // Interface to bind ("" = all)
	Port          int         // TCP port to listen on (0 = any free port)
	BoardSize     int         // Board size for new games
	WinLength     int         // Win length for new games
	PromptEnabled bool        // Send prompts after responses
	Logger        *log.Logger // Optional; nil uses the standard logger
}

// DefaultServerOptions returns sensible defaults.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		Port:          1234,
		BoardSize:     engine.DefaultBoardSize,
		WinLength:     engine.DefaultWinLength,
		PromptEnabled: true,
	}
}

// NewServer creates a new protocol server.
func NewServer(opts ServerOptions) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Server{options: opts, active: make(map[net.Conn]struct{})}
}

// Start begins listening for connections.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server already running")
	}

	addr := net.JoinHostPort(s.options.Host, strconv.Itoa(s.options.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = listener
	s.running = true
	s.options.Logger.Printf("Line protocol listening on %s", listener.Addr())

	go s.acceptLoop(listener)

	return nil
}

// Addr returns the listening address, or nil when stopped.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop stops accepting connections and closes the open ones. It does not
// wait for their handlers to return; Wait does.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	for conn := range s.active {
		conn.Close()
	}
	if s.listener != nil {
		err := s.listener.Close()
		s.listener = nil
		return err
	}
	return nil
}

// Wait blocks until every connection handler has returned.
func (s *Server) Wait() {
	s.conns.Wait()
}

// ListenAndServe starts the server and blocks until ctx is done and every
// connection is closed.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	err := s.Stop()
	s.Wait()
	return err
}

// acceptLoop accepts incoming connections.
func (s *Server) acceptLoop(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			s.mu.Lock()
			running := s.running
			s.mu.Unlock()
			if !running || errors.Is(err, net.ErrClosed) {
				return // Server stopped
			}
			continue
		}

		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.active[conn] = struct{}{}
		s.conns.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.conns.Done()
			defer func() {
				s.mu.Lock()
				delete(s.active, conn)
				s.mu.Unlock()
			}()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection handles a single client connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	defer func() {
		if v := recover(); v != nil {
			s.options.Logger.Printf("Protocol panic from %s: %v", conn.RemoteAddr(), v)
		}
	}()

	sess, err := NewSession(s.options.BoardSize, s.options.WinLength)
	if err != nil {
		fmt.Fprintf(conn, "Error: %v\n", err)
		return
	}
	s.options.Logger.Printf("Protocol client connected: %s", conn.RemoteAddr())
	defer s.options.Logger.Printf("Protocol client disconnected: %s", conn.RemoteAddr())

	reader := bufio.NewReader(conn)

	// Send initial prompt if enabled
	if s.options.PromptEnabled {
		conn.Write([]byte("> "))
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				s.options.Logger.Printf("Protocol read error from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		response := sess.Process(line)
		conn.Write([]byte(response))

		// Check for exit command
		if cmd := strings.ToLower(line); cmd == "exit" || cmd == "quit" {
			return
		}

		if s.options.PromptEnabled {
			conn.Write([]byte("> "))
		}
	}
}

// Session is one client's game. It is not safe for concurrent use.
type Session struct {
	engine *engine.Engine
}

// NewSession creates a session with a fresh game.
func NewSession(boardSize, winLength int) (*Session, error) {
	e, err := engine.NewEngine(engine.Options{BoardSize: boardSize, WinLength: winLength})
	if err != nil {
		return nil, err
	}
	return &Session{engine: e}, nil
}

// Engine returns the session's game.
func (s *Session) Engine() *engine.Engine { return s.engine }

// Process processes a single command and returns the response.
func (s *Session) Process(cmd string) string {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return "Error: empty command\n"
	}

	command := strings.ToLower(parts[0])

	switch command {
	case "version":
		return Version + "\n"

	case "help":
		return helpResponse()

	case "exit", "quit":
		return "Goodbye\n"

	case "new":
		return s.handleNew(parts[1:])

	case "play", "move":
		return s.handlePlay(parts[1:])

	case "undo":
		return s.handleUndo()

	case "reset":
		s.engine.Reset()
		return "ok\n"

	case "board":
		return s.handleBoard()

	case "id":
		return positionid.PositionID(s.engine.Snapshot().Board) + "\n"

	case "history":
		return s.handleHistory()

	case "scores":
		sc := s.engine.Scores()
		return fmt.Sprintf("black %d white %d\n", sc.Black, sc.White)

	case "sgf":
		return record.FromSnapshot(s.engine.Snapshot()).String()

	default:
		// A bare coordinate plays a stone.
		if len(parts) == 1 {
			if _, err := ParseCoord(parts[0], s.engine.BoardSize()); err == nil || errors.Is(err, engine.ErrOutOfBounds) {
				return s.handlePlay(parts)
			}
		}
		return fmt.Sprintf("Error: unknown command '%s'\n", command)
	}
}

// helpResponse returns help text.
func helpResponse() string {
	return `Available commands:
  new [size] [winlen] - Start a new game (scores reset)
  play <coord>        - Place a stone, e.g. "play h8" or "play 7 7"
  undo                - Take back the last stone
  reset               - Clear the board, keep scores
  board               - Show the board
  id                  - Show the position ID
  history             - List the moves played
  scores              - Show the scores
  sgf                 - Export the game as SGF
  version             - Show version information
  help                - Show this help
  exit                - Close connection
`
}

// handleNew handles the new command.
func (s *Session) handleNew(args []string) string {
	size := s.engine.BoardSize()
	winLength := s.engine.WinLength()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return "Error: size must be a number\n"
		}
		size = n
		if winLength > size+1 {
			winLength = size + 1
		}
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return "Error: win length must be a number\n"
		}
		winLength = n
	}

	e, err := engine.NewEngine(engine.Options{BoardSize: size, WinLength: winLength})
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	s.engine = e
	return fmt.Sprintf("new game %dx%d, %d to win\n", size+1, size+1, winLength)
}

// handlePlay handles the play command. It accepts "h8" or "7 7".
func (s *Session) handlePlay(args []string) string {
	var cell engine.Cell
	switch len(args) {
	case 1:
		c, err := ParseCoord(args[0], s.engine.BoardSize())
		if err != nil && !errors.Is(err, engine.ErrOutOfBounds) {
			return fmt.Sprintf("Error: %v\n", err)
		}
		cell = c
	case 2:
		col, err1 := strconv.Atoi(args[0])
		row, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			return "Error: play <col> <row> needs two numbers\n"
		}
		cell = engine.Cell{Col: col, Row: row}
	default:
		return "Error: play requires a coordinate\n"
	}

	res := s.engine.AttemptMove(cell.Col, cell.Row)
	if !res.Accepted {
		return fmt.Sprintf("rejected %s\n", engine.ReasonCode(res.Reason))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "ok %s %s\n", res.Move.Color, FormatCoord(res.Move.Cell()))
	switch {
	case res.Won:
		fmt.Fprintf(&sb, "win %s %s\n", res.Winner, FormatLine(res.Line))
	case res.Draw:
		sb.WriteString("draw\n")
	}
	return sb.String()
}

// handleUndo handles the undo command.
func (s *Session) handleUndo() string {
	res := s.engine.Undo()
	if !res.Accepted {
		return fmt.Sprintf("rejected %s\n", engine.ReasonCode(res.Reason))
	}
	return fmt.Sprintf("undone %s %s\n", res.Move.Color, FormatCoord(res.Move.Cell()))
}

// handleBoard renders the board with a status line.
func (s *Session) handleBoard() string {
	snap := s.engine.Snapshot()
	var sb strings.Builder
	sb.WriteString(FormatBoard(snap.Board))
	switch snap.Phase {
	case engine.Won:
		fmt.Fprintf(&sb, "%s wins\n", snap.Winner)
	case engine.Draw:
		sb.WriteString("draw\n")
	default:
		fmt.Fprintf(&sb, "%s to play\n", snap.CurrentPlayer)
	}
	return sb.String()
}

// handleHistory lists the moves played.
func (s *Session) handleHistory() string {
	snap := s.engine.Snapshot()
	if len(snap.History) == 0 {
		return "no moves\n"
	}
	var sb strings.Builder
	for m := range s.engine.Replay().All() {
		fmt.Fprintf(&sb, "%3d. %s %s\n", m.Seq, m.Color, FormatCoord(m.Cell()))
	}
	return sb.String()
}
