// gomoku - play and inspect gomoku3d games from the terminal
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/rivo/tview"

	"github.com/yourusername/gomoku3d/internal/config"
	"github.com/yourusername/gomoku3d/internal/positionid"
	"github.com/yourusername/gomoku3d/internal/tui"
	"github.com/yourusername/gomoku3d/pkg/engine"
	"github.com/yourusername/gomoku3d/pkg/external"
	"github.com/yourusername/gomoku3d/pkg/record"
	"github.com/yourusername/gomoku3d/pkg/resolver"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "play":
		cmdPlay(args)
	case "pick":
		cmdPick(args)
	case "record":
		cmdRecord(args)
	case "position":
		cmdPosition(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`gomoku - 3D Gomoku in the terminal

Usage: gomoku <command> [options]

Commands:
  play      Play a game on the terminal board
  pick      Resolve a pointer position to a board intersection
  record    Show an SGF game record
  position  Show the board for a position ID

Use "gomoku <command> -h" for command-specific help.

Coordinates:
  Columns are letters from a, rows are numbers from 1 at the top.
  Example: "h8" is the centre of the default 15x15 board.`)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// loadConfig loads the config and applies the board flags that were set.
func loadConfig(fs *flag.FlagSet, path string, size, win int) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fatal(err)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "size":
			cfg.Game.BoardSize = size
		case "win":
			cfg.Game.WinLength = win
		}
	})
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}
	return cfg
}

func readRecord(path string) (*record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return record.Parse(f)
}

func cmdPlay(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to config file")
	size := fs.Int("size", 14, "Board size N (N+1 intersections per side)")
	win := fs.Int("win", 5, "Stones in a row needed to win")
	load := fs.String("load", "", "SGF record to continue from")
	logFile := fs.String("log", "", "Write engine log to this file")
	fs.Parse(args)

	cfg := loadConfig(fs, *configFile, *size, *win)

	var rec *record.Record
	if *load != "" {
		r, err := readRecord(*load)
		if err != nil {
			fatal(err)
		}
		// The record decides the board size.
		cfg.Game.BoardSize = r.BoardSize
		if cfg.Game.WinLength > r.BoardSize+1 {
			cfg.Game.WinLength = r.BoardSize + 1
		}
		rec = r
	}

	opts := cfg.EngineOptions()
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		opts.Logger = log.New(f, "engine: ", log.LstdFlags)
	}

	e, err := engine.NewEngine(opts)
	if err != nil {
		fatal(err)
	}
	if rec != nil {
		if err := rec.Apply(e); err != nil {
			fatal(fmt.Errorf("%s: %w", *load, err))
		}
	}

	app := tview.NewApplication()
	board := tui.NewBoardView(app, e, cfg)
	board.SetBorder(true)
	board.SetTitle(fmt.Sprintf(" Gomoku %dx%d, %d to win ", e.BoardSize()+1, e.BoardSize()+1, e.WinLength()))
	board.Attach()
	defer board.Detach()

	if err := app.SetRoot(board.Layout(), true).EnableMouse(true).Run(); err != nil {
		fatal(err)
	}

	snap := e.Snapshot()
	fmt.Print(external.FormatBoard(snap.Board))
	fmt.Printf("Score: black %d, white %d\n", snap.Scores.Black, snap.Scores.White)
}

func cmdPick(args []string) {
	fs := flag.NewFlagSet("pick", flag.ExitOnError)
	size := fs.Int("size", 14, "Board size N")
	x := fs.Float64("x", -1, "Pointer x in pixels")
	y := fs.Float64("y", -1, "Pointer y in pixels")
	upX := fs.Float64("up-x", -1, "Release x (default: same as -x)")
	upY := fs.Float64("up-y", -1, "Release y (default: same as -y)")
	width := fs.Float64("width", 800, "Viewport width in pixels")
	height := fs.Float64("height", 600, "Viewport height in pixels")
	cameraJSON := fs.String("camera", "", `Camera as JSON, e.g. {"projection":"orthographic"}`)
	fs.Parse(args)

	if *x < 0 || *y < 0 {
		fmt.Fprintln(os.Stderr, "Error: pointer position required")
		fmt.Fprintln(os.Stderr, "Usage: gomoku pick -x <px> -y <px> [-width W -height H] [-camera JSON]")
		os.Exit(1)
	}
	if *upX < 0 {
		*upX = *x
	}
	if *upY < 0 {
		*upY = *y
	}

	var spec *resolver.CameraSpec
	if *cameraJSON != "" {
		spec = &resolver.CameraSpec{}
		if err := json.Unmarshal([]byte(*cameraJSON), spec); err != nil {
			fatal(fmt.Errorf("invalid camera: %w", err))
		}
	}
	cam, err := spec.Camera(*size)
	if err != nil {
		fatal(err)
	}

	r := resolver.New(*size)
	vp := resolver.Viewport{Width: *width, Height: *height}
	cell, ok, isClick := r.ResolveClick(resolver.Point{X: *x, Y: *y}, resolver.Point{X: *upX, Y: *upY}, vp, cam)
	switch {
	case !isClick:
		fmt.Println("drag")
	case !ok:
		fmt.Println("miss")
	default:
		fmt.Printf("%s (col %d, row %d)\n", external.FormatCoord(cell), cell.Col, cell.Row)
	}
}

func cmdRecord(args []string) {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	win := fs.Int("win", 5, "Stones in a row needed to win")
	moves := fs.Bool("moves", false, "List the moves")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: record file required")
		fmt.Fprintln(os.Stderr, "Usage: gomoku record [-win K] [-moves] <file.sgf>")
		os.Exit(1)
	}

	rec, err := readRecord(fs.Arg(0))
	if err != nil {
		fatal(err)
	}

	winLength := *win
	if winLength > rec.BoardSize+1 {
		winLength = rec.BoardSize + 1
	}
	e, err := engine.NewEngine(engine.Options{BoardSize: rec.BoardSize, WinLength: winLength})
	if err != nil {
		fatal(err)
	}
	if err := rec.Apply(e); err != nil {
		fatal(err)
	}
	snap := e.Snapshot()

	if rec.PlayerBlack != "" || rec.PlayerWhite != "" {
		fmt.Printf("%s (black) vs %s (white)\n", rec.PlayerBlack, rec.PlayerWhite)
	}
	if rec.Date != "" {
		fmt.Printf("Date: %s\n", rec.Date)
	}
	fmt.Print(external.FormatBoard(snap.Board))
	fmt.Printf("Moves: %d\n", len(snap.History))

	switch snap.Phase {
	case engine.Won:
		fmt.Printf("Result: %s wins (%s)\n", snap.Winner, external.FormatLine(snap.WinLine))
	case engine.Draw:
		fmt.Println("Result: draw")
	default:
		fmt.Printf("Result: unfinished, %s to play\n", snap.CurrentPlayer)
	}
	if rec.Result != record.ResultNone && !resultMatches(rec.Result, snap) {
		fmt.Printf("Warning: record says %s\n", rec.Result)
	}
	fmt.Printf("Position ID: %s\n", positionid.PositionID(snap.Board))

	if *moves {
		var sb strings.Builder
		for _, m := range snap.History {
			fmt.Fprintf(&sb, "%3d. %-5s %s\n", m.Seq, m.Color, external.FormatCoord(m.Cell()))
		}
		fmt.Print(sb.String())
	}
}

func resultMatches(r record.Result, snap *engine.Snapshot) bool {
	switch r {
	case record.ResultBlack:
		return snap.Phase == engine.Won && snap.Winner == engine.Black
	case record.ResultWhite:
		return snap.Phase == engine.Won && snap.Winner == engine.White
	case record.ResultDraw:
		return snap.Phase == engine.Draw
	}
	return snap.Phase == engine.InProgress
}

func cmdPosition(args []string) {
	fs := flag.NewFlagSet("position", flag.ExitOnError)
	posFlag := fs.String("position", "", "Position ID")
	posShort := fs.String("p", "", "Position ID (short form)")
	fs.Parse(args)

	pos := *posFlag
	if pos == "" {
		pos = *posShort
	}
	if pos == "" {
		fmt.Fprintln(os.Stderr, "Error: position required")
		fmt.Fprintln(os.Stderr, "Usage: gomoku position -p <positionID>")
		os.Exit(1)
	}

	b, err := positionid.BoardFromPositionID(pos)
	if err != nil {
		fatal(fmt.Errorf("invalid position ID: %w", err))
	}
	fmt.Printf("Board %dx%d, %d stones\n", b.Side(), b.Side(), b.Count())
	fmt.Print(external.FormatBoard(b))
}
