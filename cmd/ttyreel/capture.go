package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hinshun/vt10x"
)

// errCaptureTargetUnresolved means no X11 window ID was available: not in
// the environment, not in .env, not on the command line.
var errCaptureTargetUnresolved = errors.New("no capture window: WINDOWID is not set and -window was not given")

// capturer takes a screenshot of the replay target, writing an image file
// named after the frame index and returning its path. Paths sort in frame
// order so the encoder sees frames in display order.
type capturer interface {
	capture(frameIndex int) (string, error)
}

// x11Capturer shells out to xwd to dump the terminal emulator's window.
// The window ID is resolved once at startup; each capture blocks until xwd
// has materialized the image file.
type x11Capturer struct {
	run      runner
	windowID string
	outDir   string
}

func newX11Capturer(run runner, windowID, outDir string) (*x11Capturer, error) {
	if windowID == "" {
		return nil, errCaptureTargetUnresolved
	}
	return &x11Capturer{run: run, windowID: windowID, outDir: outDir}, nil
}

func (c *x11Capturer) capture(frameIndex int) (string, error) {
	path := filepath.Join(c.outDir, fmt.Sprintf("img-%d.xwd", frameIndex))
	if err := c.run.run("xwd", "-id", c.windowID, "-out", path); err != nil {
		return "", fmt.Errorf("capturing frame %d: %w", frameIndex, err)
	}
	return path, nil
}

// vtCapturer renders frames from a virtual terminal instead of an X11
// window, for replays on machines with no display. The replay loop tees
// its emission into Write, so the vt10x screen holds exactly what a real
// terminal would be showing at each chunk boundary.
type vtCapturer struct {
	vt     vt10x.Terminal
	outDir string
}

func newVTCapturer(outDir string, cols, rows int) *vtCapturer {
	return &vtCapturer{vt: vt10x.New(vt10x.WithSize(cols, rows)), outDir: outDir}
}

func (c *vtCapturer) Write(p []byte) (int, error) {
	return c.vt.Write(p)
}

func (c *vtCapturer) capture(frameIndex int) (string, error) {
	path := filepath.Join(c.outDir, fmt.Sprintf("img-%d.ans", frameIndex))
	if err := os.WriteFile(path, c.snapshot(), 0644); err != nil {
		return "", fmt.Errorf("capturing frame %d: %w", frameIndex, err)
	}
	return path, nil
}

// snapshot renders the virtual terminal's screen as ANSI escape sequences:
// a full repaint of every cell, tracking color changes to keep the output
// small, ending with the cursor position.
func (c *vtCapturer) snapshot() []byte {
	var buf bytes.Buffer

	cols, rows := c.vt.Size()

	buf.WriteString("\x1b[2J") // clear entire screen
	buf.WriteString("\x1b[H")  // cursor to home (1,1)

	var lastFG, lastBG vt10x.Color = vt10x.DefaultFG, vt10x.DefaultBG

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cell := c.vt.Cell(col, row)

			if cell.FG != lastFG || cell.BG != lastBG {
				buf.WriteString("\x1b[0m")
				if cell.FG != vt10x.DefaultFG && cell.FG < 256 {
					fmt.Fprintf(&buf, "\x1b[38;5;%dm", cell.FG)
				}
				if cell.BG != vt10x.DefaultBG && cell.BG < 256 {
					fmt.Fprintf(&buf, "\x1b[48;5;%dm", cell.BG)
				}
				lastFG, lastBG = cell.FG, cell.BG
			}

			if cell.Char == 0 {
				buf.WriteRune(' ')
			} else {
				buf.WriteRune(cell.Char)
			}
		}
		if row < rows-1 {
			buf.WriteString("\r\n")
		}
	}

	buf.WriteString("\x1b[0m")

	cursor := c.vt.Cursor()
	fmt.Fprintf(&buf, "\x1b[%d;%dH", cursor.Y+1, cursor.X+1)

	return buf.Bytes()
}
