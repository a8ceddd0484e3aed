package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// renderOptions collects everything the replay-and-encode pipeline needs,
// resolved up front so failures happen before any output is produced.
type renderOptions struct {
	timingPath string
	scriptPath string
	outDir     string
	backend    string
	windowID   string
	viewer     string
	noOpen     bool
	run        runner
}

// handleRender implements `ttyreel render <timingfile> <typescript>`.
func handleRender(cfg config, args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	outDir := fs.String("o", cfg.OutputDir, "output directory for frames and the finished animation")
	backend := fs.String("capture", cfg.Capture, "capture backend: x11 or vt")
	window := fs.String("window", cfg.WindowID, "X11 window ID to capture")
	noOpen := fs.Bool("no-open", false, "do not launch a viewer on the finished animation")
	fs.Parse(args)

	if fs.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage: ttyreel render [options] <timingfile> <typescript>\n")
		os.Exit(1)
	}

	opts := renderOptions{
		timingPath: fs.Arg(0),
		scriptPath: fs.Arg(1),
		outDir:     *outDir,
		backend:    *backend,
		windowID:   *window,
		viewer:     cfg.Viewer,
		noOpen:     *noOpen,
		run:        execRunner{},
	}

	if err := render(opts); err != nil {
		fatalf("ttyreel: %v", err)
	}
}

// render replays one recorded session, capturing a frame at every chunk
// boundary, then assembles the frames into the final animation.
func render(opts renderOptions) error {
	if opts.backend == "x11" {
		for _, tool := range []string{"xwd", "convert"} {
			if err := checkTool(tool); err != nil {
				return err
			}
		}
	}

	timing, err := os.Open(opts.timingPath)
	if err != nil {
		return fmt.Errorf("opening timing file: %w", err)
	}
	defer timing.Close()

	script, err := os.Open(opts.scriptPath)
	if err != nil {
		return fmt.Errorf("opening typescript: %w", err)
	}
	defer script.Close()

	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	reader := newScriptReader(script)
	if err := reader.discardHeader(); err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	var capt capturer
	switch opts.backend {
	case "x11":
		c, err := newX11Capturer(opts.run, opts.windowID, opts.outDir)
		if err != nil {
			return err
		}
		capt = c
	case "vt":
		v := newVTCapturer(opts.outDir, 80, 24)
		out = io.MultiWriter(out, v)
		capt = v
	default:
		return fmt.Errorf("unknown capture backend %q", opts.backend)
	}

	rep := newReplayer(out, capt)
	if err := rep.run(timing, reader); err != nil {
		return err
	}

	if opts.backend == "vt" {
		// ImageMagick cannot consume ANSI text frames, so the vt
		// backend stops after capturing them.
		log.Printf("wrote %d text frames to %s", len(rep.frames), opts.outDir)
		return nil
	}

	artifact := filepath.Join(opts.outDir, "output.gif")
	if err := assemble(opts.run, rep.frames, artifact); err != nil {
		return err
	}

	if !opts.noOpen {
		if err := openViewer(opts.run, opts.viewer, artifact); err != nil {
			return err
		}
	}

	fmt.Println()
	return nil
}
