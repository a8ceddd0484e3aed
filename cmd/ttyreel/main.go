package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := loadConfig()

	switch os.Args[1] {
	case "render":
		handleRender(cfg, os.Args[2:])
	case "record":
		handleRecord(os.Args[2:])
	case "serve":
		handleServe(cfg, os.Args[2:])
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: ttyreel <command> [options]

Commands:
  record [-t timing] [-s typescript] [command...]   Record a terminal session
  render [options] <timingfile> <typescript>        Replay a session and encode an animated GIF
  serve [-addr ADDR] <timingfile> <typescript>      Preview a session in the browser
  help                                              Show this help message

Render options:
  -o DIR          Output directory for frames and output.gif (default "output")
  -capture KIND   Capture backend: x11 (xwd screenshots) or vt (virtual terminal)
  -window ID      X11 window to capture (default $WINDOWID)
  -no-open        Skip launching a viewer on the finished animation

Examples:
  ttyreel record -t demo.timing -s demo.script
  ttyreel render demo.timing demo.script
  ttyreel serve -addr :7463 demo.timing demo.script

Configuration is read from the environment (optionally via .env):
  WINDOWID, TTYREEL_OUTPUT_DIR, TTYREEL_CAPTURE, TTYREEL_VIEWER, TTYREEL_ADDR
`)
}

// fatalf prints a single descriptive error line and exits non-zero. Every
// failure here is terminal; nothing is retried or recovered.
func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
