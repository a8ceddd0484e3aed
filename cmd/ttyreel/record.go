package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/creack/pty"
)

// handleRecord implements `ttyreel record [command...]`.
func handleRecord(args []string) {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	timingPath := fs.String("t", "tty.timing", "timing file to write")
	scriptPath := fs.String("s", "typescript", "typescript file to write")
	fs.Parse(args)

	cmdArgs := fs.Args()
	if len(cmdArgs) == 0 {
		shell := os.Getenv("SHELL")
		if shell == "" {
			shell = "/bin/sh"
		}
		cmdArgs = []string{shell}
	}

	if err := record(*timingPath, *scriptPath, cmdArgs); err != nil {
		fatalf("ttyreel: %v", err)
	}
}

// sessionWriter captures one recording in lockstep: raw bytes to the
// typescript, one "<delay> <size>" line per chunk to the timing file.
// Delays are seconds since the previous chunk (or since the recording
// started, for the first chunk), formatted with six decimal places the way
// script(1) writes its timing output.
type sessionWriter struct {
	script io.Writer
	timing io.Writer
	echo   io.Writer
	now    func() time.Time
	last   time.Time
}

func newSessionWriter(script, timing, echo io.Writer) *sessionWriter {
	w := &sessionWriter{script: script, timing: timing, echo: echo, now: time.Now}
	w.last = w.now()
	return w
}

// writeChunk records one chunk of session output.
func (w *sessionWriter) writeChunk(p []byte) error {
	now := w.now()
	delay := now.Sub(w.last).Seconds()
	w.last = now

	if _, err := fmt.Fprintf(w.timing, "%.6f %d\n", delay, len(p)); err != nil {
		return fmt.Errorf("writing timing line: %w", err)
	}
	if _, err := w.script.Write(p); err != nil {
		return fmt.Errorf("writing typescript chunk: %w", err)
	}
	if w.echo != nil {
		w.echo.Write(p)
	}
	return nil
}

// record runs a command under a pseudo-terminal, mirroring its output to
// the real terminal while writing a typescript file and a timing file that
// round-trip through `ttyreel render`. Input forwarding is line-buffered:
// the recorder does not put the controlling terminal into raw mode.
func record(timingPath, scriptPath string, cmdArgs []string) error {
	scriptFile, err := os.Create(scriptPath)
	if err != nil {
		return fmt.Errorf("creating typescript: %w", err)
	}
	defer scriptFile.Close()

	timingFile, err := os.Create(timingPath)
	if err != nil {
		return fmt.Errorf("creating timing file: %w", err)
	}
	defer timingFile.Close()

	// The render side discards this line without interpreting it, same
	// as script(1) output.
	if _, err := fmt.Fprintf(scriptFile, "Script started on %s\n", time.Now().Format(time.UnixDate)); err != nil {
		return fmt.Errorf("writing typescript header: %w", err)
	}

	cmd := exec.Command(cmdArgs[0], cmdArgs[1:]...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("starting %s under a pty: %w", cmdArgs[0], err)
	}
	defer ptmx.Close()

	// Track the controlling terminal's size, initially and on SIGWINCH.
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)
	go func() {
		for range winch {
			pty.InheritSize(os.Stdin, ptmx)
		}
	}()
	winch <- syscall.SIGWINCH

	go io.Copy(ptmx, os.Stdin)

	sw := newSessionWriter(scriptFile, timingFile, os.Stdout)
	buf := make([]byte, 32*1024)
	for {
		n, rerr := ptmx.Read(buf)
		if n > 0 {
			if werr := sw.writeChunk(buf[:n]); werr != nil {
				cmd.Process.Kill()
				cmd.Wait()
				return werr
			}
		}
		if rerr != nil {
			// The pty returns EIO once the child exits; either way
			// the recording is over.
			break
		}
	}

	cmd.Wait()
	fmt.Fprintf(os.Stderr, "ttyreel: wrote %s and %s\n", scriptPath, timingPath)
	return nil
}
