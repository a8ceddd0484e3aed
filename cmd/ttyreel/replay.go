package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// errUndecodableOutput means a chunk did not decode as UTF-8 text. Chunk
// boundaries come from the timing file, so garbage here usually means the
// timing and typescript files are not a matching pair.
var errUndecodableOutput = errors.New("chunk is not valid UTF-8 text")

// frame pairs a captured image with the delay it is held for in the
// finished animation. Slice order is display order.
type frame struct {
	DelayText string
	Path      string
}

type flusher interface {
	Flush() error
}

// replayer drives the timing-synchronized replay: it re-emits each chunk of
// the typescript at the recorded cadence and captures the screen at every
// chunk boundary after the first.
type replayer struct {
	out    io.Writer
	capt   capturer
	sleep  func(time.Duration)
	frames []frame
}

func newReplayer(out io.Writer, capt capturer) *replayer {
	return &replayer{out: out, capt: capt, sleep: time.Sleep}
}

// run consumes the timing stream, replaying the typescript in lockstep.
//
// The first record's chunk is only buffered: its delay paces the loop but
// its content reaches the screen together with the second record's capture,
// so N timing records produce N-1 frames. That asymmetry is inherited from
// the recording format, where each delay precedes its chunk.
func (r *replayer) run(timing io.Reader, script *scriptReader) error {
	scanner := bufio.NewScanner(timing)
	var pending []byte
	lineNum := 0
	frameIndex := 1

	for scanner.Scan() {
		lineNum++
		rec, err := parseTimingLine(lineNum, scanner.Text())
		if err != nil {
			return err
		}

		if lineNum > 1 {
			if err := r.emit(pending); err != nil {
				return err
			}
			path, err := r.capt.capture(frameIndex)
			if err != nil {
				return err
			}
			r.frames = append(r.frames, frame{DelayText: rec.DelayText, Path: path})
			frameIndex++
		}

		chunk, err := script.readChunk(rec.Bytes)
		if err != nil {
			return err
		}
		// The chunk slice aliases the reader's buffer and dies on the
		// next readChunk, so keep our own copy until it is emitted.
		pending = append(pending[:0], chunk...)

		if err := r.pace(rec); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading timing file: %w", err)
	}

	return script.expectEOF()
}

// emit writes a previously buffered chunk to the replay terminal and
// flushes it, so the capture that follows sees the freshly drawn content.
func (r *replayer) emit(chunk []byte) error {
	if !utf8.Valid(chunk) {
		return fmt.Errorf("emitting %d byte chunk: %w", len(chunk), errUndecodableOutput)
	}
	if _, err := r.out.Write(chunk); err != nil {
		return fmt.Errorf("writing chunk to terminal: %w", err)
	}
	if f, ok := r.out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flushing terminal: %w", err)
		}
	}
	return nil
}

// pace sleeps for the record's delay, reproducing the recorded cadence.
// This is the only place the pipeline suspends, and it blocks everything on
// purpose: capturing or reading during the delay window would break
// fidelity to the original session timing.
func (r *replayer) pace(rec timingRecord) error {
	secs, nsecs, err := decomposeDelay(rec)
	if err != nil {
		return err
	}
	r.sleep(time.Duration(secs)*time.Second + time.Duration(nsecs)*time.Nanosecond)
	return nil
}

// decomposeDelay splits a delay into whole seconds and sub-second
// nanoseconds, honoring fractional delays exactly. The parser guarantees
// non-negative input, so a negative decomposition is an internal
// consistency failure rather than user error.
func decomposeDelay(rec timingRecord) (int64, int64, error) {
	whole := rec.DelayText
	if i := strings.IndexByte(whole, '.'); i >= 0 {
		whole = whole[:i]
	}
	secs, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("decomposing delay %q: %w", rec.DelayText, err)
	}
	nsecs := int64((rec.Delay - float64(secs)) * 1e9)
	if secs < 0 || nsecs < 0 {
		return 0, 0, fmt.Errorf("decomposing delay %q: negative duration", rec.DelayText)
	}
	return secs, nsecs, nil
}
