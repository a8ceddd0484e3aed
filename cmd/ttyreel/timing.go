package main

import (
	"fmt"
	"strconv"
	"strings"
)

// timingRecord is one line of the timing file: the delay to wait before its
// chunk of output appears, and the chunk's size in bytes. DelayText keeps
// the original decimal text so it can be passed through to the encoder
// unchanged.
type timingRecord struct {
	Delay     float64
	DelayText string
	Bytes     int
}

// timingLineError reports a timing file line that could not be parsed.
type timingLineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *timingLineError) Error() string {
	return fmt.Sprintf("timing file line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// parseTimingLine parses one "<delay-seconds> <byte-count>" line. Both
// fields must be non-negative; anything other than exactly two
// space-separated fields is an error.
func parseTimingLine(lineNum int, line string) (timingRecord, error) {
	parts := strings.Split(line, " ")
	if len(parts) != 2 {
		return timingRecord{}, &timingLineError{Line: lineNum, Text: line, Reason: "expected two space-separated fields"}
	}

	delay, err := strconv.ParseFloat(parts[0], 64)
	if err != nil || delay < 0 {
		return timingRecord{}, &timingLineError{Line: lineNum, Text: line, Reason: "bad delay"}
	}

	size, err := strconv.Atoi(parts[1])
	if err != nil || size < 0 {
		return timingRecord{}, &timingLineError{Line: lineNum, Text: line, Reason: "bad byte count"}
	}

	return timingRecord{Delay: delay, DelayText: parts[0], Bytes: size}, nil
}
