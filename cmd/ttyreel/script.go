package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// errTruncatedScript means the typescript ran out of bytes before the sizes
// declared in the timing file were satisfied.
var errTruncatedScript = errors.New("typescript ended before the declared chunk size")

// scriptReader reads chunk payloads out of a typescript stream. It owns a
// single buffer that is resized before every read, so the slice returned by
// readChunk is only valid until the next readChunk call.
type scriptReader struct {
	r   *bufio.Reader
	buf []byte
}

func newScriptReader(r io.Reader) *scriptReader {
	return &scriptReader{r: bufio.NewReader(r)}
}

// discardHeader consumes the typescript's first line (the "Script started
// on ..." timestamp written by the recorder) without interpreting it.
func (s *scriptReader) discardHeader() error {
	if _, err := s.r.ReadString('\n'); err != nil {
		return fmt.Errorf("reading typescript header: %w", err)
	}
	return nil
}

// readChunk returns the next n bytes of the typescript.
func (s *scriptReader) readChunk(n int) ([]byte, error) {
	if cap(s.buf) < n {
		s.buf = make([]byte, n)
	} else {
		s.buf = s.buf[:n]
	}
	if _, err := io.ReadFull(s.r, s.buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("reading %d byte chunk: %w", n, errTruncatedScript)
		}
		return nil, fmt.Errorf("reading %d byte chunk: %w", n, err)
	}
	return s.buf, nil
}

// expectEOF verifies the typescript holds no bytes beyond the chunk sizes
// the timing file declared. The two files are produced in lockstep by the
// recorder, so leftover bytes mean they are not a matching pair.
func (s *scriptReader) expectEOF() error {
	if _, err := s.r.ReadByte(); err == nil {
		return errors.New("typescript is longer than the timing file declares")
	} else if err != io.EOF {
		return fmt.Errorf("reading typescript: %w", err)
	}
	return nil
}
