package worker

import (
	"bytes"
	"sync"
)

// lineSplitter is an io.Writer that cuts a byte stream into newline-terminated
// lines. A trailing fragment is held until the rest of its line arrives.
type lineSplitter struct {
	mu     sync.Mutex
	buf    []byte
	onLine func(line []byte)
}

func newLineSplitter(onLine func(line []byte)) *lineSplitter {
	return &lineSplitter{onLine: onLine}
}

func (s *lineSplitter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = append(s.buf, p...)
	for {
		i := bytes.IndexByte(s.buf, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimRight(s.buf[:i], "\r")
		if len(bytes.TrimSpace(line)) > 0 {
			s.onLine(bytes.Clone(line))
		}
		s.buf = s.buf[i+1:]
	}
	if len(s.buf) == 0 {
		s.buf = nil
	}
	return len(p), nil
}

// Pending returns the buffered partial line.
func (s *lineSplitter) Pending() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.buf)
}
