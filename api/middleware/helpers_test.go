package middleware

import "io"

// streamBody yields n zero bytes without allocating them and records how
// many were consumed.
type streamBody struct {
	remaining int64
	read      int64
}

func newStreamBody(n int64) *streamBody { return &streamBody{remaining: n} }

func (s *streamBody) Read(p []byte) (int, error) {
	if s.remaining <= 0 {
		return 0, io.EOF
	}
	n := int64(len(p))
	if n > s.remaining {
		n = s.remaining
	}
	clear(p[:n])
	s.remaining -= n
	s.read += n
	return int(n), nil
}
