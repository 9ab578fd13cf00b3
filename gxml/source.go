package gxml

import "io"

// Source is the unifying input contract the event parser consumes.
// Implementations either borrow directly from a contiguous buffer
// (zero-copy) or pull from a bounded-lookahead reader (copy-on-demand
// into the parser's arena).
type Source interface {
	// Peek returns up to n bytes without consuming them. It may return
	// fewer than n bytes at end of input, never an error for a short
	// read caused only by EOF.
	Peek(n int) ([]byte, error)
	// PeekByte returns the next byte without consuming it, or io.EOF.
	PeekByte() (byte, error)
	// Take consumes and returns up to n bytes. The returned slice is
	// only guaranteed to be durable until the next Peek/Take/Toss for
	// stream-backed sources; slice-backed sources return a subslice of
	// the original input, valid for the source's entire lifetime.
	Take(n int) ([]byte, error)
	// Toss discards n bytes without returning them.
	Toss(n int) error
	// Borrowed reports whether slices this Source returns are stable
	// for the source's entire lifetime (true for slice-backed sources)
	// or volatile past the next call (false for stream-backed sources).
	Borrowed() bool
}

// sliceSource is backed by a single contiguous byte range: the whole
// document is already in memory, so Peek/Take never copy.
type sliceSource struct {
	buf []byte
	pos int
}

// NewSliceSource returns a Source backed by buf. buf must contain the
// entire document; returned slices borrow directly from it and remain
// valid for as long as buf does.
func NewSliceSource(buf []byte) Source {
	return &sliceSource{buf: buf}
}

func (s *sliceSource) Peek(n int) ([]byte, error) {
	end := s.pos + n
	if end > len(s.buf) {
		end = len(s.buf)
	}
	return s.buf[s.pos:end], nil
}

func (s *sliceSource) PeekByte() (byte, error) {
	if s.pos >= len(s.buf) {
		return 0, io.EOF
	}
	return s.buf[s.pos], nil
}

func (s *sliceSource) Take(n int) ([]byte, error) {
	b, _ := s.Peek(n)
	s.pos += len(b)
	return b, nil
}

func (s *sliceSource) Toss(n int) error {
	s.pos += n
	if s.pos > len(s.buf) {
		s.pos = len(s.buf)
	}
	return nil
}

func (s *sliceSource) Borrowed() bool { return true }

// defaultMaxTokenSize bounds unbounded scanning (e.g. a comment with no
// terminator) so that a hostile or truncated document fails with
// TokenTooLarge rather than exhausting memory.
const defaultMaxTokenSize = 16 << 20

// readerSource wraps an io.Reader with a bounded internal buffer.
// Because Go's io.Reader offers no durable-lookahead guarantee, every
// byte it hands back is volatile past the next Peek/Take/Toss call;
// durable copies must go through the parser's arena.
type readerSource struct {
	r          io.Reader
	buf        []byte
	start      int // first unconsumed byte
	end        int // one past last buffered byte
	eof        bool
	maxToken   int
}

// ReaderSourceOption configures a stream-backed Source.
type ReaderSourceOption func(*readerSource)

// WithReaderMaxToken overrides the per-token scan ceiling (default 16 MiB).
func WithReaderMaxToken(n int) ReaderSourceOption {
	return func(rs *readerSource) { rs.maxToken = n }
}

// NewReaderSource returns a stream-backed Source pulling from r, with
// bounded lookahead buffering.
func NewReaderSource(r io.Reader, opts ...ReaderSourceOption) Source {
	rs := &readerSource{r: r, maxToken: defaultMaxTokenSize}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// fill ensures at least n bytes are buffered (or EOF is reached),
// compacting consumed bytes out of the front of the buffer first.
func (s *readerSource) fill(n int) error {
	if s.end-s.start >= n || s.eof {
		return nil
	}
	if n > s.maxToken {
		return newErr(TokenTooLarge, "requested lookahead %d exceeds max token size %d", n, s.maxToken)
	}
	if s.start > 0 {
		copy(s.buf, s.buf[s.start:s.end])
		s.end -= s.start
		s.start = 0
	}
	if need := n - len(s.buf); need > 0 {
		grown := make([]byte, n+need)
		copy(grown, s.buf[:s.end])
		s.buf = grown
	}
	for s.end-s.start < n && !s.eof {
		read, err := s.r.Read(s.buf[s.end:cap(s.buf)])
		s.end += read
		if err != nil {
			if err == io.EOF {
				s.eof = true
				break
			}
			return wrap(err, "reading source")
		}
		if read == 0 && err == nil {
			continue
		}
	}
	return nil
}

func (s *readerSource) Peek(n int) ([]byte, error) {
	if err := s.fill(n); err != nil {
		return nil, err
	}
	avail := s.end - s.start
	if avail > n {
		avail = n
	}
	return s.buf[s.start : s.start+avail], nil
}

func (s *readerSource) PeekByte() (byte, error) {
	b, err := s.Peek(1)
	if err != nil {
		return 0, err
	}
	if len(b) == 0 {
		return 0, io.EOF
	}
	return b[0], nil
}

func (s *readerSource) Take(n int) ([]byte, error) {
	b, err := s.Peek(n)
	if err != nil {
		return nil, err
	}
	s.start += len(b)
	return b, nil
}

func (s *readerSource) Toss(n int) error {
	for n > 0 {
		b, err := s.Peek(n)
		if err != nil {
			return err
		}
		if len(b) == 0 {
			return nil
		}
		s.start += len(b)
		n -= len(b)
	}
	return nil
}

func (s *readerSource) Borrowed() bool { return false }
