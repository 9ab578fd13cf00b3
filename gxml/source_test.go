package gxml_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/gxml/gxml"
)

func TestSliceSourceBorrowedAndStable(t *testing.T) {
	t.Parallel()

	src := gxml.NewSliceSource([]byte("<a/>"))
	assert.True(t, src.Borrowed())

	b, err := src.Peek(2)
	require.NoError(t, err)
	assert.Equal(t, "<a", string(b))

	require.NoError(t, src.Toss(1))
	b, err = src.Take(1)
	require.NoError(t, err)
	assert.Equal(t, "a", string(b))
}

func TestSliceSourceEOF(t *testing.T) {
	t.Parallel()

	src := gxml.NewSliceSource(nil)
	_, err := src.PeekByte()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderSourceNotBorrowed(t *testing.T) {
	t.Parallel()

	src := gxml.NewReaderSource(strings.NewReader("hello world"))
	assert.False(t, src.Borrowed())

	b, err := src.Peek(5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	require.NoError(t, src.Toss(6))
	b, err = src.Take(5)
	require.NoError(t, err)
	assert.Equal(t, "world", string(b))

	_, err = src.PeekByte()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderSourceMaxTokenExceeded(t *testing.T) {
	t.Parallel()

	src := gxml.NewReaderSource(strings.NewReader(strings.Repeat("a", 1<<20)),
		gxml.WithReaderMaxToken(1024))
	_, err := src.Peek(2048)
	require.Error(t, err)
	kind, ok := gxml.Kind(err)
	require.True(t, ok)
	assert.Equal(t, gxml.TokenTooLarge, kind)
}

// slowReader returns at most one byte per Read call, exercising the
// readerSource's compaction/growth loop across many small reads.
type slowReader struct {
	data []byte
	pos  int
}

func (r *slowReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}

func TestReaderSourceByteAtATime(t *testing.T) {
	t.Parallel()

	src := gxml.NewReaderSource(&slowReader{data: []byte("<root>text</root>")})
	b, err := src.Peek(18)
	require.NoError(t, err)
	assert.Equal(t, "<root>text</root>", string(b))
}
