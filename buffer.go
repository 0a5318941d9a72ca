package n3

import "errors"

// byteBuffer is an append-only ring of unconsumed input bytes, with a read
// cursor and an end-of-input flag. It is the Byte Buffer of spec.md §4.1:
// the lexer only ever reads through the window starting at cursor, and
// only advances the cursor when it successfully emits a token.
//
// Adapted from the teacher's lexer.input/pos/start triple (lex.go), which
// re-slices a fresh []byte per line read from a bufio.Reader; byteBuffer
// generalizes that to an arbitrary append-driven window because N3
// literals, comments and formulas are not line-delimited.
type byteBuffer struct {
	data   []byte
	cursor int // index into data of the first unconsumed byte
	eof    bool
	max    int
}

func newByteBuffer(minSize, maxSize int) *byteBuffer {
	if minSize <= 0 {
		minSize = MinBufferSize
	}
	if maxSize <= 0 {
		maxSize = MaxBufferSize
	}
	return &byteBuffer{
		data: make([]byte, 0, minSize),
		max:  maxSize,
	}
}

// append adds bytes to the buffer. It fails if the unconsumed region would
// grow past MaxBufferSize: a single token (string, IRI or comment) that
// long cannot be tokenized and is a fatal error (spec.md §4.1).
func (b *byteBuffer) append(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if b.unconsumedLen()+len(p) > b.max {
		return errBufferOverflow
	}
	b.data = append(b.data, p...)
	return nil
}

// close marks the buffer as having received all of its input.
func (b *byteBuffer) close() {
	b.eof = true
}

// atEOF reports whether append will never be called again.
func (b *byteBuffer) atEOF() bool {
	return b.eof
}

// view returns the unconsumed window, for the lexer to scan.
func (b *byteBuffer) view() []byte {
	return b.data[b.cursor:]
}

func (b *byteBuffer) unconsumedLen() int {
	return len(b.data) - b.cursor
}

// advance moves the cursor forward by n bytes, representing a token (or
// run of skipped whitespace/comment bytes) the lexer has consumed.
// It also compacts the buffer once the consumed prefix grows large, so a
// long-running parse doesn't retain all its history.
func (b *byteBuffer) advance(n int) {
	b.cursor += n
	if b.cursor > 0 && b.cursor == len(b.data) {
		b.data = b.data[:0]
		b.cursor = 0
	} else if b.cursor > b.max {
		b.data = append(b.data[:0], b.data[b.cursor:]...)
		b.cursor = 0
	}
}

// errBufferOverflow is a sentinel; the caller (the parser) attaches the
// current source Position when it surfaces this as a *LexError.
var errBufferOverflow = errors.New("buffer overflow: token exceeds max buffer size")
