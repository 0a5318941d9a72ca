package n3

import (
	"errors"
	"io"
)

// ErrNeedMoreInput is returned by ChunkFed.Next when no quad is currently
// available and the caller must Feed more bytes (or Close) before trying
// again. It is distinct from io.EOF, which means the parse is finished.
var ErrNeedMoreInput = errors.New("n3: need more input")

// ErrWouldBlock is returned by NonblockingReader.Next when the underlying
// reader reported it has no data ready (a zero-byte, nil-error Read). The
// caller should retry Next once the reader is ready again.
var ErrWouldBlock = errors.New("n3: underlying reader would block")

// parseEvent is one entry in the core's output queue: either a quad or an
// error, never both, preserving the exact order the recognizer produced
// them in (spec.md §5: "quads are emitted in exact document order").
type parseEvent struct {
	quad Quad
	err  error
}

func quadEvents(qs []Quad) []parseEvent {
	if len(qs) == 0 {
		return nil
	}
	evs := make([]parseEvent, len(qs))
	for i, q := range qs {
		evs[i] = parseEvent{quad: q}
	}
	return evs
}

// core is the byte-buffer/lexer/recognizer pipeline every façade wraps
// (spec.md §4.4: "All three share the same state"). It owns the
// lexer<->recognizer pump loop and the resynchronization-on-error logic
// of spec.md §7, so the three façades only differ in where bytes come
// from.
//
// Grounded in the teacher's ttlDecoder.Decode() pull loop (decoder.go,
// ttl.go), which plays the same role of repeatedly asking the lexer for a
// token and folding it into triples until one is ready to return.
type core struct {
	cfg *Config
	buf *byteBuffer
	lx  *lexer
	rec *recognizer

	pending   []parseEvent
	done      bool // recognizer/lexer will never produce anything more
	resyncing bool // discarding tokens up to and including the next '.' token; '{'/'}' nesting is not tracked
}

func newCore(cfg *Config) *core {
	return &core{
		cfg: cfg,
		buf: newByteBuffer(cfg.minBufferSize, cfg.maxBufferSize),
		lx:  newLexer(),
		rec: newRecognizer(cfg),
	}
}

// feed appends input bytes. A buffer overflow (a single token too long to
// ever fit) is fatal and ends the parse immediately.
func (c *core) feed(p []byte) error {
	if c.done {
		return nil
	}
	if err := c.buf.append(p); err != nil {
		pos := Position{Offset: c.lx.offset, Line: c.lx.line, Column: c.lx.col}
		lerr := bufferOverflowError(pos)
		c.cfg.debugLex(lerr)
		c.done = true
		return lerr
	}
	return nil
}

func (c *core) close() { c.buf.close() }

// pump runs the lexer/recognizer loop as far as the currently buffered
// bytes allow, queuing every quad and error it produces along the way. It
// stops when the lexer needs more bytes than are currently available, or
// when the parse has reached a terminal state (lexical error, or
// end-of-input).
func (c *core) pump() {
	for !c.done {
		tok, consumed, status, err := c.lx.next(c.buf.view(), c.buf.atEOF(), c.rec.rdfStar, c.rec.expectingLangTag())
		if consumed > 0 {
			c.buf.advance(consumed)
		}
		if err != nil {
			lerr := err.(*LexError)
			c.cfg.debugLex(lerr)
			c.pending = append(c.pending, parseEvent{err: lerr})
			c.done = true
			return
		}

		switch status {
		case lexNeedMore:
			return

		case lexEnd:
			if !c.resyncing && !c.rec.atDocLevel() {
				pos := Position{Offset: c.lx.offset, Line: c.lx.line, Column: c.lx.col}
				c.pending = append(c.pending, parseEvent{err: &SyntaxError{Pos: pos, Message: "unexpected end of input"}})
			}
			c.done = true
			return

		case lexToken:
			c.stepToken(tok)
		}
	}
}

// stepToken feeds one token through the recognizer until it is consumed,
// draining quads as they're emitted, and handling a grammar error by
// recording it and switching to resync-at-next-dot mode (spec.md §7).
func (c *core) stepToken(tok token) {
	if c.resyncing {
		if tok.kind == tokPunctuation && tok.text == punctDot {
			c.resyncing = false
		}
		return
	}
	for {
		consumed, serr := c.rec.step(tok)
		c.pending = append(c.pending, quadEvents(c.rec.drainQuads())...)
		if serr != nil {
			if se, ok := serr.(*SyntaxError); ok {
				c.cfg.debugSyntax(se)
			}
			c.pending = append(c.pending, parseEvent{err: serr})
			c.rec.recoverFromError()
			c.resyncing = true
			return
		}
		if consumed {
			return
		}
	}
}

// poll pumps as far as possible and returns the next queued event, if
// any. ok is false exactly when the caller must supply more input (or
// close the input) before a result can exist.
func (c *core) poll() (q Quad, err error, ok bool) {
	c.pump()
	if len(c.pending) == 0 {
		return Quad{}, nil, false
	}
	ev := c.pending[0]
	c.pending = c.pending[1:]
	return ev.quad, ev.err, true
}

// finished reports whether the parse has reached a terminal state and
// every queued event has already been delivered.
func (c *core) finished() bool {
	return c.done && len(c.pending) == 0
}

// ChunkFed is the low-level, caller-driven façade (spec.md §4.4): the
// caller appends bytes and signals end-of-input explicitly, and polls for
// results rather than handing the parser an io.Reader. Grounded in the
// original Rust LowLevelN3Reader (extend_from_slice/end/read_next,
// original_source/lib/oxttl/src/n3.rs).
type ChunkFed struct {
	c *core
}

// NewChunkFed creates a chunk-fed parser from cfg. A nil cfg is invalid;
// build one with NewConfig.
func NewChunkFed(cfg *Config) *ChunkFed {
	return &ChunkFed{c: newCore(cfg)}
}

// Feed appends more source bytes. It only ever returns an error for a
// buffer overflow; grammar and lexical errors are reported through Next.
func (f *ChunkFed) Feed(p []byte) error { return f.c.feed(p) }

// Close signals that no more bytes will be fed; Next can then report
// io.EOF once every buffered quad has been drained.
func (f *ChunkFed) Close() { f.c.close() }

// Next returns the next available quad. It returns ErrNeedMoreInput if
// none is available yet (call Feed, then Next again), or io.EOF once the
// input has been closed and fully drained.
func (f *ChunkFed) Next() (Quad, error) {
	q, err, ok := f.c.poll()
	if !ok {
		if f.c.finished() {
			return Quad{}, io.EOF
		}
		return Quad{}, ErrNeedMoreInput
	}
	return q, err
}

// defaultReadSize is the chunk size the reader-based façades pull at a
// time; large enough to amortize Read calls, small enough not to waste
// memory buffering far ahead of the recognizer.
const defaultReadSize = 64 * 1024

// BlockingReader pulls quads from an io.Reader, blocking on Read as
// needed. Grounded in the teacher's TripleDecoder/ttlDecoder.Decode() pull
// loop (decoder.go, ttl.go).
type BlockingReader struct {
	c     *core
	r     io.Reader
	chunk []byte
}

// NewBlockingReader creates a parser that pulls its bytes from r.
func NewBlockingReader(r io.Reader, cfg *Config) *BlockingReader {
	return &BlockingReader{c: newCore(cfg), r: r, chunk: make([]byte, defaultReadSize)}
}

// Next blocks until a quad is available, an error occurs, or r is
// exhausted (io.EOF).
func (b *BlockingReader) Next() (Quad, error) {
	for {
		if q, err, ok := b.c.poll(); ok {
			return q, err
		}
		if b.c.finished() {
			return Quad{}, io.EOF
		}
		n, rerr := b.r.Read(b.chunk)
		if n > 0 {
			if ferr := b.c.feed(b.chunk[:n]); ferr != nil {
				return Quad{}, ferr
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				b.c.close()
				continue
			}
			return Quad{}, rerr
		}
	}
}

// NonblockingReader pulls quads from an io.Reader that may signal "no data
// ready yet" by returning 0, nil from Read, instead of blocking. Next
// suspends by returning ErrWouldBlock rather than blocking the caller's
// goroutine, so it can be driven from an external event loop.
type NonblockingReader struct {
	c     *core
	r     io.Reader
	chunk []byte
}

// NewNonblockingReader creates a parser that pulls its bytes from r.
func NewNonblockingReader(r io.Reader, cfg *Config) *NonblockingReader {
	return &NonblockingReader{c: newCore(cfg), r: r, chunk: make([]byte, defaultReadSize)}
}

// Next returns the next quad if one is ready without blocking on r. If r
// reports it would block, Next returns ErrWouldBlock; the caller should
// retry once r is ready again.
func (nr *NonblockingReader) Next() (Quad, error) {
	for {
		if q, err, ok := nr.c.poll(); ok {
			return q, err
		}
		if nr.c.finished() {
			return Quad{}, io.EOF
		}
		n, rerr := nr.r.Read(nr.chunk)
		if n == 0 && rerr == nil {
			return Quad{}, ErrWouldBlock
		}
		if n > 0 {
			if ferr := nr.c.feed(nr.chunk[:n]); ferr != nil {
				return Quad{}, ferr
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				nr.c.close()
				continue
			}
			return Quad{}, rerr
		}
	}
}
