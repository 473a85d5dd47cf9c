package ksi

import (
	"bufio"
	"io"
)

// Reader decodes a stream of back-to-back TLV elements, one at a time.
// Unlike [ParseBlob], a Reader does not require the underlying stream to end
// exactly at the element boundary; callers typically loop until ReadNode
// returns io.EOF.
type Reader interface {
	// ReadNode reads and decodes the next complete TLV element into a
	// raw-view [Node] with one outstanding reference. It returns io.EOF
	// (unwrapped) if the stream ends cleanly before another header begins.
	ReadNode() (*Node, error)
}

// streamReader is the [Reader] returned by [NewStreamReader]. It keeps a
// running absolute offset so nodes it produces carry a meaningful [Node.Origin].
type streamReader struct {
	ctx    Context
	br     *bufio.Reader
	offset int64
}

// NewStreamReader wraps r in a [Reader]. r is buffered internally; callers
// should not also wrap r in their own *bufio.Reader.
func NewStreamReader(ctx Context, r io.Reader) Reader {
	return &streamReader{ctx: ctx, br: bufio.NewReaderSize(r, bufferCapacity)}
}

func (s *streamReader) ReadNode() (*Node, error) {
	first, err := s.br.Peek(1)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, ctxFail(s.ctx, KindInvalidFormat, "ReadNode", &ioError{action: "read", err: err})
	}

	headerLen := 2
	if first[0]&0x80 != 0 {
		headerLen = 4
	}
	hdr := make([]byte, headerLen)
	if err := readFullInto(s.br, hdr); err != nil {
		return nil, ctxFail(s.ctx, KindInvalidFormat, "ReadNode", &ioError{action: "read", err: err})
	}
	h, _, err := DecodeHeader(hdr)
	if err != nil {
		return nil, ctxFail(s.ctx, KindInvalidFormat, "ReadNode", err)
	}
	if headerLen == 4 && h.isTLV8() {
		debugf(s.ctx, "ReadNode: accepted non-canonical TLV16 header for TLV8-eligible tag=0x%x length=%d", h.Tag, h.Length)
	}

	payload := make([]byte, h.Length)
	if h.Length > 0 {
		if err := readFullInto(s.br, payload); err != nil {
			return nil, ctxFail(s.ctx, KindInvalidFormat, "ReadNode", &ioError{action: "read", err: err})
		}
	}

	n := &Node{
		ctx:     s.ctx,
		tag:     h.Tag,
		lenient: h.Lenient,
		forward: h.Forward,
		mode:    viewRaw,
		raw:     payload,
		count:   1,
	}
	n.setOrigin(s.offset, 0, headerLen)
	s.offset += int64(headerLen) + int64(h.Length)
	return n, nil
}

// readFullInto reads exactly len(buf) bytes from r into buf. Like
// [io.ReadFull], it reports io.ErrUnexpectedEOF when the stream ends after
// part of buf was filled, and io.EOF when it ends before any byte was read.
func readFullInto(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}
