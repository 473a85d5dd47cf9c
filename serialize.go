package ksi

// payloadSize returns the number of payload bytes n would serialize to: the
// raw payload length, or the sum of each child's encoded size when n is
// nested.
func payloadSize(n *Node) int {
	if n.mode == viewNested {
		sum := 0
		for _, c := range n.children {
			sum += nodeSize(c)
		}
		return sum
	}
	return len(n.raw)
}

// nodeSize returns the total encoded size of n, header included.
func nodeSize(n *Node) int {
	p := payloadSize(n)
	h := Header{Tag: n.tag, Lenient: n.lenient, Forward: n.forward, Length: p}
	return HeaderSize(h) + p
}

// Measure returns the number of bytes [Write] would produce for n. Callers
// size their destination buffer with this before calling Write, in place of
// a null-buffer "measure only" call: that convention does not translate
// cleanly to a slice-based API, since there is no sentinel nil-with-capacity
// slice that would mean "tell me how big, don't write".
func Measure(n *Node) int { return nodeSize(n) }

// backFiller serializes into a fixed-size destination buffer from the end
// backward. A node's header cannot be written until its payload size is
// known, so writeNode lays payload bytes down right-to-left and prepends
// each header once the payload behind it is in place. The length written
// into each header comes from [payloadSize], which measures that node's
// subtree.
type backFiller struct {
	buf []byte
	pos int // buf[pos:] holds the bytes written so far
}

func newBackFiller(dst []byte) *backFiller {
	return &backFiller{buf: dst, pos: len(dst)}
}

func (bf *backFiller) prepend(p []byte) {
	bf.pos -= len(p)
	copy(bf.buf[bf.pos:], p)
}

func (bf *backFiller) prependHeader(h Header) {
	hdr := EncodeHeader(h)
	bf.prepend(hdr)
}

// writeNode serializes n into bf, working from bf's current cursor backward.
// Children are visited in reverse order so that, once every header has been
// prepended, the forward byte order matches the children's original order.
func writeNode(n *Node, bf *backFiller) {
	if n.mode == viewNested {
		for i := len(n.children) - 1; i >= 0; i-- {
			writeNode(n.children[i], bf)
		}
	} else {
		bf.prepend(n.raw)
	}
	bf.prependHeader(Header{Tag: n.tag, Lenient: n.lenient, Forward: n.forward, Length: payloadSize(n)})
}

// WriteOptions controls [Write]'s output.
type WriteOptions struct {
	// NoHeader serializes only n's payload, omitting n's own header. Useful
	// when a caller already wrote (or will write) the header separately,
	// such as re-framing a node under a different tag without re-encoding
	// its contents.
	NoHeader bool
}

// Write serializes n into buf, which must be at least [Measure](n) bytes
// (or [payloadSize](n) bytes if opts.NoHeader is set). It returns the number
// of bytes written, or a [KindBufferOverflow] error if buf is too small.
//
// Write never mutates n; it may be called any number of times, including
// concurrently from multiple goroutines, as long as n itself is not being
// mutated at the same time.
func Write(n *Node, buf []byte, opts WriteOptions) (int, error) {
	total := nodeSize(n)
	if opts.NoHeader {
		total = payloadSize(n)
	}
	if len(buf) < total {
		return 0, n.fail(KindBufferOverflow, "Write", errBufferTooSmall)
	}
	dst := buf[:total]
	bf := newBackFiller(dst)
	if opts.NoHeader {
		if n.mode == viewNested {
			for i := len(n.children) - 1; i >= 0; i-- {
				writeNode(n.children[i], bf)
			}
		} else {
			bf.prepend(n.raw)
		}
	} else {
		writeNode(n, bf)
	}
	return total, nil
}

// appendNode appends n's full encoding (header and payload) to dst and
// returns the extended slice. Unlike writeNode/backFiller, this walks
// forward; it is used where the destination is being built up
// incrementally rather than sized exactly up front, such as [CastToRaw]
// flattening a node's children into a freshly allocated payload.
func appendNode(dst []byte, n *Node) []byte {
	p := payloadSize(n)
	h := Header{Tag: n.tag, Lenient: n.lenient, Forward: n.forward, Length: p}
	dst = append(dst, EncodeHeader(h)...)
	if n.mode == viewNested {
		for _, c := range n.children {
			dst = appendNode(dst, c)
		}
		return dst
	}
	return append(dst, n.raw...)
}
