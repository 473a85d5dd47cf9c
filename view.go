package ksi

// CastToRaw switches n from the nested view to the raw view by flattening
// its children into a single payload, in order. It is idempotent: calling it
// on a node already in the raw (or integer) view is a no-op.
//
// CastToRaw always builds its flattened payload into a freshly allocated
// buffer rather than reusing n's existing one. n has none of its own while
// nested - the payload lives entirely in its children - so there is nothing
// to reuse; allocating fresh also means a child's own raw slice is never at
// risk of aliasing the buffer CastToRaw is assembling, even if a future
// change gives nested nodes a retained scratch buffer of their own.
//
// Children are released once their bytes are copied into the flattened
// payload: CastToRaw trades their structure away permanently. Casting back
// with [CastToNested] re-scans a fresh set of children from the bytes.
func CastToRaw(n *Node) error {
	if n.mode != viewNested {
		return nil
	}
	size := payloadSize(n)
	if size > maxPayloadFor(n.ctx) {
		return n.fail(KindBufferOverflow, "CastToRaw", errPayloadTooLarge)
	}
	buf := make([]byte, 0, size)
	for _, c := range n.children {
		buf = appendNode(buf, c)
	}
	for _, c := range n.children {
		c.Release()
	}
	n.children = nil
	n.raw = buf
	n.mode = viewRaw
	return nil
}

// CastToNested switches n from the raw (or integer) view to the nested view
// by scanning its payload as a sequence of sibling TLV elements. It is
// idempotent: calling it on a node already nested is a no-op.
//
// CastToNested fails with [KindInvalidFormat] if n's payload does not decode
// as a clean sequence of complete TLV elements - for instance, a payload
// whose last element's declared length runs past the end of the buffer.
// n is left unchanged on failure.
func CastToNested(n *Node) error {
	if n.mode == viewNested {
		return nil
	}
	base := int64(0)
	if abs, ok := n.Origin(); ok {
		// Use the header length actually consumed when n was scanned, not
		// HeaderSize recomputed from n's current tag/length: a decoder must
		// accept a non-canonical TLV16 encoding of a TLV8-eligible
		// tag/length (§6.1), and recomputing would silently pick the
		// canonical (smaller) form, undercounting base for every grandchild.
		base = abs + int64(n.headerLen)
	}
	children, err := scanAll(n.ctx, n.raw, base)
	if err != nil {
		return err
	}
	n.raw = nil
	n.children = children
	n.mode = viewNested
	return nil
}
