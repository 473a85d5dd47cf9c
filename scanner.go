package ksi

// scan decodes one complete TLV element from the front of data and returns
// it as a raw-view [Node], the number of bytes consumed, and an error if
// data does not begin with a well-formed header and payload. baseAbs is the
// absolute stream offset of data[0]; relOff is data[0]'s offset within its
// immediate container's payload. Both are recorded as the node's origin.
//
// scan never recurses into the payload: a freshly scanned node always starts
// in the raw view, even when its tag is known elsewhere to denote a nested
// structure. Callers that want a tree call [CastToNested] afterward.
func scan(ctx Context, data []byte, baseAbs, relOff int64) (*Node, int, error) {
	h, headerLen, err := DecodeHeader(data)
	if err != nil {
		return nil, 0, ctxFail(ctx, KindInvalidFormat, "scan", err)
	}
	if headerLen+h.Length > len(data) {
		return nil, 0, ctxFail(ctx, KindInvalidFormat, "scan", errTruncatedValue)
	}
	if headerLen == 4 && h.isTLV8() {
		debugf(ctx, "scan: accepted non-canonical TLV16 header for TLV8-eligible tag=0x%x length=%d", h.Tag, h.Length)
	}

	payload := data[headerLen : headerLen+h.Length]
	n := &Node{
		ctx:     ctx,
		tag:     h.Tag,
		lenient: h.Lenient,
		forward: h.Forward,
		mode:    viewRaw,
		count:   1,
	}
	n.raw = append([]byte(nil), payload...)
	n.setOrigin(baseAbs, relOff, headerLen)

	consumed := headerLen + h.Length
	if consumed == 0 {
		return nil, 0, ctxFail(ctx, KindInvalidFormat, "scan", errEmptyScan)
	}
	return n, consumed, nil
}

// scanAll decodes a sequence of sibling TLV elements packed back-to-back in
// data, such as a nested node's payload once it is known to contain
// children. It fails if any element's declared length would overshoot the
// bounds of data.
func scanAll(ctx Context, data []byte, baseAbs int64) ([]*Node, error) {
	var out []*Node
	off := 0
	for off < len(data) {
		n, consumed, err := scan(ctx, data[off:], baseAbs+int64(off), int64(off))
		if err != nil {
			for _, c := range out {
				c.Release()
			}
			return nil, err
		}
		if off+consumed > len(data) {
			n.Release()
			for _, c := range out {
				c.Release()
			}
			return nil, ctxFail(ctx, KindInvalidFormat, "scanAll", errScanOvershoot)
		}
		out = append(out, n)
		off += consumed
	}
	return out, nil
}
