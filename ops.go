package ksi

import (
	"encoding/hex"
	"io"
	"strconv"

	"github.com/portante/libksi/internal/bigend"
)

// ParseBlob decodes data as a single top-level TLV element and returns it as
// a raw-view [Node] with one outstanding reference. Unlike [ReadFromStream],
// ParseBlob requires data to contain exactly one element: any bytes left
// over after the element is decoded are reported as [KindInvalidFormat].
func ParseBlob(ctx Context, data []byte) (*Node, error) {
	n, consumed, err := scan(ctx, data, 0, 0)
	if err != nil {
		return nil, err
	}
	if consumed != len(data) {
		n.Release()
		return nil, ctxFail(ctx, KindInvalidFormat, "ParseBlob", errTrailingBytes)
	}
	return n, nil
}

// ReadFromStream decodes exactly one TLV element from r, which need not be
// exhausted afterward. It is a convenience wrapper around [NewStreamReader]
// for callers that only want a single element.
func ReadFromStream(ctx Context, r io.Reader) (*Node, error) {
	return NewStreamReader(ctx, r).ReadNode()
}

// FromUint creates a raw-view [Node] whose payload is the minimal big-endian
// encoding of v. The node remembers that it was built from an integer, so
// [UintValue] can recover v without re-decoding the payload; a call to
// [SetRawValue] downgrades it back to a plain raw view.
func FromUint(ctx Context, tag uint16, lenient, forward bool, v uint64) (*Node, error) {
	n, err := New(ctx, tag, lenient, forward, false)
	if err != nil {
		return nil, err
	}
	n.raw = bigend.AppendMinimal(n.raw[:0], v)
	n.mode = viewInteger
	n.uintVal = v
	return n, nil
}

// RawValue returns n's payload bytes. It fails with [KindPayloadTypeMismatch]
// if n is currently in the nested view.
func RawValue(n *Node) ([]byte, error) {
	if !n.IsRaw() {
		return nil, n.fail(KindPayloadTypeMismatch, "RawValue", errNotRawView)
	}
	return n.raw, nil
}

// UintValue interprets n's raw payload as a minimal big-endian unsigned
// integer. It fails with [KindPayloadTypeMismatch] if n is nested, and with
// [KindInvalidFormat] if the payload is too long to represent as a uint64.
func UintValue(n *Node) (uint64, error) {
	if !n.IsRaw() {
		return 0, n.fail(KindPayloadTypeMismatch, "UintValue", errNotRawView)
	}
	if n.mode == viewInteger {
		return n.uintVal, nil
	}
	if len(n.raw) > 8 {
		return 0, n.fail(KindInvalidFormat, "UintValue", errUintTooLong)
	}
	return bigend.Decode(n.raw), nil
}

// Children returns n's children in order. It fails with
// [KindPayloadTypeMismatch] if n is currently in the raw view.
func Children(n *Node) ([]*Node, error) {
	if !n.IsNested() {
		return nil, n.fail(KindPayloadTypeMismatch, "Children", errNotNestedView)
	}
	return n.children, nil
}

// SetRawValue replaces n's payload with a copy of data, switching n to the
// raw view. Any existing children are released. It fails with
// [KindBufferOverflow] if data exceeds the payload bound in force for n's
// context.
func SetRawValue(n *Node, data []byte) error {
	if len(data) > maxPayloadFor(n.ctx) {
		return n.fail(KindBufferOverflow, "SetRawValue", errPayloadTooLarge)
	}
	if n.mode == viewNested {
		for _, c := range n.children {
			c.Release()
		}
		n.children = nil
	}
	n.ensureOwnedBuffer(false)
	n.raw = append(n.raw[:0], data...)
	n.mode = viewRaw
	return nil
}

// SetUintValue replaces n's payload with the minimal big-endian encoding of
// v, switching n to the integer view. Any existing children are released.
func SetUintValue(n *Node, v uint64) error {
	if n.mode == viewNested {
		for _, c := range n.children {
			c.Release()
		}
		n.children = nil
	}
	n.ensureOwnedBuffer(false)
	n.raw = bigend.AppendMinimal(n.raw[:0], v)
	n.mode = viewInteger
	n.uintVal = v
	return nil
}

// AppendChild adds child to the end of parent's children, retaining it.
// It fails with [KindPayloadTypeMismatch] if parent is currently in the raw
// view; callers that want to build a tree from scratch should construct
// parent with [New]'s nested flag set.
func AppendChild(parent, child *Node) error {
	if !parent.IsNested() {
		return parent.fail(KindPayloadTypeMismatch, "AppendChild", errNotNestedView)
	}
	child.Retain()
	parent.children = append(parent.children, child)
	return nil
}

// RemoveChild removes child from parent's children by identity and releases
// it. It fails with [KindInvalidArgument] if parent is not nested or if child
// is not among parent's current children.
func RemoveChild(parent, child *Node) error {
	if !parent.IsNested() {
		return parent.fail(KindInvalidArgument, "RemoveChild", errNotNestedView)
	}
	for i, c := range parent.children {
		if c == child {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			child.Release()
			return nil
		}
	}
	return parent.fail(KindInvalidArgument, "RemoveChild", errChildNotFound)
}

// ReplaceChild swaps newChild in for oldChild at oldChild's current
// position among parent's children, retaining newChild and releasing
// oldChild. It fails with [KindInvalidArgument] if parent is not nested or if
// oldChild is not among parent's current children.
func ReplaceChild(parent, oldChild, newChild *Node) error {
	if !parent.IsNested() {
		return parent.fail(KindInvalidArgument, "ReplaceChild", errNotNestedView)
	}
	for i, c := range parent.children {
		if c == oldChild {
			newChild.Retain()
			parent.children[i] = newChild
			oldChild.Release()
			return nil
		}
	}
	return parent.fail(KindInvalidArgument, "ReplaceChild", errChildNotFound)
}

// Clone produces an independent deep copy of n with one outstanding
// reference: serializing n and re-scanning the result, then reshaping the
// copy to mirror n's view (raw or nested) at every level. Mutating the clone
// never affects n or vice versa.
//
// Clone fails with [KindUnknown] if the re-scanned copy does not structurally
// match n level-for-level - a condition that should not happen and signals
// a bug in the serializer or scanner rather than malformed input.
func Clone(n *Node) (*Node, error) {
	buf := make([]byte, Measure(n))
	if _, err := Write(n, buf, WriteOptions{}); err != nil {
		return nil, err
	}
	clone, consumed, err := scan(n.ctx, buf, 0, 0)
	if err != nil {
		return nil, err
	}
	if consumed != len(buf) {
		clone.Release()
		return nil, n.fail(KindUnknown, "Clone", errStructuralDivergence)
	}
	if n.mode == viewNested {
		if err := expand(n, clone); err != nil {
			clone.Release()
			return nil, err
		}
	}
	return clone, nil
}

// expand recursively reshapes clone, currently in the raw view, to mirror
// src's nested structure tag-for-tag, checking at every level that the
// reconstructed tree has not diverged from src.
func expand(src, clone *Node) error {
	if err := CastToNested(clone); err != nil {
		return err
	}
	debugf(clone.ctx, "Clone: verifying structure at tag=0x%x against %d source children", src.tag, len(src.children))
	if len(clone.children) != len(src.children) {
		return clone.fail(KindUnknown, "Clone", errStructuralDivergence)
	}
	for i, sc := range src.children {
		cc := clone.children[i]
		if cc.Tag() != sc.Tag() {
			return clone.fail(KindUnknown, "Clone", errStructuralDivergence)
		}
		if sc.mode == viewNested {
			if err := expand(sc, cc); err != nil {
				return err
			}
		}
	}
	return nil
}

// String renders n for diagnostics: its header followed by either its raw
// payload in hex or its children rendered the same way, recursively.
func (n *Node) String() string {
	return string(n.AppendFormat(nil))
}

// AppendFormat appends n's diagnostic rendering to dst and returns the
// extended slice, recursing into children without building an intermediate
// string at each level.
func (n *Node) AppendFormat(dst []byte) []byte {
	dst = append(dst, "TLV[tag=0x"...)
	dst = strconv.AppendUint(dst, uint64(n.tag), 16)
	if n.lenient {
		dst = append(dst, ",lenient"...)
	}
	if n.forward {
		dst = append(dst, ",forward"...)
	}
	if n.IsNested() {
		dst = append(dst, ",children=["...)
		for i, c := range n.children {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = c.AppendFormat(dst)
		}
		dst = append(dst, ']')
	} else {
		dst = append(dst, ",raw="...)
		hexBuf := make([]byte, hex.EncodedLen(len(n.raw)))
		hex.Encode(hexBuf, n.raw)
		dst = append(dst, hexBuf...)
	}
	return append(dst, ']')
}
