package ksi

import "sync"

// viewMode records which of the dual views a [Node]'s payload currently
// presents.
type viewMode int

const (
	// viewRaw is an opaque byte payload.
	viewRaw viewMode = iota
	// viewNested is an ordered sequence of child nodes.
	viewNested
	// viewInteger is a raw payload that was produced from, or is known to
	// decode as, a minimal big-endian unsigned integer. It serializes
	// identically to viewRaw; the distinction exists only so callers that
	// built a node with [FromUint] can ask for that value back without
	// re-deriving it from bytes. Any raw-view mutation downgrades a node to
	// viewRaw.
	viewInteger
)

// Node is one element of a TLV tree: a header (tag plus flags) and a payload
// that is either raw bytes, an ordered list of children, or (transiently) a
// known integer value. Nodes are reference counted; see [Node.Retain] and
// [Node.Release].
//
// A Node must not be shared across goroutines without external
// synchronization beyond what Retain/Release itself provide.
type Node struct {
	ctx Context

	tag     uint16
	lenient bool
	forward bool

	mode     viewMode
	raw      []byte  // valid when mode == viewRaw or viewInteger
	uintVal  uint64  // valid when mode == viewInteger
	children []*Node // valid when mode == viewNested; Node owns one reference to each

	// originAbs/originRelative record where this node was found in its
	// source stream, for diagnostics only; they never affect serialization.
	// headerLen is the number of header bytes actually consumed scanning
	// this node - not necessarily HeaderSize's canonical recomputation from
	// the node's current tag/length, since a decoder must accept a
	// non-canonical TLV16 encoding of a TLV8-eligible tag/length (§6.1).
	// It is only meaningful when hasOrigin is true.
	originAbs      int64
	hasOrigin      bool
	originRelative int64
	headerLen      int

	mu    sync.Mutex
	count int32 // outstanding references; 0 means freed
}

// New creates a fresh [Node] with one outstanding reference. If nested is
// true the node starts in the nested view with zero children; otherwise it
// starts in the raw view with an empty payload.
func New(ctx Context, tag uint16, lenient, forward bool, nested bool) (*Node, error) {
	if tag > maxTag {
		return nil, ctxFail(ctx, KindInvalidArgument, "New", errTagTooLarge)
	}
	n := &Node{
		ctx:     ctx,
		tag:     tag,
		lenient: lenient,
		forward: forward,
		count:   1,
	}
	if nested {
		n.mode = viewNested
	} else {
		n.mode = viewRaw
		n.raw = []byte{}
	}
	return n, nil
}

// Tag returns n's tag.
func (n *Node) Tag() uint16 { return n.tag }

// Lenient returns n's lenient flag (bit 6 of the header's first byte).
func (n *Node) Lenient() bool { return n.lenient }

// Forward returns n's forward flag (bit 5 of the header's first byte).
func (n *Node) Forward() bool { return n.forward }

// SetFlags updates n's lenient and forward flags; these never affect the
// dual-view payload, only the header written by [Write].
func (n *Node) SetFlags(lenient, forward bool) {
	n.lenient = lenient
	n.forward = forward
}

// IsRaw reports whether n currently presents a raw (or integer) payload.
func (n *Node) IsRaw() bool { return n.mode == viewRaw || n.mode == viewInteger }

// IsNested reports whether n currently presents an ordered list of children.
func (n *Node) IsNested() bool { return n.mode == viewNested }

// Origin reports the absolute byte offset n was scanned from, and whether an
// origin is known at all. A node built with [New] or [FromUint] has no
// origin.
func (n *Node) Origin() (abs int64, ok bool) { return n.originAbs, n.hasOrigin }

// OriginRelative reports the byte offset n was scanned from, relative to the
// start of its immediate container's payload (0 for a top-level element
// parsed by [ParseBlob] or [ReadFromStream]). It is only meaningful together
// with [Node.Origin]; both are observer state recorded for diagnostics and
// never affect serialization.
func (n *Node) OriginRelative() (rel int64, ok bool) { return n.originRelative, n.hasOrigin }

func (n *Node) setOrigin(abs, rel int64, headerLen int) {
	n.originAbs = abs
	n.originRelative = rel
	n.headerLen = headerLen
	n.hasOrigin = true
}

// Retain increments n's reference count and returns n, for chaining into an
// assignment.
func (n *Node) Retain() *Node {
	n.mu.Lock()
	n.count++
	n.mu.Unlock()
	return n
}

// Release decrements n's reference count. When the count reaches zero, n's
// children (if nested) are released in turn and n's buffer is dropped.
// Releasing an already-freed node panics, matching the "must not happen"
// treatment of a double free in the ownership model this mirrors.
func (n *Node) Release() {
	n.mu.Lock()
	if n.count <= 0 {
		n.mu.Unlock()
		panic("ksi: Release of node with no outstanding references")
	}
	n.count--
	freed := n.count == 0
	n.mu.Unlock()
	if !freed {
		return
	}
	if n.mode == viewNested {
		for _, c := range n.children {
			c.Release()
		}
	}
	n.raw = nil
	n.children = nil
}

// refCount returns n's current reference count, for tests.
func (n *Node) refCount() int32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

// fail builds and pushes a classified error against n's context.
func (n *Node) fail(kind ErrorKind, op string, err error) error {
	return ctxFail(n.ctx, kind, op, err)
}

// ensureOwnedBuffer makes sure n.raw is a buffer of capacity bufferCapacity
// that only n's payload aliases. If copyExisting is true the current payload
// bytes are copied into the new buffer; otherwise the new buffer starts
// empty. This is used before appending into a raw payload so growth never
// reallocates a slice some other node still reads from (a child's payload
// borrowed during [CastToRaw], for instance).
func (n *Node) ensureOwnedBuffer(copyExisting bool) {
	if cap(n.raw) >= bufferCapacity {
		return
	}
	debugf(n.ctx, "ensureOwnedBuffer: growing tag=0x%x buffer to %d bytes capacity (copyExisting=%v)", n.tag, bufferCapacity, copyExisting)
	buf := make([]byte, 0, bufferCapacity)
	if copyExisting {
		buf = append(buf, n.raw...)
	}
	n.raw = buf
}
