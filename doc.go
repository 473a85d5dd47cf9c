// Package ksi implements the tag-length-value (TLV) codec used by the KSI
// (Keyless Signature Infrastructure) signature-interchange format. It parses
// flat byte blobs into recursively nested TLV trees, supports bidirectional
// conversion between a raw-payload view and a structured-children view of the
// same [Node], serializes trees back to bytes (bit-exact, round-tripping),
// and supplies a small set of tree-mutation operations.
//
// # Wire format
//
// Every element is encoded as a header followed by its payload. The header
// uses one of two forms, chosen by the encoder to be the smallest one that
// fits:
//
//   - TLV8 (2 bytes): a 5-bit tag and an 8-bit length. Usable when the tag is
//     at most 0x1F and the payload is at most 0xFF bytes.
//   - TLV16 (4 bytes): a 13-bit tag and a 16-bit length. Used whenever TLV8 is
//     not admissible.
//
// See [Header] for the exact bit layout. A decoder accepts either form
// regardless of whether it is the canonical (smallest) choice for the given
// tag and length.
//
// # Dual view
//
// A [Node] presents its payload in one of three ways: as opaque raw bytes, as
// an ordered sequence of child nodes, or (a parse-time hint that serializes
// identically to raw) as a minimal big-endian integer. [CastToRaw] and
// [CastToNested] switch between the raw and nested views on demand; doing so
// round-trips to the same bytes as long as the children were not mutated in
// between.
//
// # Ownership
//
// Nodes are reference counted. [New], [ParseBlob], [FromUint], and
// [ReadFromStream] all return a [Node] with one outstanding reference; call
// [Node.Retain] to add a handle and [Node.Release] to drop one. A node's
// backing buffer and children are released when the last reference is
// dropped. Parents own their children: a child's lifetime never outlives its
// parent's last reference.
//
// # Errors
//
// Every fallible operation returns an error whose [ErrorKind] can be
// recovered with [errors.As] against [*Error]; the same kind is also pushed
// onto the [Context] passed in at node construction, per this package's
// external error-stack contract.
package ksi
