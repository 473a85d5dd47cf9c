package ksi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlob_RoundTrip(t *testing.T) {
	data := []byte{0x01, 0x03, 0xAA, 0xBB, 0xCC}
	n, err := ParseBlob(nil, data)
	require.NoError(t, err)
	defer n.Release()

	buf := make([]byte, Measure(n))
	written, err := Write(n, buf, WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, len(buf), written)
	assert.Equal(t, data, buf)
}

func TestParseBlob_TrailingBytes(t *testing.T) {
	data := []byte{0x01, 0x01, 0xAA, 0xFF}
	_, err := ParseBlob(nil, data)
	require.Error(t, err)
	assert.Equal(t, KindInvalidFormat, errKindOf(err))
}

func TestFromUint_And_UintValue(t *testing.T) {
	cases := map[string]uint64{
		"zero":        0,
		"one byte":    0x42,
		"two bytes":   0x1234,
		"eight bytes": 0xFFFFFFFFFFFFFFFF,
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			n, err := FromUint(nil, 1, false, false, v)
			require.NoError(t, err)
			defer n.Release()

			got, err := UintValue(n)
			require.NoError(t, err)
			assert.Equal(t, v, got)

			raw, err := RawValue(n)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(raw), 8)
		})
	}
}

func TestRawValue_WrongView(t *testing.T) {
	n, err := New(nil, 1, false, false, true)
	require.NoError(t, err)
	defer n.Release()

	_, err = RawValue(n)
	require.Error(t, err)
	assert.Equal(t, KindPayloadTypeMismatch, errKindOf(err))
}

func TestSetRawValue_DowngradesIntegerView(t *testing.T) {
	n, err := FromUint(nil, 1, false, false, 5)
	require.NoError(t, err)
	defer n.Release()

	require.NoError(t, SetRawValue(n, []byte{0x01, 0x02}))
	assert.Equal(t, viewRaw, n.mode)
	raw, err := RawValue(n)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, raw)
}

func TestSetRawValue_TooLarge(t *testing.T) {
	n, err := New(nil, 1, false, false, false)
	require.NoError(t, err)
	defer n.Release()

	err = SetRawValue(n, make([]byte, maxPayloadLength+1))
	require.Error(t, err)
	assert.Equal(t, KindBufferOverflow, errKindOf(err))
}

func TestAppendRemoveReplaceChild(t *testing.T) {
	parent, err := New(nil, 1, false, false, true)
	require.NoError(t, err)
	defer parent.Release()

	c1, err := New(nil, 2, false, false, false)
	require.NoError(t, err)
	c2, err := New(nil, 3, false, false, false)
	require.NoError(t, err)

	require.NoError(t, AppendChild(parent, c1))
	require.NoError(t, AppendChild(parent, c2))
	c1.Release()
	c2.Release()

	children, err := Children(parent)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.EqualValues(t, 1, c1.refCount())

	c3, err := New(nil, 4, false, false, false)
	require.NoError(t, err)
	require.NoError(t, ReplaceChild(parent, c1, c3))
	c3.Release()
	assert.EqualValues(t, 0, c1.refCount())

	children, err = Children(parent)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Same(t, c3, children[0])

	require.NoError(t, RemoveChild(parent, c3))
	assert.EqualValues(t, 0, c3.refCount())

	children, err = Children(parent)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Same(t, c2, children[0])
}

func TestRemoveChild_NotFound(t *testing.T) {
	parent, err := New(nil, 1, false, false, true)
	require.NoError(t, err)
	defer parent.Release()

	stray, err := New(nil, 9, false, false, false)
	require.NoError(t, err)
	defer stray.Release()

	err = RemoveChild(parent, stray)
	require.Error(t, err)
	assert.Equal(t, KindInvalidArgument, errKindOf(err))
}

func TestClone_NestedTreeIsIndependent(t *testing.T) {
	parent, err := New(nil, 1, false, false, true)
	require.NoError(t, err)
	defer parent.Release()

	child, err := New(nil, 2, false, false, false)
	require.NoError(t, err)
	require.NoError(t, SetRawValue(child, []byte{0xAA}))
	require.NoError(t, AppendChild(parent, child))
	child.Release()

	clone, err := Clone(parent)
	require.NoError(t, err)
	defer clone.Release()

	assert.True(t, clone.IsNested())
	cloneChildren, err := Children(clone)
	require.NoError(t, err)
	require.Len(t, cloneChildren, 1)
	assert.Equal(t, child.Tag(), cloneChildren[0].Tag())
	assert.NotSame(t, child, cloneChildren[0])

	cloneRaw, err := RawValue(cloneChildren[0])
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA}, cloneRaw)

	require.NoError(t, SetRawValue(child, []byte{0xBB}))
	origRaw, _ := RawValue(child)
	assert.Equal(t, []byte{0xBB}, origRaw)
	assert.Equal(t, []byte{0xAA}, cloneRaw, "mutating source must not affect clone")
}

func TestNode_StringIncludesTagAndPayload(t *testing.T) {
	n := rawNode(t, 1, []byte{0xAA, 0xBB})
	defer n.Release()
	s := n.String()
	assert.Contains(t, s, "tag=0x1")
	assert.Contains(t, s, "aabb")
}
