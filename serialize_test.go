package ksi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawNode(t *testing.T, tag uint16, payload []byte) *Node {
	t.Helper()
	n, err := New(nil, tag, false, false, false)
	require.NoError(t, err)
	n.raw = append([]byte(nil), payload...)
	return n
}

func TestWrite_FlatNode(t *testing.T) {
	n := rawNode(t, 1, []byte{0xAA, 0xBB, 0xCC})
	buf := make([]byte, Measure(n))
	written, err := Write(n, buf, WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, len(buf), written)
	assert.Equal(t, []byte{0x01, 0x03, 0xAA, 0xBB, 0xCC}, buf)
}

func TestWrite_NestedPreservesChildOrder(t *testing.T) {
	parent, err := New(nil, 5, false, false, true)
	require.NoError(t, err)
	parent.children = []*Node{
		rawNode(t, 1, []byte{0x07}),
		rawNode(t, 1, []byte{0x07}),
	}

	buf := make([]byte, Measure(parent))
	written, err := Write(parent, buf, WriteOptions{})
	require.NoError(t, err)
	assert.Equal(t, len(buf), written)
	assert.Equal(t, []byte{
		0x05, 0x06, // parent header: tag=5 length=6
		0x01, 0x01, 0x07,
		0x01, 0x01, 0x07,
	}, buf)
}

func TestWrite_NoHeader(t *testing.T) {
	n := rawNode(t, 1, []byte{0xAA, 0xBB})
	buf := make([]byte, payloadSize(n))
	written, err := Write(n, buf, WriteOptions{NoHeader: true})
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.Equal(t, []byte{0xAA, 0xBB}, buf)
}

func TestWrite_BufferTooSmall(t *testing.T) {
	n := rawNode(t, 1, []byte{0xAA, 0xBB, 0xCC})
	buf := make([]byte, 1)
	_, err := Write(n, buf, WriteOptions{})
	require.Error(t, err)
	assert.Equal(t, KindBufferOverflow, errKindOf(err))
}

func TestMeasure_MatchesHeaderSize(t *testing.T) {
	n := rawNode(t, 1, make([]byte, 300))
	assert.Equal(t, 4+300, Measure(n))
}
