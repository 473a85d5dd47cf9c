package ksi

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamReader_ReadsSequentialNodes(t *testing.T) {
	data := []byte{
		0x01, 0x01, 0x07,
		0x80, 0x02, 0x00, 0x02, 0xAA, 0xBB,
	}
	r := NewStreamReader(nil, bytes.NewReader(data))

	n1, err := r.ReadNode()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), n1.Tag())
	assert.Equal(t, []byte{0x07}, n1.raw)
	abs1, _ := n1.Origin()
	assert.EqualValues(t, 0, abs1)

	n2, err := r.ReadNode()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), n2.Tag())
	assert.Equal(t, []byte{0xAA, 0xBB}, n2.raw)
	abs2, _ := n2.Origin()
	assert.EqualValues(t, 3, abs2)

	_, err = r.ReadNode()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamReader_TruncatedPayload(t *testing.T) {
	r := NewStreamReader(nil, bytes.NewReader([]byte{0x01, 0x05, 0xAA}))
	_, err := r.ReadNode()
	require.Error(t, err)
	assert.Equal(t, KindInvalidFormat, errKindOf(err))
}

func TestReadFromStream_SingleNode(t *testing.T) {
	n, err := ReadFromStream(nil, bytes.NewReader([]byte{0x01, 0x01, 0x09}))
	require.NoError(t, err)
	assert.Equal(t, uint16(1), n.Tag())
	assert.Equal(t, []byte{0x09}, n.raw)
}
