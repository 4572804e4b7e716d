package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaPacketRoundTrip(t *testing.T) {
	pkt := AppendMediaPacket(nil, "Alice", []byte{0xde, 0xad})
	assert.Equal(t, []byte{5, 0, 0, 0, 'A', 'l', 'i', 'c', 'e', 0xde, 0xad}, pkt)

	sender, payload, err := ParseMediaPacket(pkt)
	require.NoError(t, err)
	assert.Equal(t, "Alice", sender)
	assert.Equal(t, []byte{0xde, 0xad}, payload)
}

func TestParseMediaPacketEmptyPayload(t *testing.T) {
	sender, payload, err := ParseMediaPacket(AppendMediaPacket(nil, "bob", nil))
	require.NoError(t, err)
	assert.Equal(t, "bob", sender)
	assert.Empty(t, payload)
}

func TestParseMediaPacketMalformed(t *testing.T) {
	cases := map[string][]byte{
		"empty":         nil,
		"short header":  {1, 0},
		"truncated tag": {9, 0, 0, 0, 'a', 'b'},
		"huge length":   {0xff, 0xff, 0xff, 0xff, 'a'},
		"invalid utf8":  {1, 0, 0, 0, 0xff},
	}
	for name, pkt := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseMediaPacket(pkt)
			assert.ErrorIs(t, err, ErrMalformedPacket)
		})
	}
}
