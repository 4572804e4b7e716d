package protocol

import (
	"errors"
	"unicode/utf8"
)

var ErrMalformedPacket = errors.New("malformed media packet")

// ParseMediaPacket splits a media datagram into its sender tag and payload.
// The returned payload aliases datagram.
func ParseMediaPacket(datagram []byte) (string, []byte, error) {
	if len(datagram) < HeaderSize {
		return "", nil, ErrMalformedPacket
	}
	n := uint64(byteOrder.Uint32(datagram))
	if uint64(len(datagram)-HeaderSize) < n {
		return "", nil, ErrMalformedPacket
	}
	sender := datagram[HeaderSize : HeaderSize+n]
	if !utf8.Valid(sender) {
		return "", nil, ErrMalformedPacket
	}
	return string(sender), datagram[HeaderSize+n:], nil
}

// AppendMediaPacket appends the datagram for sender/payload to dst.
func AppendMediaPacket(dst []byte, sender string, payload []byte) []byte {
	dst = byteOrder.AppendUint32(dst, uint32(len(sender)))
	dst = append(dst, sender...)
	return append(dst, payload...)
}
