// Package protocol implements the relay wire format: the u32 length-prefixed
// frame shared by the TCP control channel and UDP media packets, and the JSON
// control messages carried inside control frames.
//
// All integers are little-endian, matching the reference clients.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const HeaderSize = 4

var (
	ErrShortRead     = errors.New("short read")
	ErrFrameTooLarge = errors.New("frame too large")
)

var byteOrder = binary.LittleEndian

// Encode prefixes payload with its 4-byte length.
func Encode(payload []byte) ([]byte, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, HeaderSize, HeaderSize+len(payload))
	byteOrder.PutUint32(buf, uint32(len(payload)))
	return append(buf, payload...), nil
}

// WriteFrame encodes payload and writes it with a single Write call.
func WriteFrame(w io.Writer, payload []byte) error {
	frame, err := Encode(payload)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// Reader decodes consecutive frames from a stream.
type Reader struct {
	r   io.Reader
	max uint32
	hdr [HeaderSize]byte
}

// NewReader returns a Reader rejecting frames larger than maxSize (0 = no limit).
func NewReader(r io.Reader, maxSize uint32) *Reader {
	return &Reader{r: r, max: maxSize}
}

// ReadFrame returns the next payload. A stream closed cleanly between frames
// yields io.EOF; closed inside a frame yields ErrShortRead.
func (fr *Reader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: header: %w", ErrShortRead, err)
		}
		return nil, err
	}
	n := byteOrder.Uint32(fr.hdr[:])
	if fr.max > 0 && n > fr.max {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, fr.max)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: payload: %w", ErrShortRead, err)
		}
		return nil, err
	}
	return payload, nil
}
